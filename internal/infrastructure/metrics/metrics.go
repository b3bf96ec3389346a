// Package metrics exposes pipeline counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"FeedRewriter/internal/ports"
)

const namespace = "feedrewriter"

// Prometheus implements ports.Metrics.
type Prometheus struct {
	admissionRejected *prometheus.CounterVec
	extractionFailed  *prometheus.CounterVec
	rewriteFailed     *prometheus.CounterVec
	storiesBuilt      *prometheus.CounterVec
	publishAttempts   *prometheus.CounterVec
	runDuration       prometheus.Histogram
}

var _ ports.Metrics = (*Prometheus)(nil)

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in production
// and a fresh registry in tests.
func New(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		admissionRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "admission_rejected_total",
				Help:      "Feed entries rejected by the admission filter",
			},
			[]string{"reason"},
		),
		extractionFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extraction_failures_total",
				Help:      "Articles that could not be extracted",
			},
			[]string{"reason"},
		),
		rewriteFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rewrite_failures_total",
				Help:      "Articles dropped after the rewrite service failed",
			},
			[]string{"reason"},
		),
		storiesBuilt: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stories_built_total",
				Help:      "Story records produced",
			},
			[]string{"source"},
		),
		publishAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "publish_attempts_total",
				Help:      "Publish requests by outcome",
			},
			[]string{"outcome"},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of pipeline runs in seconds",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
	}
}

func (p *Prometheus) AdmissionRejected(reason string) {
	p.admissionRejected.WithLabelValues(reason).Inc()
}

func (p *Prometheus) ExtractionFailed(reason string) {
	p.extractionFailed.WithLabelValues(reason).Inc()
}

func (p *Prometheus) RewriteFailed(reason string) {
	p.rewriteFailed.WithLabelValues(reason).Inc()
}

func (p *Prometheus) StoryBuilt(source string) {
	p.storiesBuilt.WithLabelValues(source).Inc()
}

func (p *Prometheus) PublishAttempt(outcome string) {
	p.publishAttempts.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) ObserveRun(d time.Duration) {
	p.runDuration.Observe(d.Seconds())
}

// Nop discards everything.
type Nop struct{}

var _ ports.Metrics = Nop{}

func (Nop) AdmissionRejected(string) {}
func (Nop) ExtractionFailed(string)  {}
func (Nop) RewriteFailed(string)     {}
func (Nop) StoryBuilt(string)        {}
func (Nop) PublishAttempt(string)    {}
func (Nop) ObserveRun(time.Duration) {}
