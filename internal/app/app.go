package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"FeedRewriter/internal/admission"
	"FeedRewriter/internal/config"
	"FeedRewriter/internal/domain"
	"FeedRewriter/internal/httpapi"
	"FeedRewriter/internal/infrastructure/extractor"
	"FeedRewriter/internal/infrastructure/feed"
	"FeedRewriter/internal/infrastructure/guard"
	"FeedRewriter/internal/infrastructure/llm"
	"FeedRewriter/internal/infrastructure/metrics"
	"FeedRewriter/internal/infrastructure/publisher"
	"FeedRewriter/internal/logging"
	"FeedRewriter/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	registry  *prometheus.Registry
	pipeline  *usecase.Pipeline
	publisher *usecase.Publisher
	guard     *guard.RedisGuard
}

// Option customizes wiring, mostly for tests.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient routes feed and article fetches through client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// New validates cfg and builds every adapter.
func New(cfg config.Config, baseLogger *slog.Logger, opts ...Option) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	source := feed.NewSource(cfg.Feeds, o.httpClient, cfg.Extractor.UserAgent, baseLogger.With("component", "feed"))

	filter := admission.NewFilter(admission.Config{
		Window:              cfg.Admission.Window,
		BlockedTitleTerms:   cfg.Admission.BlockedTitleTerms,
		BlockedDomains:      cfg.Admission.BlockedDomains,
		QuotaDomains:        cfg.Admission.QuotaDomains,
		DomainQuota:         cfg.Admission.DomainQuota,
		SimilarityThreshold: cfg.Admission.SimilarityThreshold,
		MaxStories:          cfg.Admission.MaxStories,
	},
		admission.WithLogger(baseLogger.With("component", "admission")),
		admission.WithRejectHook(func(r admission.Reason) { m.AdmissionRejected(string(r)) }),
	)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source: source,
		Filter: filter,
		Extractor: extractor.New(cfg.Extractor,
			extractor.WithHTTPClient(o.httpClient),
			extractor.WithLogger(baseLogger.With("component", "extractor")),
		),
		Rewriter:     llm.NewClient(cfg.Rewrite, baseLogger.With("component", "rewrite")),
		Metrics:      m,
		Logger:       baseLogger.With("component", "pipeline"),
		Attribution:  usecase.NewAttribution(cfg.Attribution.Keywords, cfg.Attribution.AlwaysCiteDomains),
		BaseURL:      cfg.Server.BaseURL,
		DefaultLimit: cfg.Pipeline.DefaultLimit,
		MaxLimit:     cfg.Pipeline.MaxLimit,
	})

	application := &Application{
		cfg:      cfg,
		logger:   baseLogger,
		registry: registry,
		pipeline: pipeline,
	}

	publishDeps := usecase.PublisherDeps{
		Metrics:       m,
		Logger:        baseLogger.With("component", "publisher"),
		AdminPassword: cfg.Admin.Password,
		GuardTTL:      cfg.Guard.TTL,
	}
	if cfg.PublishingEnabled() {
		publishDeps.Backend = publisher.NewClient(cfg.Publisher)
	}
	if cfg.Guard.Addr != "" {
		application.guard = guard.NewRedisGuard(cfg.Guard)
		publishDeps.Guard = application.guard
	}
	application.publisher = usecase.NewPublisher(publishDeps)

	return application, nil
}

// Config returns the validated configuration the application was built from.
func (a *Application) Config() config.Config {
	return a.cfg
}

// Run executes one pipeline run.
func (a *Application) Run(ctx context.Context, req usecase.RunRequest) (domain.RunResult, error) {
	return a.pipeline.Run(ctx, req)
}

// Article rebuilds the story behind one deep link.
func (a *Application) Article(ctx context.Context, originalURL, title string) (domain.StoryRecord, error) {
	return a.pipeline.Article(ctx, originalURL, title)
}

// Publish sends an edited story to the blog backend as a draft.
func (a *Application) Publish(ctx context.Context, req usecase.PublishRequest) (domain.Published, error) {
	return a.publisher.Publish(ctx, req)
}

// Handler returns the HTTP presentation layer.
func (a *Application) Handler() http.Handler {
	return httpapi.NewRouter(httpapi.RouterDeps{
		Stories:   a.pipeline,
		Publisher: a.publisher,
		Metrics:   promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
		Logger:    a.logger.With("component", "http"),
	})
}

// Serve listens on the configured address until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)

	if a.guard != nil {
		if err := a.guard.Ping(ctx); err != nil {
			a.logger.Warn("publish guard unavailable", "error", err)
		}
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.Server.Addr, "publishing", a.publisher.Enabled())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// Close releases external connections.
func (a *Application) Close() error {
	if a.guard != nil {
		return a.guard.Close()
	}
	return nil
}
