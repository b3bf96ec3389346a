package admission

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"FeedRewriter/internal/domain"
)

// Reason names the rule that rejected an entry.
type Reason string

const (
	ReasonAdmitted      Reason = "admitted"
	ReasonIncomplete    Reason = "incomplete"
	ReasonStale         Reason = "stale"
	ReasonBlockedTitle  Reason = "blocked_title"
	ReasonBlockedDomain Reason = "blocked_domain"
	ReasonDomainQuota   Reason = "domain_quota"
	ReasonDuplicate     Reason = "duplicate"
	ReasonNearDuplicate Reason = "near_duplicate"
)

// Decision is the verdict for one entry.
type Decision struct {
	Admitted bool
	Reason   Reason
}

// Config holds the filter knobs.
type Config struct {
	Window              time.Duration
	BlockedTitleTerms   []string
	BlockedDomains      []string
	QuotaDomains        []string
	DomainQuota         int
	SimilarityThreshold float64
	// MaxStories stops admission once reached; 0 means unlimited.
	MaxStories int
}

// Filter decides which feed entries go on to extraction.
type Filter struct {
	cfg        Config
	similarity Similarity
	now        func() time.Time
	logger     *slog.Logger
	onReject   func(Reason)
}

// Option customizes a Filter.
type Option func(*Filter)

// WithClock replaces time.Now for the recency rule.
func WithClock(now func() time.Time) Option {
	return func(f *Filter) { f.now = now }
}

// WithSimilarity swaps the near-duplicate metric.
func WithSimilarity(s Similarity) Option {
	return func(f *Filter) { f.similarity = s }
}

// WithLogger attaches a debug logger for rejections.
func WithLogger(l *slog.Logger) Option {
	return func(f *Filter) { f.logger = l }
}

// WithRejectHook is called once per rejected entry.
func WithRejectHook(hook func(Reason)) Option {
	return func(f *Filter) { f.onReject = hook }
}

func NewFilter(cfg Config, opts ...Option) *Filter {
	f := &Filter{
		cfg:        normalizeConfig(cfg),
		similarity: Levenshtein{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Admit returns the admitted entries in input order, updating state as it goes.
// It stops early once MaxStories entries have been admitted.
func (f *Filter) Admit(entries []domain.FeedEntry, state *State) []domain.FeedEntry {
	if state == nil {
		state = NewState()
	}

	admitted := make([]domain.FeedEntry, 0, len(entries))
	for _, entry := range entries {
		if f.cfg.MaxStories > 0 && state.Admitted() >= f.cfg.MaxStories {
			break
		}

		decision := f.Decide(entry, state)
		if !decision.Admitted {
			f.rejected(entry, decision.Reason)
			continue
		}
		admitted = append(admitted, entry)
	}
	return admitted
}

// Decide evaluates one entry and records it in state when admitted.
func (f *Filter) Decide(entry domain.FeedEntry, state *State) Decision {
	title := strings.TrimSpace(entry.Title)
	if title == "" || strings.TrimSpace(entry.Link) == "" {
		return Decision{Reason: ReasonIncomplete}
	}

	if f.cfg.Window > 0 && entry.HasTimestamp() {
		cutoff := f.now().Add(-f.cfg.Window)
		if entry.Published.Before(cutoff) {
			return Decision{Reason: ReasonStale}
		}
	}

	lowerTitle := strings.ToLower(title)
	for _, term := range f.cfg.BlockedTitleTerms {
		if strings.Contains(lowerTitle, term) {
			return Decision{Reason: ReasonBlockedTitle}
		}
	}

	host := domain.HostOf(entry.Link)
	for _, d := range f.cfg.BlockedDomains {
		if domain.HostMatches(host, d) {
			return Decision{Reason: ReasonBlockedDomain}
		}
	}

	quotaDomain := ""
	for _, d := range f.cfg.QuotaDomains {
		if domain.HostMatches(host, d) {
			quotaDomain = d
			break
		}
	}
	if quotaDomain != "" && state.DomainCount(quotaDomain) >= f.cfg.DomainQuota {
		return Decision{Reason: ReasonDomainQuota}
	}

	norm := NormalizeTitle(title)
	if _, ok := state.exact[norm]; ok {
		return Decision{Reason: ReasonDuplicate}
	}
	for _, seen := range state.titles {
		if f.similarity.Ratio(norm, seen) > f.cfg.SimilarityThreshold {
			return Decision{Reason: ReasonNearDuplicate}
		}
	}

	state.record(norm, quotaDomain)
	return Decision{Admitted: true, Reason: ReasonAdmitted}
}

func (f *Filter) rejected(entry domain.FeedEntry, reason Reason) {
	if f.onReject != nil {
		f.onReject(reason)
	}
	if f.logger != nil {
		f.logger.Debug("entry not admitted", "title", entry.Title, "link", entry.Link, "reason", reason)
	}
}

// SortByRecency orders entries newest first; entries without a timestamp go last.
// The sort is stable so ties keep feed order.
func SortByRecency(entries []domain.FeedEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case !a.HasTimestamp():
			return false
		case !b.HasTimestamp():
			return true
		default:
			return a.Published.After(*b.Published)
		}
	})
}

func normalizeConfig(cfg Config) Config {
	cfg.BlockedTitleTerms = lowerAll(cfg.BlockedTitleTerms)
	cfg.BlockedDomains = lowerAll(cfg.BlockedDomains)
	cfg.QuotaDomains = lowerAll(cfg.QuotaDomains)
	return cfg
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(v); strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
