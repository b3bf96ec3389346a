package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"FeedRewriter/internal/admission"
	"FeedRewriter/internal/domain"
	"FeedRewriter/internal/logging"
	"FeedRewriter/internal/ports"
)

const (
	fallbackDefaultLimit = 5
	fallbackMaxLimit     = 20
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source      ports.FeedSource
	Filter      *admission.Filter
	Extractor   ports.Extractor
	Rewriter    ports.Rewriter
	Metrics     ports.Metrics
	Logger      *slog.Logger
	Attribution Attribution
	// BaseURL prefixes deep links.
	BaseURL      string
	DefaultLimit int
	MaxLimit     int
}

// Pipeline turns live feed entries into rewritten story records.
type Pipeline struct {
	source       ports.FeedSource
	filter       *admission.Filter
	extractor    ports.Extractor
	rewriter     ports.Rewriter
	metrics      ports.Metrics
	logger       *slog.Logger
	attribution  Attribution
	baseURL      string
	defaultLimit int
	maxLimit     int
	now          func() time.Time
}

// RunRequest selects one page of stories.
type RunRequest struct {
	Offset int
	Limit  int
	// Source restricts the run to one configured feed; empty means all.
	Source string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		source:       deps.Source,
		filter:       deps.Filter,
		extractor:    deps.Extractor,
		rewriter:     deps.Rewriter,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
		attribution:  deps.Attribution,
		baseURL:      deps.BaseURL,
		defaultLimit: deps.DefaultLimit,
		maxLimit:     deps.MaxLimit,
		now:          time.Now,
	}
	if p.filter == nil {
		p.filter = admission.NewFilter(admission.Config{SimilarityThreshold: 1})
	}
	if p.metrics == nil {
		p.metrics = noopMetrics{}
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	if p.defaultLimit <= 0 {
		p.defaultLimit = fallbackDefaultLimit
	}
	if p.maxLimit <= 0 {
		p.maxLimit = fallbackMaxLimit
	}
	return p
}

// Sources lists the configured feed names.
func (p *Pipeline) Sources() []string {
	if p.source == nil {
		return nil
	}
	return p.source.Sources()
}

// Run fetches, admits, extracts, and rewrites entries until the limit is met.
// Entry failures are logged and skipped; only a feed failure or a cancelled
// context aborts the run.
func (p *Pipeline) Run(ctx context.Context, req RunRequest) (domain.RunResult, error) {
	if p.source == nil || p.extractor == nil || p.rewriter == nil {
		return domain.RunResult{}, fmt.Errorf("pipeline misconfigured")
	}

	started := p.now()
	defer func() { p.metrics.ObserveRun(p.now().Sub(started)) }()

	entries, err := p.source.Fetch(ctx, req.Source)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("fetch feeds: %w", err)
	}

	admission.SortByRecency(entries)
	admitted := p.filter.Admit(entries, admission.NewState())

	limit := p.limit(req.Limit)
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	result := domain.RunResult{
		Stories: make([]domain.StoryRecord, 0, limit),
		Stats: domain.RunStats{
			Fetched:  len(entries),
			Admitted: len(admitted),
		},
	}

	rewriteAttempts := 0
	next := offset
	for ; next < len(admitted) && len(result.Stories) < limit; next++ {
		if err := ctx.Err(); err != nil {
			return domain.RunResult{}, err
		}

		entry := admitted[next]
		result.Stats.Attempted++

		article, err := p.extractor.Extract(ctx, entry.Link)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return domain.RunResult{}, ctxErr
			}
			result.Stats.ExtractionFailures++
			p.extractionFailed(entry, err)
			continue
		}

		rewriteAttempts++
		rewritten, err := p.rewriter.Rewrite(ctx, article.Text, entry.Title)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return domain.RunResult{}, ctxErr
			}
			result.Stats.RewriteFailures++
			p.rewriteFailed(entry, err)
			continue
		}

		story := p.assemble(entry, rewritten)
		p.metrics.StoryBuilt(entry.Source)
		result.Stories = append(result.Stories, story)
	}

	result.NextOffset = next
	result.HasMore = next < len(admitted)

	if len(result.Stories) == 0 {
		switch {
		case offset >= len(admitted):
			result.EmptyReason = domain.EmptyNoEligibleContent
		case rewriteAttempts == 0:
			result.EmptyReason = domain.EmptyAllExtractionsFailed
		default:
			result.EmptyReason = domain.EmptyAllRewritesFailed
		}
	}

	p.logger.Info("run finished",
		"source", req.Source,
		"offset", offset,
		"limit", limit,
		"fetched", result.Stats.Fetched,
		"admitted", result.Stats.Admitted,
		"attempted", result.Stats.Attempted,
		"stories", len(result.Stories),
		"has_more", result.HasMore,
		"reason", result.EmptyReason,
	)
	return result, nil
}

// Article rebuilds the story behind one deep link and appends a link to the original.
func (p *Pipeline) Article(ctx context.Context, originalURL, title string) (domain.StoryRecord, error) {
	if err := ValidateArticleURL(originalURL); err != nil {
		return domain.StoryRecord{}, err
	}
	if p.extractor == nil || p.rewriter == nil {
		return domain.StoryRecord{}, fmt.Errorf("pipeline misconfigured")
	}

	article, err := p.extractor.Extract(ctx, originalURL)
	if err != nil {
		return domain.StoryRecord{}, fmt.Errorf("extract article: %w", err)
	}
	rewritten, err := p.rewriter.Rewrite(ctx, article.Text, title)
	if err != nil {
		return domain.StoryRecord{}, fmt.Errorf("rewrite article: %w", err)
	}

	story := p.assemble(domain.FeedEntry{Title: title, Link: originalURL}, rewritten)
	story.Summary += "\n\n" + sourceLinkBlock(originalURL)
	return story, nil
}

func (p *Pipeline) assemble(entry domain.FeedEntry, rewritten domain.RewriteResult) domain.StoryRecord {
	story := domain.StoryRecord{
		Title:       rewritten.Title,
		Summary:     rewritten.Body,
		Link:        BuildDeepLink(p.baseURL, entry.Link, entry.Title),
		OriginalURL: entry.Link,
		Source:      entry.Source,
	}
	if p.attribution.Required(rewritten.Body, entry.Link) {
		story.Summary += "\n\n" + attributionBlock(entry.Link)
		story.Attributed = true
	}
	return story
}

func (p *Pipeline) limit(requested int) int {
	if requested <= 0 {
		return p.defaultLimit
	}
	if requested > p.maxLimit {
		return p.maxLimit
	}
	return requested
}

func (p *Pipeline) extractionFailed(entry domain.FeedEntry, err error) {
	reason := string(domain.ExtractionFetchOrParse)
	var failure *domain.ExtractionFailure
	if errors.As(err, &failure) {
		reason = string(failure.Reason)
	}
	p.metrics.ExtractionFailed(reason)
	p.logger.Warn("skip entry: extraction failed", "url", entry.Link, "reason", reason, "error", err)
}

func (p *Pipeline) rewriteFailed(entry domain.FeedEntry, err error) {
	reason := string(domain.RewriteTransport)
	var failure *domain.RewriteFailure
	if errors.As(err, &failure) {
		reason = string(failure.Reason)
	}
	p.metrics.RewriteFailed(reason)
	p.logger.Warn("skip entry: rewrite failed", "url", entry.Link, "reason", reason, "error", err)
}

type noopMetrics struct{}

func (noopMetrics) AdmissionRejected(string) {}
func (noopMetrics) ExtractionFailed(string)  {}
func (noopMetrics) RewriteFailed(string)     {}
func (noopMetrics) StoryBuilt(string)        {}
func (noopMetrics) PublishAttempt(string)    {}
func (noopMetrics) ObserveRun(time.Duration) {}
