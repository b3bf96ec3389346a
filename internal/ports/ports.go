package ports

import (
	"context"
	"time"

	"FeedRewriter/internal/domain"
)

// FeedSource pulls candidate entries from the configured feeds.
// An empty source name means every feed.
type FeedSource interface {
	Fetch(ctx context.Context, source string) ([]domain.FeedEntry, error)
	Sources() []string
}

// Extractor turns an article URL into plain text or a *domain.ExtractionFailure.
type Extractor interface {
	Extract(ctx context.Context, url string) (domain.ExtractedArticle, error)
}

// Rewriter restyles article text or returns a *domain.RewriteFailure.
type Rewriter interface {
	Rewrite(ctx context.Context, text, originalTitle string) (domain.RewriteResult, error)
}

// Publisher creates draft posts on the blog backend.
type Publisher interface {
	Publish(ctx context.Context, title, body string) (domain.Published, error)
}

// PublishGuard refuses repeated publishes of the same story within a window.
type PublishGuard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Metrics receives pipeline counters.
type Metrics interface {
	AdmissionRejected(reason string)
	ExtractionFailed(reason string)
	RewriteFailed(reason string)
	StoryBuilt(source string)
	PublishAttempt(outcome string)
	ObserveRun(d time.Duration)
}
