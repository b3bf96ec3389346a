package domain

import "time"

// FeedEntry is a candidate item read from a configured feed.
type FeedEntry struct {
	Title     string
	Link      string
	Published *time.Time
	Source    string
}

// HasTimestamp reports whether the feed supplied a publication time.
func (e FeedEntry) HasTimestamp() bool {
	return e.Published != nil && !e.Published.IsZero()
}

// ExtractedArticle holds the plain text pulled from an entry's link.
type ExtractedArticle struct {
	URL   string
	Text  string
	Words int
}

// RewriteResult is the restyled article produced by the rewrite service.
type RewriteResult struct {
	Title string
	Body  string
}

// StoryRecord is the externally visible unit produced by a run.
type StoryRecord struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Link        string `json:"link"`
	OriginalURL string `json:"original_url"`
	Source      string `json:"source,omitempty"`
	Attributed  bool   `json:"attributed"`
}

// EmptyReason explains why a run produced no stories.
type EmptyReason string

const (
	EmptyNone                 EmptyReason = ""
	EmptyNoEligibleContent    EmptyReason = "no_eligible_content"
	EmptyAllExtractionsFailed EmptyReason = "all_extractions_failed"
	EmptyAllRewritesFailed    EmptyReason = "all_rewrites_failed"
)

// RunStats counts what happened to candidates during one run.
type RunStats struct {
	Fetched            int `json:"fetched"`
	Admitted           int `json:"admitted"`
	Attempted          int `json:"attempted"`
	ExtractionFailures int `json:"extraction_failures"`
	RewriteFailures    int `json:"rewrite_failures"`
}

// RunResult is what one pipeline run returns.
type RunResult struct {
	Stories     []StoryRecord `json:"stories"`
	HasMore     bool          `json:"has_more"`
	NextOffset  int           `json:"next_offset"`
	EmptyReason EmptyReason   `json:"reason,omitempty"`
	Stats       RunStats      `json:"stats"`
}

// Published describes a draft created on the publishing backend.
type Published struct {
	ID   int64  `json:"id"`
	Link string `json:"link"`
}
