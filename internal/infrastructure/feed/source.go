package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"FeedRewriter/internal/config"
	"FeedRewriter/internal/domain"
	"FeedRewriter/internal/ports"
)

// ErrUnknownSource is returned when a caller asks for a feed name that is not configured.
var ErrUnknownSource = errors.New("unknown feed source")

// Source implements ports.FeedSource over configured RSS/Atom feeds.
type Source struct {
	feeds     []config.FeedConfig
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

var _ ports.FeedSource = (*Source)(nil)

// NewSource wires gofeed with an HTTP client; a nil client gets a 20s timeout.
func NewSource(feeds []config.FeedConfig, client *http.Client, userAgent string, log *slog.Logger) *Source {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Source{feeds: feeds, client: client, userAgent: userAgent, logger: log}
}

// newParser returns a parser for one Fetch call. gofeed.Parser caches its
// translators on first use and must not be shared between goroutines.
func (s *Source) newParser() *gofeed.Parser {
	parser := gofeed.NewParser()
	parser.Client = s.client
	if s.userAgent != "" {
		parser.UserAgent = s.userAgent
	}
	return parser
}

// Sources lists the configured feed names.
func (s *Source) Sources() []string {
	names := make([]string, 0, len(s.feeds))
	for _, f := range s.feeds {
		names = append(names, f.Name)
	}
	return names
}

// Fetch reads every configured feed, or only the one named source.
// A failing feed is skipped as long as another one answers; when all fail the
// last error is returned.
func (s *Source) Fetch(ctx context.Context, source string) ([]domain.FeedEntry, error) {
	feeds, err := s.selectFeeds(source)
	if err != nil {
		return nil, err
	}

	parser := s.newParser()
	var (
		aggregated []domain.FeedEntry
		lastErr    error
		succeeded  int
	)
	for _, f := range feeds {
		s.debug("fetch feed", "feed", f.Name, "url", f.URL)

		parsed, err := parser.ParseURLWithContext(f.URL, ctx)
		if err != nil {
			lastErr = fmt.Errorf("feed %s: %w", f.Name, err)
			if s.logger != nil {
				s.logger.Warn("feed unavailable", "feed", f.Name, "error", err)
			}
			continue
		}
		succeeded++

		entries := toEntries(parsed, f.Name)
		s.debug("feed produced entries", "feed", f.Name, "count", len(entries), "items", len(parsed.Items))
		aggregated = append(aggregated, entries...)
	}

	if succeeded == 0 && lastErr != nil {
		return nil, lastErr
	}
	return aggregated, nil
}

func (s *Source) selectFeeds(source string) ([]config.FeedConfig, error) {
	if source == "" {
		return s.feeds, nil
	}
	for _, f := range s.feeds {
		if strings.EqualFold(f.Name, source) {
			return []config.FeedConfig{f}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
}

// toEntries drops items without a title or link.
func toEntries(parsed *gofeed.Feed, sourceName string) []domain.FeedEntry {
	entries := make([]domain.FeedEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}

		var published *time.Time
		if item.PublishedParsed != nil {
			published = item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = item.UpdatedParsed
		}

		entries = append(entries, domain.FeedEntry{
			Title:     title,
			Link:      link,
			Published: published,
			Source:    sourceName,
		})
	}
	return entries
}

func (s *Source) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
