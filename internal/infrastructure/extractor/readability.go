package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/time/rate"

	"FeedRewriter/internal/config"
	"FeedRewriter/internal/domain"
	"FeedRewriter/internal/ports"
)

const (
	defaultTimeout  = 20 * time.Second
	defaultMinWords = 50
	defaultMaxBytes = 8 << 20
)

// paragraphSelector picks the blocks that carry readable prose.
const paragraphSelector = "p, h2, h3, h4, li, blockquote"

// Readability downloads an article page and keeps its main text.
type Readability struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	minWords  int
	maxBytes  int64
	logger    *slog.Logger
}

var _ ports.Extractor = (*Readability)(nil)

// Option customises the extractor.
type Option func(*Readability)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Readability) {
		if client != nil {
			r.client = client
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Readability) {
		r.logger = log
	}
}

// New builds an extractor from configuration.
func New(cfg config.ExtractorConfig, opts ...Option) *Readability {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	minWords := cfg.MinWords
	if minWords <= 0 {
		minWords = defaultMinWords
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	r := &Readability{
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		minWords:  minWords,
		maxBytes:  maxBytes,
	}
	if cfg.FetchesPerSecond > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.FetchesPerSecond), 1)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Extract fetches rawURL and returns its paragraph text.
// Every failure is an *domain.ExtractionFailure.
func (r *Readability) Extract(ctx context.Context, rawURL string) (domain.ExtractedArticle, error) {
	fail := func(err error) (domain.ExtractedArticle, error) {
		return domain.ExtractedArticle{}, &domain.ExtractionFailure{
			Reason: domain.ExtractionFetchOrParse,
			URL:    rawURL,
			Err:    err,
		}
	}

	pageURL, err := url.Parse(rawURL)
	if err != nil || pageURL.Host == "" {
		if err == nil {
			err = fmt.Errorf("url has no host")
		}
		return fail(err)
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return fail(err)
		}
	}

	page, err := r.download(ctx, rawURL)
	if err != nil {
		return fail(err)
	}

	article, err := readability.FromReader(bytes.NewReader(page), pageURL)
	if err != nil {
		return fail(fmt.Errorf("readability: %w", err))
	}

	text, err := paragraphText(article.Content)
	if err != nil {
		return fail(err)
	}
	if text == "" {
		text = strings.TrimSpace(article.TextContent)
	}

	words := len(strings.Fields(text))
	if words < r.minWords {
		if r.logger != nil {
			r.logger.Debug("article too short", "url", rawURL, "words", words)
		}
		return domain.ExtractedArticle{}, &domain.ExtractionFailure{
			Reason: domain.ExtractionTooShort,
			URL:    rawURL,
			Words:  words,
		}
	}

	return domain.ExtractedArticle{URL: rawURL, Text: text, Words: words}, nil
}

func (r *Readability) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch page: unexpected status %d", resp.StatusCode)
	}

	return readLimited(resp.Body, r.maxBytes)
}

// readLimited fails instead of truncating when the body exceeds limit.
func readLimited(body io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("page exceeds %d bytes", limit)
	}
	return data, nil
}

// paragraphText joins the non-empty prose blocks of fragment with blank lines.
// Nested matches (a <p> inside a <blockquote>) are taken once, from the outer block.
func paragraphText(fragment string) (string, error) {
	if strings.TrimSpace(fragment) == "" {
		return "", nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parse content: %w", err)
	}

	var blocks []string
	doc.Find(paragraphSelector).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(paragraphSelector).Length() > 0 {
			return
		}
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text != "" {
			blocks = append(blocks, text)
		}
	})
	return strings.Join(blocks, "\n\n"), nil
}
