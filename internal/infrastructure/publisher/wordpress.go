package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"FeedRewriter/internal/config"
	"FeedRewriter/internal/domain"
	"FeedRewriter/internal/ports"
)

const (
	maxResponseBody = 1 << 20
	maxErrorBody    = 4096
)

var internalBlocks = []*regexp.Regexp{
	blockPattern(domain.AttributionOpen, domain.AttributionClose),
	blockPattern(domain.SourceLinkOpen, domain.SourceLinkClose),
}

func blockPattern(openMarker, closeMarker string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)\s*` + regexp.QuoteMeta(openMarker) + `.*?` + regexp.QuoteMeta(closeMarker))
}

// StripInternalMarkup removes attribution and source-link blocks.
// Text without markers comes back unchanged.
func StripInternalMarkup(body string) string {
	stripped := body
	changed := false
	for _, re := range internalBlocks {
		if re.MatchString(stripped) {
			stripped = re.ReplaceAllString(stripped, "")
			changed = true
		}
	}
	if !changed {
		return body
	}
	return strings.TrimSpace(stripped)
}

// Client creates draft posts through the WordPress REST API.
type Client struct {
	endpoint string
	username string
	password string
	client   *http.Client
	policy   *bluemonday.Policy
}

var _ ports.Publisher = (*Client)(nil)

// NewClient registers the posts endpoint and basic-auth credentials.
func NewClient(cfg config.PublisherConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		username: cfg.Username,
		password: cfg.Password,
		client:   &http.Client{Timeout: timeout},
		policy:   bluemonday.UGCPolicy(),
	}
}

type draftRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

type draftResponse struct {
	ID   int64  `json:"id"`
	Link string `json:"link"`
}

// Publish posts title and body as a draft. Only 201 Created counts as success;
// the backend response of any other status is returned in a *domain.PublishFailure.
func (c *Client) Publish(ctx context.Context, title, body string) (domain.Published, error) {
	if c.endpoint == "" || c.client == nil {
		return domain.Published{}, &domain.PublishFailure{Err: fmt.Errorf("publisher misconfigured")}
	}

	content := c.policy.Sanitize(paragraphs(StripInternalMarkup(body)))
	payload, err := json.Marshal(draftRequest{
		Title:   strings.TrimSpace(title),
		Content: content,
		Status:  "draft",
	})
	if err != nil {
		return domain.Published{}, fmt.Errorf("marshal draft: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.Published{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Published{}, &domain.PublishFailure{Err: fmt.Errorf("do request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.Published{}, &domain.PublishFailure{
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(raw)),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return domain.Published{}, fmt.Errorf("read draft response: %w", err)
	}

	var created draftResponse
	if err := json.Unmarshal(raw, &created); err != nil {
		return domain.Published{}, fmt.Errorf("decode draft response: %w", err)
	}
	return domain.Published{ID: created.ID, Link: created.Link}, nil
}

// paragraphs wraps plain-text paragraphs in <p>; markup passes through.
func paragraphs(body string) string {
	if strings.Contains(body, "<p") {
		return body
	}
	parts := strings.Split(body, "\n\n")
	var b strings.Builder
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(part)
		b.WriteString("</p>")
	}
	return b.String()
}
