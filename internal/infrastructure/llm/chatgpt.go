package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"FeedRewriter/internal/config"
	"FeedRewriter/internal/domain"
	"FeedRewriter/internal/ports"
)

// maxAttempts is the first call plus one retry.
const maxAttempts = 2

const defaultTimeout = 60 * time.Second

const promptTemplate = `Rewrite the following news article as an original story for a hip-hop news blog.

RULES:
- Write in the third person, in AP style.
- Aim for 250 to 300 words and never exceed 300 words.
- Keep every paragraph to 6 lines or fewer.
- Keep direct quotes exactly as they appear, word for word.
- Never use the first person.
- Never mention or refer to the original publication or its writers.
- Do not add facts that are not in the article.

ORIGINAL TITLE: %s

ARTICLE:
---
%s
---

Reply in exactly this format and nothing else:
TITLE: <new headline on one line>
CONTENT:
<rewritten story>`

var (
	titlePattern   = regexp.MustCompile(`(?s)TITLE:(.*?)(?:CONTENT:|$)`)
	contentPattern = regexp.MustCompile(`(?s)CONTENT:(.*)`)
)

var errMalformed = errors.New("response does not follow the TITLE/CONTENT format")

// Client implements ports.Rewriter backed by an OpenAI-compatible chat completions API.
type Client struct {
	api         *openai.Client
	endpoint    string
	model       string
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

var _ ports.Rewriter = (*Client)(nil)

// NewClient builds a client from configuration. A nil logger disables logging.
func NewClient(cfg config.RewriteConfig, log *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = BaseURL(cfg.Endpoint)
	apiCfg.HTTPClient = &http.Client{Timeout: timeout}

	temperature := float32(cfg.Temperature)
	if temperature == 0 {
		// go-openai omits a zero temperature, which the API reads as 1.
		temperature = math.SmallestNonzeroFloat32
	}

	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		temperature: temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      log,
	}
}

// BaseURL turns a configured endpoint into the API root go-openai expects.
// Both "https://host/v1" and "https://host/v1/chat/completions" are accepted.
func BaseURL(endpoint string) string {
	base := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	return strings.TrimSuffix(base, "/chat/completions")
}

// Rewrite turns extracted article text into a new title and body.
// The call is retried once on a malformed answer or a service error.
func (c *Client) Rewrite(ctx context.Context, text, originalTitle string) (domain.RewriteResult, error) {
	if c == nil {
		return domain.RewriteResult{}, fmt.Errorf("rewrite client is nil")
	}
	if c.endpoint == "" || c.model == "" {
		return domain.RewriteResult{}, &domain.RewriteFailure{
			Reason: domain.RewriteTransport,
			Err:    fmt.Errorf("rewrite client misconfigured"),
		}
	}

	prompt := BuildPrompt(text, originalTitle)

	var (
		reason  domain.RewriteReason
		lastErr error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.RewriteResult{}, &domain.RewriteFailure{Reason: domain.RewriteTransport, Attempts: attempt - 1, Err: err}
		}

		raw, err := c.complete(ctx, prompt)
		if err != nil {
			reason, lastErr = domain.RewriteTransport, err
			c.warn("rewrite call failed", attempt, err)
			continue
		}

		result, err := ParseResponse(raw)
		if err != nil {
			reason, lastErr = domain.RewriteMalformed, err
			c.warn("rewrite response malformed", attempt, err)
			continue
		}
		return result, nil
	}

	return domain.RewriteResult{}, &domain.RewriteFailure{Reason: reason, Attempts: maxAttempts, Err: lastErr}
}

// BuildPrompt renders the rewrite instructions around the article text.
func BuildPrompt(text, originalTitle string) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(originalTitle), strings.TrimSpace(text))
}

// ParseResponse extracts the title and body from a TITLE/CONTENT answer.
// Both markers must be present and both fields non-empty.
func ParseResponse(raw string) (domain.RewriteResult, error) {
	titleMatch := titlePattern.FindStringSubmatch(raw)
	contentMatch := contentPattern.FindStringSubmatch(raw)
	if titleMatch == nil || contentMatch == nil {
		return domain.RewriteResult{}, &domain.RewriteFailure{Reason: domain.RewriteMalformed, Attempts: 1, Err: errMalformed}
	}

	title := firstLine(titleMatch[1])
	body := strings.TrimSpace(contentMatch[1])
	if title == "" || body == "" {
		return domain.RewriteResult{}, &domain.RewriteFailure{Reason: domain.RewriteMalformed, Attempts: 1, Err: errMalformed}
	}
	return domain.RewriteResult{Title: title, Body: body}, nil
}

// firstLine returns the first line with text, skipping "---" separators.
func firstLine(segment string) string {
	for _, line := range strings.Split(segment, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Trim(line, "-") == "" {
			continue
		}
		return line
	}
	return ""
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("rewrite service: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("rewrite response has no choices")
	}
	if c.logger != nil {
		c.logger.Debug("rewrite completed",
			"model", c.model,
			"prompt_tokens", resp.Usage.PromptTokens,
			"completion_tokens", resp.Usage.CompletionTokens,
		)
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) warn(msg string, attempt int, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, "attempt", attempt, "max_attempts", maxAttempts, "error", err)
	}
}
