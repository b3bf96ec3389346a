package usecase

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"FeedRewriter/internal/admission"
	"FeedRewriter/internal/domain"
	"FeedRewriter/internal/logging"
	"FeedRewriter/internal/ports"
)

var (
	// ErrPublishingDisabled is returned when no backend is configured.
	ErrPublishingDisabled = errors.New("publishing is not configured")
	// ErrEmptyStory rejects a publish request without title or body.
	ErrEmptyStory = errors.New("title and body are required")
)

// Publish outcomes reported to metrics.
const (
	OutcomeCreated      = "created"
	OutcomeRejected     = "rejected"
	OutcomeUnauthorized = "unauthorized"
	OutcomeDuplicate    = "duplicate"
	OutcomeInvalid      = "invalid"
)

// PublisherDeps wires the publish use case.
type PublisherDeps struct {
	Backend       ports.Publisher
	Guard         ports.PublishGuard
	Metrics       ports.Metrics
	Logger        *slog.Logger
	AdminPassword string
	GuardTTL      time.Duration
}

// Publisher sends an edited story to the blog backend as a draft on behalf of an admin.
type Publisher struct {
	backend  ports.Publisher
	guard    ports.PublishGuard
	metrics  ports.Metrics
	logger   *slog.Logger
	password []byte
	guardTTL time.Duration
}

// PublishRequest is what the admin submits.
type PublishRequest struct {
	Password string
	Title    string
	Body     string
}

func NewPublisher(deps PublisherDeps) *Publisher {
	u := &Publisher{
		backend:  deps.Backend,
		guard:    deps.Guard,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		password: []byte(deps.AdminPassword),
		guardTTL: deps.GuardTTL,
	}
	if u.metrics == nil {
		u.metrics = noopMetrics{}
	}
	if u.logger == nil {
		u.logger = logging.Discard()
	}
	if u.guardTTL <= 0 {
		u.guardTTL = 10 * time.Minute
	}
	return u
}

// Enabled reports whether a backend and an admin password are configured.
func (u *Publisher) Enabled() bool {
	return u != nil && u.backend != nil && len(u.password) > 0
}

// Publish checks the password, takes the duplicate guard, and creates the draft.
// Backend rejections come back as *domain.PublishFailure and are never retried.
func (u *Publisher) Publish(ctx context.Context, req PublishRequest) (domain.Published, error) {
	if !u.Enabled() {
		return domain.Published{}, ErrPublishingDisabled
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), u.password) != 1 {
		u.metrics.PublishAttempt(OutcomeUnauthorized)
		u.logger.Warn("publish refused: bad password")
		return domain.Published{}, domain.ErrUnauthorized
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Body) == "" {
		u.metrics.PublishAttempt(OutcomeInvalid)
		return domain.Published{}, ErrEmptyStory
	}

	key := guardKey(req.Title)
	if u.guard != nil {
		ok, err := u.guard.Acquire(ctx, key, u.guardTTL)
		if err != nil {
			return domain.Published{}, fmt.Errorf("publish guard: %w", err)
		}
		if !ok {
			u.metrics.PublishAttempt(OutcomeDuplicate)
			u.logger.Info("publish refused: duplicate", "title", req.Title)
			return domain.Published{}, domain.ErrDuplicatePublish
		}
	}

	published, err := u.backend.Publish(ctx, req.Title, req.Body)
	if err != nil {
		u.metrics.PublishAttempt(OutcomeRejected)
		u.logger.Error("publish failed", "title", req.Title, "error", err)
		if u.guard != nil {
			// The caller may be gone; the lock must still be dropped.
			if relErr := u.guard.Release(context.WithoutCancel(ctx), key); relErr != nil {
				u.logger.Warn("release publish guard", "error", relErr)
			}
		}
		return domain.Published{}, err
	}

	u.metrics.PublishAttempt(OutcomeCreated)
	u.logger.Info("draft created", "id", published.ID, "link", published.Link)
	return published, nil
}

func guardKey(title string) string {
	sum := sha256.Sum256([]byte(admission.NormalizeTitle(title)))
	return hex.EncodeToString(sum[:])
}
