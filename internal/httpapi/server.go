// Package httpapi is the thin HTTP presentation layer over the pipeline and publisher.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"FeedRewriter/internal/domain"
	"FeedRewriter/internal/logging"
	"FeedRewriter/internal/usecase"
)

// StoryService is the read side served by the API.
type StoryService interface {
	Run(ctx context.Context, req usecase.RunRequest) (domain.RunResult, error)
	Article(ctx context.Context, originalURL, title string) (domain.StoryRecord, error)
	Sources() []string
}

// PublishService creates drafts on behalf of an admin.
type PublishService interface {
	Publish(ctx context.Context, req usecase.PublishRequest) (domain.Published, error)
	Enabled() bool
}

// RouterDeps wires the handlers.
type RouterDeps struct {
	Stories   StoryService
	Publisher PublishService
	// Metrics serves /metrics when set.
	Metrics http.Handler
	Logger  *slog.Logger
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = logging.Discard()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(log))

	h := &handlers{storySvc: deps.Stories, publishSvc: deps.Publisher}

	r.GET("/healthz", h.health)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}
	r.GET(usecase.ArticlePath, h.article)

	api := r.Group("/api")
	api.GET("/sources", h.sources)
	api.GET("/stories", h.stories)
	api.POST("/publish", h.publish)

	return r
}
