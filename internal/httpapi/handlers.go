package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"FeedRewriter/internal/domain"
	"FeedRewriter/internal/usecase"
)

type handlers struct {
	storySvc   StoryService
	publishSvc PublishService
}

type errorResponse struct {
	Error string `json:"error"`
	// Status and Body echo a rejected backend response.
	Status int    `json:"status,omitempty"`
	Body   string `json:"body,omitempty"`
}

type publishRequest struct {
	Password string `json:"password"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

type publishResponse struct {
	ID   int64  `json:"id"`
	Link string `json:"link"`
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) sources(c *gin.Context) {
	sources := h.storySvc.Sources()
	if sources == nil {
		sources = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"sources": sources})
}

func (h *handlers) stories(c *gin.Context) {
	offset, err := queryInt(c, "offset")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "offset must be a non-negative integer"})
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
		return
	}

	source := strings.TrimSpace(c.Query("source"))
	if source != "" && !h.knownSource(source) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "unknown source " + strconv.Quote(source)})
		return
	}

	result, err := h.storySvc.Run(c.Request.Context(), usecase.RunRequest{Offset: offset, Limit: limit, Source: source})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, errorResponse{Error: "could not load stories: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) article(c *gin.Context) {
	originalURL := c.Query("url")
	title := c.Query("title")
	if err := usecase.ValidateArticleURL(originalURL); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	story, err := h.storySvc.Article(c.Request.Context(), originalURL, title)
	if err != nil {
		_ = c.Error(err)

		var extraction *domain.ExtractionFailure
		switch {
		case errors.Is(err, usecase.ErrBadDeepLink):
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.As(err, &extraction):
			c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, story)
}

func (h *handlers) publish(c *gin.Context) {
	if h.publishSvc == nil || !h.publishSvc.Enabled() {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: usecase.ErrPublishingDisabled.Error()})
		return
	}

	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	published, err := h.publishSvc.Publish(c.Request.Context(), usecase.PublishRequest{
		Password: req.Password,
		Title:    req.Title,
		Body:     req.Body,
	})
	if err != nil {
		_ = c.Error(err)

		var failure *domain.PublishFailure
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, errorResponse{Error: err.Error()})
		case errors.Is(err, usecase.ErrEmptyStory):
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrDuplicatePublish):
			c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
		case errors.Is(err, usecase.ErrPublishingDisabled):
			c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		case errors.As(err, &failure):
			c.JSON(http.StatusBadGateway, errorResponse{Error: failure.Error(), Status: failure.Status, Body: failure.Body})
		default:
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "publish failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, publishResponse{ID: published.ID, Link: published.Link})
}

func (h *handlers) knownSource(name string) bool {
	for _, s := range h.storySvc.Sources() {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// queryInt parses an optional non-negative integer query parameter; absent means 0.
func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errors.New("negative value")
	}
	return v, nil
}
