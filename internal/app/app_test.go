package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeedRewriter/internal/config"
	"FeedRewriter/internal/domain"
	"FeedRewriter/internal/logging"
	"FeedRewriter/internal/usecase"
)

const articleHTML = `<html><head><title>Story</title></head><body><article><h1>Story</h1>
<p>The rapper announced a surprise project on Friday morning, telling fans that the record had been finished in a small studio over the course of three weeks with a handful of close collaborators.</p>
<p>According to the announcement, the project includes eight songs and features guest verses from several artists who have worked with the rapper since the early mixtape days in the city.</p>
<p>Fans reacted quickly online, and the lead single climbed streaming charts within hours while the accompanying video gathered millions of views before the end of the weekend.</p>
</article></body></html>`

type world struct {
	upstream     *httptest.Server
	rewriteCalls int32
	publishCalls int32
}

func newWorld(t *testing.T) *world {
	t.Helper()

	w := &world{}
	mux := http.NewServeMux()
	mux.HandleFunc("/feed.xml", func(rw http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		base := "http://" + r.Host
		fmt.Fprintf(rw, `<?xml version="1.0"?><rss version="2.0"><channel><title>t</title><link>%[1]s</link><description>d</description>
<item><title>Artist drops surprise EP</title><link>%[1]s/story/ep</link><pubDate>%[2]s</pubDate></item>
<item><title>Label dispute heads to court</title><link>%[1]s/story/court</link><pubDate>%[3]s</pubDate></item>
<item><title>A Timeline of X</title><link>%[1]s/story/timeline</link><pubDate>%[2]s</pubDate></item>
</channel></rss>`, base, now.Add(-2*time.Hour).Format(time.RFC1123Z), now.Add(-96*time.Hour).Format(time.RFC1123Z))
	})
	mux.HandleFunc("/story/", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = rw.Write([]byte(articleHTML))
	})
	mux.HandleFunc("/v1/chat/completions", func(rw http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&w.rewriteCalls, 1)
		_ = json.NewEncoder(rw).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{
				"role":    "assistant",
				"content": "TITLE: Surprise EP lands\nCONTENT:\nThe artist said the EP is out now.",
			}}},
		})
	})
	mux.HandleFunc("/wp-json/wp/v2/posts", func(rw http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&w.publishCalls, 1)
		rw.WriteHeader(http.StatusCreated)
		fmt.Fprintf(rw, `{"id":%d,"link":"https://blog.example.com/?p=%d"}`, n, n)
	})
	w.upstream = httptest.NewServer(mux)
	t.Cleanup(w.upstream.Close)
	return w
}

func (w *world) config(t *testing.T) config.Config {
	t.Helper()

	cfg, err := config.Parse(nil)
	require.NoError(t, err)

	cfg.Feeds = []config.FeedConfig{{Name: "Local", URL: w.upstream.URL + "/feed.xml"}}
	cfg.Extractor.FetchesPerSecond = 0
	cfg.Rewrite.Endpoint = w.upstream.URL + "/v1/chat/completions"
	cfg.Rewrite.APIKey = "test-key"
	cfg.Server.BaseURL = "https://rewriter.example.com"
	cfg.Publisher.Endpoint = w.upstream.URL + "/wp-json/wp/v2/posts"
	cfg.Admin.Password = "letmein"
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	cfg.Rewrite.APIKey = ""

	_, err = New(cfg, logging.Discard())
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	application, err := New(w.config(t), logging.Discard(), WithHTTPClient(w.upstream.Client()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	result, err := application.Run(context.Background(), usecase.RunRequest{Limit: 5})
	require.NoError(t, err)

	require.Len(t, result.Stories, 1)
	story := result.Stories[0]
	assert.Equal(t, "Surprise EP lands", story.Title)
	assert.True(t, story.Attributed, "body contains \"said\"")
	assert.Contains(t, story.Summary, domain.AttributionOpen)
	assert.Equal(t, w.upstream.URL+"/story/ep", story.OriginalURL)
	assert.True(t, strings.HasPrefix(story.Link, "https://rewriter.example.com/article?"))
	assert.False(t, result.HasMore)
	assert.EqualValues(t, 1, atomic.LoadInt32(&w.rewriteCalls))
}

func TestHandlerServesStoriesAndPublishes(t *testing.T) {
	t.Parallel()

	w := newWorld(t)
	mr := miniredis.RunT(t)

	cfg := w.config(t)
	cfg.Guard.Addr = mr.Addr()

	application, err := New(cfg, logging.Discard(), WithHTTPClient(w.upstream.Client()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })
	handler := application.Handler()
	assert.Equal(t, "letmein", application.Config().Admin.Password)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stories?limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Surprise EP lands")

	publish := func(password string) int {
		body := fmt.Sprintf(`{"password":%q,"title":"Surprise EP lands","body":"Text"}`, password)
		req := httptest.NewRequest(http.MethodPost, "/api/publish", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, publish("wrong"))
	assert.Equal(t, http.StatusCreated, publish("letmein"))
	assert.Equal(t, http.StatusConflict, publish("letmein"))
	assert.EqualValues(t, 1, atomic.LoadInt32(&w.publishCalls))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `feedrewriter_publish_attempts_total{outcome="created"} 1`)
	assert.Contains(t, rec.Body.String(), `feedrewriter_admission_rejected_total{reason="stale"} 1`)
}
