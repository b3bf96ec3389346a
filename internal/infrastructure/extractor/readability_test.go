package extractor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeedRewriter/internal/config"
	"FeedRewriter/internal/domain"
)

var longParagraphs = []string{
	"The rapper announced a surprise project on Friday morning, telling fans that the record had been finished in a small studio over the course of three weeks with a handful of close collaborators.",
	"According to the announcement, the project includes eight songs and features guest verses from several artists who have worked with the rapper since the early mixtape days in the city.",
	"Fans reacted quickly online, and the lead single climbed streaming charts within hours while the accompanying video gathered millions of views before the end of the weekend.",
	"A tour supporting the release is expected later this year, with dates to be shared once the venues are confirmed by the management team and the label partners.",
}

func articlePage(paragraphs []string) string {
	var b strings.Builder
	b.WriteString("<html><head><title>News</title></head><body>")
	b.WriteString("<nav><a href=\"/\">Home</a><a href=\"/news\">News</a></nav>")
	b.WriteString("<article><h1>Surprise project</h1>")
	for _, p := range paragraphs {
		b.WriteString("<p>")
		b.WriteString(p)
		b.WriteString("</p>")
	}
	b.WriteString("</article><footer>Copyright</footer></body></html>")
	return b.String()
}

func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/long", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articlePage(longParagraphs)))
	})
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articlePage([]string{"Only a few words here."})))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/agent", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "FeedRewriter/test" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(articlePage(longParagraphs)))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func failureReason(t *testing.T, err error) domain.ExtractionReason {
	t.Helper()

	var failure *domain.ExtractionFailure
	require.True(t, errors.As(err, &failure), "expected ExtractionFailure, got %v", err)
	return failure.Reason
}

func TestExtractReturnsParagraphText(t *testing.T) {
	t.Parallel()

	server := newPageServer(t)
	ex := New(config.ExtractorConfig{MinWords: 50}, WithHTTPClient(server.Client()))

	article, err := ex.Extract(context.Background(), server.URL+"/long")
	require.NoError(t, err)

	assert.Equal(t, server.URL+"/long", article.URL)
	assert.GreaterOrEqual(t, article.Words, 50)
	assert.Contains(t, article.Text, "surprise project on Friday morning")
	assert.Contains(t, article.Text, "\n\n")
	assert.NotContains(t, article.Text, "Copyright")
	assert.NotContains(t, article.Text, "<p>")
}

func TestExtractTooShort(t *testing.T) {
	t.Parallel()

	server := newPageServer(t)
	ex := New(config.ExtractorConfig{MinWords: 50}, WithHTTPClient(server.Client()))

	_, err := ex.Extract(context.Background(), server.URL+"/short")
	require.Error(t, err)
	assert.Equal(t, domain.ExtractionTooShort, failureReason(t, err))
}

func TestExtractFetchFailures(t *testing.T) {
	t.Parallel()

	server := newPageServer(t)
	ex := New(config.ExtractorConfig{MinWords: 50}, WithHTTPClient(server.Client()))

	for _, target := range []string{server.URL + "/missing", "not a url", "http://127.0.0.1:1/closed"} {
		_, err := ex.Extract(context.Background(), target)
		require.Error(t, err, target)
		assert.Equal(t, domain.ExtractionFetchOrParse, failureReason(t, err), target)
	}
}

func TestExtractSendsUserAgent(t *testing.T) {
	t.Parallel()

	server := newPageServer(t)
	ex := New(config.ExtractorConfig{MinWords: 10, UserAgent: "FeedRewriter/test"}, WithHTTPClient(server.Client()))

	_, err := ex.Extract(context.Background(), server.URL+"/agent")
	require.NoError(t, err)
}

func TestExtractRejectsOversizedPage(t *testing.T) {
	t.Parallel()

	server := newPageServer(t)
	ex := New(config.ExtractorConfig{MinWords: 10, MaxBodyBytes: 64}, WithHTTPClient(server.Client()))

	_, err := ex.Extract(context.Background(), server.URL+"/long")
	require.Error(t, err)
	assert.Equal(t, domain.ExtractionFetchOrParse, failureReason(t, err))
	assert.Contains(t, err.Error(), "exceeds")
}

func TestExtractHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	server := newPageServer(t)
	ex := New(config.ExtractorConfig{MinWords: 10, FetchesPerSecond: 0.001}, WithHTTPClient(server.Client()))

	// The first call consumes the burst token.
	_, err := ex.Extract(context.Background(), server.URL+"/long")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = ex.Extract(ctx, server.URL+"/long")
	require.Error(t, err)
	assert.Equal(t, domain.ExtractionFetchOrParse, failureReason(t, err))
}

func TestParagraphTextSkipsNestedBlocks(t *testing.T) {
	t.Parallel()

	text, err := paragraphText("<div><blockquote><p>Quoted line</p></blockquote><p>Body   text</p><ul><li>Item</li></ul></div>")
	require.NoError(t, err)
	assert.Equal(t, "Quoted line\n\nBody text\n\nItem", text)
}
