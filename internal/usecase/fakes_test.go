package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FeedRewriter/internal/domain"
)

type fakeSource struct {
	entries []domain.FeedEntry
	err     error
	asked   []string
}

func (f *fakeSource) Fetch(_ context.Context, source string) ([]domain.FeedEntry, error) {
	f.asked = append(f.asked, source)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.FeedEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeSource) Sources() []string { return []string{"HipHopDX", "AllHipHop"} }

// fakeExtractor returns a long article for every URL except the ones listed in failures.
type fakeExtractor struct {
	failures map[string]domain.ExtractionReason
	calls    []string
	onCall   func()
}

func (f *fakeExtractor) Extract(_ context.Context, url string) (domain.ExtractedArticle, error) {
	f.calls = append(f.calls, url)
	if f.onCall != nil {
		f.onCall()
	}
	if reason, ok := f.failures[url]; ok {
		return domain.ExtractedArticle{}, &domain.ExtractionFailure{Reason: reason, URL: url, Words: 30}
	}
	return domain.ExtractedArticle{URL: url, Text: "text of " + url, Words: 250}, nil
}

// fakeRewriter echoes the original title and fails for titles listed in failures.
type fakeRewriter struct {
	failures map[string]bool
	body     string
	calls    []string
}

func (f *fakeRewriter) Rewrite(_ context.Context, text, originalTitle string) (domain.RewriteResult, error) {
	f.calls = append(f.calls, originalTitle)
	if f.failures[originalTitle] {
		return domain.RewriteResult{}, &domain.RewriteFailure{Reason: domain.RewriteMalformed, Attempts: 2}
	}
	body := f.body
	if body == "" {
		body = "Rewritten from " + text + "."
	}
	return domain.RewriteResult{Title: "New " + originalTitle, Body: body}, nil
}

type fakeMetrics struct {
	mu          sync.Mutex
	extraction  []string
	rewrite     []string
	built       []string
	publish     []string
	runsTracked int
}

func (m *fakeMetrics) AdmissionRejected(string) {}

func (m *fakeMetrics) ExtractionFailed(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extraction = append(m.extraction, reason)
}

func (m *fakeMetrics) RewriteFailed(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rewrite = append(m.rewrite, reason)
}

func (m *fakeMetrics) StoryBuilt(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.built = append(m.built, source)
}

func (m *fakeMetrics) PublishAttempt(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publish = append(m.publish, outcome)
}

func (m *fakeMetrics) ObserveRun(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runsTracked++
}

type fakeBackend struct {
	err       error
	calls     int
	onPublish func()
}

func (f *fakeBackend) Publish(_ context.Context, title, body string) (domain.Published, error) {
	f.calls++
	if f.onPublish != nil {
		f.onPublish()
	}
	if f.err != nil {
		return domain.Published{}, f.err
	}
	return domain.Published{ID: int64(f.calls), Link: fmt.Sprintf("https://blog.example.com/?p=%d", f.calls)}, nil
}

type memoryGuard struct {
	held     map[string]bool
	released int
	err      error
}

func newMemoryGuard() *memoryGuard {
	return &memoryGuard{held: map[string]bool{}}
}

func (g *memoryGuard) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

// Release fails on a done context, as a network-backed guard would.
func (g *memoryGuard) Release(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	delete(g.held, key)
	g.released++
	return nil
}
