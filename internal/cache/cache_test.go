package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/amishk599/jobpipe/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memCache struct {
	pages  map[string]*model.Page
	setErr error
}

func newMemCache() *memCache {
	return &memCache{pages: make(map[string]*model.Page)}
}

func (c *memCache) Get(_ context.Context, url string) (*model.Page, bool) {
	p, ok := c.pages[url]
	return p, ok
}

func (c *memCache) Set(_ context.Context, url string, page *model.Page) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.pages[url] = page
	return nil
}

type countingFetcher struct {
	calls int
	err   error
}

func (f *countingFetcher) Fetch(_ context.Context, url string) (*model.Page, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &model.Page{URL: url, StatusCode: 200, Body: []byte("fresh")}, nil
}

func TestCachedFetcher_MissThenHit(t *testing.T) {
	inner := &countingFetcher{}
	f := NewCachedFetcher(inner, newMemCache(), discardLogger())
	ctx := context.Background()

	for range 3 {
		page, err := f.Fetch(ctx, "https://jobs.example.com")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if string(page.Body) != "fresh" {
			t.Errorf("Body = %q", page.Body)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
}

func TestCachedFetcher_ErrorsAreNotCached(t *testing.T) {
	inner := &countingFetcher{err: errors.New("boom")}
	c := newMemCache()
	f := NewCachedFetcher(inner, c, discardLogger())

	if _, err := f.Fetch(context.Background(), "https://jobs.example.com"); err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(c.pages) != 0 {
		t.Errorf("expected empty cache, got %d entries", len(c.pages))
	}
}

func TestCachedFetcher_SetFailureStillReturnsPage(t *testing.T) {
	inner := &countingFetcher{}
	c := newMemCache()
	c.setErr = errors.New("redis down")
	f := NewCachedFetcher(inner, c, discardLogger())

	page, err := f.Fetch(context.Background(), "https://jobs.example.com")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page == nil {
		t.Fatal("expected page, got nil")
	}
}

func TestBuildKey(t *testing.T) {
	a := buildKey("https://jobs.example.com/a")
	b := buildKey("https://jobs.example.com/b")
	if a == b {
		t.Error("expected distinct keys for distinct URLs")
	}
	if !strings.HasPrefix(a, "jobpipe:page:") {
		t.Errorf("key %q missing prefix", a)
	}
	if buildKey(" https://jobs.example.com/a ") != a {
		t.Error("expected surrounding whitespace to be ignored")
	}
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not a url", 0); err == nil {
		t.Fatal("expected error for invalid redis URL")
	}
}
