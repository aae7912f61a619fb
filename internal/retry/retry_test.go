package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/jobpipe/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedFetcher returns the next scripted error on each call and a page
// once the script runs out.
type scriptedFetcher struct {
	errs  []error
	calls int
}

func (s *scriptedFetcher) Fetch(_ context.Context, url string) (*model.Page, error) {
	s.calls++
	if s.calls <= len(s.errs) {
		return nil, s.errs[s.calls-1]
	}
	return &model.Page{URL: url, Body: []byte("ok")}, nil
}

const boardURL = "https://jobs.example.com/board"

func fastPolicy(retries int) Policy {
	return Policy{MaxRetries: retries, BaseDelay: time.Millisecond}
}

func status(code int) error {
	return &model.HTTPError{StatusCode: code, Err: errors.New("upstream")}
}

func TestFetch_Outcomes(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error
		retries   int
		wantErr   bool
		wantCalls int
	}{
		{"first attempt succeeds", nil, 2, false, 1},
		{"recovers from 503", []error{status(503)}, 2, false, 2},
		{"recovers from network errors", []error{errors.New("connection reset"), errors.New("dns timeout")}, 2, false, 3},
		{"404 is final", []error{status(404)}, 2, true, 1},
		{"gives up after budget", []error{status(500), status(500), status(500), status(500)}, 2, true, 3},
		{"zero budget", []error{status(502)}, 0, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &scriptedFetcher{errs: tt.errs}
			page, err := New(src, fastPolicy(tt.retries), discardLogger()).Fetch(context.Background(), boardURL)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && string(page.Body) != "ok" {
				t.Errorf("body = %q", page.Body)
			}
			if src.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", src.calls, tt.wantCalls)
			}
		})
	}
}

func TestFetch_KeepsHTTPErrorType(t *testing.T) {
	src := &scriptedFetcher{errs: []error{status(403)}}
	_, err := New(src, fastPolicy(3), discardLogger()).Fetch(context.Background(), boardURL)
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 403 {
		t.Fatalf("err = %v, want HTTPError 403", err)
	}
}

func TestFetch_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &scriptedFetcher{errs: []error{status(500), status(500)}}
	_, err := New(src, Policy{MaxRetries: 2, BaseDelay: time.Second}, discardLogger()).Fetch(ctx, boardURL)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if src.calls != 1 {
		t.Errorf("calls = %d, want 1", src.calls)
	}
}

func TestPolicy_Delay(t *testing.T) {
	p := Policy{MaxRetries: 5, BaseDelay: time.Second}

	retryAfter := &model.HTTPError{StatusCode: 429, RetryAfter: 3 * time.Second}
	if got := p.Delay(4, retryAfter); got != 3*time.Second {
		t.Errorf("Retry-After delay = %v, want 3s", got)
	}

	for n, want := range map[int]time.Duration{1: time.Second, 3: 4 * time.Second, 20: maxBackoff} {
		got := p.Delay(n, errors.New("reset"))
		lo, hi := time.Duration(float64(want)*0.7), time.Duration(float64(want)*1.3)
		if got < lo || got > hi {
			t.Errorf("Delay(%d) = %v, want within [%v, %v]", n, got, lo, hi)
		}
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, false},
		{context.DeadlineExceeded, false},
		{status(429), true},
		{status(500), true},
		{status(400), false},
		{errors.New("connection refused"), true},
	}
	for _, tt := range tests {
		if got := Retryable(tt.err); got != tt.want {
			t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
