package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/amishk599/jobpipe/internal/model"
)

// maxBackoff caps the computed exponential delay. A server supplied
// Retry-After is used as is.
const maxBackoff = time.Minute

// Policy describes how transient retrieval failures are retried.
type Policy struct {
	// MaxRetries is the number of attempts after the first one.
	MaxRetries int
	// BaseDelay is the wait before the first retry. It doubles per retry.
	BaseDelay time.Duration
}

// Delay returns the wait before retry number n (1-based) after cause.
func (p Policy) Delay(n int, cause error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(cause, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	d := p.BaseDelay
	for i := 1; i < n && d < maxBackoff; i++ {
		d *= 2
	}
	d = min(d, maxBackoff)

	// +/-30% jitter
	spread := (rand.Float64()*0.6 - 0.3) * float64(d)
	return d + time.Duration(spread)
}

// Retryable reports whether err is a transient failure: a network error,
// HTTP 429 or any 5xx. Context cancellation is never retried.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}

// Fetcher wraps a PageFetcher and repeats failed fetches according to a
// Policy.
type Fetcher struct {
	next   model.PageFetcher
	policy Policy
	logger *slog.Logger
}

var _ model.PageFetcher = (*Fetcher)(nil)

// New wraps next with policy.
func New(next model.PageFetcher, policy Policy, logger *slog.Logger) *Fetcher {
	return &Fetcher{next: next, policy: policy, logger: logger}
}

// Fetch retrieves url. A non-retryable error or the last failed attempt is
// returned unwrapped so callers still see the typed HTTPError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*model.Page, error) {
	for retry := 0; ; retry++ {
		page, err := f.next.Fetch(ctx, url)
		if err == nil {
			return page, nil
		}
		if retry >= f.policy.MaxRetries || !Retryable(err) {
			return nil, err
		}

		wait := f.policy.Delay(retry+1, err)
		f.logger.Warn("fetch failed, backing off",
			"url", url,
			"retry", retry+1,
			"of", f.policy.MaxRetries,
			"wait", wait,
			"error", err,
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("fetch %s: backoff interrupted: %w", url, ctx.Err())
		case <-timer.C:
		}
	}
}
