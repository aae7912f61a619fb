package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/jobpipe/internal/pipeline"
)

// --- Mock implementations ---

type countingRunner struct {
	calls atomic.Int32
	err   error
	onRun func(n int32)

	mu   sync.Mutex
	urls []string
}

func (r *countingRunner) RunPipeline(_ context.Context, locations []string) (*pipeline.Result, error) {
	n := r.calls.Add(1)
	r.mu.Lock()
	r.urls = locations
	r.mu.Unlock()
	if r.onRun != nil {
		r.onRun(n)
	}
	if r.err != nil {
		return nil, r.err
	}
	return &pipeline.Result{URLsProcessed: len(locations)}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_ImmediateCycleThenShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := &countingRunner{onRun: func(int32) { cancel() }}
	urls := []string{"https://example.com/jobs"}
	s := NewScheduler(runner, "@every 6h", urls, discardLogger())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}

	if c := runner.calls.Load(); c != 1 {
		t.Errorf("expected 1 immediate run, got %d", c)
	}
	if !reflect.DeepEqual(runner.urls, urls) {
		t.Errorf("urls = %v, want %v", runner.urls, urls)
	}
}

func TestRun_InvalidSpec(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, "every now and then", nil, discardLogger())

	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
	if c := runner.calls.Load(); c != 0 {
		t.Errorf("runner called %d times with an invalid spec", c)
	}
}

func TestRun_FiresOnScheduleAndSurvivesErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := &countingRunner{
		err: errors.New("storage down"),
		onRun: func(n int32) {
			if n >= 2 {
				cancel()
			}
		},
	}
	s := NewScheduler(runner, "@every 1s", nil, discardLogger())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() = %v, want nil", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("scheduled run never fired")
	}

	if c := runner.calls.Load(); c < 2 {
		t.Errorf("expected at least 2 runs, got %d", c)
	}
}
