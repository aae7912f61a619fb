package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/amishk599/jobpipe/internal/pipeline"
)

// Runner executes one pipeline run.
type Runner interface {
	RunPipeline(ctx context.Context, locations []string) (*pipeline.Result, error)
}

// Scheduler triggers pipeline runs on a cron spec, never overlapping them.
type Scheduler struct {
	runner Runner
	spec   string // e.g. "@every 6h"
	urls   []string
	logger *slog.Logger
}

// NewScheduler creates a scheduler that runs the pipeline over urls on spec.
func NewScheduler(runner Runner, spec string, urls []string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner: runner,
		spec:   spec,
		urls:   urls,
		logger: logger,
	}
}

// Run runs one immediate cycle, then fires on the cron spec until ctx is
// cancelled. It waits for an in-flight run before returning nil.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithLogger(cronLogger{s.logger}),
		cron.WithChain(cron.Recover(cronLogger{s.logger}), cron.SkipIfStillRunning(cronLogger{s.logger})),
	)
	if _, err := c.AddFunc(s.spec, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.logger.Info("starting scheduler", "schedule", s.spec, "urls", len(s.urls))

	s.runOnce(ctx)

	c.Start()
	<-ctx.Done()
	s.logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	res, err := s.runner.RunPipeline(ctx, s.urls)
	if err != nil {
		s.logger.Error("scheduled run failed", "error", err)
		return
	}
	s.logger.Info("scheduled run complete",
		"scraped", res.JobsScraped,
		"stored", res.JobsStored,
		"responses", res.ResponsesGenerated,
	)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
