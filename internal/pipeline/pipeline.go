package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/amishk599/jobpipe/internal/model"
)

// Storage is the persist stage plus the read side used by reports.
type Storage interface {
	model.Agent[[]model.Job, []model.Job]
	ListJobs(ctx context.Context, q model.JobQuery) ([]model.Job, error)
	CountByStatus(ctx context.Context) (map[model.JobStatus]int, error)
}

// Result summarises one pipeline run.
type Result struct {
	URLsProcessed        int                    `json:"urls_processed"`
	JobsScraped          int                    `json:"jobs_scraped"`
	JobsNormalized       int                    `json:"jobs_normalized"`
	JobsStored           int                    `json:"jobs_stored"`
	ResponsesGenerated   int                    `json:"responses_generated"`
	Responses            []model.ResponseResult `json:"responses"`
	ExecutionTimeSeconds float64                `json:"execution_time_seconds"`
	Errors               []string               `json:"errors"`
}

// StatusReport is the self-description of the orchestrator and its stages.
type StatusReport struct {
	Orchestrator string                       `json:"orchestrator"`
	Agents       map[string]model.AgentStatus `json:"agents"`
}

// Pipeline runs scrape → normalize → store → respond, strictly in sequence.
type Pipeline struct {
	scraper    model.Agent[[]string, []model.Job]
	normalizer model.Agent[[]model.Job, []model.Job]
	storage    Storage
	responder  model.Agent[[]model.Job, []model.ResponseResult]
	logger     *slog.Logger
	now        func() time.Time
}

// New wires the four stages into a pipeline.
func New(
	scraper model.Agent[[]string, []model.Job],
	normalizer model.Agent[[]model.Job, []model.Job],
	storage Storage,
	responder model.Agent[[]model.Job, []model.ResponseResult],
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		scraper:    scraper,
		normalizer: normalizer,
		storage:    storage,
		responder:  responder,
		logger:     logger.With("component", "pipeline"),
		now:        time.Now,
	}
}

// RunPipeline runs every stage over locations. A storage failure aborts the
// run: the partial result is returned together with the error and the
// respond stage is skipped.
func (p *Pipeline) RunPipeline(ctx context.Context, locations []string) (*Result, error) {
	start := p.now()
	res := &Result{
		URLsProcessed: len(locations),
		Responses:     []model.ResponseResult{},
		Errors:        []string{},
	}
	finish := func() {
		res.ExecutionTimeSeconds = math.Round(p.now().Sub(start).Seconds()*100) / 100
	}

	p.logger.Info("pipeline started", "urls", len(locations))

	jobs, err := p.scraper.Process(ctx, locations)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("scrape: %v", err))
		finish()
		return res, fmt.Errorf("scrape stage: %w", err)
	}
	res.JobsScraped = len(jobs)
	if len(jobs) == 0 {
		finish()
		p.logger.Info("no jobs scraped, stopping", "execution_time_seconds", res.ExecutionTimeSeconds)
		return res, nil
	}

	normalized, err := p.normalizer.Process(ctx, jobs)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("normalize: %v", err))
		finish()
		return res, fmt.Errorf("normalize stage: %w", err)
	}
	res.JobsNormalized = len(normalized)

	stored, err := p.storage.Process(ctx, normalized)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("storage: %v", err))
		finish()
		p.logger.Error("pipeline aborted", "stage", "storage", "error", err)
		return res, fmt.Errorf("storage stage: %w", err)
	}
	res.JobsStored = len(stored)

	responses, err := p.responder.Process(ctx, stored)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("respond: %v", err))
		finish()
		return res, fmt.Errorf("respond stage: %w", err)
	}
	res.Responses = responses
	for _, r := range responses {
		if r.ShouldRespond {
			res.ResponsesGenerated++
		}
	}

	finish()
	p.logger.Info("pipeline complete",
		"scraped", res.JobsScraped,
		"normalized", res.JobsNormalized,
		"stored", res.JobsStored,
		"responses", res.ResponsesGenerated,
		"execution_time_seconds", res.ExecutionTimeSeconds,
	)
	return res, nil
}

// ScrapeOnly runs the fetch stage alone.
func (p *Pipeline) ScrapeOnly(ctx context.Context, locations []string) ([]model.Job, error) {
	return p.scraper.Process(ctx, locations)
}

// NormalizeJobs runs the normalize stage alone.
func (p *Pipeline) NormalizeJobs(ctx context.Context, jobs []model.Job) ([]model.Job, error) {
	return p.normalizer.Process(ctx, jobs)
}

// StoreJobs runs the persist stage alone.
func (p *Pipeline) StoreJobs(ctx context.Context, jobs []model.Job) ([]model.Job, error) {
	return p.storage.Process(ctx, jobs)
}

// GenerateResponses runs the respond stage alone.
func (p *Pipeline) GenerateResponses(ctx context.Context, jobs []model.Job) ([]model.ResponseResult, error) {
	return p.responder.Process(ctx, jobs)
}

// ListJobs reads stored jobs.
func (p *Pipeline) ListJobs(ctx context.Context, q model.JobQuery) ([]model.Job, error) {
	return p.storage.ListJobs(ctx, q)
}

// CountByStatus reports stored job counts per status.
func (p *Pipeline) CountByStatus(ctx context.Context) (map[model.JobStatus]int, error) {
	return p.storage.CountByStatus(ctx)
}

// Status reports the orchestrator and each stage as active.
func (p *Pipeline) Status() StatusReport {
	return StatusReport{
		Orchestrator: "active",
		Agents: map[string]model.AgentStatus{
			"scraper":    p.scraper.Status(),
			"normalizer": p.normalizer.Status(),
			"storage":    p.storage.Status(),
			"responder":  p.responder.Status(),
		},
	}
}
