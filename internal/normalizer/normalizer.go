package normalizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/jobpipe/internal/model"
)

// Config toggles individual normalization steps.
type Config struct {
	ExtractSkills     bool `json:"extract_skills"`
	ExtractSalary     bool `json:"extract_salary"`
	NormalizeLocation bool `json:"normalize_location"`
}

// DefaultConfig enables every step.
func DefaultConfig() Config {
	return Config{ExtractSkills: true, ExtractSalary: true, NormalizeLocation: true}
}

var errMissingTitle = errors.New("missing title")

// Ensure Agent implements the normalize-stage contract.
var _ model.Agent[[]model.Job, []model.Job] = (*Agent)(nil)

// Agent cleans and classifies jobs in place. It is one-to-one and preserves order.
type Agent struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

func New(cfg Config, logger *slog.Logger) *Agent {
	return &Agent{
		cfg:    cfg,
		logger: logger.With("agent", "normalizer"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (a *Agent) Name() string { return "NormalizerAgent" }

func (a *Agent) Status() model.AgentStatus {
	return model.AgentStatus{Name: a.Name(), Status: "active", Config: a.cfg}
}

// Process normalizes every job. A job that cannot be normalized is returned
// with status error; the batch continues.
func (a *Agent) Process(ctx context.Context, jobs []model.Job) ([]model.Job, error) {
	a.logger.Info("starting normalization", "jobs", len(jobs))

	out := make([]model.Job, len(jobs))
	failed := 0
	for i, job := range jobs {
		normalized, err := a.normalizeOne(job)
		if err != nil {
			a.logger.Error("normalizing job", "external_id", job.ExternalID, "error", err)
			job.Status = model.StatusError
			out[i] = job
			failed++
			continue
		}
		out[i] = normalized
	}

	a.logger.Info("normalization complete", "jobs", len(out), "failed", failed)
	return out, nil
}

// normalizeOne converts a panic in any rule into an error so one malformed
// record cannot take down the batch.
func (a *Agent) normalizeOne(job model.Job) (out model.Job, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return a.normalize(job)
}

func (a *Agent) normalize(job model.Job) (model.Job, error) {
	job.Title = cleanText(job.Title)
	job.Company = cleanText(job.Company)
	job.Description = cleanText(job.Description)
	if job.Title == "" {
		return job, errMissingTitle
	}

	if a.cfg.ExtractSkills && job.Description != "" {
		job.AddSkills(extractSkills(job.Description)...)
	}
	if job.RequiredSkills == nil {
		job.RequiredSkills = []string{}
	}

	job.JobType = classifyJobType(job.JobType, job.Description)

	if a.cfg.ExtractSalary && !job.HasSalary() {
		if s, ok := extractSalary(job.Description); ok {
			job.SalaryMin = &s.min
			job.SalaryMax = &s.max
			job.SalaryCurrency = s.currency
		}
	}

	if job.Location != "" {
		if a.cfg.NormalizeLocation {
			job.Location = cleanLocation(job.Location)
		} else {
			job.Location = cleanText(job.Location)
		}
	}

	job.RemoteType = classifyRemote(job.Title, job.Description)

	job.Status = model.StatusNormalized
	job.NormalizedData = map[string]any{
		"normalized_at":    a.now().Format(time.RFC3339),
		"skills_extracted": len(job.RequiredSkills),
		"has_salary":       job.HasSalary(),
	}
	return job, nil
}
