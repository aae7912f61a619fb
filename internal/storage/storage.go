package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/jobpipe/internal/model"
)

// Ensure Agent implements the persist-stage contract.
var _ model.Agent[[]model.Job, []model.Job] = (*Agent)(nil)

// Config describes the backing engine for status reports.
type Config struct {
	Engine string `json:"engine"`
	DBPath string `json:"db_path,omitempty"`
}

// Agent upserts jobs into a repository, one transaction per call.
type Agent struct {
	repo   model.JobRepository
	cfg    Config
	logger *slog.Logger
}

func New(repo model.JobRepository, cfg Config, logger *slog.Logger) *Agent {
	return &Agent{
		repo:   repo,
		cfg:    cfg,
		logger: logger.With("agent", "storage"),
	}
}

func (a *Agent) Name() string { return "StorageAgent" }

func (a *Agent) Status() model.AgentStatus {
	return model.AgentStatus{Name: a.Name(), Status: "active", Config: a.cfg}
}

// Process stores every job inside a single transaction. Existing rows (matched
// by ExternalID) keep their ID and are updated; new rows get a deterministic ID.
// Any write failure rolls back the whole batch and is returned.
func (a *Agent) Process(ctx context.Context, jobs []model.Job) ([]model.Job, error) {
	a.logger.Info("storing jobs", "jobs", len(jobs))

	out := make([]model.Job, len(jobs))
	inserted, updated := 0, 0
	err := a.repo.InTx(ctx, func(w model.JobWriter) error {
		inserted, updated = 0, 0
		for i, job := range jobs {
			if job.Status.CanAdvanceTo(model.StatusStored) {
				job.Status = model.StatusStored
			}

			id, found, err := w.LookupID(ctx, job.ExternalID)
			if err != nil {
				return err
			}
			if found {
				job.ID = id
				if err := w.Update(ctx, job); err != nil {
					return err
				}
				updated++
			} else {
				job.ID = JobID(job.ExternalID, job.ScrapedDate)
				if err := w.Insert(ctx, job); err != nil {
					return err
				}
				inserted++
			}
			out[i] = job
		}
		return nil
	})
	if err != nil {
		a.logger.Error("storing jobs failed, batch rolled back", "error", err)
		return nil, fmt.Errorf("storing jobs: %w", err)
	}

	a.logger.Info("jobs stored", "inserted", inserted, "updated", updated)
	return out, nil
}

// ListJobs returns stored jobs newest-first.
func (a *Agent) ListJobs(ctx context.Context, q model.JobQuery) ([]model.Job, error) {
	return a.repo.ListJobs(ctx, q)
}

// CountByStatus returns the number of stored jobs per status.
func (a *Agent) CountByStatus(ctx context.Context) (map[model.JobStatus]int, error) {
	return a.repo.CountByStatus(ctx)
}

// JobID derives the stable row ID for a first-seen job.
func JobID(externalID string, scraped time.Time) string {
	sum := md5.Sum([]byte(externalID + "_" + scraped.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])
}
