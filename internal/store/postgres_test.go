package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/amishk599/jobpipe/internal/model"
)

// Requires a disposable database; the jobs table is truncated.
func newTestPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("JOBPIPE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("JOBPIPE_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := NewPostgresStore(ctx, url)
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	if _, err := s.pool.Exec(ctx, "TRUNCATE jobs"); err != nil {
		t.Fatalf("truncating jobs: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPostgresUpsertAndList(t *testing.T) {
	s := newTestPostgres(t)
	ctx := context.Background()
	job := sampleJob("pg-1", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))

	err := s.InTx(ctx, func(w model.JobWriter) error {
		if _, ok, err := w.LookupID(ctx, job.ExternalID); err != nil || ok {
			t.Errorf("LookupID before insert = %v, %v", ok, err)
		}
		return w.Insert(ctx, job)
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	job.Title = "Staff Go Engineer"
	err = s.InTx(ctx, func(w model.JobWriter) error {
		return w.Update(ctx, job)
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	jobs, err := s.ListJobs(ctx, model.JobQuery{})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Title != "Staff Go Engineer" {
		t.Fatalf("jobs = %+v", jobs)
	}
	if len(jobs[0].RequiredSkills) != 2 {
		t.Errorf("RequiredSkills = %v", jobs[0].RequiredSkills)
	}

	counts, err := s.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[model.StatusStored] != 1 {
		t.Errorf("counts = %v", counts)
	}
}
