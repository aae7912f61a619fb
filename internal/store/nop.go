package store

import (
	"context"

	"github.com/amishk599/jobpipe/internal/model"
)

var _ model.JobRepository = (*NopStore)(nil)

// NopStore is a no-op repository used in dry-run mode. Lookups never match and
// writes are discarded, so every run treats its jobs as new.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) InTx(ctx context.Context, fn func(w model.JobWriter) error) error {
	return fn(nopWriter{})
}

func (s *NopStore) ListJobs(context.Context, model.JobQuery) ([]model.Job, error) { return nil, nil }

func (s *NopStore) CountByStatus(context.Context) (map[model.JobStatus]int, error) {
	return map[model.JobStatus]int{}, nil
}

func (s *NopStore) Close() error { return nil }

type nopWriter struct{}

func (nopWriter) LookupID(context.Context, string) (string, bool, error) { return "", false, nil }
func (nopWriter) Insert(context.Context, model.Job) error                { return nil }
func (nopWriter) Update(context.Context, model.Job) error                { return nil }
