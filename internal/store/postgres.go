package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amishk599/jobpipe/internal/model"
)

// Ensure PostgresStore implements model.JobRepository.
var _ model.JobRepository = (*PostgresStore)(nil)

// PostgresStore persists jobs in PostgreSQL through a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL, verifies the connection and
// ensures the jobs schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id               TEXT PRIMARY KEY,
			external_id      TEXT UNIQUE NOT NULL,
			title            TEXT NOT NULL,
			company          TEXT NOT NULL,
			location         TEXT,
			description      TEXT,
			url              TEXT,
			source_platform  TEXT,
			salary_min       DOUBLE PRECISION,
			salary_max       DOUBLE PRECISION,
			salary_currency  TEXT,
			job_type         TEXT,
			remote_type      TEXT,
			experience_level TEXT,
			required_skills  JSONB NOT NULL DEFAULT '[]',
			preferred_skills JSONB NOT NULL DEFAULT '[]',
			requirements     TEXT,
			posted_date      TIMESTAMPTZ,
			scraped_date     TIMESTAMPTZ NOT NULL,
			deadline         TIMESTAMPTZ,
			status           TEXT NOT NULL,
			raw_data         JSONB,
			normalized_data  JSONB,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_scraped_date ON jobs(scraped_date DESC)`,
	}
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("creating jobs schema: %w", err)
		}
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(w model.JobWriter) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning jobs transaction: %w", err)
	}

	if err := fn(&pgWriter{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing jobs transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, q model.JobQuery) ([]model.Job, error) {
	query := "SELECT " + jobColumns + " FROM jobs"
	args := []any{}
	if q.Status != nil {
		query += " WHERE status = $1"
		args = append(args, string(*q.Status))
	}
	query += fmt.Sprintf(" ORDER BY scraped_date DESC, external_id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, queryLimit(q), q.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		job, err := scanPgJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return jobs, nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (map[model.JobStatus]int, error) {
	rows, err := s.pool.Query(ctx, "SELECT status, COUNT(*) FROM jobs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("counting jobs: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.JobStatus]int)
	for rows.Next() {
		var st string
		var n int64
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("counting jobs: %w", err)
		}
		status, err := model.ParseJobStatus(st)
		if err != nil {
			return nil, err
		}
		counts[status] = int(n)
	}
	return counts, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

type pgWriter struct {
	tx pgx.Tx
}

func (w *pgWriter) LookupID(ctx context.Context, externalID string) (string, bool, error) {
	var id string
	err := w.tx.QueryRow(ctx, "SELECT id FROM jobs WHERE external_id = $1", externalID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("looking up %s: %w", externalID, err)
	}
	return id, true, nil
}

func (w *pgWriter) Insert(ctx context.Context, job model.Job) error {
	args, err := pgArgs(job)
	if err != nil {
		return err
	}
	_, err = w.tx.Exec(ctx, `INSERT INTO jobs (`+jobColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		args...)
	if err != nil {
		return fmt.Errorf("inserting job %s: %w", job.ExternalID, err)
	}
	return nil
}

func (w *pgWriter) Update(ctx context.Context, job model.Job) error {
	args, err := pgArgs(job)
	if err != nil {
		return err
	}
	// $1 is id (unused), $2 is external_id (WHERE key).
	tag, err := w.tx.Exec(ctx, `UPDATE jobs SET
		title = $3, company = $4, location = $5, description = $6, url = $7,
		source_platform = $8, salary_min = $9, salary_max = $10, salary_currency = $11,
		job_type = $12, remote_type = $13, experience_level = $14, required_skills = $15,
		preferred_skills = $16, requirements = $17, posted_date = $18, scraped_date = $19,
		deadline = $20, status = $21, raw_data = $22, normalized_data = $23,
		updated_at = now()
		WHERE external_id = $2 AND id = $1`, args...)
	if err != nil {
		return fmt.Errorf("updating job %s: %w", job.ExternalID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating job %s: no row", job.ExternalID)
	}
	return nil
}

func pgArgs(job model.Job) ([]any, error) {
	f, err := encodeJSONFields(job)
	if err != nil {
		return nil, err
	}
	return []any{
		job.ID, job.ExternalID, job.Title, job.Company, job.Location, job.Description, job.URL,
		job.SourcePlatform, job.SalaryMin, job.SalaryMax, job.SalaryCurrency,
		job.JobType, job.RemoteType, job.ExperienceLevel, string(f.requiredSkills),
		string(f.preferredSkills), job.Requirements, job.PostedDate, job.ScrapedDate.UTC(),
		job.Deadline, string(job.Status), string(f.rawData), string(f.normalizedData),
	}, nil
}

func scanPgJob(row pgx.Row) (model.Job, error) {
	var (
		job                         model.Job
		location, description, url  *string
		platform, currency          *string
		jobType, remoteType, expLvl *string
		requirements                *string
		status                      string
		scraped                     time.Time
		f                           jsonFields
	)
	err := row.Scan(
		&job.ID, &job.ExternalID, &job.Title, &job.Company, &location, &description, &url,
		&platform, &job.SalaryMin, &job.SalaryMax, &currency,
		&jobType, &remoteType, &expLvl, &f.requiredSkills,
		&f.preferredSkills, &requirements, &job.PostedDate, &scraped,
		&job.Deadline, &status, &f.rawData, &f.normalizedData,
	)
	if err != nil {
		return model.Job{}, fmt.Errorf("scanning job row: %w", err)
	}

	job.Location = deref(location)
	job.Description = deref(description)
	job.URL = deref(url)
	job.SourcePlatform = deref(platform)
	job.SalaryCurrency = deref(currency)
	job.JobType = deref(jobType)
	job.RemoteType = deref(remoteType)
	job.ExperienceLevel = deref(expLvl)
	job.Requirements = deref(requirements)
	job.ScrapedDate = scraped.UTC()

	if job.Status, err = model.ParseJobStatus(status); err != nil {
		return model.Job{}, err
	}
	if err := decodeJSONFields(&job, f); err != nil {
		return model.Job{}, err
	}
	return job, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
