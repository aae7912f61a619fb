package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/jobpipe/internal/model"
)

// timeLayout is fixed-width so TEXT timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Ensure SQLiteStore implements model.JobRepository.
var _ model.JobRepository = (*SQLiteStore)(nil)

// SQLiteStore persists jobs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// jobs table and its indexes exist. ":memory:" gives a private in-memory DB.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating db directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One connection: keeps :memory: databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
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
			salary_min       REAL,
			salary_max       REAL,
			salary_currency  TEXT,
			job_type         TEXT,
			remote_type      TEXT,
			experience_level TEXT,
			required_skills  TEXT,
			preferred_skills TEXT,
			requirements     TEXT,
			posted_date      TEXT,
			scraped_date     TEXT NOT NULL,
			deadline         TEXT,
			status           TEXT NOT NULL,
			raw_data         TEXT,
			normalized_data  TEXT,
			created_at       TEXT NOT NULL,
			updated_at       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_external_id ON jobs(external_id)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating jobs schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// InTx runs fn in one transaction, rolling back if fn or the commit fails.
func (s *SQLiteStore) InTx(ctx context.Context, fn func(w model.JobWriter) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning jobs transaction: %w", err)
	}

	if err := fn(&sqliteWriter{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing jobs transaction: %w", err)
	}
	return nil
}

// ListJobs returns jobs newest-first by scraped date. Jobs scraped together
// are ordered by external ID so paging is stable.
func (s *SQLiteStore) ListJobs(ctx context.Context, q model.JobQuery) ([]model.Job, error) {
	query := "SELECT " + jobColumns + " FROM jobs"
	var args []any
	if q.Status != nil {
		query += " WHERE status = ?"
		args = append(args, string(*q.Status))
	}
	query += " ORDER BY scraped_date DESC, external_id LIMIT ? OFFSET ?"
	args = append(args, queryLimit(q), q.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		job, err := scanSQLiteJob(rows)
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

// CountByStatus returns the number of stored jobs per status.
func (s *SQLiteStore) CountByStatus(ctx context.Context) (map[model.JobStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM jobs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("counting jobs: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.JobStatus]int)
	for rows.Next() {
		var st model.JobStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("counting jobs: %w", err)
		}
		counts[st] = n
	}
	return counts, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type sqliteWriter struct {
	tx *sql.Tx
}

func (w *sqliteWriter) LookupID(ctx context.Context, externalID string) (string, bool, error) {
	var id string
	err := w.tx.QueryRowContext(ctx, "SELECT id FROM jobs WHERE external_id = ?", externalID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("looking up %s: %w", externalID, err)
	}
	return id, true, nil
}

func (w *sqliteWriter) Insert(ctx context.Context, job model.Job) error {
	args, err := sqliteArgs(job)
	if err != nil {
		return err
	}
	now := formatTime(time.Now())
	args = append(args, now, now)

	_, err = w.tx.ExecContext(ctx, `INSERT INTO jobs (`+jobColumns+`, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return fmt.Errorf("inserting job %s: %w", job.ExternalID, err)
	}
	return nil
}

func (w *sqliteWriter) Update(ctx context.Context, job model.Job) error {
	args, err := sqliteArgs(job)
	if err != nil {
		return err
	}
	// Drop id and external_id from the SET list; they key the WHERE clause.
	set := args[2:]
	set = append(set, formatTime(time.Now()), job.ExternalID)

	res, err := w.tx.ExecContext(ctx, `UPDATE jobs SET
		title = ?, company = ?, location = ?, description = ?, url = ?,
		source_platform = ?, salary_min = ?, salary_max = ?, salary_currency = ?,
		job_type = ?, remote_type = ?, experience_level = ?, required_skills = ?,
		preferred_skills = ?, requirements = ?, posted_date = ?, scraped_date = ?,
		deadline = ?, status = ?, raw_data = ?, normalized_data = ?,
		updated_at = ?
		WHERE external_id = ?`, set...)
	if err != nil {
		return fmt.Errorf("updating job %s: %w", job.ExternalID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("updating job %s: no row", job.ExternalID)
	}
	return nil
}

func sqliteArgs(job model.Job) ([]any, error) {
	f, err := encodeJSONFields(job)
	if err != nil {
		return nil, err
	}
	return []any{
		job.ID, job.ExternalID, job.Title, job.Company, job.Location, job.Description, job.URL,
		job.SourcePlatform, job.SalaryMin, job.SalaryMax, job.SalaryCurrency,
		job.JobType, job.RemoteType, job.ExperienceLevel, string(f.requiredSkills),
		string(f.preferredSkills), job.Requirements, formatTimePtr(job.PostedDate), formatTime(job.ScrapedDate),
		formatTimePtr(job.Deadline), string(job.Status), string(f.rawData), string(f.normalizedData),
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteJob(row rowScanner) (model.Job, error) {
	var (
		job                         model.Job
		location, description, url  sql.NullString
		platform, currency          sql.NullString
		jobType, remoteType, expLvl sql.NullString
		required, preferred, reqs   sql.NullString
		posted, scraped, deadline   sql.NullString
		rawData, normalized         sql.NullString
		salaryMin, salaryMax        sql.NullFloat64
	)
	err := row.Scan(
		&job.ID, &job.ExternalID, &job.Title, &job.Company, &location, &description, &url,
		&platform, &salaryMin, &salaryMax, &currency,
		&jobType, &remoteType, &expLvl, &required,
		&preferred, &reqs, &posted, &scraped,
		&deadline, &job.Status, &rawData, &normalized,
	)
	if err != nil {
		return model.Job{}, fmt.Errorf("scanning job row: %w", err)
	}

	job.Location = location.String
	job.Description = description.String
	job.URL = url.String
	job.SourcePlatform = platform.String
	job.SalaryCurrency = currency.String
	job.JobType = jobType.String
	job.RemoteType = remoteType.String
	job.ExperienceLevel = expLvl.String
	job.Requirements = reqs.String
	if salaryMin.Valid {
		v := salaryMin.Float64
		job.SalaryMin = &v
	}
	if salaryMax.Valid {
		v := salaryMax.Float64
		job.SalaryMax = &v
	}

	if job.PostedDate, err = parseTimePtr(posted); err != nil {
		return model.Job{}, err
	}
	if job.Deadline, err = parseTimePtr(deadline); err != nil {
		return model.Job{}, err
	}
	if job.ScrapedDate, err = time.Parse(timeLayout, scraped.String); err != nil {
		return model.Job{}, fmt.Errorf("parsing scraped_date for %s: %w", job.ExternalID, err)
	}

	err = decodeJSONFields(&job, jsonFields{
		requiredSkills:  []byte(required.String),
		preferredSkills: []byte(preferred.String),
		rawData:         []byte(rawData.String),
		normalizedData:  []byte(normalized.String),
	})
	if err != nil {
		return model.Job{}, err
	}
	return job, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp %q: %w", s.String, err)
	}
	return &t, nil
}
