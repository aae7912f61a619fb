package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// JobStatus is the lifecycle state of a Job as it moves through the pipeline.
type JobStatus string

const (
	StatusNew        JobStatus = "new"
	StatusNormalized JobStatus = "normalized"
	StatusStored     JobStatus = "stored"
	StatusResponded  JobStatus = "responded"
	StatusRejected   JobStatus = "rejected"
	StatusError      JobStatus = "error"
)

var jobStatuses = []JobStatus{
	StatusNew, StatusNormalized, StatusStored, StatusResponded, StatusRejected, StatusError,
}

// JobStatuses returns every valid status in lifecycle order.
func JobStatuses() []JobStatus {
	out := make([]JobStatus, len(jobStatuses))
	copy(out, jobStatuses)
	return out
}

// ParseJobStatus converts s into a JobStatus, rejecting unknown values.
func ParseJobStatus(s string) (JobStatus, error) {
	for _, st := range jobStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("job status %q: %w", s, ErrUnknownStatus)
}

func (s JobStatus) String() string { return string(s) }

var statusRank = map[JobStatus]int{
	StatusNew: 0, StatusNormalized: 1, StatusStored: 2, StatusResponded: 3, StatusRejected: 3,
}

// CanAdvanceTo reports whether moving from s to next respects the forward-only
// lifecycle. Any status may move to error; error is terminal. An unset
// status ranks as new.
func (s JobStatus) CanAdvanceTo(next JobStatus) bool {
	if next == StatusError {
		return true
	}
	if s == StatusError {
		return false
	}
	to, ok := statusRank[next]
	return ok && to >= statusRank[s]
}

func (s JobStatus) MarshalText() ([]byte, error) {
	return []byte(s), nil
}

func (s *JobStatus) UnmarshalText(text []byte) error {
	st, err := ParseJobStatus(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Value implements driver.Valuer so statuses are stored as plain text.
func (s JobStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Scan implements sql.Scanner.
func (s *JobStatus) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	default:
		return fmt.Errorf("scanning job status from %T", src)
	}
}

// Canonical job type values.
const (
	JobTypeFullTime   = "full-time"
	JobTypePartTime   = "part-time"
	JobTypeContract   = "contract"
	JobTypeInternship = "internship"
	JobTypeTemporary  = "temporary"
)

// Canonical remote work classifications.
const (
	RemoteTypeRemote = "remote"
	RemoteTypeHybrid = "hybrid"
	RemoteTypeOnSite = "on-site"
)

// Job is one job posting as it travels through fetch, normalize, persist and respond.
type Job struct {
	ID         string `json:"id,omitempty"`
	ExternalID string `json:"external_id"`

	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`

	URL            string `json:"url"`
	SourcePlatform string `json:"source_platform"`

	SalaryMin       *float64 `json:"salary_min,omitempty"`
	SalaryMax       *float64 `json:"salary_max,omitempty"`
	SalaryCurrency  string   `json:"salary_currency,omitempty"`
	JobType         string   `json:"job_type,omitempty"`
	RemoteType      string   `json:"remote_type,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`

	RequiredSkills  []string `json:"required_skills"`
	PreferredSkills []string `json:"preferred_skills"`
	Requirements    string   `json:"requirements,omitempty"`

	PostedDate  *time.Time `json:"posted_date,omitempty"`
	ScrapedDate time.Time  `json:"scraped_date"`
	Deadline    *time.Time `json:"deadline,omitempty"`

	Status JobStatus `json:"status"`

	RawData        map[string]any `json:"raw_data,omitempty"`
	NormalizedData map[string]any `json:"normalized_data,omitempty"`
}

// AddSkills merges skills into RequiredSkills, keeping existing order and
// never introducing duplicates.
func (j *Job) AddSkills(skills ...string) {
	have := make(map[string]bool, len(j.RequiredSkills))
	for _, s := range j.RequiredSkills {
		have[s] = true
	}
	for _, s := range skills {
		if have[s] {
			continue
		}
		have[s] = true
		j.RequiredSkills = append(j.RequiredSkills, s)
	}
}

// HasSalary reports whether either salary bound is known.
func (j Job) HasSalary() bool {
	return j.SalaryMin != nil || j.SalaryMax != nil
}

// JobQuery selects stored jobs. A nil Status matches every status.
type JobQuery struct {
	Status *JobStatus
	Limit  int
	Offset int
}

// DefaultJobQueryLimit is used when a JobQuery leaves Limit at zero.
const DefaultJobQueryLimit = 100
