package filter

import (
	"slices"
	"strings"

	"github.com/amishk599/jobpipe/internal/model"
)

// Criteria decides whether a job is worth responding to. A nil field is an
// unset criterion and always passes; a non-nil empty list matches nothing.
type Criteria struct {
	RequiredSkills []string `json:"required_skills,omitempty" yaml:"required_skills,omitempty"`
	JobTypes       []string `json:"job_types,omitempty" yaml:"job_types,omitempty"`
	RemoteTypes    []string `json:"remote_types,omitempty" yaml:"remote_types,omitempty"`
	MinSalary      *float64 `json:"min_salary,omitempty" yaml:"min_salary,omitempty"`
	Locations      []string `json:"locations,omitempty" yaml:"locations,omitempty"`
}

// Match returns true when every configured predicate passes.
//
// Skills must intersect (exact, case-sensitive). JobType and RemoteType must be
// members of their sets. The salary floor only applies to jobs with a known
// positive SalaryMin, and the location check only to jobs with a location,
// where any configured location must appear (case-insensitive) in it.
func (c Criteria) Match(job model.Job) bool {
	if c.RequiredSkills != nil && !intersects(c.RequiredSkills, job.RequiredSkills) {
		return false
	}

	if c.JobTypes != nil && !slices.Contains(c.JobTypes, job.JobType) {
		return false
	}

	if c.RemoteTypes != nil && !slices.Contains(c.RemoteTypes, job.RemoteType) {
		return false
	}

	if c.MinSalary != nil && job.SalaryMin != nil && *job.SalaryMin > 0 {
		if *job.SalaryMin < *c.MinSalary {
			return false
		}
	}

	if c.Locations != nil && job.Location != "" {
		locationLower := strings.ToLower(job.Location)
		matched := false
		for _, loc := range c.Locations {
			if strings.Contains(locationLower, strings.ToLower(loc)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

func intersects(a, b []string) bool {
	for _, s := range a {
		if slices.Contains(b, s) {
			return true
		}
	}
	return false
}
