package parser

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/amishk599/jobpipe/internal/model"
)

const ashbyHost = "api.ashbyhq.com"

// ashbyJob represents a single job in the Ashby job board response.
type ashbyJob struct {
	Title            string `json:"title"`
	Location         string `json:"location"`
	JobURL           string `json:"jobUrl"`
	PublishedAt      string `json:"publishedAt"`
	EmploymentType   string `json:"employmentType"`
	DescriptionPlain string `json:"descriptionPlain"`
	IsRemote         bool   `json:"isRemote"`
	IsListed         bool   `json:"isListed"`
}

type ashbyResponse struct {
	Jobs []json.RawMessage `json:"jobs"`
}

// ashbyEmploymentTypes maps Ashby's enum onto the phrases the normalizer knows.
var ashbyEmploymentTypes = map[string]string{
	"FullTime":  model.JobTypeFullTime,
	"PartTime":  model.JobTypePartTime,
	"Contract":  model.JobTypeContract,
	"Intern":    model.JobTypeInternship,
	"Temporary": model.JobTypeTemporary,
}

// AshbyParser reads the public Ashby job board JSON
// (https://api.ashbyhq.com/posting-api/job-board/{token}). Unlisted jobs
// are skipped.
type AshbyParser struct{}

func NewAshbyParser() *AshbyParser { return &AshbyParser{} }

func (p *AshbyParser) Parse(page *model.Page) ([]model.Posting, error) {
	var resp ashbyResponse
	if err := json.Unmarshal(page.Body, &resp); err != nil {
		return nil, fmt.Errorf("ashby parse for %s: %w", page.URL, err)
	}

	company := pathSegmentAfter(page.URL, "job-board")
	if company == "" {
		company = "Unknown"
	}

	postings := make([]model.Posting, 0, len(resp.Jobs))
	for i, raw := range resp.Jobs {
		var aj ashbyJob
		if err := json.Unmarshal(raw, &aj); err != nil || aj.Title == "" || !aj.IsListed {
			continue
		}

		location := aj.Location
		if aj.IsRemote && location == "" {
			location = "Remote"
		}

		posting := model.Posting{
			Ordinal:     i,
			Title:       aj.Title,
			Company:     company,
			Location:    location,
			Description: aj.DescriptionPlain,
			URL:         aj.JobURL,
			JobType:     ashbyEmploymentTypes[aj.EmploymentType],
			Raw:         string(raw),
		}
		if posting.URL == "" {
			posting.URL = page.URL
		}
		if aj.PublishedAt != "" {
			if t, err := time.Parse(time.RFC3339, aj.PublishedAt); err == nil {
				t = t.UTC()
				posting.PostedDate = &t
			}
		}

		postings = append(postings, posting)
	}

	return postings, nil
}
