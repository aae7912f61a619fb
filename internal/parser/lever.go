package parser

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/amishk599/jobpipe/internal/model"
)

const leverHost = "api.lever.co"

// leverCategories represents the categories object in a Lever job.
type leverCategories struct {
	Team         string   `json:"team"`
	Location     string   `json:"location"`
	Commitment   string   `json:"commitment"`
	AllLocations []string `json:"allLocations"`
}

// leverJob represents a single job in the Lever postings response.
type leverJob struct {
	ID               string          `json:"id"`
	Text             string          `json:"text"`
	DescriptionPlain string          `json:"descriptionPlain"`
	Description      string          `json:"description"`
	Categories       leverCategories `json:"categories"`
	CreatedAt        int64           `json:"createdAt"` // Unix milliseconds
	WorkplaceType    string          `json:"workplaceType"`
	HostedURL        string          `json:"hostedUrl"`
}

// LeverParser reads the public Lever postings JSON
// (https://api.lever.co/v0/postings/{company}?mode=json).
type LeverParser struct{}

func NewLeverParser() *LeverParser { return &LeverParser{} }

func (p *LeverParser) Parse(page *model.Page) ([]model.Posting, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(page.Body, &raws); err != nil {
		return nil, fmt.Errorf("lever parse for %s: %w", page.URL, err)
	}

	company := pathSegmentAfter(page.URL, "postings")
	if company == "" {
		company = "Unknown"
	}

	postings := make([]model.Posting, 0, len(raws))
	for i, raw := range raws {
		var lj leverJob
		if err := json.Unmarshal(raw, &lj); err != nil || lj.Text == "" {
			continue
		}

		// Prefer allLocations if available, fall back to location.
		location := lj.Categories.Location
		if len(lj.Categories.AllLocations) > 0 {
			location = strings.Join(lj.Categories.AllLocations, ", ")
		}

		description := lj.DescriptionPlain
		if description == "" {
			description = extractText(lj.Description)
		}
		if lj.WorkplaceType != "" && lj.WorkplaceType != "unspecified" {
			description = strings.TrimSpace(description + " Workplace: " + lj.WorkplaceType + ".")
		}

		posting := model.Posting{
			Ordinal:     i,
			Title:       lj.Text,
			Company:     company,
			Location:    location,
			Description: description,
			URL:         lj.HostedURL,
			JobType:     lj.Categories.Commitment,
			Raw:         string(raw),
		}
		if posting.URL == "" {
			posting.URL = page.URL
		}
		if lj.CreatedAt > 0 {
			t := time.UnixMilli(lj.CreatedAt).UTC()
			posting.PostedDate = &t
		}

		postings = append(postings, posting)
	}

	return postings, nil
}

// pathSegmentAfter returns the path segment following marker, e.g. the
// company slug in /v0/postings/{company}.
func pathSegmentAfter(rawURL, marker string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part == marker && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}
