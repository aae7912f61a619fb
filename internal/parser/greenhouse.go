package parser

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/amishk599/jobpipe/internal/model"
)

const greenhouseBoardsHost = "boards-api.greenhouse.io"

// greenhouseJob represents a single job in the Greenhouse boards API response.
type greenhouseJob struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Location    greenhouseLocation `json:"location"`
	AbsoluteURL string             `json:"absolute_url"`
	UpdatedAt   string             `json:"updated_at"`
	Content     string             `json:"content"` // only with ?content=true, HTML-encoded
	CompanyName string             `json:"company_name"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

type greenhouseResponse struct {
	Jobs []json.RawMessage `json:"jobs"`
}

// GreenhouseParser reads the public Greenhouse boards JSON
// (https://boards-api.greenhouse.io/v1/boards/{token}/jobs).
type GreenhouseParser struct{}

func NewGreenhouseParser() *GreenhouseParser { return &GreenhouseParser{} }

func (p *GreenhouseParser) Parse(page *model.Page) ([]model.Posting, error) {
	var resp greenhouseResponse
	if err := json.Unmarshal(page.Body, &resp); err != nil {
		return nil, fmt.Errorf("greenhouse parse for %s: %w", page.URL, err)
	}

	board := boardToken(page.URL)

	postings := make([]model.Posting, 0, len(resp.Jobs))
	for i, raw := range resp.Jobs {
		var gj greenhouseJob
		if err := json.Unmarshal(raw, &gj); err != nil || gj.Title == "" {
			continue
		}

		company := gj.CompanyName
		if company == "" {
			company = board
		}
		if company == "" {
			company = "Unknown"
		}

		posting := model.Posting{
			Ordinal:     i,
			Title:       gj.Title,
			Company:     company,
			Location:    gj.Location.Name,
			Description: extractText(gj.Content),
			URL:         gj.AbsoluteURL,
			Raw:         string(raw),
		}
		if posting.URL == "" {
			posting.URL = page.URL
		}
		if gj.UpdatedAt != "" {
			if t, err := time.Parse(time.RFC3339, gj.UpdatedAt); err == nil {
				t = t.UTC()
				posting.PostedDate = &t
			}
		}

		postings = append(postings, posting)
	}

	return postings, nil
}

// boardToken pulls {token} out of /v1/boards/{token}/jobs.
func boardToken(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part == "boards" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

// looksLikeGreenhouse reports whether page is a Greenhouse boards response.
func looksLikeGreenhouse(page *model.Page) bool {
	if u, err := url.Parse(page.URL); err == nil && u.Host == greenhouseBoardsHost {
		return true
	}
	if !strings.Contains(page.ContentType, "json") {
		return false
	}
	var shape struct {
		Jobs json.RawMessage `json:"jobs"`
	}
	if err := json.Unmarshal(page.Body, &shape); err != nil {
		return false
	}
	return len(shape.Jobs) > 0 && shape.Jobs[0] == '['
}
