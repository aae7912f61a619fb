package parser

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/amishk599/jobpipe/internal/model"
)

const gemHost = "api.gem.com"

type gemJob struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Location       gemLocation `json:"location"`
	AbsoluteURL    string      `json:"absolute_url"`
	FirstPublished string      `json:"first_published_at"`
	Content        string      `json:"content"`
	ContentPlain   string      `json:"content_plain"`
}

type gemLocation struct {
	Name string `json:"name"`
}

// GemParser reads the public Gem job board JSON
// (https://api.gem.com/job_board/v0/{token}/job_posts/).
type GemParser struct{}

func NewGemParser() *GemParser { return &GemParser{} }

func (p *GemParser) Parse(page *model.Page) ([]model.Posting, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(page.Body, &raws); err != nil {
		return nil, fmt.Errorf("gem parse for %s: %w", page.URL, err)
	}

	company := pathSegmentAfter(page.URL, "v0")
	if company == "" {
		company = "Unknown"
	}

	postings := make([]model.Posting, 0, len(raws))
	for i, raw := range raws {
		var gj gemJob
		if err := json.Unmarshal(raw, &gj); err != nil || gj.Title == "" {
			continue
		}

		desc := gj.ContentPlain
		if desc == "" {
			desc = extractText(gj.Content)
		}

		posting := model.Posting{
			Ordinal:     i,
			Title:       gj.Title,
			Company:     company,
			Location:    gj.Location.Name,
			Description: desc,
			URL:         gj.AbsoluteURL,
			Raw:         string(raw),
		}
		if posting.URL == "" {
			posting.URL = page.URL
		}
		if gj.FirstPublished != "" {
			if t, err := time.Parse(time.RFC3339, gj.FirstPublished); err == nil {
				t = t.UTC()
				posting.PostedDate = &t
			}
		}

		postings = append(postings, posting)
	}

	return postings, nil
}
