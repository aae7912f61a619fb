package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobpipe/internal/model"
)

const (
	containerSelector   = "article.job-listing"
	fallbackSelector    = "div.job"
	titleSelector       = "h2.title, h2.job-title, h3.title, h3.job-title, a.title, a.job-title"
	companySelector     = "span.company, span.company-name, div.company, div.company-name"
	descriptionSelector = "div.description, div.job-description, p.description, p.job-description"
	locationSelector    = ".location, .job-location"
	jobTypeSelector     = ".job-type, .employment-type"
	postedSelector      = "time[datetime]"
)

// HTMLParser extracts postings from generic job board markup using CSS
// selector heuristics.
type HTMLParser struct{}

func NewHTMLParser() *HTMLParser { return &HTMLParser{} }

// Parse finds job containers (article.job-listing, else div.job) and reads
// title, company, description and a few optional fields from each.
// Containers without a title are skipped but still consume an ordinal.
func (p *HTMLParser) Parse(page *model.Page) ([]model.Posting, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML from %s: %w", page.URL, err)
	}

	containers := doc.Find(containerSelector)
	if containers.Length() == 0 {
		containers = doc.Find(fallbackSelector)
	}

	var postings []model.Posting
	containers.Each(func(i int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find(titleSelector).First().Text())
		if title == "" {
			return
		}

		company := strings.TrimSpace(s.Find(companySelector).First().Text())
		if company == "" {
			company = "Unknown"
		}

		posting := model.Posting{
			Ordinal:     i,
			Title:       title,
			Company:     company,
			Description: strings.TrimSpace(s.Find(descriptionSelector).First().Text()),
			Location:    strings.TrimSpace(s.Find(locationSelector).First().Text()),
			JobType:     strings.TrimSpace(s.Find(jobTypeSelector).First().Text()),
			URL:         page.URL,
		}

		if href, ok := s.Find("a[href]").First().Attr("href"); ok {
			posting.URL = resolveURL(page.URL, href)
		}

		if dt, ok := s.Find(postedSelector).First().Attr("datetime"); ok {
			if t, err := parseDate(dt); err == nil {
				posting.PostedDate = &t
			}
		}

		if raw, err := goquery.OuterHtml(s); err == nil {
			posting.Raw = raw
		}

		postings = append(postings, posting)
	})

	return postings, nil
}

// resolveURL makes href absolute against base. On any parse failure the base
// URL is returned so the posting still points at its source page.
func resolveURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return base
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return base
	}
	return b.ResolveReference(ref).String()
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
