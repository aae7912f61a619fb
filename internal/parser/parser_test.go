package parser

import (
	"strings"
	"testing"

	"github.com/amishk599/jobpipe/internal/model"
)

const listingHTML = `<html><body>
<article class="job-listing">
  <h2 class="title">Senior Go Engineer</h2>
  <span class="company">Acme Corp</span>
  <div class="location">Location: Paris</div>
  <div class="description">Build services in Go and Python. $80,000 - $120,000</div>
  <a href="/jobs/1">Apply</a>
  <time datetime="2026-03-01">March 1</time>
</article>
<article class="job-listing">
  <span class="company">No Title Inc</span>
</article>
<article class="job-listing">
  <h3 class="job-title">Data Analyst</h3>
  <div class="description">SQL dashboards</div>
</article>
<div class="job"><h2 class="title">Ignored fallback</h2></div>
</body></html>`

func TestHTMLParser_JobListingArticles(t *testing.T) {
	page := &model.Page{URL: "https://www.example.com/careers", ContentType: "text/html", Body: []byte(listingHTML)}

	postings, err := NewHTMLParser().Parse(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}

	p := postings[0]
	if p.Ordinal != 0 {
		t.Errorf("Ordinal = %d, want 0", p.Ordinal)
	}
	if p.Title != "Senior Go Engineer" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Company != "Acme Corp" {
		t.Errorf("Company = %q", p.Company)
	}
	if p.Location != "Location: Paris" {
		t.Errorf("Location = %q", p.Location)
	}
	if !strings.Contains(p.Description, "$80,000 - $120,000") {
		t.Errorf("Description = %q", p.Description)
	}
	if p.URL != "https://www.example.com/jobs/1" {
		t.Errorf("URL = %q", p.URL)
	}
	if p.PostedDate == nil || p.PostedDate.Format("2006-01-02") != "2026-03-01" {
		t.Errorf("PostedDate = %v", p.PostedDate)
	}
	if !strings.Contains(p.Raw, "job-listing") {
		t.Errorf("Raw should carry the element HTML, got %q", p.Raw)
	}

	// The titleless article still consumes ordinal 1.
	second := postings[1]
	if second.Ordinal != 2 {
		t.Errorf("second Ordinal = %d, want 2", second.Ordinal)
	}
	if second.Company != "Unknown" {
		t.Errorf("second Company = %q, want Unknown", second.Company)
	}
	if second.URL != page.URL {
		t.Errorf("second URL = %q, want page URL", second.URL)
	}
}

func TestHTMLParser_FallsBackToDivJob(t *testing.T) {
	body := `<div class="job"><a class="job-title" href="https://jobs.example.com/7">QA Engineer</a>
	<p class="job-description">Manual and automated testing</p></div>`
	page := &model.Page{URL: "https://example.com", Body: []byte(body)}

	postings, err := NewHTMLParser().Parse(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	if postings[0].Title != "QA Engineer" {
		t.Errorf("Title = %q", postings[0].Title)
	}
	if postings[0].Description != "Manual and automated testing" {
		t.Errorf("Description = %q", postings[0].Description)
	}
	if postings[0].URL != "https://jobs.example.com/7" {
		t.Errorf("URL = %q", postings[0].URL)
	}
}

func TestHTMLParser_NoContainers(t *testing.T) {
	page := &model.Page{URL: "https://example.com", Body: []byte("<html><body><p>nothing here</p></body></html>")}
	postings, err := NewHTMLParser().Parse(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 0 {
		t.Errorf("expected no postings, got %d", len(postings))
	}
}

const greenhousePayload = `{
	"jobs": [
		{
			"id": 12345,
			"title": "Software Engineer",
			"location": {"name": "San Francisco, CA"},
			"absolute_url": "https://boards.greenhouse.io/acme/jobs/12345",
			"updated_at": "2026-02-13T10:00:00-05:00",
			"content": "&lt;p&gt;We use &lt;strong&gt;Go&lt;/strong&gt; and Kubernetes.&lt;/p&gt;"
		},
		{
			"id": 67890,
			"title": "",
			"location": {"name": "Remote"}
		},
		{
			"id": 11111,
			"title": "Backend Engineer",
			"location": {"name": "Remote, US"},
			"absolute_url": "https://boards.greenhouse.io/acme/jobs/11111"
		}
	]
}`

func TestGreenhouseParser(t *testing.T) {
	page := &model.Page{
		URL:         "https://boards-api.greenhouse.io/v1/boards/acme/jobs?content=true",
		ContentType: "application/json",
		Body:        []byte(greenhousePayload),
	}

	postings, err := NewGreenhouseParser().Parse(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}

	p := postings[0]
	if p.Company != "acme" {
		t.Errorf("Company = %q, want board token", p.Company)
	}
	if p.Description != "We use Go and Kubernetes." {
		t.Errorf("Description = %q", p.Description)
	}
	if p.PostedDate == nil || p.PostedDate.Hour() != 15 {
		t.Errorf("PostedDate should be normalised to UTC, got %v", p.PostedDate)
	}
	if postings[1].Ordinal != 2 {
		t.Errorf("second Ordinal = %d, want 2", postings[1].Ordinal)
	}
}

func TestGreenhouseParser_InvalidJSON(t *testing.T) {
	page := &model.Page{URL: "https://boards-api.greenhouse.io/v1/boards/acme/jobs", Body: []byte("{not json")}
	if _, err := NewGreenhouseParser().Parse(page); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestAuto_Dispatch(t *testing.T) {
	tests := []struct {
		name string
		page *model.Page
		want string
	}{
		{
			name: "greenhouse host",
			page: &model.Page{URL: "https://boards-api.greenhouse.io/v1/boards/acme/jobs", Body: []byte(greenhousePayload)},
			want: "Software Engineer",
		},
		{
			name: "json jobs array on other host",
			page: &model.Page{URL: "https://example.com/api/jobs", ContentType: "application/json", Body: []byte(greenhousePayload)},
			want: "Software Engineer",
		},
		{
			name: "html",
			page: &model.Page{URL: "https://example.com/careers", ContentType: "text/html", Body: []byte(listingHTML)},
			want: "Senior Go Engineer",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			postings, err := NewAuto().Parse(tt.page)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(postings) == 0 || postings[0].Title != tt.want {
				t.Fatalf("first posting = %+v, want title %q", postings, tt.want)
			}
		})
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"<p>Hello</p><p>World</p>", "Hello World"},
		{"&lt;b&gt;Bold&lt;/b&gt; &amp; plain", "Bold & plain"},
		{"  spaced \n\t out  ", "spaced out"},
	}
	for _, tt := range tests {
		if got := extractText(tt.in); got != tt.want {
			t.Errorf("extractText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
