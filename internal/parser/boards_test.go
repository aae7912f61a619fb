package parser

import (
	"testing"

	"github.com/amishk599/jobpipe/internal/model"
)

const leverPayload = `[
	{
		"id": "ff7ef527-b0d3-4c44-836a-8d6b58ac321e",
		"text": "Software Engineer",
		"description": "<div>Full HTML description</div>",
		"descriptionPlain": "Plain text job description",
		"categories": {
			"team": "Engineering",
			"location": "San Francisco, CA",
			"commitment": "Full-time",
			"allLocations": ["San Francisco, CA", "Remote"]
		},
		"createdAt": 1769784074110,
		"workplaceType": "hybrid",
		"hostedUrl": "https://jobs.lever.co/acme/ff7ef527-b0d3-4c44-836a-8d6b58ac321e"
	},
	{
		"id": "no-title",
		"text": ""
	},
	{
		"id": "a1b2c3d4-e5f6-7890-abcd-ef1234567890",
		"text": "Backend Engineer",
		"description": "<p>Backend <b>job</b></p>",
		"categories": {"location": "Remote", "commitment": "Contract"},
		"workplaceType": "unspecified"
	}
]`

func TestLeverParser(t *testing.T) {
	page := &model.Page{
		URL:         "https://api.lever.co/v0/postings/acme?mode=json",
		ContentType: "application/json",
		Body:        []byte(leverPayload),
	}

	postings, err := NewLeverParser().Parse(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}

	p := postings[0]
	if p.Company != "acme" {
		t.Errorf("Company = %q, want company slug", p.Company)
	}
	if p.Location != "San Francisco, CA, Remote" {
		t.Errorf("Location = %q", p.Location)
	}
	if p.Description != "Plain text job description Workplace: hybrid." {
		t.Errorf("Description = %q", p.Description)
	}
	if p.JobType != "Full-time" {
		t.Errorf("JobType = %q", p.JobType)
	}
	if p.PostedDate == nil || p.PostedDate.UnixMilli() != 1769784074110 {
		t.Errorf("PostedDate = %v", p.PostedDate)
	}

	second := postings[1]
	if second.Ordinal != 2 {
		t.Errorf("Ordinal = %d, want 2", second.Ordinal)
	}
	if second.Description != "Backend job" {
		t.Errorf("Description = %q, want HTML fallback as text", second.Description)
	}
	if second.URL != page.URL {
		t.Errorf("URL = %q, want page URL fallback", second.URL)
	}
	if second.PostedDate != nil {
		t.Errorf("PostedDate = %v, want nil", second.PostedDate)
	}
}

func TestLeverParser_InvalidJSON(t *testing.T) {
	page := &model.Page{URL: "https://api.lever.co/v0/postings/acme", Body: []byte(`{"ok": false}`)}
	if _, err := NewLeverParser().Parse(page); err == nil {
		t.Fatal("expected error when the body is not an array")
	}
}

const ashbyPayload = `{
	"jobs": [
		{
			"title": "Product Engineer",
			"location": "New York",
			"jobUrl": "https://jobs.ashbyhq.com/acme/1",
			"publishedAt": "2026-02-10T08:00:00+01:00",
			"employmentType": "FullTime",
			"descriptionPlain": "Ship product with TypeScript.",
			"isListed": true
		},
		{
			"title": "Hidden Role",
			"jobUrl": "https://jobs.ashbyhq.com/acme/2",
			"isListed": false
		},
		{
			"title": "Support Intern",
			"jobUrl": "https://jobs.ashbyhq.com/acme/3",
			"employmentType": "Intern",
			"isRemote": true,
			"isListed": true
		}
	]
}`

func TestAshbyParser(t *testing.T) {
	page := &model.Page{
		URL:         "https://api.ashbyhq.com/posting-api/job-board/acme",
		ContentType: "application/json",
		Body:        []byte(ashbyPayload),
	}

	postings, err := NewAshbyParser().Parse(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 listed postings, got %d", len(postings))
	}

	p := postings[0]
	if p.Company != "acme" || p.Location != "New York" || p.URL != "https://jobs.ashbyhq.com/acme/1" {
		t.Errorf("posting = %+v", p)
	}
	if p.JobType != model.JobTypeFullTime {
		t.Errorf("JobType = %q", p.JobType)
	}
	if p.PostedDate == nil || p.PostedDate.Hour() != 7 {
		t.Errorf("PostedDate should be normalised to UTC, got %v", p.PostedDate)
	}

	intern := postings[1]
	if intern.Location != "Remote" {
		t.Errorf("Location = %q, want Remote for isRemote without location", intern.Location)
	}
	if intern.JobType != model.JobTypeInternship {
		t.Errorf("JobType = %q", intern.JobType)
	}
}

const gemPayload = `[
	{
		"id": "abc-123",
		"title": "Software Engineer",
		"location": {"name": "San Francisco, CA"},
		"absolute_url": "https://jobs.gem.com/retool/jobs/abc-123",
		"first_published_at": "2026-02-10T09:00:00Z",
		"content": "<p>Build <em>internal tools</em></p>"
	},
	{
		"id": "def-456",
		"title": "Backend Engineer",
		"location": {"name": "Remote, US"},
		"content_plain": "Plain description",
		"first_published_at": "not a date"
	}
]`

func TestGemParser(t *testing.T) {
	page := &model.Page{URL: "https://api.gem.com/job_board/v0/retool/job_posts/", Body: []byte(gemPayload)}

	postings, err := NewGemParser().Parse(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}
	if p := postings[0]; p.Company != "retool" || p.Description != "Build internal tools" || p.PostedDate == nil {
		t.Errorf("first posting = %+v", p)
	}
	if p := postings[1]; p.Description != "Plain description" || p.PostedDate != nil || p.URL != page.URL {
		t.Errorf("second posting = %+v", p)
	}
}

func TestAuto_DispatchJobBoards(t *testing.T) {
	tests := []struct {
		name string
		page *model.Page
		want string
	}{
		{
			name: "lever host",
			page: &model.Page{URL: "https://api.lever.co/v0/postings/acme?mode=json", Body: []byte(leverPayload)},
			want: "Software Engineer",
		},
		{
			name: "ashby host",
			page: &model.Page{URL: "https://api.ashbyhq.com/posting-api/job-board/acme", ContentType: "application/json", Body: []byte(ashbyPayload)},
			want: "Product Engineer",
		},
		{
			name: "gem host",
			page: &model.Page{URL: "https://api.gem.com/job_board/v0/retool/job_posts/", Body: []byte(gemPayload)},
			want: "Software Engineer",
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
