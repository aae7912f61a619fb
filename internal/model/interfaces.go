package model

import (
	"context"
	"time"
)

// Page is the raw result of retrieving one source location.
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Posting is one field-tagged element extracted from a Page, before it
// becomes a Job.
type Posting struct {
	Ordinal     int // position among candidate elements on the page
	Title       string
	Company     string
	Location    string
	Description string
	URL         string
	JobType     string
	PostedDate  *time.Time
	Raw         string // source fragment (HTML or JSON) the posting was read from
}

// PageFetcher retrieves a location over the network.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Parser turns a retrieved page into postings.
type Parser interface {
	Parse(page *Page) ([]Posting, error)
}

// JobWriter is the write side of a repository, only valid inside InTx.
type JobWriter interface {
	// LookupID returns the stored ID for externalID, if a row exists.
	LookupID(ctx context.Context, externalID string) (string, bool, error)
	Insert(ctx context.Context, job Job) error
	Update(ctx context.Context, job Job) error
}

// JobRepository is a relational store of jobs keyed by ExternalID.
type JobRepository interface {
	// InTx runs fn inside a single transaction. The transaction is committed
	// when fn returns nil and rolled back otherwise.
	InTx(ctx context.Context, fn func(w JobWriter) error) error
	ListJobs(ctx context.Context, q JobQuery) ([]Job, error)
	CountByStatus(ctx context.Context) (map[JobStatus]int, error)
	Close() error
}

// Sender delivers a rendered response to a recipient.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// AgentStatus is the self-reported state of a pipeline stage.
type AgentStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Config any    `json:"config"`
}

// Agent is one pipeline stage: it transforms a batch of input into output.
type Agent[In, Out any] interface {
	Name() string
	Process(ctx context.Context, in In) (Out, error)
	Status() AgentStatus
}
