package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobpipe/internal/model"
)

const (
	DefaultMaxConcurrent  = 5
	DefaultRequestTimeout = 30 * time.Second
)

// Config controls the fetch stage.
type Config struct {
	MaxConcurrentRequests int           `json:"max_concurrent_requests"`
	RequestTimeout        time.Duration `json:"request_timeout"`
}

// Ensure Agent implements the fetch-stage contract.
var _ model.Agent[[]string, []model.Job] = (*Agent)(nil)

// Agent retrieves source locations concurrently and turns each page into
// new Jobs. A failing location never fails the batch.
type Agent struct {
	fetcher model.PageFetcher
	parser  model.Parser
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time
}

// New returns a fetch-stage agent. Zero config values fall back to defaults.
func New(fetcher model.PageFetcher, parser model.Parser, cfg Config, logger *slog.Logger) *Agent {
	if cfg.MaxConcurrentRequests <= 0 {
		cfg.MaxConcurrentRequests = DefaultMaxConcurrent
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	return &Agent{
		fetcher: fetcher,
		parser:  parser,
		cfg:     cfg,
		logger:  logger.With("agent", "scraper"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (a *Agent) Name() string { return "ScraperAgent" }

func (a *Agent) Status() model.AgentStatus {
	return model.AgentStatus{Name: a.Name(), Status: "active", Config: a.cfg}
}

// Process fetches every location with at most MaxConcurrentRequests in
// flight. Results are concatenated in completion order.
func (a *Agent) Process(ctx context.Context, locations []string) ([]model.Job, error) {
	a.logger.Info("starting fetch", "urls", len(locations))

	var (
		mu   sync.Mutex
		jobs []model.Job
	)

	g := new(errgroup.Group)
	g.SetLimit(a.cfg.MaxConcurrentRequests)

	for _, loc := range locations {
		g.Go(func() error {
			found := a.scrapeLocation(ctx, loc)
			mu.Lock()
			jobs = append(jobs, found...)
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; per-location failures are logged.
	_ = g.Wait()

	a.logger.Info("fetch complete", "urls", len(locations), "jobs", len(jobs))
	return jobs, nil
}

func (a *Agent) scrapeLocation(ctx context.Context, loc string) []model.Job {
	if ctx.Err() != nil {
		return nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout)
	defer cancel()

	a.logger.Debug("fetching", "url", loc)
	page, err := a.fetcher.Fetch(reqCtx, loc)
	if err != nil {
		a.logger.Warn("fetch failed", "url", loc, "error", err)
		return nil
	}

	postings, err := a.parser.Parse(page)
	if err != nil {
		a.logger.Warn("parse failed", "url", loc, "error", err)
		return nil
	}

	platform := PlatformName(loc)
	scraped := a.now()
	rawKey := "html"
	if strings.Contains(page.ContentType, "json") {
		rawKey = "json"
	}

	jobs := make([]model.Job, 0, len(postings))
	for _, p := range postings {
		jobs = append(jobs, model.Job{
			ExternalID:      fmt.Sprintf("%s_%d", loc, p.Ordinal),
			Title:           p.Title,
			Company:         p.Company,
			Location:        p.Location,
			Description:     p.Description,
			URL:             p.URL,
			SourcePlatform:  platform,
			JobType:         p.JobType,
			PostedDate:      p.PostedDate,
			ScrapedDate:     scraped,
			Status:          model.StatusNew,
			RequiredSkills:  []string{},
			PreferredSkills: []string{},
			RawData: map[string]any{
				rawKey:       p.Raw,
				"source_url": loc,
			},
		})
	}

	a.logger.Debug("parsed location", "url", loc, "jobs", len(jobs))
	return jobs
}

// PlatformName derives a short platform label from a location: the host with
// a leading "www." removed, up to its first dot. Returns "unknown" when the
// location has no host.
func PlatformName(loc string) string {
	u, err := url.Parse(loc)
	if err != nil {
		return "unknown"
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if host == "" {
		return "unknown"
	}
	label, _, _ := strings.Cut(host, ".")
	return label
}
