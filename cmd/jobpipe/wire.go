package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/amishk599/jobpipe/internal/cache"
	"github.com/amishk599/jobpipe/internal/config"
	"github.com/amishk599/jobpipe/internal/httpclient"
	"github.com/amishk599/jobpipe/internal/model"
	"github.com/amishk599/jobpipe/internal/normalizer"
	"github.com/amishk599/jobpipe/internal/notifier"
	"github.com/amishk599/jobpipe/internal/parser"
	"github.com/amishk599/jobpipe/internal/pipeline"
	"github.com/amishk599/jobpipe/internal/ratelimit"
	"github.com/amishk599/jobpipe/internal/responder"
	"github.com/amishk599/jobpipe/internal/retry"
	"github.com/amishk599/jobpipe/internal/scraper"
	"github.com/amishk599/jobpipe/internal/storage"
	"github.com/amishk599/jobpipe/internal/store"
)

// app holds the wired pipeline and the resources that must be released
// when a command exits.
type app struct {
	cfg       *config.Config
	pipeline  *pipeline.Pipeline
	repo      model.JobRepository
	responder *responder.Agent
	closers   []func() error
	logger    *slog.Logger
}

// newApp builds every stage from cfg. With dryRun nothing is persisted.
func newApp(ctx context.Context, cfg *config.Config, dryRun bool, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	fetcher, err := a.buildFetcher(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	repo, storageCfg, err := openRepository(ctx, cfg.Storage, dryRun)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.repo = repo
	a.closers = append(a.closers, repo.Close)
	logger.Info("storage ready", "engine", storageCfg.Engine, "db_path", storageCfg.DBPath)

	a.responder = newResponder(cfg, logger)

	a.pipeline = pipeline.New(
		scraper.New(fetcher, parser.NewAuto(), scraper.Config{
			MaxConcurrentRequests: cfg.Scraper.MaxConcurrentRequests,
			RequestTimeout:        cfg.Scraper.RequestTimeout,
		}, logger),
		normalizer.New(cfg.Normalizer, logger),
		storage.New(repo, storageCfg, logger),
		a.responder,
		logger,
	)
	return a, nil
}

// buildFetcher stacks the retrieval decorators: page cache (optional), then
// retries, then per-host rate limiting around the HTTP client.
func (a *app) buildFetcher(ctx context.Context) (model.PageFetcher, error) {
	sc := a.cfg.Scraper

	var fetcher model.PageFetcher = httpclient.New(sc.RequestTimeout, sc.UserAgent)
	fetcher = ratelimit.NewRateLimitedFetcher(fetcher, ratelimit.NewHostRateLimiter(sc.RateLimit.MinDelay))
	if sc.Retry.MaxRetries > 0 {
		fetcher = retry.New(fetcher, retry.Policy{MaxRetries: sc.Retry.MaxRetries, BaseDelay: sc.Retry.BaseDelay}, a.logger)
	}

	if sc.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, sc.Cache.RedisURL, sc.Cache.TTL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rc.Close)
		fetcher = cache.NewCachedFetcher(fetcher, rc, a.logger)
		a.logger.Info("page cache enabled", "ttl", sc.Cache.TTL.String())
	}
	return fetcher, nil
}

// openRepository picks the relational engine: none for dry runs, PostgreSQL
// when a database URL is configured, SQLite otherwise.
func openRepository(ctx context.Context, cfg config.StorageConfig, dryRun bool) (model.JobRepository, storage.Config, error) {
	switch {
	case dryRun:
		return store.NewNopStore(), storage.Config{Engine: "none"}, nil
	case cfg.DatabaseURL != "":
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, storage.Config{}, err
		}
		return pg, storage.Config{Engine: "postgres"}, nil
	default:
		lite, err := store.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, storage.Config{}, err
		}
		return lite, storage.Config{Engine: "sqlite", DBPath: cfg.DBPath}, nil
	}
}

func newResponder(cfg *config.Config, logger *slog.Logger) *responder.Agent {
	r := cfg.Responder
	return responder.New(responder.Config{
		AutoRespond:     r.AutoRespond,
		Recipient:       r.Recipient,
		Criteria:        r.Criteria,
		Templates:       r.ResponseTemplates(),
		CustomVariables: r.CustomVariables,
	}, setupSender(r.Sender, logger), logger)
}

func setupSender(cfg config.SenderConfig, logger *slog.Logger) model.Sender {
	switch cfg.Type {
	case "slack":
		logger.Info("using slack sender")
		return notifier.NewSlackSender(cfg.WebhookURL, &http.Client{Timeout: 30 * time.Second}, logger)
	default:
		return notifier.NewLogSender(logger)
	}
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("closing resource", "error", err)
		}
	}
	a.closers = nil
}

// urlsOrSchedule returns args, falling back to the configured schedule URLs.
func urlsOrSchedule(args []string, cfg *config.Config) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(cfg.Schedule.URLs) > 0 {
		return cfg.Schedule.URLs, nil
	}
	return nil, fmt.Errorf("no URLs given and schedule.urls is empty")
}
