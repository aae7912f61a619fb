package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobpipe/internal/filter"
	"github.com/amishk599/jobpipe/internal/model"
	"github.com/amishk599/jobpipe/internal/normalizer"
)

// Config is the root configuration for jobpipe.
type Config struct {
	Scraper    ScraperConfig     `yaml:"scraper"`
	Normalizer normalizer.Config `yaml:"normalizer"`
	Storage    StorageConfig     `yaml:"storage"`
	Responder  ResponderConfig   `yaml:"responder"`
	Schedule   ScheduleConfig    `yaml:"schedule"`
	API        APIConfig         `yaml:"api"`
}

// ScraperConfig controls retrieval concurrency and politeness.
type ScraperConfig struct {
	MaxConcurrentRequests int             `yaml:"max_concurrent_requests" validate:"min=1,max=100"`
	RequestTimeout        time.Duration   `yaml:"request_timeout" validate:"gt=0"`
	UserAgent             string          `yaml:"user_agent"` // empty rotates a built-in list
	RateLimit             RateLimitConfig `yaml:"rate_limit"`
	Retry                 RetryConfig     `yaml:"retry"`
	Cache                 CacheConfig     `yaml:"cache"`
}

// RateLimitConfig sets the minimum gap between requests to one host.
type RateLimitConfig struct {
	MinDelay time.Duration `yaml:"min_delay" validate:"min=0"`
}

// RetryConfig controls retries of transient retrieval failures.
type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries" validate:"min=0,max=10"`
	BaseDelay  time.Duration `yaml:"base_delay" validate:"min=0"`
}

// CacheConfig enables the Redis page cache when RedisURL is set.
type CacheConfig struct {
	RedisURL string        `yaml:"redis_url" validate:"omitempty,url"`
	TTL      time.Duration `yaml:"ttl" validate:"min=0"`
}

// StorageConfig selects the relational engine. DatabaseURL (PostgreSQL) wins
// over DBPath (SQLite) when both are set.
type StorageConfig struct {
	DBPath      string `yaml:"db_path" validate:"required_without=DatabaseURL"`
	DatabaseURL string `yaml:"database_url"`
}

// SenderConfig picks how auto-responses are delivered.
type SenderConfig struct {
	Type       string `yaml:"type" validate:"omitempty,oneof=log slack"`
	WebhookURL string `yaml:"webhook_url"`
}

// TemplateConfig is one configured response template.
type TemplateConfig struct {
	Name          string            `yaml:"name" validate:"required"`
	Subject       string            `yaml:"subject" validate:"required"`
	Body          string            `yaml:"body" validate:"required"`
	Variables     map[string]string `yaml:"variables,omitempty"`
	MatchKeywords []string          `yaml:"match_keywords,omitempty"`
}

// ResponderConfig controls eligibility, templates and delivery.
type ResponderConfig struct {
	AutoRespond     bool              `yaml:"auto_respond"`
	Recipient       string            `yaml:"recipient"`
	Sender          SenderConfig      `yaml:"sender"`
	Criteria        filter.Criteria   `yaml:"response_criteria"`
	Templates       []TemplateConfig  `yaml:"templates,omitempty" validate:"dive"`
	CustomVariables map[string]string `yaml:"custom_variables,omitempty"`
}

// ResponseTemplates converts the configured templates to the model type.
func (r ResponderConfig) ResponseTemplates() []model.ResponseTemplate {
	out := make([]model.ResponseTemplate, 0, len(r.Templates))
	for _, t := range r.Templates {
		out = append(out, model.ResponseTemplate{
			Name:          t.Name,
			Subject:       t.Subject,
			Body:          t.Body,
			Variables:     t.Variables,
			MatchKeywords: t.MatchKeywords,
		})
	}
	return out
}

// ScheduleConfig drives the start command.
type ScheduleConfig struct {
	Cron string   `yaml:"cron" validate:"required"`
	URLs []string `yaml:"urls,omitempty" validate:"dive,url"`
}

// APIConfig configures the serve command.
type APIConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

const (
	DefaultDBPath   = "data/jobs.db"
	DefaultCron     = "@every 6h"
	DefaultAPIAddr  = ":8080"
	slackWebhookURL = "https://hooks.slack.com/"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	minSalary := 50000.0
	return &Config{
		Scraper: ScraperConfig{
			MaxConcurrentRequests: 5,
			RequestTimeout:        30 * time.Second,
			Retry:                 RetryConfig{MaxRetries: 2, BaseDelay: 2 * time.Second},
			Cache:                 CacheConfig{TTL: time.Hour},
		},
		Normalizer: normalizer.DefaultConfig(),
		Storage:    StorageConfig{DBPath: DefaultDBPath},
		Responder: ResponderConfig{
			Sender: SenderConfig{Type: "log"},
			Criteria: filter.Criteria{
				RequiredSkills: []string{"Python", "JavaScript"},
				JobTypes:       []string{model.JobTypeFullTime, model.JobTypeContract},
				RemoteTypes:    []string{model.RemoteTypeRemote, model.RemoteTypeHybrid},
				MinSalary:      &minSalary,
			},
			CustomVariables: map[string]string{
				"your_name":  "Your Name",
				"your_email": "your.email@example.com",
			},
		},
		Schedule: ScheduleConfig{Cron: DefaultCron},
		API:      APIConfig{Addr: DefaultAPIAddr},
	}
}

// rawConfig is used for YAML unmarshaling (durations as strings, optional toggles).
type rawConfig struct {
	Scraper struct {
		MaxConcurrentRequests *int   `yaml:"max_concurrent_requests"`
		RequestTimeout        string `yaml:"request_timeout"`
		UserAgent             string `yaml:"user_agent"`
		RateLimit             struct {
			MinDelay string `yaml:"min_delay"`
		} `yaml:"rate_limit"`
		Retry struct {
			MaxRetries *int   `yaml:"max_retries"`
			BaseDelay  string `yaml:"base_delay"`
		} `yaml:"retry"`
		Cache struct {
			RedisURL string `yaml:"redis_url"`
			TTL      string `yaml:"ttl"`
		} `yaml:"cache"`
	} `yaml:"scraper"`
	Normalizer struct {
		ExtractSkills     *bool `yaml:"extract_skills"`
		ExtractSalary     *bool `yaml:"extract_salary"`
		NormalizeLocation *bool `yaml:"normalize_location"`
	} `yaml:"normalizer"`
	Storage   StorageConfig   `yaml:"storage"`
	Responder ResponderConfig `yaml:"responder"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	API       APIConfig       `yaml:"api"`
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. Unset scalar keys take their defaults; response criteria
// and templates are taken from the file as written.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse is Load without the file read.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	cfg.Responder = raw.Responder

	s := raw.Scraper
	if s.MaxConcurrentRequests != nil {
		cfg.Scraper.MaxConcurrentRequests = *s.MaxConcurrentRequests
	}
	cfg.Scraper.UserAgent = s.UserAgent
	cfg.Scraper.Cache.RedisURL = s.Cache.RedisURL
	if s.Retry.MaxRetries != nil {
		cfg.Scraper.Retry.MaxRetries = *s.Retry.MaxRetries
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"scraper.request_timeout", s.RequestTimeout, &cfg.Scraper.RequestTimeout},
		{"scraper.rate_limit.min_delay", s.RateLimit.MinDelay, &cfg.Scraper.RateLimit.MinDelay},
		{"scraper.retry.base_delay", s.Retry.BaseDelay, &cfg.Scraper.Retry.BaseDelay},
		{"scraper.cache.ttl", s.Cache.TTL, &cfg.Scraper.Cache.TTL},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", d.key, d.raw, err)
		}
		*d.dst = v
	}

	n := raw.Normalizer
	if n.ExtractSkills != nil {
		cfg.Normalizer.ExtractSkills = *n.ExtractSkills
	}
	if n.ExtractSalary != nil {
		cfg.Normalizer.ExtractSalary = *n.ExtractSalary
	}
	if n.NormalizeLocation != nil {
		cfg.Normalizer.NormalizeLocation = *n.NormalizeLocation
	}

	if raw.Storage.DBPath != "" || raw.Storage.DatabaseURL != "" {
		cfg.Storage = raw.Storage
	}
	if raw.Responder.Sender.Type == "" {
		cfg.Responder.Sender.Type = "log"
	}
	if raw.Schedule.Cron != "" {
		cfg.Schedule.Cron = raw.Schedule.Cron
	}
	cfg.Schedule.URLs = raw.Schedule.URLs
	if raw.API.Addr != "" {
		cfg.API.Addr = raw.API.Addr
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if err := validateStruct(cfg); err != nil {
		return err
	}

	if cfg.Responder.Sender.Type == "slack" {
		if cfg.Responder.Sender.WebhookURL == "" {
			return fmt.Errorf("responder.sender.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Responder.Sender.WebhookURL, slackWebhookURL) {
			return fmt.Errorf("responder.sender.webhook_url must start with %s", slackWebhookURL)
		}
	}

	if _, err := cron.ParseStandard(cfg.Schedule.Cron); err != nil {
		return fmt.Errorf("schedule.cron %q: %w", cfg.Schedule.Cron, err)
	}

	for _, jt := range cfg.Responder.Criteria.JobTypes {
		if !oneOf(jt, model.JobTypeFullTime, model.JobTypePartTime, model.JobTypeContract, model.JobTypeInternship, model.JobTypeTemporary) {
			return fmt.Errorf("responder.response_criteria.job_types: unknown job type %q", jt)
		}
	}
	for _, rt := range cfg.Responder.Criteria.RemoteTypes {
		if !oneOf(rt, model.RemoteTypeRemote, model.RemoteTypeHybrid, model.RemoteTypeOnSite) {
			return fmt.Errorf("responder.response_criteria.remote_types: unknown remote type %q", rt)
		}
	}

	return nil
}

func oneOf(s string, options ...string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}

// Marshal renders cfg as YAML in the same layout Load accepts.
func Marshal(cfg *Config) ([]byte, error) {
	type rateLimit struct {
		MinDelay string `yaml:"min_delay"`
	}
	type retry struct {
		MaxRetries int    `yaml:"max_retries"`
		BaseDelay  string `yaml:"base_delay"`
	}
	type cache struct {
		RedisURL string `yaml:"redis_url"`
		TTL      string `yaml:"ttl"`
	}
	type scraper struct {
		MaxConcurrentRequests int       `yaml:"max_concurrent_requests"`
		RequestTimeout        string    `yaml:"request_timeout"`
		UserAgent             string    `yaml:"user_agent"`
		RateLimit             rateLimit `yaml:"rate_limit"`
		Retry                 retry     `yaml:"retry"`
		Cache                 cache     `yaml:"cache"`
	}
	type normalizerOut struct {
		ExtractSkills     bool `yaml:"extract_skills"`
		ExtractSalary     bool `yaml:"extract_salary"`
		NormalizeLocation bool `yaml:"normalize_location"`
	}
	out := struct {
		Scraper    scraper         `yaml:"scraper"`
		Normalizer normalizerOut   `yaml:"normalizer"`
		Storage    StorageConfig   `yaml:"storage"`
		Responder  ResponderConfig `yaml:"responder"`
		Schedule   ScheduleConfig  `yaml:"schedule"`
		API        APIConfig       `yaml:"api"`
	}{
		Scraper: scraper{
			MaxConcurrentRequests: cfg.Scraper.MaxConcurrentRequests,
			RequestTimeout:        cfg.Scraper.RequestTimeout.String(),
			UserAgent:             cfg.Scraper.UserAgent,
			RateLimit:             rateLimit{MinDelay: cfg.Scraper.RateLimit.MinDelay.String()},
			Retry:                 retry{MaxRetries: cfg.Scraper.Retry.MaxRetries, BaseDelay: cfg.Scraper.Retry.BaseDelay.String()},
			Cache:                 cache{RedisURL: cfg.Scraper.Cache.RedisURL, TTL: cfg.Scraper.Cache.TTL.String()},
		},
		Normalizer: normalizerOut{
			ExtractSkills:     cfg.Normalizer.ExtractSkills,
			ExtractSalary:     cfg.Normalizer.ExtractSalary,
			NormalizeLocation: cfg.Normalizer.NormalizeLocation,
		},
		Storage:   cfg.Storage,
		Responder: cfg.Responder,
		Schedule:  cfg.Schedule,
		API:       cfg.API,
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}
