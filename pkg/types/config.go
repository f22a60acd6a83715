// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Defaults applied by the CLI when a setting is absent from every source.
const (
	DefaultNotionBaseURL    = "https://api.notion.com"
	DefaultNotionVersion    = "2022-06-28"
	DefaultNotionTimeout    = 30 * time.Second
	DefaultNotionRateLimit  = 3.0
	DefaultModel            = "mistral"
	DefaultRunner           = "ollama"
	DefaultRunnerTimeout    = 150 * time.Second
	DefaultMaxWordLimit     = 220
	DefaultRefreshCount     = 10
	DefaultRefreshTimeout   = 90 * time.Second
	DefaultScrapeTimeout    = 20 * time.Second
	DefaultInstructionsPath = "instructions.md"
	DefaultTopicsPath       = "topics.json"
	DefaultHistoryPath      = "used_topics.json"
	DefaultRestrictionsPath = "scrape_restrictions.json"
	DefaultArchivePath      = "post-engine.db"
)

// DefaultBuckets is the bucket list the refresh command rebuilds when none is
// configured.
var DefaultBuckets = []string{"career", "ai", "discipline", "personal_brand"}

// NotionConfig holds settings for the remote workspace API.
type NotionConfig struct {
	// Token is the integration secret sent as a bearer token.
	Token string `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`

	// DatabaseID identifies the database that receives draft pages.
	DatabaseID string `json:"database_id" yaml:"database_id" mapstructure:"database_id"`

	// BaseURL is the API root (default https://api.notion.com).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Version is the value of the Notion-Version header.
	Version string `json:"version" yaml:"version" mapstructure:"version"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// RateLimit caps requests per second (the API averages three).
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`
}

// GenerationConfig holds settings for drafting post text.
type GenerationConfig struct {
	// Model is the language model identifier passed to the runner (e.g. "mistral").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// Runner is the runner executable (default "ollama").
	Runner string `json:"runner" yaml:"runner" mapstructure:"runner"`

	// Timeout is the wall-clock limit for one runner invocation.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxWordLimit is the maximum number of words a draft may contain.
	MaxWordLimit int `json:"max_word_limit" yaml:"max_word_limit" mapstructure:"max_word_limit"`

	// InstructionsPath is the prompt template file containing {topic} and
	// {MAX_WORD_LIMIT} placeholders.
	InstructionsPath string `json:"instructions" yaml:"instructions" mapstructure:"instructions"`
}

// PathsConfig locates the files the pipeline reads and writes.
type PathsConfig struct {
	Topics       string `json:"topics" yaml:"topics" mapstructure:"topics"`
	History      string `json:"history" yaml:"history" mapstructure:"history"`
	Restrictions string `json:"restrictions" yaml:"restrictions" mapstructure:"restrictions"`
	Archive      string `json:"archive" yaml:"archive" mapstructure:"archive"`
}

// RefreshConfig holds settings for rebuilding the topic store.
type RefreshConfig struct {
	// Buckets lists the buckets to rebuild.
	Buckets []string `json:"buckets" yaml:"buckets" mapstructure:"buckets"`

	// Count is the number of topics requested from the model per bucket.
	Count int `json:"count" yaml:"count" mapstructure:"count"`

	// Timeout bounds each model call during refresh.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// ScrapeTimeout bounds each source page fetch.
	ScrapeTimeout time.Duration `json:"scrape_timeout" yaml:"scrape_timeout" mapstructure:"scrape_timeout"`

	// UserAgent is sent with scrape requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// Config groups every setting, built once at startup and passed to each
// component.
type Config struct {
	Notion     NotionConfig     `json:"notion" yaml:"notion" mapstructure:"notion"`
	Generation GenerationConfig `json:"generation" yaml:"generation" mapstructure:"generation"`
	Paths      PathsConfig      `json:"paths" yaml:"paths" mapstructure:"paths"`
	Refresh    RefreshConfig    `json:"refresh" yaml:"refresh" mapstructure:"refresh"`
	LogLevel   string           `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
}

// ApplyDefaults fills zero-valued settings with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Notion.BaseURL == "" {
		c.Notion.BaseURL = DefaultNotionBaseURL
	}
	if c.Notion.Version == "" {
		c.Notion.Version = DefaultNotionVersion
	}
	if c.Notion.Timeout <= 0 {
		c.Notion.Timeout = DefaultNotionTimeout
	}
	if c.Notion.RateLimit <= 0 {
		c.Notion.RateLimit = DefaultNotionRateLimit
	}
	if c.Generation.Model == "" {
		c.Generation.Model = DefaultModel
	}
	if c.Generation.Runner == "" {
		c.Generation.Runner = DefaultRunner
	}
	if c.Generation.Timeout <= 0 {
		c.Generation.Timeout = DefaultRunnerTimeout
	}
	if c.Generation.MaxWordLimit <= 0 {
		c.Generation.MaxWordLimit = DefaultMaxWordLimit
	}
	if c.Generation.InstructionsPath == "" {
		c.Generation.InstructionsPath = DefaultInstructionsPath
	}
	if c.Paths.Topics == "" {
		c.Paths.Topics = DefaultTopicsPath
	}
	if c.Paths.History == "" {
		c.Paths.History = DefaultHistoryPath
	}
	if c.Paths.Restrictions == "" {
		c.Paths.Restrictions = DefaultRestrictionsPath
	}
	if c.Paths.Archive == "" {
		c.Paths.Archive = DefaultArchivePath
	}
	if len(c.Refresh.Buckets) == 0 {
		c.Refresh.Buckets = append([]string(nil), DefaultBuckets...)
	}
	if c.Refresh.Count <= 0 {
		c.Refresh.Count = DefaultRefreshCount
	}
	if c.Refresh.Timeout <= 0 {
		c.Refresh.Timeout = DefaultRefreshTimeout
	}
	if c.Refresh.ScrapeTimeout <= 0 {
		c.Refresh.ScrapeTimeout = DefaultScrapeTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// ValidateNotion reports missing remote workspace credentials. Commands that
// talk to the workspace call it before doing any I/O.
func (c *Config) ValidateNotion() error {
	var missing []string
	if strings.TrimSpace(c.Notion.Token) == "" {
		missing = append(missing, "NOTION_TOKEN")
	}
	if strings.TrimSpace(c.Notion.DatabaseID) == "" {
		missing = append(missing, "DATABASE_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// MinTimeout is the shortest accepted timeout. Anything shorter cannot
// complete a request or a model call.
const MinTimeout = time.Second

// Validate checks explicitly set values. Zero means unset and is left for
// ApplyDefaults, so Validate runs before it.
func (c *Config) Validate() error {
	var errs []error
	if c.Generation.MaxWordLimit < 0 {
		errs = append(errs, fmt.Errorf("max_word_limit must be positive, got %d", c.Generation.MaxWordLimit))
	}
	if c.Refresh.Count < 0 {
		errs = append(errs, fmt.Errorf("refresh count must be positive, got %d", c.Refresh.Count))
	}
	if c.Notion.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("notion rate_limit must be positive, got %g", c.Notion.RateLimit))
	}
	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"notion timeout", c.Notion.Timeout},
		{"generation timeout", c.Generation.Timeout},
		{"refresh timeout", c.Refresh.Timeout},
		{"scrape timeout", c.Refresh.ScrapeTimeout},
	} {
		if d.val != 0 && d.val < MinTimeout {
			errs = append(errs, fmt.Errorf("%s must be at least %s, got %s", d.name, MinTimeout, d.val))
		}
	}
	return errors.Join(errs...)
}
