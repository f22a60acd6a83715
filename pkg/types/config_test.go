// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var c Config
	c.ApplyDefaults()

	assert.Equal(t, DefaultNotionBaseURL, c.Notion.BaseURL)
	assert.Equal(t, DefaultNotionVersion, c.Notion.Version)
	assert.Equal(t, DefaultNotionTimeout, c.Notion.Timeout)
	assert.Equal(t, DefaultNotionRateLimit, c.Notion.RateLimit)
	assert.Equal(t, DefaultModel, c.Generation.Model)
	assert.Equal(t, DefaultRunner, c.Generation.Runner)
	assert.Equal(t, DefaultMaxWordLimit, c.Generation.MaxWordLimit)
	assert.Equal(t, DefaultTopicsPath, c.Paths.Topics)
	assert.Equal(t, DefaultHistoryPath, c.Paths.History)
	assert.Equal(t, DefaultBuckets, c.Refresh.Buckets)
	assert.Equal(t, "info", c.LogLevel)

	c.Refresh.Buckets[0] = "changed"
	assert.Equal(t, "career", DefaultBuckets[0])
}

func TestApplyDefaultsKeepsSetValues(t *testing.T) {
	c := Config{
		Notion:     NotionConfig{RateLimit: 0.5, Timeout: time.Second},
		Generation: GenerationConfig{Model: "llama3", MaxWordLimit: 100},
		Refresh:    RefreshConfig{Buckets: []string{"ai"}, Count: 3},
	}
	c.ApplyDefaults()

	assert.Equal(t, 0.5, c.Notion.RateLimit)
	assert.Equal(t, time.Second, c.Notion.Timeout)
	assert.Equal(t, "llama3", c.Generation.Model)
	assert.Equal(t, 100, c.Generation.MaxWordLimit)
	assert.Equal(t, []string{"ai"}, c.Refresh.Buckets)
	assert.Equal(t, 3, c.Refresh.Count)
}

func TestValidateNotion(t *testing.T) {
	tests := []struct {
		name    string
		cfg     NotionConfig
		wantErr string
	}{
		{"complete", NotionConfig{Token: "secret", DatabaseID: "db"}, ""},
		{"both missing", NotionConfig{}, "NOTION_TOKEN, DATABASE_ID"},
		{"blank token", NotionConfig{Token: "  ", DatabaseID: "db"}, "missing required configuration: NOTION_TOKEN"},
		{"missing database", NotionConfig{Token: "secret"}, "missing required configuration: DATABASE_ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Config{Notion: tt.cfg}
			err := c.ValidateNotion()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr []string
	}{
		{name: "unset values pass", cfg: Config{}},
		{
			name: "explicit values pass",
			cfg: Config{
				Generation: GenerationConfig{MaxWordLimit: 150, Timeout: 2 * time.Minute},
				Refresh:    RefreshConfig{Count: 5, ScrapeTimeout: time.Second},
			},
		},
		{
			name:    "negative word limit",
			cfg:     Config{Generation: GenerationConfig{MaxWordLimit: -5}},
			wantErr: []string{"max_word_limit must be positive, got -5"},
		},
		{
			name:    "negative refresh count",
			cfg:     Config{Refresh: RefreshConfig{Count: -1}},
			wantErr: []string{"refresh count must be positive, got -1"},
		},
		{
			name:    "negative rate limit",
			cfg:     Config{Notion: NotionConfig{RateLimit: -2}},
			wantErr: []string{"notion rate_limit must be positive"},
		},
		{
			name: "sub-second timeouts",
			cfg: Config{
				Generation: GenerationConfig{Timeout: 150 * time.Nanosecond},
				Notion:     NotionConfig{Timeout: -time.Second},
			},
			wantErr: []string{
				"generation timeout must be at least 1s, got 150ns",
				"notion timeout must be at least 1s, got -1s",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	var c Config
	c.ApplyDefaults()
	assert.NoError(t, c.Validate())
}
