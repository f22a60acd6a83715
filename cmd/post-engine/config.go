// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/post-engine/internal/secrets"
	"github.com/pdiddy/post-engine/pkg/types"
)

// configEnv maps each config key to the environment variables that set it.
// The first name is the one documented for users.
var configEnv = []struct {
	key  string
	envs []string
}{
	{"notion.token", []string{"NOTION_TOKEN"}},
	{"notion.database_id", []string{"DATABASE_ID", "NOTION_DATABASE_ID"}},
	{"notion.base_url", []string{"NOTION_BASE_URL"}},
	{"notion.version", []string{"NOTION_VERSION"}},
	{"notion.timeout", []string{"NOTION_TIMEOUT"}},
	{"notion.rate_limit", []string{"NOTION_RATE_LIMIT"}},
	{"generation.model", []string{"MODEL_NAME"}},
	{"generation.runner", []string{"RUNNER_BIN"}},
	{"generation.timeout", []string{"RUNNER_TIMEOUT"}},
	{"generation.max_word_limit", []string{"MAX_WORD_LIMIT"}},
	{"generation.instructions", []string{"INSTRUCTIONS_PATH"}},
	{"paths.topics", []string{"TOPICS_FILE"}},
	{"paths.history", []string{"HISTORY_FILE_PATH"}},
	{"paths.restrictions", []string{"RESTRICTIONS_FILE"}},
	{"paths.archive", []string{"ARCHIVE_DB"}},
	{"refresh.buckets", []string{"REFRESH_BUCKETS"}},
	{"refresh.count", []string{"REFRESH_COUNT"}},
	{"refresh.timeout", []string{"REFRESH_TIMEOUT"}},
	{"refresh.scrape_timeout", []string{"SCRAPE_TIMEOUT"}},
	{"refresh.user_agent", []string{"SCRAPE_USER_AGENT"}},
	{"log.level", []string{"LOG_LEVEL"}},
}

// bindConfig binds every config key to its environment variables. Any other
// key can still be set as POST_ENGINE_<SECTION>_<NAME>.
func bindConfig(v *viper.Viper) {
	v.SetEnvPrefix("POST_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, c := range configEnv {
		args := append([]string{c.key}, c.envs...)
		v.BindEnv(args...)
	}
}

// loadConfig resolves the configuration from v, falling back to secret files
// for credentials, and applies defaults.
func loadConfig(v *viper.Viper, s map[string]string) (types.Config, error) {
	var errs []error
	duration := func(key string) time.Duration {
		d, err := parseDuration(v.GetString(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return d
	}

	c := types.Config{
		Notion: types.NotionConfig{
			Token:      v.GetString("notion.token"),
			DatabaseID: v.GetString("notion.database_id"),
			BaseURL:    v.GetString("notion.base_url"),
			Version:    v.GetString("notion.version"),
			Timeout:    duration("notion.timeout"),
			RateLimit:  v.GetFloat64("notion.rate_limit"),
		},
		Generation: types.GenerationConfig{
			Model:            v.GetString("generation.model"),
			Runner:           v.GetString("generation.runner"),
			Timeout:          duration("generation.timeout"),
			MaxWordLimit:     v.GetInt("generation.max_word_limit"),
			InstructionsPath: v.GetString("generation.instructions"),
		},
		Paths: types.PathsConfig{
			Topics:       v.GetString("paths.topics"),
			History:      v.GetString("paths.history"),
			Restrictions: v.GetString("paths.restrictions"),
			Archive:      v.GetString("paths.archive"),
		},
		Refresh: types.RefreshConfig{
			Buckets:       splitList(v.GetStringSlice("refresh.buckets")),
			Count:         v.GetInt("refresh.count"),
			Timeout:       duration("refresh.timeout"),
			ScrapeTimeout: duration("refresh.scrape_timeout"),
			UserAgent:     v.GetString("refresh.user_agent"),
		},
		LogLevel: v.GetString("log.level"),
	}

	if c.Notion.Token == "" {
		c.Notion.Token = s[secrets.KeyNotionToken]
	}
	if c.Notion.DatabaseID == "" {
		c.Notion.DatabaseID = s[secrets.KeyNotionDatabaseID]
	}
	if c.Refresh.UserAgent == "" {
		c.Refresh.UserAgent = "post-engine/" + version
	}

	errs = append(errs, c.Validate())
	if err := errors.Join(errs...); err != nil {
		return c, fmt.Errorf("invalid configuration: %w", err)
	}
	c.ApplyDefaults()
	return c, nil
}

// parseDuration reads a duration such as "90s" or "2m". A bare number is
// taken as seconds. An empty value is zero.
func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	return d, nil
}

// splitList accepts list values given either as YAML sequences or as one
// comma-separated string.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
