// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refresh

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Restrictions scopes web scraping: which pages and feeds to read per bucket
// and which terms a scraped phrase must and must not contain.
type Restrictions struct {
	AllowedSources map[string][]string `json:"allowed_sources" yaml:"allowed_sources"`
	AllowedFeeds   map[string][]string `json:"allowed_feeds,omitempty" yaml:"allowed_feeds,omitempty"`
	Keywords       []string            `json:"keywords" yaml:"keywords"`
	Exclude        []string            `json:"exclude" yaml:"exclude"`
}

// Sources returns the allowed URLs for bucket.
func (r *Restrictions) Sources(bucket string) []string {
	if r == nil {
		return nil
	}
	return r.AllowedSources[bucket]
}

// Feeds returns the allowed RSS or Atom feed URLs for bucket.
func (r *Restrictions) Feeds(bucket string) []string {
	if r == nil {
		return nil
	}
	return r.AllowedFeeds[bucket]
}

// Accepts reports whether text contains at least one keyword and none of the
// excluded terms, ignoring case. With no keywords nothing is accepted.
func (r *Restrictions) Accepts(text string) bool {
	if r == nil {
		return false
	}
	lower := strings.ToLower(text)
	matched := false
	for _, kw := range r.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, ex := range r.Exclude {
		if strings.Contains(lower, strings.ToLower(ex)) {
			return false
		}
	}
	return true
}

// LoadRestrictions reads the restrictions file. Files ending in .yaml or .yml
// are parsed as YAML, anything else as JSON.
func LoadRestrictions(path string) (*Restrictions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading restrictions: %w", err)
	}

	var r Restrictions
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &r)
	default:
		err = json.Unmarshal(data, &r)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing restrictions %s: %w", path, err)
	}
	if r.AllowedSources == nil {
		return nil, fmt.Errorf("parsing restrictions %s: allowed_sources is required", path)
	}
	return &r, nil
}
