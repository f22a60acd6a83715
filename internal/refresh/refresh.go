// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refresh rebuilds the topic store from allowed web sources and
// language model suggestions.
package refresh

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/post-engine/internal/topics"
	"github.com/pdiddy/post-engine/pkg/types"
)

// Merge builds a store with one entry per bucket, in bucket order. Web
// records come first; model records follow unless their text is already
// present in the bucket.
func Merge(buckets []string, web, model map[string][]types.TopicRecord) *types.TopicStore {
	store := types.NewTopicStore()
	for _, bucket := range buckets {
		merged := []types.TopicRecord{}
		seen := make(map[string]bool)
		for _, src := range [][]types.TopicRecord{web[bucket], model[bucket]} {
			for _, rec := range src {
				if seen[rec.Topic] {
					continue
				}
				seen[rec.Topic] = true
				merged = append(merged, rec)
			}
		}
		store.Set(bucket, merged)
	}
	return store
}

// Options selects which sources a refresh uses.
type Options struct {
	SkipWeb   bool
	SkipModel bool
}

// Refresher rebuilds the topic store file.
type Refresher struct {
	suggester *Suggester
	scraper   *Scraper
	path      string
	opts      Options
	log       logrus.FieldLogger
}

// NewRefresher returns a Refresher writing to path. suggester or scraper may
// be nil when the matching source is skipped.
func NewRefresher(suggester *Suggester, scraper *Scraper, path string, opts Options, log logrus.FieldLogger) (*Refresher, error) {
	if path == "" {
		return nil, errors.New("topic store path is required")
	}
	if opts.SkipWeb && opts.SkipModel {
		return nil, errors.New("at least one topic source is required")
	}
	if !opts.SkipModel && suggester == nil {
		return nil, errors.New("suggester is required unless model topics are skipped")
	}
	if !opts.SkipWeb && scraper == nil {
		return nil, errors.New("scraper is required unless web topics are skipped")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Refresher{suggester: suggester, scraper: scraper, path: path, opts: opts, log: log}, nil
}

// Refresh collects topics for buckets, merges them, and overwrites the
// store file. restrictions may be nil when web topics are skipped.
func (r *Refresher) Refresh(ctx context.Context, buckets []string, restrictions *Restrictions) (*types.TopicStore, error) {
	if len(buckets) == 0 {
		return nil, errors.New("no buckets to refresh")
	}

	var model, web map[string][]types.TopicRecord
	if !r.opts.SkipModel {
		model = r.suggester.Suggest(ctx, buckets)
	}
	if !r.opts.SkipWeb {
		if restrictions == nil {
			return nil, errors.New("restrictions are required for web topics")
		}
		web = r.scraper.Scrape(ctx, buckets, restrictions)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("refreshing topics: %w", err)
	}

	store := Merge(buckets, web, model)
	if err := topics.SaveStore(r.path, store); err != nil {
		return nil, err
	}

	for _, bucket := range buckets {
		r.log.WithFields(logrus.Fields{
			"bucket": bucket,
			"web":    len(web[bucket]),
			"model":  len(model[bucket]),
			"total":  len(store.Topics(bucket)),
		}).Info("bucket refreshed")
	}
	return store, nil
}
