// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refresh

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/post-engine/internal/generate"
	"github.com/pdiddy/post-engine/pkg/types"
)

// minTopicLen is the shortest phrase, in characters, kept as a topic.
const minTopicLen = 20

const suggestPrompt = "Generate %d unique, non-generic, specific LinkedIn post topics for the bucket '%s'. " +
	"Avoid generic phrases, buzzwords, and repetition. Return only a plain list, one topic per line."

// SuggestPrompt returns the prompt asking the model for n topics in bucket.
func SuggestPrompt(bucket string, n int) string {
	return fmt.Sprintf(suggestPrompt, n, bucket)
}

// Suggester asks a language model for fresh topics.
type Suggester struct {
	runner  generate.Runner
	model   string
	count   int
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewSuggester returns a Suggester asking runner's model for count topics per
// bucket, each call bounded by timeout.
func NewSuggester(runner generate.Runner, model string, count int, timeout time.Duration, log logrus.FieldLogger) *Suggester {
	if count <= 0 {
		count = types.DefaultRefreshCount
	}
	if timeout <= 0 {
		timeout = types.DefaultRefreshTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Suggester{runner: runner, model: model, count: count, timeout: timeout, log: log}
}

// Suggest returns model topics for each bucket. A bucket whose runner call
// fails is logged and gets an empty list.
func (s *Suggester) Suggest(ctx context.Context, buckets []string) map[string][]types.TopicRecord {
	out := make(map[string][]types.TopicRecord, len(buckets))
	for _, bucket := range buckets {
		out[bucket] = s.suggestBucket(ctx, bucket)
	}
	return out
}

func (s *Suggester) suggestBucket(ctx context.Context, bucket string) []types.TopicRecord {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.runner.Run(ctx, s.model, SuggestPrompt(bucket, s.count))
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"bucket": bucket,
			"model":  s.model,
		}).WithError(err).Warn("topic suggestion failed")
		return []types.TopicRecord{}
	}

	phrases := ParseSuggestions(raw)
	records := make([]types.TopicRecord, 0, len(phrases))
	for _, p := range phrases {
		records = append(records, types.TopicRecord{Topic: p})
	}
	s.log.WithFields(logrus.Fields{
		"bucket": bucket,
		"count":  len(records),
	}).Debug("model topics suggested")
	return records
}

// ParseSuggestions turns model output into topic phrases: one per non-blank
// line, list dashes and surrounding spaces trimmed, short phrases dropped,
// duplicates removed in first-seen order.
func ParseSuggestions(raw string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		phrase := strings.TrimSpace(strings.Trim(line, "- "))
		if utf8.RuneCountInString(phrase) < minTopicLen || seen[phrase] {
			continue
		}
		seen[phrase] = true
		out = append(out, phrase)
	}
	return out
}
