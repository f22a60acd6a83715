// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate drafts post text with a local language model runner and
// validates it against the post structure contract.
package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/post-engine/pkg/types"
)

// Template placeholders substituted into the instruction file.
const (
	PlaceholderTopic     = "{topic}"
	PlaceholderWordLimit = "{MAX_WORD_LIMIT}"
)

// LoadTemplate reads the instruction template from path.
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading instructions: %w", err)
	}
	return string(data), nil
}

// RenderPrompt substitutes the topic and word limit into tmpl. Every
// occurrence of each placeholder is replaced.
func RenderPrompt(tmpl, topic string, wordLimit int) string {
	return strings.NewReplacer(
		PlaceholderTopic, topic,
		PlaceholderWordLimit, strconv.Itoa(wordLimit),
	).Replace(tmpl)
}

// Generator drafts post text for a topic.
type Generator struct {
	runner    Runner
	model     string
	template  string
	wordLimit int
	log       logrus.FieldLogger
}

// NewGenerator returns a Generator that sends prompts built from tmpl to
// runner using the model and word limit in cfg.
func NewGenerator(runner Runner, tmpl string, cfg types.GenerationConfig, log logrus.FieldLogger) (*Generator, error) {
	if runner == nil {
		return nil, errors.New("runner is required")
	}
	if strings.TrimSpace(tmpl) == "" {
		return nil, errors.New("instruction template is empty")
	}
	if cfg.MaxWordLimit <= 0 {
		return nil, fmt.Errorf("word limit must be positive, got %d", cfg.MaxWordLimit)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Generator{
		runner:    runner,
		model:     cfg.Model,
		template:  tmpl,
		wordLimit: cfg.MaxWordLimit,
		log:       log,
	}, nil
}

// Model returns the model identifier sent to the runner.
func (g *Generator) Model() string { return g.model }

// WordLimit returns the configured maximum word count.
func (g *Generator) WordLimit() int { return g.wordLimit }

// Generate renders the prompt for topic, runs the model, and returns the
// trimmed output if it passes Validate. Errors are never retried here; the
// caller decides what a failed run means for the topic.
func (g *Generator) Generate(ctx context.Context, topic, bucket string) (string, error) {
	prompt := RenderPrompt(g.template, topic, g.wordLimit)

	log := g.log.WithFields(logrus.Fields{"bucket": bucket, "topic": topic, "model": g.model})
	log.Debug("running language model")

	raw, err := g.runner.Run(ctx, g.model, prompt)
	if err != nil {
		return "", fmt.Errorf("post generation failed: %w", err)
	}

	text := strings.TrimSpace(raw)
	if err := Validate(text, g.wordLimit); err != nil {
		log.WithField("words", WordCount(text)).Warn(err.Error())
		return "", err
	}

	log.WithField("words", WordCount(text)).Debug("draft accepted")
	return text, nil
}
