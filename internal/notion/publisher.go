// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/post-engine/pkg/types"
)

// Database property names the draft database must define.
const (
	PropTitle  = "Title"
	PropDate   = "Date"
	PropStatus = "Status"
	PropBucket = "Bucket"
)

// maxRichTextLen is the API limit on one text run's content.
const maxRichTextLen = 2000

// ErrBucketPropertyMissing is returned by SyncBuckets when the database has
// no select-typed Bucket property.
var ErrBucketPropertyMissing = errors.New("bucket property missing or not a select type")

// Publisher writes drafts to the database.
type Publisher struct {
	client *Client
	now    func() time.Time
	log    logrus.FieldLogger
}

// Option customizes a Publisher.
type Option func(*Publisher)

// WithClock overrides the clock used for the page Date property.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

// NewPublisher returns a Publisher backed by client.
func NewPublisher(client *Client, log logrus.FieldLogger, opts ...Option) *Publisher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	p := &Publisher{client: client, now: time.Now, log: log}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish creates a draft page for topic. The page carries the topic as its
// title, today's date, Draft status, the bucket, an image block when the
// store has an image for the topic, and text as a paragraph. API failures
// are logged by the client and returned; the caller decides whether the
// topic counts as used.
func (p *Publisher) Publish(ctx context.Context, topic, bucket, text string, store *types.TopicStore) (*Page, error) {
	var image string
	if rec, ok := store.Lookup(bucket, topic); ok {
		image = rec.Image
	}

	req := p.buildPageRequest(topic, bucket, text, image)
	page, err := p.client.CreatePage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("creating draft page: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"bucket":  bucket,
		"topic":   topic,
		"page_id": page.ID,
	}).Info("draft page created")
	return page, nil
}

func (p *Publisher) buildPageRequest(topic, bucket, text, image string) CreatePageRequest {
	var children []Block
	if image != "" {
		children = append(children, imageBlock(image))
	}
	children = append(children, Block{
		Object:    "block",
		Type:      "paragraph",
		Paragraph: &ParagraphBlock{RichText: splitRichText(text)},
	})

	return CreatePageRequest{
		Parent: Parent{DatabaseID: p.client.DatabaseID()},
		Properties: map[string]PropertyValue{
			PropTitle:  {Title: []RichText{{Text: TextBody{Content: topic}}}},
			PropDate:   {Date: &DateValue{Start: p.now().Format(time.DateOnly)}},
			PropStatus: {Select: &SelectOption{Name: string(types.StatusDraft)}},
			PropBucket: {Select: &SelectOption{Name: bucket}},
		},
		Children: children,
	}
}

// splitRichText keeps content verbatim while respecting the per-run length
// limit.
func splitRichText(content string) []RichText {
	runes := []rune(content)
	if len(runes) <= maxRichTextLen {
		return []RichText{text(content)}
	}
	var runs []RichText
	for len(runes) > 0 {
		n := min(len(runes), maxRichTextLen)
		runs = append(runs, text(string(runes[:n])))
		runes = runes[n:]
	}
	return runs
}

// SyncBuckets replaces the Bucket property's select options with buckets,
// in order. Running it again with the same buckets writes the same options.
func (p *Publisher) SyncBuckets(ctx context.Context, buckets []string) error {
	db, err := p.client.GetDatabase(ctx)
	if err != nil {
		return fmt.Errorf("fetching database properties: %w", err)
	}
	prop, ok := db.Properties[PropBucket]
	if !ok || prop.Type != "select" {
		return ErrBucketPropertyMissing
	}

	options := make([]SelectOption, 0, len(buckets))
	for _, b := range buckets {
		options = append(options, SelectOption{Name: b})
	}

	_, err = p.client.UpdateDatabase(ctx, UpdateDatabaseRequest{
		Properties: map[string]PropertyUpdate{
			PropBucket: {Select: &SelectSchema{Options: options}},
		},
	})
	if err != nil {
		return fmt.Errorf("updating bucket options: %w", err)
	}

	p.log.WithField("buckets", buckets).Info("bucket options updated")
	return nil
}
