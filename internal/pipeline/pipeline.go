// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one end-to-end drafting pass: sync buckets, pick an
// unused topic, generate a post, publish it, and record the topic as used.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/post-engine/internal/generate"
	"github.com/pdiddy/post-engine/internal/notion"
	"github.com/pdiddy/post-engine/internal/topics"
	"github.com/pdiddy/post-engine/pkg/types"
)

// ErrPublishFailed wraps any failure to create the draft page. The topic is
// not recorded as used.
var ErrPublishFailed = errors.New("publishing draft failed")

// BucketSyncer aligns the workspace bucket options with the store.
type BucketSyncer interface {
	SyncBuckets(ctx context.Context, buckets []string) error
}

// Drafter produces validated post text for a topic.
type Drafter interface {
	Generate(ctx context.Context, topic, bucket string) (string, error)
	Model() string
}

// Publisher creates the draft page.
type Publisher interface {
	Publish(ctx context.Context, topic, bucket, text string, store *types.TopicStore) (*notion.Page, error)
}

// Recorder archives a published draft.
type Recorder interface {
	Record(ctx context.Context, rec types.DraftRecord) (types.DraftRecord, error)
}

// Options configures a Pipeline.
type Options struct {
	// TopicsPath and HistoryPath locate the topic store and ledger files.
	TopicsPath  string
	HistoryPath string

	// DryRun prints the draft and stops before publishing.
	DryRun bool

	// SkipSync skips the bucket option sync.
	SkipSync bool

	// Out receives the progress lines for humans. Nil discards them.
	Out io.Writer

	// Now stamps archive records. Nil uses time.Now.
	Now func() time.Time
}

// Pipeline wires the drafting components together.
type Pipeline struct {
	syncer    BucketSyncer
	selector  *topics.Selector
	drafter   Drafter
	publisher Publisher
	recorder  Recorder
	opts      Options
	log       logrus.FieldLogger
}

// New returns a Pipeline. syncer and recorder may be nil to skip bucket sync
// and archiving; publisher may be nil only for dry runs.
func New(syncer BucketSyncer, selector *topics.Selector, drafter Drafter, publisher Publisher, recorder Recorder, opts Options, log logrus.FieldLogger) (*Pipeline, error) {
	if opts.TopicsPath == "" || opts.HistoryPath == "" {
		return nil, errors.New("topic store and history paths are required")
	}
	if drafter == nil {
		return nil, errors.New("drafter is required")
	}
	if publisher == nil && !opts.DryRun {
		return nil, errors.New("publisher is required unless dry-running")
	}
	if selector == nil {
		selector = topics.NewSelector(nil)
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{
		syncer:    syncer,
		selector:  selector,
		drafter:   drafter,
		publisher: publisher,
		recorder:  recorder,
		opts:      opts,
		log:       log,
	}, nil
}

// Result describes one pipeline run.
type Result struct {
	Selection topics.Selection
	Text      string
	Page      *notion.Page
	Record    *types.DraftRecord
	DryRun    bool
}

// Run executes one drafting pass. Generation and publish failures leave the
// ledger untouched, so the topic stays eligible for the next run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	store, err := topics.LoadStore(p.opts.TopicsPath)
	if err != nil {
		return nil, err
	}

	if !p.opts.SkipSync && p.syncer != nil {
		if err := p.syncer.SyncBuckets(ctx, store.Buckets()); err != nil {
			p.log.WithError(err).Warn("bucket option sync failed, continuing")
		}
	}

	ledger, err := topics.LoadLedger(p.opts.HistoryPath, p.log)
	if err != nil {
		return nil, err
	}

	// A dry run previews the choice without clearing an exhausted ledger.
	pick := p.selector.Select
	if p.opts.DryRun {
		pick = p.selector.Peek
	}
	sel, err := pick(store, ledger)
	if err != nil {
		return nil, err
	}
	log := p.log.WithFields(logrus.Fields{"bucket": sel.Bucket, "topic": sel.Topic})
	switch {
	case sel.Reset && p.opts.DryRun:
		log.Info("all topics used, choosing from the full pool without resetting the ledger")
	case sel.Reset:
		log.Info("all topics used, history ledger reset")
	}
	fmt.Fprintf(p.opts.Out, "Selected [%s] %s (%d unused)\n", sel.Bucket, sel.Topic, sel.Remaining)

	text, err := p.drafter.Generate(ctx, sel.Topic, sel.Bucket)
	if err != nil {
		return nil, err
	}

	res := &Result{Selection: sel, Text: text}
	if p.opts.DryRun {
		res.DryRun = true
		fmt.Fprintf(p.opts.Out, "\n%s\n\n", text)
		fmt.Fprintf(p.opts.Out, "Dry run: %d words, nothing published\n", generate.WordCount(text))
		return res, nil
	}

	page, err := p.publisher.Publish(ctx, sel.Topic, sel.Bucket, text, store)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	res.Page = page

	ledger.Append(sel.UsedEntry)
	if err := ledger.Save(); err != nil {
		return res, fmt.Errorf("recording used topic: %w", err)
	}
	fmt.Fprintf(p.opts.Out, "Draft created: %s\n", pageRef(page))

	if p.recorder != nil {
		rec, err := p.recorder.Record(ctx, types.DraftRecord{
			Bucket:    sel.Bucket,
			Topic:     sel.Topic,
			PageID:    page.ID,
			PageURL:   page.URL,
			Image:     sel.Record.Image,
			Model:     p.drafter.Model(),
			Content:   text,
			Words:     generate.WordCount(text),
			CreatedAt: p.opts.Now(),
		})
		if err != nil {
			log.WithError(err).Warn("archiving draft failed")
		} else {
			res.Record = &rec
		}
	}

	return res, nil
}

func pageRef(page *notion.Page) string {
	if page.URL != "" {
		return page.URL
	}
	return page.ID
}
