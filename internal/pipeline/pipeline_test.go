// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/post-engine/internal/generate"
	"github.com/pdiddy/post-engine/internal/notion"
	"github.com/pdiddy/post-engine/internal/topics"
	"github.com/pdiddy/post-engine/pkg/types"
)

const validPost = "Intro line\n- first\n- second\n- third\nClosing line"

type fakeSyncer struct {
	err     error
	buckets []string
}

func (f *fakeSyncer) SyncBuckets(_ context.Context, buckets []string) error {
	f.buckets = buckets
	return f.err
}

type fakeDrafter struct {
	text  string
	err   error
	calls int
}

func (f *fakeDrafter) Generate(context.Context, string, string) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeDrafter) Model() string { return "mistral" }

type fakePublisher struct {
	err   error
	calls int
	image string
}

func (f *fakePublisher) Publish(_ context.Context, topic, bucket, _ string, store *types.TopicStore) (*notion.Page, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	rec, _ := store.Lookup(bucket, topic)
	f.image = rec.Image
	return &notion.Page{ID: "page-1", URL: "https://notion.so/page-1"}, nil
}

type fakeRecorder struct {
	err     error
	records []types.DraftRecord
}

func (f *fakeRecorder) Record(_ context.Context, rec types.DraftRecord) (types.DraftRecord, error) {
	if f.err != nil {
		return rec, f.err
	}
	rec.ID = "rec-1"
	f.records = append(f.records, rec)
	return rec, nil
}

type firstSource struct{}

func (firstSource) IntN(int) int { return 0 }

type fixture struct {
	opts      Options
	out       *bytes.Buffer
	syncer    *fakeSyncer
	drafter   *fakeDrafter
	publisher *fakePublisher
	recorder  *fakeRecorder
}

func newFixture(t *testing.T, storeJSON, ledgerJSON string) *fixture {
	t.Helper()
	dir := t.TempDir()
	topicsPath := filepath.Join(dir, "topics.json")
	historyPath := filepath.Join(dir, "used_topics.json")
	require.NoError(t, os.WriteFile(topicsPath, []byte(storeJSON), 0o644))
	if ledgerJSON != "" {
		require.NoError(t, os.WriteFile(historyPath, []byte(ledgerJSON), 0o644))
	}
	out := &bytes.Buffer{}
	return &fixture{
		opts: Options{
			TopicsPath:  topicsPath,
			HistoryPath: historyPath,
			Out:         out,
			Now:         func() time.Time { return time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC) },
		},
		out:       out,
		syncer:    &fakeSyncer{},
		drafter:   &fakeDrafter{text: validPost},
		publisher: &fakePublisher{},
		recorder:  &fakeRecorder{},
	}
}

func (f *fixture) run(t *testing.T) (*Result, error) {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	p, err := New(f.syncer, topics.NewSelector(firstSource{}), f.drafter, f.publisher, f.recorder, f.opts, logger)
	require.NoError(t, err)
	return p.Run(context.Background())
}

func ledgerEntries(t *testing.T, path string) []types.UsedEntry {
	t.Helper()
	l, err := topics.LoadLedger(path, nil)
	require.NoError(t, err)
	return l.Entries()
}

const twoBuckets = `{"career": [{"topic": "Topic A", "image": "https://img/a.png"}, "Topic B"], "ai": ["Topic C"]}`

func TestRunPublishesAndRecords(t *testing.T) {
	f := newFixture(t, twoBuckets, `[["career", "Topic A"]]`)

	res, err := f.run(t)
	require.NoError(t, err)

	assert.Equal(t, []string{"career", "ai"}, f.syncer.buckets)
	assert.Equal(t, "career", res.Selection.Bucket)
	assert.Equal(t, "Topic B", res.Selection.Topic)
	assert.Equal(t, "page-1", res.Page.ID)

	assert.Equal(t, []types.UsedEntry{
		{Bucket: "career", Topic: "Topic A"},
		{Bucket: "career", Topic: "Topic B"},
	}, ledgerEntries(t, f.opts.HistoryPath))

	require.Len(t, f.recorder.records, 1)
	rec := f.recorder.records[0]
	assert.Equal(t, "Topic B", rec.Topic)
	assert.Equal(t, "page-1", rec.PageID)
	assert.Equal(t, "mistral", rec.Model)
	assert.Equal(t, 10, rec.Words)
	assert.Equal(t, time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC), rec.CreatedAt)
	require.NotNil(t, res.Record)
	assert.Equal(t, "rec-1", res.Record.ID)

	assert.Contains(t, f.out.String(), "Selected [career] Topic B")
	assert.Contains(t, f.out.String(), "Draft created: https://notion.so/page-1")
}

func TestRunPassesImageThroughStore(t *testing.T) {
	f := newFixture(t, twoBuckets, "")

	res, err := f.run(t)
	require.NoError(t, err)
	assert.Equal(t, "Topic A", res.Selection.Topic)
	assert.Equal(t, "https://img/a.png", f.publisher.image)
	assert.Equal(t, "https://img/a.png", f.recorder.records[0].Image)
}

func TestRunSyncFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, twoBuckets, "")
	f.syncer.err = notion.ErrBucketPropertyMissing

	_, err := f.run(t)
	require.NoError(t, err)
	assert.Equal(t, 1, f.publisher.calls)
}

func TestRunSkipSync(t *testing.T) {
	f := newFixture(t, twoBuckets, "")
	f.opts.SkipSync = true

	_, err := f.run(t)
	require.NoError(t, err)
	assert.Nil(t, f.syncer.buckets)
}

func TestRunGenerationFailureLeavesLedger(t *testing.T) {
	f := newFixture(t, twoBuckets, `[["career", "Topic A"]]`)
	f.drafter.err = &generate.ValidationError{Reason: generate.ReasonEmoji}

	_, err := f.run(t)
	var verr *generate.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, f.publisher.calls)
	assert.Len(t, ledgerEntries(t, f.opts.HistoryPath), 1)
}

func TestRunPublishFailureLeavesLedger(t *testing.T) {
	f := newFixture(t, twoBuckets, `[["career", "Topic A"]]`)
	apiErr := &notion.APIError{Method: "POST", Path: "/v1/pages", StatusCode: 400}
	f.publisher.err = apiErr

	_, err := f.run(t)
	assert.ErrorIs(t, err, ErrPublishFailed)
	var got *notion.APIError
	assert.ErrorAs(t, err, &got)

	assert.Len(t, ledgerEntries(t, f.opts.HistoryPath), 1)
	assert.Empty(t, f.recorder.records)
}

func TestRunArchiveFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, twoBuckets, "")
	f.recorder.err = errors.New("disk full")

	res, err := f.run(t)
	require.NoError(t, err)
	assert.Nil(t, res.Record)
	assert.Len(t, ledgerEntries(t, f.opts.HistoryPath), 1)
}

func TestRunDryRun(t *testing.T) {
	f := newFixture(t, twoBuckets, "")
	f.opts.DryRun = true

	res, err := f.run(t)
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Equal(t, validPost, res.Text)
	assert.Equal(t, 0, f.publisher.calls)
	assert.Empty(t, ledgerEntries(t, f.opts.HistoryPath))
	assert.Contains(t, f.out.String(), validPost)
	assert.Contains(t, f.out.String(), "nothing published")
}

func TestRunDryRunKeepsExhaustedLedger(t *testing.T) {
	f := newFixture(t, `{"career": ["Topic A"]}`, `[["career","Topic A"]]`)
	f.opts.DryRun = true

	res, err := f.run(t)
	require.NoError(t, err)
	assert.True(t, res.Selection.Reset)
	assert.Equal(t, "Topic A", res.Selection.Topic)

	data, err := os.ReadFile(f.opts.HistoryPath)
	require.NoError(t, err)
	assert.Equal(t, `[["career","Topic A"]]`, string(data))
}

func TestRunResetsExhaustedLedger(t *testing.T) {
	f := newFixture(t, `{"ai": ["Topic C"]}`, `[["ai", "Topic C"]]`)

	res, err := f.run(t)
	require.NoError(t, err)
	assert.True(t, res.Selection.Reset)
	assert.Equal(t, []types.UsedEntry{{Bucket: "ai", Topic: "Topic C"}}, ledgerEntries(t, f.opts.HistoryPath))
}

func TestRunEmptyStore(t *testing.T) {
	f := newFixture(t, `{"career": [], "ai": []}`, "")

	_, err := f.run(t)
	assert.ErrorIs(t, err, topics.ErrEmptyStore)
	assert.Equal(t, 0, f.drafter.calls)
}

func TestRunMissingStore(t *testing.T) {
	f := newFixture(t, twoBuckets, "")
	require.NoError(t, os.Remove(f.opts.TopicsPath))

	_, err := f.run(t)
	assert.Error(t, err)
}

func TestNewValidation(t *testing.T) {
	opts := Options{TopicsPath: "t.json", HistoryPath: "h.json"}

	_, err := New(nil, nil, nil, &fakePublisher{}, nil, opts, nil)
	assert.Error(t, err, "drafter required")

	_, err = New(nil, nil, &fakeDrafter{}, nil, nil, opts, nil)
	assert.Error(t, err, "publisher required")

	dry := opts
	dry.DryRun = true
	_, err = New(nil, nil, &fakeDrafter{}, nil, nil, dry, nil)
	assert.NoError(t, err)

	_, err = New(nil, nil, &fakeDrafter{}, &fakePublisher{}, nil, Options{}, nil)
	assert.Error(t, err, "paths required")
}
