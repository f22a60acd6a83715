// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/post-engine/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *Store) []types.DraftRecord {
	t.Helper()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	in := []types.DraftRecord{
		{Bucket: "career", Topic: "Topic A", PageID: "p1", Model: "mistral", Content: "a", Words: 1, CreatedAt: base},
		{Bucket: "ai", Topic: "Topic C", PageID: "p2", Image: "https://img/c.png", Content: "c c", Words: 2, CreatedAt: base.Add(time.Hour)},
		{Bucket: "career", Topic: "Topic B", PageID: "p3", Content: "b", Words: 1, CreatedAt: base.Add(2 * time.Hour)},
	}
	var out []types.DraftRecord
	for _, rec := range in {
		stored, err := s.Record(context.Background(), rec)
		require.NoError(t, err)
		out = append(out, stored)
	}
	return out
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), types.DraftRecord{Bucket: "ai", Topic: "t", Content: "x"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRecordAssignsIDAndTime(t *testing.T) {
	s := testStore(t)
	rec, err := s.Record(context.Background(), types.DraftRecord{Bucket: "ai", Topic: "t", Content: "x"})
	require.NoError(t, err)

	_, err = uuid.Parse(rec.ID)
	assert.NoError(t, err)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Equal(t, time.UTC, rec.CreatedAt.Location())
}

func TestRecordRejectsIncomplete(t *testing.T) {
	s := testStore(t)
	_, err := s.Record(context.Background(), types.DraftRecord{Topic: "t"})
	assert.Error(t, err)
	_, err = s.Record(context.Background(), types.DraftRecord{Bucket: "ai"})
	assert.Error(t, err)
}

func TestRecordDuplicateID(t *testing.T) {
	s := testStore(t)
	rec := types.DraftRecord{ID: "fixed", Bucket: "ai", Topic: "t", Content: "x"}
	_, err := s.Record(context.Background(), rec)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), rec)
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	s := testStore(t)
	stored := seed(t, s)

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{"all newest first", ListOptions{}, []string{"Topic B", "Topic C", "Topic A"}},
		{"bucket filter", ListOptions{Bucket: "career"}, []string{"Topic B", "Topic A"}},
		{"limit", ListOptions{Limit: 1}, []string{"Topic B"}},
		{"unknown bucket", ListOptions{Bucket: "none"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(context.Background(), tt.opts)
			require.NoError(t, err)
			var topics []string
			for _, r := range got {
				topics = append(topics, r.Topic)
			}
			assert.Equal(t, tt.want, topics)
		})
	}

	all, err := s.List(context.Background(), ListOptions{Bucket: "ai"})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, stored[1], all[0])
}

func TestListOrdersSubsecondTimes(t *testing.T) {
	s := testStore(t)
	base := time.Date(2026, 3, 1, 9, 0, 5, 100_000_000, time.UTC)
	_, err := s.Record(context.Background(), types.DraftRecord{Bucket: "ai", Topic: "earlier", Content: "x", CreatedAt: base})
	require.NoError(t, err)
	_, err = s.Record(context.Background(), types.DraftRecord{Bucket: "ai", Topic: "later", Content: "x", CreatedAt: base.Add(20 * time.Millisecond)})
	require.NoError(t, err)

	got, err := s.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "later", got[0].Topic)
}

func TestExport(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	var jsonOut bytes.Buffer
	require.NoError(t, s.Export(context.Background(), &jsonOut, FormatJSON))
	var fromJSON []types.DraftRecord
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &fromJSON))
	assert.Len(t, fromJSON, 3)
	assert.Equal(t, "https://img/c.png", fromJSON[1].Image)

	var yamlOut bytes.Buffer
	require.NoError(t, s.Export(context.Background(), &yamlOut, FormatYAML))
	var fromYAML []map[string]any
	require.NoError(t, yaml.Unmarshal(yamlOut.Bytes(), &fromYAML))
	require.Len(t, fromYAML, 3)
	assert.Equal(t, "Topic B", fromYAML[0]["topic"])
	assert.Equal(t, "career", fromYAML[0]["bucket"])
}

func TestExportEmpty(t *testing.T) {
	s := testStore(t)
	var out bytes.Buffer
	require.NoError(t, s.Export(context.Background(), &out, FormatJSON))
	assert.Equal(t, "[]\n", out.String())
}

func TestExportUnknownFormat(t *testing.T) {
	s := testStore(t)
	err := s.Export(context.Background(), &bytes.Buffer{}, "csv")
	assert.ErrorContains(t, err, "unsupported export format")
}

func mockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Store{db: db}, mock
}

func TestRecordWrapsInsertError(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectExec("INSERT INTO drafts").WillReturnError(errors.New("disk I/O error"))

	_, err := s.Record(context.Background(), types.DraftRecord{ID: "d-1", Bucket: "ai", Topic: "Topic C"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inserting draft d-1")
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListQueryError(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM drafts WHERE bucket = \\? ORDER BY").
		WithArgs("career", 5).
		WillReturnError(errors.New("database is locked"))

	_, err := s.List(context.Background(), ListOptions{Bucket: "career", Limit: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "querying drafts")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRejectsBadTimestamp(t *testing.T) {
	s, mock := mockStore(t)
	cols := []string{"id", "bucket", "topic", "page_id", "page_url", "image", "model", "content", "words", "created_at"}
	mock.ExpectQuery("FROM drafts").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("d-1", "ai", "Topic C", nil, nil, nil, nil, "c", 1, "yesterday"))

	_, err := s.List(context.Background(), ListOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing created_at of draft d-1")
}

func TestExportWrapsListError(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectQuery("FROM drafts").WillReturnError(errors.New("no such table: drafts"))

	var buf bytes.Buffer
	err := s.Export(context.Background(), &buf, FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "querying for export")
	assert.Empty(t, buf.String())
}
