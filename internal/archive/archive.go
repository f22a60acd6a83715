// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps a local SQLite record of every draft that reached the
// workspace, for listing and export.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/post-engine/pkg/types"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// timeLayout is fixed-width so created_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the draft archive database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the archive database at path and creates the schema
// if it does not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS drafts (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			bucket TEXT NOT NULL,
			topic TEXT NOT NULL,
			page_id TEXT,
			page_url TEXT,
			image TEXT,
			model TEXT,
			content TEXT NOT NULL,
			words INTEGER,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_drafts_bucket ON drafts(bucket)`,
		`CREATE INDEX IF NOT EXISTS idx_drafts_created_at ON drafts(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores rec. An empty ID is filled with a new UUID, a zero CreatedAt
// with the current time. The stored record is returned.
func (s *Store) Record(ctx context.Context, rec types.DraftRecord) (types.DraftRecord, error) {
	if rec.Bucket == "" || rec.Topic == "" {
		return rec, errors.New("draft record needs a bucket and topic")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO drafts (id, bucket, topic, page_id, page_url, image, model, content, words, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Bucket, rec.Topic, rec.PageID, rec.PageURL, rec.Image,
		rec.Model, rec.Content, rec.Words, rec.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return rec, fmt.Errorf("inserting draft %s: %w", rec.ID, err)
	}
	return rec, nil
}

// ListOptions filters List results.
type ListOptions struct {
	// Bucket restricts results to one bucket when set.
	Bucket string

	// Limit caps the number of results; zero means no limit.
	Limit int
}

// List returns archived drafts, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.DraftRecord, error) {
	var (
		where []string
		args  []any
	)
	if opts.Bucket != "" {
		where = append(where, "bucket = ?")
		args = append(args, opts.Bucket)
	}

	query := `SELECT id, bucket, topic, page_id, page_url, image, model, content, words, created_at FROM drafts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying drafts: %w", err)
	}
	defer rows.Close()

	var out []types.DraftRecord
	for rows.Next() {
		var (
			rec                           types.DraftRecord
			pageID, pageURL, image, model sql.NullString
			words                         sql.NullInt64
			createdAt                     string
		)
		if err := rows.Scan(&rec.ID, &rec.Bucket, &rec.Topic, &pageID, &pageURL, &image,
			&model, &rec.Content, &words, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning draft: %w", err)
		}
		rec.PageID = pageID.String
		rec.PageURL = pageURL.String
		rec.Image = image.String
		rec.Model = model.String
		rec.Words = int(words.Int64)
		if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at of draft %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Export writes every archived draft to w as YAML or JSON.
func (s *Store) Export(ctx context.Context, w io.Writer, format string) error {
	records, err := s.List(ctx, ListOptions{})
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	if records == nil {
		records = []types.DraftRecord{}
	}

	var data []byte
	switch format {
	case FormatYAML:
		data, err = yaml.Marshal(records)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
	case FormatJSON:
		data, err = json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		data = append(data, '\n')
	default:
		return fmt.Errorf("unsupported export format %q (use %s or %s)", format, FormatYAML, FormatJSON)
	}
	_, err = w.Write(data)
	return err
}
