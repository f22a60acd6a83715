// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notion talks to the Notion API: it reads and patches the draft
// database schema and creates one page per generated draft.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/pdiddy/post-engine/internal/httputil"
	"github.com/pdiddy/post-engine/pkg/types"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4096

// APIError is a non-200 response from the Notion API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("notion %s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("notion %s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client is a minimal Notion API client bound to one database.
type Client struct {
	baseURL    string
	token      string
	version    string
	databaseID string
	http       *http.Client
	limiter    *rate.Limiter
	log        logrus.FieldLogger
}

// NewClient returns a Client for cfg. A nil httpClient gets one with
// cfg.Timeout.
func NewClient(cfg types.NotionConfig, httpClient *http.Client, log logrus.FieldLogger) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("notion token is required")
	}
	if strings.TrimSpace(cfg.DatabaseID) == "" {
		return nil, errors.New("notion database id is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = types.DefaultNotionBaseURL
	}
	version := cfg.Version
	if version == "" {
		version = types.DefaultNotionVersion
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = types.DefaultNotionRateLimit
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      cfg.Token,
		version:    version,
		databaseID: cfg.DatabaseID,
		http:       httpClient,
		limiter:    rate.NewLimiter(rate.Limit(limit), max(1, int(limit))),
		log:        log,
	}, nil
}

// DatabaseID returns the database pages are created in.
func (c *Client) DatabaseID() string { return c.databaseID }

// GetDatabase fetches the database object, including its property schema.
func (c *Client) GetDatabase(ctx context.Context) (*Database, error) {
	var db Database
	if err := c.do(ctx, http.MethodGet, "/v1/databases/"+c.databaseID, nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// UpdateDatabase patches database properties.
func (c *Client) UpdateDatabase(ctx context.Context, req UpdateDatabaseRequest) (*Database, error) {
	var db Database
	if err := c.do(ctx, http.MethodPatch, "/v1/databases/"+c.databaseID, req, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// CreatePage creates a page in the database.
func (c *Client) CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodPost, "/v1/pages", req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetryPaced(ctx, c.http, req, 0, c.limiter)
	if err != nil {
		return fmt.Errorf("notion %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
		var e errorResponse
		if json.Unmarshal(raw, &e) == nil {
			apiErr.Code = e.Code
			apiErr.Message = e.Message
		}
		c.log.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
			"body":   apiErr.Body,
		}).Error("notion API error")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding notion %s %s response: %w", method, path, err)
	}
	return nil
}
