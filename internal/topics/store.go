// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package topics loads and saves the topic store and the history ledger, and
// selects the next unused topic.
package topics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pdiddy/post-engine/pkg/types"
)

// LoadStore reads the topic store from path. Entries may be plain strings or
// {topic, image} objects; both are normalized to TopicRecord.
func LoadStore(path string) (*types.TopicStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topic store: %w", err)
	}
	store := types.NewTopicStore()
	if err := json.Unmarshal(data, store); err != nil {
		return nil, fmt.Errorf("parsing topic store %s: %w", path, err)
	}
	return store, nil
}

// SaveStore overwrites path with the store as indented JSON. Non-ASCII text
// is written as-is.
func SaveStore(path string, store *types.TopicStore) error {
	data, err := encodeIndented(store)
	if err != nil {
		return fmt.Errorf("marshaling topic store: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing topic store: %w", err)
	}
	return nil
}

func encodeIndented(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
