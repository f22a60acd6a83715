// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package topics

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/post-engine/pkg/types"
)

// Ledger is the persisted history of used (bucket, topic) pairs. Entries are
// kept in usage order; selection only looks at set membership.
type Ledger struct {
	path    string
	entries []types.UsedEntry
}

// LoadLedger reads the ledger at path. A missing file is created empty. A
// file that cannot be read or parsed is logged, reset to empty on disk, and
// returned as an empty ledger.
func LoadLedger(path string, log logrus.FieldLogger) (*Ledger, error) {
	l := &Ledger{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := l.Save(); err != nil {
			return nil, err
		}
		return l, nil
	}
	if err == nil {
		var entries []types.UsedEntry
		if err = json.Unmarshal(data, &entries); err == nil {
			l.entries = entries
			return l, nil
		}
	}

	if log != nil {
		log.WithError(err).WithField("path", path).Warn("history ledger unreadable, starting a new cycle")
	}
	if err := l.Save(); err != nil {
		return nil, err
	}
	return l, nil
}

// NewLedger returns an empty ledger bound to path without touching disk.
func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the file the ledger persists to.
func (l *Ledger) Path() string { return l.path }

// Entries returns a copy of the entries in usage order.
func (l *Ledger) Entries() []types.UsedEntry {
	return append([]types.UsedEntry(nil), l.entries...)
}

// Len returns the number of entries.
func (l *Ledger) Len() int { return len(l.entries) }

// Used returns the set of recorded pairs.
func (l *Ledger) Used() map[types.UsedEntry]bool {
	used := make(map[types.UsedEntry]bool, len(l.entries))
	for _, e := range l.entries {
		used[e] = true
	}
	return used
}

// Append records an entry in memory. Call Save to persist it.
func (l *Ledger) Append(e types.UsedEntry) {
	l.entries = append(l.entries, e)
}

// Reset clears the ledger and persists the empty list.
func (l *Ledger) Reset() error {
	l.entries = nil
	return l.Save()
}

// Save overwrites the ledger file with the current entries.
func (l *Ledger) Save() error {
	entries := l.entries
	if entries == nil {
		entries = []types.UsedEntry{}
	}
	data, err := encodeIndented(entries)
	if err != nil {
		return fmt.Errorf("marshaling history ledger: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("writing history ledger: %w", err)
	}
	return nil
}
