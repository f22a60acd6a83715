// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package topics

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/pdiddy/post-engine/pkg/types"
)

// ErrEmptyStore is returned when no bucket in the store holds a topic.
var ErrEmptyStore = errors.New("topic store is empty: no bucket has any topic")

// RandomSource picks an index in [0, n). *rand.Rand satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// Selector chooses the next topic to draft.
type Selector struct {
	rng RandomSource
}

// NewSelector returns a Selector drawing from rng. A nil rng uses a PCG
// source seeded from the clock.
func NewSelector(rng RandomSource) *Selector {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Selector{rng: rng}
}

// Selection is the outcome of Select.
type Selection struct {
	types.UsedEntry

	// Record is the chosen topic record, including its image URL.
	Record types.TopicRecord

	// Reset is true when the pool was exhausted. Select also clears the
	// ledger in that case; Peek leaves it as it was.
	Reset bool

	// Remaining is the number of unused candidates the choice was made from.
	Remaining int
}

// Select picks an unused (bucket, topic) pair uniformly at random. When every
// pair has been used, the ledger is reset and persisted empty and the full
// pool becomes eligible again.
func (s *Selector) Select(store *types.TopicStore, ledger *Ledger) (Selection, error) {
	sel, err := s.pick(store, ledger)
	if err != nil {
		return Selection{}, err
	}
	if sel.Reset {
		if err := ledger.Reset(); err != nil {
			return Selection{}, fmt.Errorf("resetting history ledger: %w", err)
		}
	}
	return sel, nil
}

// Peek chooses the same way as Select but never modifies the ledger. An
// exhausted pool is drawn from in full and reported with Reset set.
func (s *Selector) Peek(store *types.TopicStore, ledger *Ledger) (Selection, error) {
	return s.pick(store, ledger)
}

func (s *Selector) pick(store *types.TopicStore, ledger *Ledger) (Selection, error) {
	all := store.Pairs()
	if len(all) == 0 {
		return Selection{}, ErrEmptyStore
	}

	used := ledger.Used()
	var unused []types.UsedEntry
	for _, p := range all {
		if !used[p] {
			unused = append(unused, p)
		}
	}

	var sel Selection
	if len(unused) == 0 {
		unused = all
		sel.Reset = true
	}

	sel.Remaining = len(unused)
	sel.UsedEntry = unused[s.rng.IntN(len(unused))]
	sel.Record, _ = store.Lookup(sel.Bucket, sel.Topic)
	return sel, nil
}
