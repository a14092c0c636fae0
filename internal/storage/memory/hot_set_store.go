package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// HotSetStore is an in-memory implementation of storage.HotSetStore.
// The slice swap under the lock gives the same all-or-nothing visibility
// as the transactional replace in PostgreSQL.
type HotSetStore struct {
	mu      sync.RWMutex
	entries []*domain.HotSetEntry
}

// NewHotSetStore creates a new in-memory hot set store.
func NewHotSetStore() *HotSetStore {
	return &HotSetStore{}
}

// Replace swaps the entire cache content for entries.
func (s *HotSetStore) Replace(_ context.Context, entries []*domain.HotSetEntry) error {
	seen := make(map[string]struct{}, len(entries))
	ranks := make(map[int64]struct{}, len(entries))
	next := make([]*domain.HotSetEntry, 0, len(entries))
	for _, e := range entries {
		if e == nil || e.TokenID == "" {
			return storage.ErrInvalidInput
		}
		if _, dup := seen[e.TokenID]; dup {
			return storage.ErrInvalidInput
		}
		seen[e.TokenID] = struct{}{}
		// rank is the primary key in the PostgreSQL table
		if _, dup := ranks[e.Rank]; dup {
			return storage.ErrInvalidInput
		}
		ranks[e.Rank] = struct{}{}

		next = append(next, copyHotSetEntry(e))
	}
	sort.Slice(next, func(i, j int) bool { return next[i].Rank < next[j].Rank })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = next
	return nil
}

// List retrieves the current entries ordered by rank ASC.
func (s *HotSetStore) List(_ context.Context) ([]*domain.HotSetEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*domain.HotSetEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, copyHotSetEntry(e))
	}
	return entries, nil
}

// copyHotSetEntry deep-copies the entry so callers can't mutate stored state.
func copyHotSetEntry(e *domain.HotSetEntry) *domain.HotSetEntry {
	entryCopy := *e
	entryCopy.Image = clonePtr(e.Image)
	entryCopy.MarketCap = clonePtr(e.MarketCap)
	return &entryCopy
}

var _ storage.HotSetStore = (*HotSetStore)(nil)
