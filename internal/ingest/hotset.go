package ingest

import (
	"context"
	"fmt"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// HotSetRefresher replaces the trending-tokens view wholesale on each
// refresh cycle. The set is a materialized view recomputed upstream;
// no per-entry merge logic applies.
type HotSetRefresher struct {
	store storage.HotSetStore
	now   func() int64
}

// NewHotSetRefresher creates a new hot set refresher.
func NewHotSetRefresher(store storage.HotSetStore, now func() int64) *HotSetRefresher {
	return &HotSetRefresher{store: store, now: now}
}

// Refresh validates the ranked list and swaps it in transactionally.
// An empty list clears the set.
func (h *HotSetRefresher) Refresh(ctx context.Context, entries []*domain.HotSetEntry) error {
	synced := h.now()
	ranks := make(map[int64]string, len(entries))
	for i, e := range entries {
		if e == nil || e.TokenID == "" {
			return fmt.Errorf("%w: hot set entry %d has no token id", storage.ErrInvalidInput, i)
		}
		if e.Rank < 1 {
			return fmt.Errorf("%w: hot set entry %s has rank %d", storage.ErrInvalidInput, e.TokenID, e.Rank)
		}
		if other, dup := ranks[e.Rank]; dup {
			return fmt.Errorf("%w: rank %d assigned to both %s and %s", storage.ErrInvalidInput, e.Rank, other, e.TokenID)
		}
		ranks[e.Rank] = e.TokenID
		e.LastSynced = synced
	}

	if err := h.store.Replace(ctx, entries); err != nil {
		return fmt.Errorf("replace hot set: %w", err)
	}
	return nil
}
