package memory

import (
	"context"
	"sync"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// MarketSnapshotStore is an in-memory implementation of storage.MarketSnapshotStore.
type MarketSnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.MarketSnapshot // keyed by token_id
}

// NewMarketSnapshotStore creates a new in-memory market snapshot store.
func NewMarketSnapshotStore() *MarketSnapshotStore {
	return &MarketSnapshotStore{
		snapshots: make(map[string]*domain.MarketSnapshot),
	}
}

// Upsert fully replaces the snapshot for s.TokenID. Idempotent.
func (st *MarketSnapshotStore) Upsert(_ context.Context, s *domain.MarketSnapshot) error {
	if s == nil || s.TokenID == "" {
		return storage.ErrInvalidInput
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.snapshots[s.TokenID] = copySnapshot(s)
	return nil
}

// Get retrieves the latest snapshot. Returns ErrNotFound if not exists.
func (st *MarketSnapshotStore) Get(_ context.Context, tokenID string) (*domain.MarketSnapshot, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, exists := st.snapshots[tokenID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copySnapshot(s), nil
}

// copySnapshot deep-copies the record so callers can't mutate stored state.
func copySnapshot(s *domain.MarketSnapshot) *domain.MarketSnapshot {
	snapCopy := *s

	snapCopy.Image = clonePtr(s.Image)
	snapCopy.MarketCap = clonePtr(s.MarketCap)
	snapCopy.MarketCapRank = clonePtr(s.MarketCapRank)
	snapCopy.FullyDilutedValuation = clonePtr(s.FullyDilutedValuation)
	snapCopy.PriceChange24h = clonePtr(s.PriceChange24h)
	snapCopy.PriceChangePct24h = clonePtr(s.PriceChangePct24h)
	snapCopy.CirculatingSupply = clonePtr(s.CirculatingSupply)
	snapCopy.TotalSupply = clonePtr(s.TotalSupply)
	snapCopy.MaxSupply = clonePtr(s.MaxSupply)
	snapCopy.ATH = clonePtr(s.ATH)
	snapCopy.ATHDate = clonePtr(s.ATHDate)
	snapCopy.ATL = clonePtr(s.ATL)
	snapCopy.ATLDate = clonePtr(s.ATLDate)
	snapCopy.LastUpdated = clonePtr(s.LastUpdated)

	return &snapCopy
}

var _ storage.MarketSnapshotStore = (*MarketSnapshotStore)(nil)
