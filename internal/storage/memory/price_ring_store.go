package memory

import (
	"context"
	"sync"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// PriceRingStore is an in-memory implementation of storage.PriceRingStore.
// The blob-replace-under-version contract matches the PostgreSQL store.
type PriceRingStore struct {
	mu    sync.RWMutex
	rings map[string]*domain.PriceRing // keyed by symbol
}

// NewPriceRingStore creates a new in-memory price ring store.
func NewPriceRingStore() *PriceRingStore {
	return &PriceRingStore{
		rings: make(map[string]*domain.PriceRing),
	}
}

// Get retrieves the ring for a symbol. Returns ErrNotFound if the symbol
// has no ring yet.
func (s *PriceRingStore) Get(_ context.Context, symbol string) (*domain.PriceRing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ring, exists := s.rings[symbol]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyRing(ring), nil
}

// Put replaces the blob if the stored version still equals expected.
// expected == 0 creates the ring; the stored version becomes expected + 1.
func (s *PriceRingStore) Put(_ context.Context, ring *domain.PriceRing, expected int64) error {
	if ring == nil || ring.Symbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.rings[ring.Symbol]

	if expected == 0 {
		if exists {
			return storage.ErrVersionConflict
		}
	} else {
		if !exists || current.Version != expected {
			return storage.ErrVersionConflict
		}
	}

	stored := copyRing(ring)
	stored.Version = expected + 1
	s.rings[ring.Symbol] = stored
	return nil
}

func copyRing(r *domain.PriceRing) *domain.PriceRing {
	ringCopy := *r
	if r.Points != nil {
		ringCopy.Points = make([]domain.PricePoint, len(r.Points))
		copy(ringCopy.Points, r.Points)
	}
	return &ringCopy
}

var _ storage.PriceRingStore = (*PriceRingStore)(nil)
