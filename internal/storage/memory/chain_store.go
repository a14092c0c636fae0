package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// ChainStore is an in-memory implementation of storage.ChainStore.
type ChainStore struct {
	mu     sync.RWMutex
	chains map[int64]*domain.Chain
}

// NewChainStore creates a new in-memory chain store.
func NewChainStore() *ChainStore {
	return &ChainStore{
		chains: make(map[int64]*domain.Chain),
	}
}

// Insert adds a registry entry. Returns ErrDuplicateKey if chain_id exists.
func (s *ChainStore) Insert(_ context.Context, c *domain.Chain) error {
	if c == nil || c.ChainID == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.chains[c.ChainID]; exists {
		return storage.ErrDuplicateKey
	}

	chainCopy := *c
	s.chains[c.ChainID] = &chainCopy
	return nil
}

// Get retrieves a chain by id. Returns ErrNotFound if not exists.
func (s *ChainStore) Get(_ context.Context, chainID int64) (*domain.Chain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.chains[chainID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	chainCopy := *c
	return &chainCopy, nil
}

// List retrieves all registered chains ordered by chain_id.
func (s *ChainStore) List(_ context.Context) ([]*domain.Chain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chains := make([]*domain.Chain, 0, len(s.chains))
	for _, c := range s.chains {
		chainCopy := *c
		chains = append(chains, &chainCopy)
	}
	sort.Slice(chains, func(i, j int) bool { return chains[i].ChainID < chains[j].ChainID })
	return chains, nil
}

var _ storage.ChainStore = (*ChainStore)(nil)
