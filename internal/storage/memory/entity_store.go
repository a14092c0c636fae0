package memory

import (
	"context"
	"sync"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

type entityKey struct {
	kind    domain.EntityKind
	address string
	chainID int64
}

// EntityStore is an in-memory implementation of storage.EntityStore.
type EntityStore struct {
	mu       sync.RWMutex
	entities map[entityKey]*domain.Entity
	nextID   int64
}

// NewEntityStore creates a new in-memory entity store.
func NewEntityStore() *EntityStore {
	return &EntityStore{
		entities: make(map[entityKey]*domain.Entity),
		nextID:   1,
	}
}

// Insert adds a new identity row and fills in the assigned EntityID.
// Returns ErrDuplicateKey if (address, chain_id) already exists within kind.
func (s *EntityStore) Insert(_ context.Context, e *domain.Entity) error {
	if e == nil || e.Address == "" {
		return storage.ErrInvalidInput
	}
	if e.Kind != domain.EntityKindToken && e.Kind != domain.EntityKindNFT {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := entityKey{kind: e.Kind, address: e.Address, chainID: e.ChainID}
	if _, exists := s.entities[key]; exists {
		return storage.ErrDuplicateKey
	}

	e.EntityID = s.nextID
	s.nextID++

	entityCopy := *e
	s.entities[key] = &entityCopy
	return nil
}

// Get retrieves an identity by (address, chain_id) within kind.
// Returns ErrNotFound if not exists.
func (s *EntityStore) Get(_ context.Context, kind domain.EntityKind, address string, chainID int64) (*domain.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entities[entityKey{kind: kind, address: address, chainID: chainID}]
	if !exists {
		return nil, storage.ErrNotFound
	}

	entityCopy := *e
	return &entityCopy, nil
}

var _ storage.EntityStore = (*EntityStore)(nil)
