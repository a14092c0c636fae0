package memory

import (
	"context"
	"sync"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

type metadataKey struct {
	address string
	chainID int64
}

// MetadataStore is an in-memory implementation of storage.MetadataStore.
// Writes honor the same version compare-and-swap contract as the
// PostgreSQL store, so reconciler behavior is identical on both backends.
type MetadataStore struct {
	mu   sync.RWMutex
	rows map[metadataKey]*domain.Metadata
}

// NewMetadataStore creates a new in-memory metadata store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{
		rows: make(map[metadataKey]*domain.Metadata),
	}
}

// Get retrieves the row for (address, chain_id). Returns ErrNotFound if not exists.
func (s *MetadataStore) Get(_ context.Context, address string, chainID int64) (*domain.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.rows[metadataKey{address: address, chainID: chainID}]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyMetadata(m), nil
}

// Put writes m if the stored version still equals expected.
// expected == 0 creates the row; the stored version becomes expected + 1.
func (s *MetadataStore) Put(_ context.Context, m *domain.Metadata, expected int64) error {
	if m == nil || m.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := metadataKey{address: m.Address, chainID: m.ChainID}
	current, exists := s.rows[key]

	if expected == 0 {
		if exists {
			return storage.ErrVersionConflict
		}
	} else {
		if !exists || current.Version != expected {
			return storage.ErrVersionConflict
		}
	}

	stored := copyMetadata(m)
	stored.Version = expected + 1
	s.rows[key] = stored
	return nil
}

// copyMetadata deep-copies the record so callers can't mutate stored state.
func copyMetadata(m *domain.Metadata) *domain.Metadata {
	metaCopy := *m

	metaCopy.Symbol = clonePtr(m.Symbol)
	metaCopy.Name = clonePtr(m.Name)
	metaCopy.Decimals = clonePtr(m.Decimals)
	metaCopy.AssetType = clonePtr(m.AssetType)
	metaCopy.Verified = clonePtr(m.Verified)
	metaCopy.RiskLevel = clonePtr(m.RiskLevel)
	metaCopy.Description = clonePtr(m.Description)
	metaCopy.Homepage = clonePtr(m.Homepage)
	metaCopy.Image = clonePtr(m.Image)

	if m.Notices != nil {
		metaCopy.Notices = make([]domain.Notice, len(m.Notices))
		copy(metaCopy.Notices, m.Notices)
	}
	if m.ABI != nil {
		metaCopy.ABI = append([]byte(nil), m.ABI...)
	}
	metaCopy.FieldSources = make(map[string]domain.SourceTag, len(m.FieldSources))
	for k, v := range m.FieldSources {
		metaCopy.FieldSources[k] = v
	}

	return &metaCopy
}

var _ storage.MetadataStore = (*MetadataStore)(nil)
