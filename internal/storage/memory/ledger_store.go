package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

type ledgerKey struct {
	kind domain.LedgerKind
	key  string
}

// LedgerStore is an in-memory implementation of storage.LedgerStore.
type LedgerStore struct {
	mu      sync.RWMutex
	records map[ledgerKey]*domain.LedgerRecord
}

// NewLedgerStore creates a new in-memory ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		records: make(map[ledgerKey]*domain.LedgerRecord),
	}
}

// Put inserts the record if its natural key is absent and reports
// whether a row was written. The first payload for a key is retained.
func (s *LedgerStore) Put(_ context.Context, rec *domain.LedgerRecord) (bool, error) {
	if rec == nil || rec.Key == "" {
		return false, storage.ErrInvalidInput
	}
	switch rec.Kind {
	case domain.LedgerBlock:
		if _, err := strconv.ParseInt(rec.Key, 10, 64); err != nil {
			return false, storage.ErrInvalidInput
		}
	case domain.LedgerTransaction, domain.LedgerEvent:
	default:
		return false, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := ledgerKey{kind: rec.Kind, key: rec.Key}
	if _, exists := s.records[key]; exists {
		return false, nil
	}

	s.records[key] = copyLedgerRecord(rec)
	return true, nil
}

// Get retrieves a record by kind and key. Returns ErrNotFound if not exists.
func (s *LedgerStore) Get(_ context.Context, kind domain.LedgerKind, key string) (*domain.LedgerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.records[ledgerKey{kind: kind, key: key}]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyLedgerRecord(rec), nil
}

func copyLedgerRecord(rec *domain.LedgerRecord) *domain.LedgerRecord {
	recCopy := *rec
	if rec.Payload != nil {
		recCopy.Payload = append([]byte(nil), rec.Payload...)
	}
	return &recCopy
}

var _ storage.LedgerStore = (*LedgerStore)(nil)
