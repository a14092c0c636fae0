package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// PutResult reports whether a ledger write stored a new record.
// Inserted == false is a successful replay, not an error.
type PutResult struct {
	Inserted bool
}

// LedgerWriter archives raw chain artifacts keyed by their natural key.
type LedgerWriter struct {
	store storage.LedgerStore
	now   func() int64
}

// NewLedgerWriter creates a new ledger writer.
func NewLedgerWriter(store storage.LedgerStore, now func() int64) *LedgerWriter {
	return &LedgerWriter{store: store, now: now}
}

// Put stores the payload under (kind, key) if absent. Hash-style keys
// are lower-cased so replays from differently-cased fetchers converge.
func (w *LedgerWriter) Put(ctx context.Context, kind domain.LedgerKind, key string, payload []byte) (PutResult, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return PutResult{}, fmt.Errorf("%w: empty ledger key", storage.ErrInvalidInput)
	}
	if len(payload) == 0 || !json.Valid(payload) {
		return PutResult{}, fmt.Errorf("%w: ledger payload must be a JSON document", storage.ErrInvalidInput)
	}
	if kind != domain.LedgerBlock {
		key = strings.ToLower(key)
	}

	inserted, err := w.store.Put(ctx, &domain.LedgerRecord{
		Kind:      kind,
		Key:       key,
		Payload:   payload,
		CreatedAt: w.now(),
	})
	if err != nil {
		return PutResult{}, fmt.Errorf("put ledger %s %s: %w", kind, key, err)
	}
	return PutResult{Inserted: inserted}, nil
}

// Get retrieves a record by kind and key.
func (w *LedgerWriter) Get(ctx context.Context, kind domain.LedgerKind, key string) (*domain.LedgerRecord, error) {
	if kind != domain.LedgerBlock {
		key = strings.ToLower(strings.TrimSpace(key))
	}
	return w.store.Get(ctx, kind, key)
}
