package ingest

import (
	"context"
	"fmt"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// SnapshotWriter persists the latest market metrics per token. The feed
// is authoritative for the whole record, so each write is a full
// replace; re-applying the same pull is a no-op in effect.
type SnapshotWriter struct {
	store storage.MarketSnapshotStore
	now   func() int64
}

// NewSnapshotWriter creates a new market snapshot writer.
func NewSnapshotWriter(store storage.MarketSnapshotStore, now func() int64) *SnapshotWriter {
	return &SnapshotWriter{store: store, now: now}
}

// Upsert validates and fully replaces the stored snapshot for
// snapshot.TokenID.
func (w *SnapshotWriter) Upsert(ctx context.Context, snapshot *domain.MarketSnapshot) error {
	if snapshot == nil || snapshot.TokenID == "" {
		return fmt.Errorf("%w: empty token id", storage.ErrInvalidInput)
	}
	if snapshot.Symbol == "" {
		return fmt.Errorf("%w: empty symbol for token %s", storage.ErrInvalidInput, snapshot.TokenID)
	}
	if snapshot.MarketCapRank != nil && *snapshot.MarketCapRank < 1 {
		return fmt.Errorf("%w: market cap rank %d", storage.ErrInvalidInput, *snapshot.MarketCapRank)
	}
	if snapshot.FetchedAt == 0 {
		snapshot.FetchedAt = w.now()
	}

	if err := w.store.Upsert(ctx, snapshot); err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", snapshot.TokenID, err)
	}
	return nil
}
