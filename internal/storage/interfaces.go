package storage

import (
	"context"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
)

// ChainStore provides access to the chains registry.
type ChainStore interface {
	// Insert adds a registry entry. Returns ErrDuplicateKey if chain_id exists.
	Insert(ctx context.Context, c *domain.Chain) error

	// Get retrieves a chain by id. Returns ErrNotFound if not exists.
	Get(ctx context.Context, chainID int64) (*domain.Chain, error)

	// List retrieves all registered chains ordered by chain_id.
	List(ctx context.Context) ([]*domain.Chain, error)
}

// EntityStore provides access to the token/NFT identity maps.
type EntityStore interface {
	// Insert adds a new identity row for (address, chain_id) within the
	// entity's kind and fills in the assigned EntityID. Returns
	// ErrDuplicateKey if the identity already exists.
	Insert(ctx context.Context, e *domain.Entity) error

	// Get retrieves an identity by (address, chain_id) within kind.
	// Returns ErrNotFound if not exists.
	Get(ctx context.Context, kind domain.EntityKind, address string, chainID int64) (*domain.Entity, error)
}

// MetadataStore provides access to the metadata table.
// Writes are compare-and-swap on the row version so that concurrent
// merges on the same key serialize.
type MetadataStore interface {
	// Get retrieves the row for (address, chain_id).
	// Returns ErrNotFound if not exists.
	Get(ctx context.Context, address string, chainID int64) (*domain.Metadata, error)

	// Put writes m if the stored version still equals expected.
	// expected == 0 creates the row; a concurrent create or a version
	// mismatch returns ErrVersionConflict. The stored version becomes
	// expected + 1.
	Put(ctx context.Context, m *domain.Metadata, expected int64) error
}

// MarketSnapshotStore provides access to the market_snapshots table.
type MarketSnapshotStore interface {
	// Upsert fully replaces the snapshot for s.TokenID. Idempotent.
	Upsert(ctx context.Context, s *domain.MarketSnapshot) error

	// Get retrieves the latest snapshot. Returns ErrNotFound if not exists.
	Get(ctx context.Context, tokenID string) (*domain.MarketSnapshot, error)
}

// PriceRingStore provides access to the wholesale-replaced 15-minute
// window blobs.
type PriceRingStore interface {
	// Get retrieves the ring for a symbol. Returns ErrNotFound if the
	// symbol has no ring yet.
	Get(ctx context.Context, symbol string) (*domain.PriceRing, error)

	// Put replaces the blob if the stored version still equals expected.
	// expected == 0 creates the row; mismatch returns ErrVersionConflict.
	Put(ctx context.Context, ring *domain.PriceRing, expected int64) error
}

// DailyPriceStore provides access to the per-symbol daily series.
type DailyPriceStore interface {
	// Upsert writes the entry for (symbol, day); the last write for a
	// date wins.
	Upsert(ctx context.Context, p *domain.DailyPrice) error

	// GetSeries retrieves all entries for a symbol ordered by day ASC.
	GetSeries(ctx context.Context, symbol string) ([]*domain.DailyPrice, error)
}

// LedgerStore provides append-only access to the raw ledger tables.
type LedgerStore interface {
	// Put inserts the record if its natural key is absent and reports
	// whether a row was written. A replay of a known key is a successful
	// no-op with inserted == false; the first payload is retained.
	Put(ctx context.Context, rec *domain.LedgerRecord) (inserted bool, err error)

	// Get retrieves a record by kind and key. Returns ErrNotFound if not exists.
	Get(ctx context.Context, kind domain.LedgerKind, key string) (*domain.LedgerRecord, error)
}

// HotSetStore provides access to the hot_tokens materialized view.
type HotSetStore interface {
	// Replace swaps the entire cache content for entries in one
	// transaction. An empty slice clears the cache.
	Replace(ctx context.Context, entries []*domain.HotSetEntry) error

	// List retrieves the current entries ordered by rank ASC.
	List(ctx context.Context) ([]*domain.HotSetEntry, error)
}
