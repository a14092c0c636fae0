package postgres

import (
	"context"
	"fmt"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// PriceRingStore implements storage.PriceRingStore using PostgreSQL.
// Each symbol's 15-minute window is one row holding the points as a
// JSONB blob; the blob is replaced wholesale under a version guard, so
// eviction decided in application logic is committed atomically.
type PriceRingStore struct {
	pool *Pool
}

// NewPriceRingStore creates a new PriceRingStore.
func NewPriceRingStore(pool *Pool) *PriceRingStore {
	return &PriceRingStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PriceRingStore = (*PriceRingStore)(nil)

// Get retrieves the ring for a symbol. Returns ErrNotFound if the symbol
// has no ring yet.
func (s *PriceRingStore) Get(ctx context.Context, symbol string) (*domain.PriceRing, error) {
	query := `
		SELECT symbol, points, version
		FROM price_rings
		WHERE symbol = $1
	`

	var ring domain.PriceRing
	err := s.pool.QueryRow(ctx, query, symbol).Scan(&ring.Symbol, &ring.Points, &ring.Version)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get price ring: %w", err)
	}
	return &ring, nil
}

// Put replaces the blob if the stored version still equals expected.
// expected == 0 creates the row; the stored version becomes expected + 1.
func (s *PriceRingStore) Put(ctx context.Context, ring *domain.PriceRing, expected int64) error {
	if expected == 0 {
		query := `
			INSERT INTO price_rings (symbol, points, version, updated_at)
			VALUES ($1, $2, 1, (extract(epoch from now()) * 1000)::bigint)
			ON CONFLICT (symbol) DO NOTHING
		`
		tag, err := s.pool.Exec(ctx, query, ring.Symbol, ring.Points)
		if err != nil {
			return fmt.Errorf("create price ring: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrVersionConflict
		}
		return nil
	}

	query := `
		UPDATE price_rings
		SET points = $2, version = $3,
		    updated_at = (extract(epoch from now()) * 1000)::bigint
		WHERE symbol = $1 AND version = $4
	`
	tag, err := s.pool.Exec(ctx, query, ring.Symbol, ring.Points, expected+1, expected)
	if err != nil {
		return fmt.Errorf("update price ring: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrVersionConflict
	}
	return nil
}
