package postgres

import (
	"context"
	"fmt"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// HotSetStore implements storage.HotSetStore using PostgreSQL.
// The table is a materialized view of the ranked trending tokens:
// every refresh clears and repopulates it inside one transaction, so
// readers always observe either the old set or the new set in full.
type HotSetStore struct {
	pool *Pool
}

// NewHotSetStore creates a new HotSetStore.
func NewHotSetStore(pool *Pool) *HotSetStore {
	return &HotSetStore{pool: pool}
}

// Compile-time interface check.
var _ storage.HotSetStore = (*HotSetStore)(nil)

// Replace swaps the entire cache content for entries in one transaction.
func (s *HotSetStore) Replace(ctx context.Context, entries []*domain.HotSetEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin hot set replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM hot_tokens`); err != nil {
		return fmt.Errorf("clear hot set: %w", err)
	}

	query := `
		INSERT INTO hot_tokens (rank, token_id, symbol, name, image, market_cap, last_synced)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, e := range entries {
		if _, err := tx.Exec(ctx, query,
			e.Rank, e.TokenID, e.Symbol, e.Name, e.Image, e.MarketCap, e.LastSynced,
		); err != nil {
			if isDuplicateKeyError(err) {
				if duplicateConstraint(err) == "hot_tokens_pkey" {
					return fmt.Errorf("%w: duplicate rank %d in hot set", storage.ErrInvalidInput, e.Rank)
				}
				return fmt.Errorf("%w: duplicate token_id %s in hot set", storage.ErrInvalidInput, e.TokenID)
			}
			return fmt.Errorf("insert hot set entry: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit hot set replace: %w", err)
	}
	return nil
}

// List retrieves the current entries ordered by rank ASC.
func (s *HotSetStore) List(ctx context.Context) ([]*domain.HotSetEntry, error) {
	query := `
		SELECT rank, token_id, symbol, name, image, market_cap, last_synced
		FROM hot_tokens
		ORDER BY rank ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list hot set: %w", err)
	}
	defer rows.Close()

	var entries []*domain.HotSetEntry
	for rows.Next() {
		var e domain.HotSetEntry
		if err := rows.Scan(&e.Rank, &e.TokenID, &e.Symbol, &e.Name, &e.Image, &e.MarketCap, &e.LastSynced); err != nil {
			return nil, fmt.Errorf("scan hot set entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hot set: %w", err)
	}
	return entries, nil
}
