package postgres

import (
	"context"
	"fmt"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// PriceDailyStore implements storage.DailyPriceStore using PostgreSQL.
// One row per (symbol, UTC day); the last write for a date wins.
type PriceDailyStore struct {
	pool *Pool
}

// NewPriceDailyStore creates a new PriceDailyStore.
func NewPriceDailyStore(pool *Pool) *PriceDailyStore {
	return &PriceDailyStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DailyPriceStore = (*PriceDailyStore)(nil)

// Upsert writes the entry for (symbol, day); the last write for a date wins.
func (s *PriceDailyStore) Upsert(ctx context.Context, p *domain.DailyPrice) error {
	query := `
		INSERT INTO price_daily (symbol, day, price, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol, day) DO UPDATE SET
			price = EXCLUDED.price,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query, p.Symbol, p.Day, p.Price, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert daily price: %w", err)
	}
	return nil
}

// GetSeries retrieves all entries for a symbol ordered by day ASC.
func (s *PriceDailyStore) GetSeries(ctx context.Context, symbol string) ([]*domain.DailyPrice, error) {
	query := `
		SELECT symbol, day, price, updated_at
		FROM price_daily
		WHERE symbol = $1
		ORDER BY day ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("get daily series: %w", err)
	}
	defer rows.Close()

	var series []*domain.DailyPrice
	for rows.Next() {
		var p domain.DailyPrice
		if err := rows.Scan(&p.Symbol, &p.Day, &p.Price, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan daily price: %w", err)
		}
		p.Day = p.Day.UTC()
		series = append(series, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily series: %w", err)
	}
	return series, nil
}
