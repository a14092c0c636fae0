package clickhouse

import (
	"context"
	"fmt"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// PriceDailyStore implements storage.DailyPriceStore using ClickHouse.
// The table is a ReplacingMergeTree keyed on (symbol, day) with
// updated_at as the version column: re-inserting a date is how the
// last-write-wins replace happens, with deduplication deferred to
// background merges. Reads use FINAL to get the merged view.
type PriceDailyStore struct {
	conn *Conn
}

// NewPriceDailyStore creates a new PriceDailyStore.
func NewPriceDailyStore(conn *Conn) *PriceDailyStore {
	return &PriceDailyStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DailyPriceStore = (*PriceDailyStore)(nil)

// Upsert writes the entry for (symbol, day); the last write for a date wins.
func (s *PriceDailyStore) Upsert(ctx context.Context, p *domain.DailyPrice) error {
	query := `
		INSERT INTO price_daily (symbol, day, price, updated_at)
		VALUES (?, ?, ?, ?)
	`

	if err := s.conn.Exec(ctx, query, p.Symbol, p.Day, p.Price, p.UpdatedAt); err != nil {
		return fmt.Errorf("insert daily price: %w", err)
	}
	return nil
}

// GetSeries retrieves all entries for a symbol ordered by day ASC.
func (s *PriceDailyStore) GetSeries(ctx context.Context, symbol string) ([]*domain.DailyPrice, error) {
	query := `
		SELECT symbol, day, price, updated_at
		FROM price_daily FINAL
		WHERE symbol = ?
		ORDER BY day ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query daily series: %w", err)
	}
	defer rows.Close()

	var series []*domain.DailyPrice
	for rows.Next() {
		var p domain.DailyPrice
		if err := rows.Scan(&p.Symbol, &p.Day, &p.Price, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan daily price row: %w", err)
		}
		p.Day = p.Day.UTC()
		series = append(series, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily series rows: %w", err)
	}
	return series, nil
}
