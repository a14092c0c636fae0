package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// MarketSnapshotStore implements storage.MarketSnapshotStore using PostgreSQL.
// The upstream feed is authoritative for the full record, so the upsert
// replaces every column; absent optional fields stay NULL, never zero.
type MarketSnapshotStore struct {
	pool *Pool
}

// NewMarketSnapshotStore creates a new MarketSnapshotStore.
func NewMarketSnapshotStore(pool *Pool) *MarketSnapshotStore {
	return &MarketSnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MarketSnapshotStore = (*MarketSnapshotStore)(nil)

// Upsert fully replaces the snapshot for s.TokenID. Idempotent.
func (st *MarketSnapshotStore) Upsert(ctx context.Context, s *domain.MarketSnapshot) error {
	query := `
		INSERT INTO market_snapshots (
			token_id, symbol, name, image,
			market_cap, market_cap_rank, fully_diluted_valuation,
			price_change_24h, price_change_percentage_24h,
			circulating_supply, total_supply, max_supply,
			ath, ath_date, atl, atl_date, last_updated, fetched_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (token_id) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			name = EXCLUDED.name,
			image = EXCLUDED.image,
			market_cap = EXCLUDED.market_cap,
			market_cap_rank = EXCLUDED.market_cap_rank,
			fully_diluted_valuation = EXCLUDED.fully_diluted_valuation,
			price_change_24h = EXCLUDED.price_change_24h,
			price_change_percentage_24h = EXCLUDED.price_change_percentage_24h,
			circulating_supply = EXCLUDED.circulating_supply,
			total_supply = EXCLUDED.total_supply,
			max_supply = EXCLUDED.max_supply,
			ath = EXCLUDED.ath,
			ath_date = EXCLUDED.ath_date,
			atl = EXCLUDED.atl,
			atl_date = EXCLUDED.atl_date,
			last_updated = EXCLUDED.last_updated,
			fetched_at = EXCLUDED.fetched_at
	`

	_, err := st.pool.Exec(ctx, query,
		s.TokenID, s.Symbol, s.Name, s.Image,
		s.MarketCap, s.MarketCapRank, s.FullyDilutedValuation,
		s.PriceChange24h, s.PriceChangePct24h,
		s.CirculatingSupply, s.TotalSupply, s.MaxSupply,
		s.ATH, s.ATHDate, s.ATL, s.ATLDate, s.LastUpdated, s.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert market snapshot: %w", err)
	}
	return nil
}

// Get retrieves the latest snapshot. Returns ErrNotFound if not exists.
func (st *MarketSnapshotStore) Get(ctx context.Context, tokenID string) (*domain.MarketSnapshot, error) {
	query := `
		SELECT token_id, symbol, name, image,
		       market_cap, market_cap_rank, fully_diluted_valuation,
		       price_change_24h, price_change_percentage_24h,
		       circulating_supply, total_supply, max_supply,
		       ath, ath_date, atl, atl_date, last_updated, fetched_at
		FROM market_snapshots
		WHERE token_id = $1
	`

	row := st.pool.QueryRow(ctx, query, tokenID)
	s, err := scanMarketSnapshot(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get market snapshot: %w", err)
	}
	return s, nil
}

// scanMarketSnapshot scans a single row into MarketSnapshot.
func scanMarketSnapshot(row pgx.Row) (*domain.MarketSnapshot, error) {
	var s domain.MarketSnapshot

	err := row.Scan(
		&s.TokenID, &s.Symbol, &s.Name, &s.Image,
		&s.MarketCap, &s.MarketCapRank, &s.FullyDilutedValuation,
		&s.PriceChange24h, &s.PriceChangePct24h,
		&s.CirculatingSupply, &s.TotalSupply, &s.MaxSupply,
		&s.ATH, &s.ATHDate, &s.ATL, &s.ATLDate, &s.LastUpdated, &s.FetchedAt,
	)
	if err != nil {
		return nil, err
	}

	return &s, nil
}
