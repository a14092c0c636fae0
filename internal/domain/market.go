package domain

import "time"

// MarketSnapshot is the latest known market metrics for one token.
// Corresponds to the market_snapshots table in PostgreSQL. The upstream
// feed is authoritative for the full record, so every write replaces the
// prior row wholesale; there is no field-level merge.
//
// Snapshots key off the feed's token id (and carry the symbol), not off
// the strict (address, chain_id) identity. Market sources identify tokens
// by symbol only, so symbol collisions across chains merge here. That is
// a deliberate modeling tradeoff inherited from the source schema.
type MarketSnapshot struct {
	TokenID string // feed-assigned token identifier, primary key
	Symbol  string
	Name    string
	Image   *string

	MarketCap             *float64
	MarketCapRank         *int64
	FullyDilutedValuation *float64
	PriceChange24h        *float64
	PriceChangePct24h     *float64
	CirculatingSupply     *float64
	TotalSupply           *float64
	MaxSupply             *float64
	ATH                   *float64
	ATHDate               *time.Time
	ATL                   *float64
	ATLDate               *time.Time

	LastUpdated *time.Time // feed-reported freshness
	FetchedAt   int64      // when the pull was handed to the core (ms)
}
