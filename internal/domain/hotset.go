package domain

// HotSetEntry is one row of the ranked trending-tokens view.
// Corresponds to the hot_tokens table in PostgreSQL. The whole set is
// recomputed upstream and replaced transactionally on each refresh;
// entries are never merged or mutated individually.
type HotSetEntry struct {
	Rank       int64 // 1-based position in the refreshed ranking
	TokenID    string
	Symbol     string
	Name       string
	Image      *string
	MarketCap  *float64
	LastSynced int64 // refresh timestamp (ms)
}
