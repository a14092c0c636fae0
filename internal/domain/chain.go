package domain

// Chain is an immutable registry entry for a supported network.
// Corresponds to the chains table in PostgreSQL.
type Chain struct {
	ChainID   int64  // canonical numeric chain id (e.g. 1 for ethereum)
	Name      string // platform name used by external data sources
	CreatedAt int64  // record creation timestamp (ms)
}
