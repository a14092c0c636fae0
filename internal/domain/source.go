package domain

// SourceTag identifies the external feed a partial record came from.
// Precedence between tags is configured in internal/precedence.
type SourceTag string

// Known source tags
const (
	// SourceOnChain is data read directly from node RPC (decimals, symbol).
	SourceOnChain SourceTag = "onchain"

	// SourceExplorer is data from block explorers (verification, ABI).
	SourceExplorer SourceTag = "explorer"

	// SourceAggregator is data from market-data APIs (lists, descriptions).
	SourceAggregator SourceTag = "aggregator"

	// SourceCurated is manually reviewed data (risk levels, notices).
	SourceCurated SourceTag = "curated"
)
