package domain

import "strings"

// EntityKind selects the identity map a record belongs to.
type EntityKind string

// Entity kind constants
const (
	EntityKindToken EntityKind = "token"
	EntityKindNFT   EntityKind = "nft"
)

// Entity is the canonical identity for a token or NFT contract.
// Corresponds to the token_entities / nft_entities tables in PostgreSQL.
// (address, chain_id) is unique within each kind.
type Entity struct {
	EntityID  int64      // BIGSERIAL primary key
	Kind      EntityKind // token | nft
	Address   string     // contract address, lower-cased
	ChainID   int64      // FK to chains
	Symbol    string     // ticker symbol as reported at first sighting
	Name      string     // display name as reported at first sighting
	CreatedAt int64      // record creation timestamp (ms)
}

// NormalizeAddress lower-cases an address for identity comparison.
// All identity keyed tables store addresses in this form.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
