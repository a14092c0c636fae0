package domain

import "encoding/json"

// Notice is one structured advisory attached to a contract.
type Notice struct {
	Kind string `json:"kind"` // e.g. "delisting", "rebrand", "exploit"
	Text string `json:"text"`
}

// Metadata is the wide, mutable record kept per (address, chain_id).
// Corresponds to the metadata table in PostgreSQL. Exactly one row per
// identity; owned exclusively by the reconciler. Nullable fields are
// pointers; a nil pointer means the field has never been set by any source.
type Metadata struct {
	Address string // lower-cased contract address
	ChainID int64

	Symbol      *string
	Name        *string
	Decimals    *int
	AssetType   *string // e.g. "erc20", "erc721"
	Verified    *bool
	RiskLevel   *int
	Notices     []Notice        // nil = unset, empty slice = explicitly none
	Description *string
	ABI         json.RawMessage // structured document, nil = unset
	Homepage    *string
	Image       *string

	// FieldSources records, per field name, the tag of the source whose
	// value currently occupies the field. Drives precedence arbitration.
	FieldSources map[string]SourceTag

	Version   int64 // optimistic concurrency token, incremented per write
	CreatedAt int64 // set on first write, immutable (ms)
	UpdatedAt int64 // set on every applied merge (ms)
}

// MetadataPatch is a partial metadata record produced by one source.
// Nil fields are unset, which is distinct from set-to-empty: an unset
// field never participates in the merge.
type MetadataPatch struct {
	Source  SourceTag
	Address string
	ChainID int64

	Symbol      *string
	Name        *string
	Decimals    *int
	AssetType   *string
	Verified    *bool
	RiskLevel   *int
	Notices     []Notice
	Description *string
	ABI         json.RawMessage
	Homepage    *string
	Image       *string
}

// Metadata field names as used in FieldSources and the precedence table.
const (
	FieldSymbol      = "symbol"
	FieldName        = "name"
	FieldDecimals    = "decimals"
	FieldAssetType   = "asset_type"
	FieldVerified    = "verified"
	FieldRiskLevel   = "risk_level"
	FieldNotices     = "notices"
	FieldDescription = "description"
	FieldABI         = "abi"
	FieldHomepage    = "homepage"
	FieldImage       = "image"
)
