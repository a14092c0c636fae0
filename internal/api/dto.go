package api

import (
	"encoding/json"
	"time"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/ingest"
)

// Wire shapes for the HTTP and WebSocket surface. Domain structs stay
// free of transport tags; converters live here.

type ChainRequest struct {
	ChainID int64  `json:"chain_id"`
	Name    string `json:"name"`
}

type ChainResponse struct {
	ChainID   int64  `json:"chain_id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

func toChainResponse(c *domain.Chain) ChainResponse {
	return ChainResponse{ChainID: c.ChainID, Name: c.Name, CreatedAt: c.CreatedAt}
}

type IdentityRequest struct {
	Kind    string `json:"kind"`
	Address string `json:"address"`
	ChainID int64  `json:"chain_id"`
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
}

type EntityResponse struct {
	EntityID  int64  `json:"entity_id"`
	Kind      string `json:"kind"`
	Address   string `json:"address"`
	ChainID   int64  `json:"chain_id"`
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

func toEntityResponse(e *domain.Entity) EntityResponse {
	return EntityResponse{
		EntityID:  e.EntityID,
		Kind:      string(e.Kind),
		Address:   e.Address,
		ChainID:   e.ChainID,
		Symbol:    e.Symbol,
		Name:      e.Name,
		CreatedAt: e.CreatedAt,
	}
}

// MetadataPatchRequest mirrors domain.MetadataPatch. Absent JSON keys
// decode to nil pointers and stay out of the merge.
type MetadataPatchRequest struct {
	Source      string          `json:"source"`
	Address     string          `json:"address"`
	ChainID     int64           `json:"chain_id"`
	Symbol      *string         `json:"symbol,omitempty"`
	Name        *string         `json:"name,omitempty"`
	Decimals    *int            `json:"decimals,omitempty"`
	AssetType   *string         `json:"asset_type,omitempty"`
	Verified    *bool           `json:"verified,omitempty"`
	RiskLevel   *int            `json:"risk_level,omitempty"`
	Notices     []domain.Notice `json:"notices,omitempty"`
	Description *string         `json:"description,omitempty"`
	ABI         json.RawMessage `json:"abi,omitempty"`
	Homepage    *string         `json:"homepage,omitempty"`
	Image       *string         `json:"image,omitempty"`
}

func (r *MetadataPatchRequest) toDomain() *domain.MetadataPatch {
	return &domain.MetadataPatch{
		Source:      domain.SourceTag(r.Source),
		Address:     r.Address,
		ChainID:     r.ChainID,
		Symbol:      r.Symbol,
		Name:        r.Name,
		Decimals:    r.Decimals,
		AssetType:   r.AssetType,
		Verified:    r.Verified,
		RiskLevel:   r.RiskLevel,
		Notices:     r.Notices,
		Description: r.Description,
		ABI:         r.ABI,
		Homepage:    r.Homepage,
		Image:       r.Image,
	}
}

type MergeOutcomeResponse struct {
	Created  bool     `json:"created"`
	Applied  []string `json:"applied"`
	Rejected []string `json:"rejected"`
	NoChange bool     `json:"no_change"`
}

func toMergeOutcomeResponse(o *ingest.MergeOutcome) MergeOutcomeResponse {
	return MergeOutcomeResponse{
		Created:  o.Created,
		Applied:  o.Applied,
		Rejected: o.Rejected,
		NoChange: o.NoChange,
	}
}

type MetadataResponse struct {
	Address      string            `json:"address"`
	ChainID      int64             `json:"chain_id"`
	Symbol       *string           `json:"symbol,omitempty"`
	Name         *string           `json:"name,omitempty"`
	Decimals     *int              `json:"decimals,omitempty"`
	AssetType    *string           `json:"asset_type,omitempty"`
	Verified     *bool             `json:"verified,omitempty"`
	RiskLevel    *int              `json:"risk_level,omitempty"`
	Notices      []domain.Notice   `json:"notices,omitempty"`
	Description  *string           `json:"description,omitempty"`
	ABI          json.RawMessage   `json:"abi,omitempty"`
	Homepage     *string           `json:"homepage,omitempty"`
	Image        *string           `json:"image,omitempty"`
	FieldSources map[string]string `json:"field_sources"`
	Version      int64             `json:"version"`
	CreatedAt    int64             `json:"created_at"`
	UpdatedAt    int64             `json:"updated_at"`
}

func toMetadataResponse(m *domain.Metadata) MetadataResponse {
	sources := make(map[string]string, len(m.FieldSources))
	for field, tag := range m.FieldSources {
		sources[field] = string(tag)
	}
	return MetadataResponse{
		Address:      m.Address,
		ChainID:      m.ChainID,
		Symbol:       m.Symbol,
		Name:         m.Name,
		Decimals:     m.Decimals,
		AssetType:    m.AssetType,
		Verified:     m.Verified,
		RiskLevel:    m.RiskLevel,
		Notices:      m.Notices,
		Description:  m.Description,
		ABI:          m.ABI,
		Homepage:     m.Homepage,
		Image:        m.Image,
		FieldSources: sources,
		Version:      m.Version,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type SnapshotRequest struct {
	TokenID string  `json:"token_id"`
	Symbol  string  `json:"symbol"`
	Name    string  `json:"name"`
	Image   *string `json:"image,omitempty"`

	MarketCap             *float64   `json:"market_cap,omitempty"`
	MarketCapRank         *int64     `json:"market_cap_rank,omitempty"`
	FullyDilutedValuation *float64   `json:"fully_diluted_valuation,omitempty"`
	PriceChange24h        *float64   `json:"price_change_24h,omitempty"`
	PriceChangePct24h     *float64   `json:"price_change_pct_24h,omitempty"`
	CirculatingSupply     *float64   `json:"circulating_supply,omitempty"`
	TotalSupply           *float64   `json:"total_supply,omitempty"`
	MaxSupply             *float64   `json:"max_supply,omitempty"`
	ATH                   *float64   `json:"ath,omitempty"`
	ATHDate               *time.Time `json:"ath_date,omitempty"`
	ATL                   *float64   `json:"atl,omitempty"`
	ATLDate               *time.Time `json:"atl_date,omitempty"`

	LastUpdated *time.Time `json:"last_updated,omitempty"`
	FetchedAt   int64      `json:"fetched_at,omitempty"`
}

func (r *SnapshotRequest) toDomain() *domain.MarketSnapshot {
	return &domain.MarketSnapshot{
		TokenID:               r.TokenID,
		Symbol:                r.Symbol,
		Name:                  r.Name,
		Image:                 r.Image,
		MarketCap:             r.MarketCap,
		MarketCapRank:         r.MarketCapRank,
		FullyDilutedValuation: r.FullyDilutedValuation,
		PriceChange24h:        r.PriceChange24h,
		PriceChangePct24h:     r.PriceChangePct24h,
		CirculatingSupply:     r.CirculatingSupply,
		TotalSupply:           r.TotalSupply,
		MaxSupply:             r.MaxSupply,
		ATH:                   r.ATH,
		ATHDate:               r.ATHDate,
		ATL:                   r.ATL,
		ATLDate:               r.ATLDate,
		LastUpdated:           r.LastUpdated,
		FetchedAt:             r.FetchedAt,
	}
}

func toSnapshotResponse(s *domain.MarketSnapshot) SnapshotRequest {
	return SnapshotRequest{
		TokenID:               s.TokenID,
		Symbol:                s.Symbol,
		Name:                  s.Name,
		Image:                 s.Image,
		MarketCap:             s.MarketCap,
		MarketCapRank:         s.MarketCapRank,
		FullyDilutedValuation: s.FullyDilutedValuation,
		PriceChange24h:        s.PriceChange24h,
		PriceChangePct24h:     s.PriceChangePct24h,
		CirculatingSupply:     s.CirculatingSupply,
		TotalSupply:           s.TotalSupply,
		MaxSupply:             s.MaxSupply,
		ATH:                   s.ATH,
		ATHDate:               s.ATHDate,
		ATL:                   s.ATL,
		ATLDate:               s.ATLDate,
		LastUpdated:           s.LastUpdated,
		FetchedAt:             s.FetchedAt,
	}
}

type PricePointRequest struct {
	Symbol      string  `json:"symbol"`
	TimestampMs int64   `json:"ts"`
	Price       float64 `json:"price"`
}

type AppendOutcomeResponse struct {
	RingDropped  bool `json:"ring_dropped"`
	RingEvicted  int  `json:"ring_evicted"`
	DailyUpdated bool `json:"daily_updated"`
}

func toAppendOutcomeResponse(o *ingest.AppendOutcome) AppendOutcomeResponse {
	return AppendOutcomeResponse{
		RingDropped:  o.RingDropped,
		RingEvicted:  o.RingEvicted,
		DailyUpdated: o.DailyUpdated,
	}
}

type PriceRingResponse struct {
	Symbol string              `json:"symbol"`
	Points []domain.PricePoint `json:"points"`
}

type DailyPriceResponse struct {
	Symbol string  `json:"symbol"`
	Day    string  `json:"day"` // YYYY-MM-DD, UTC
	Price  float64 `json:"price"`
}

func toDailyPriceResponse(d *domain.DailyPrice) DailyPriceResponse {
	return DailyPriceResponse{
		Symbol: d.Symbol,
		Day:    d.Day.UTC().Format("2006-01-02"),
		Price:  d.Price,
	}
}

type LedgerRequest struct {
	Kind    string          `json:"kind"`
	Key     string          `json:"key"`
	Payload json.RawMessage `json:"payload"`
}

type LedgerPutResponse struct {
	Inserted bool `json:"inserted"`
}

type LedgerResponse struct {
	Kind      string          `json:"kind"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt int64           `json:"created_at"`
}

func toLedgerResponse(r *domain.LedgerRecord) LedgerResponse {
	return LedgerResponse{
		Kind:      string(r.Kind),
		Key:       r.Key,
		Payload:   json.RawMessage(r.Payload),
		CreatedAt: r.CreatedAt,
	}
}

type HotSetEntryRequest struct {
	Rank       int64    `json:"rank"`
	TokenID    string   `json:"token_id"`
	Symbol     string   `json:"symbol"`
	Name       string   `json:"name"`
	Image      *string  `json:"image,omitempty"`
	MarketCap  *float64 `json:"market_cap,omitempty"`
	LastSynced int64    `json:"last_synced,omitempty"`
}

func (r *HotSetEntryRequest) toDomain() *domain.HotSetEntry {
	return &domain.HotSetEntry{
		Rank:      r.Rank,
		TokenID:   r.TokenID,
		Symbol:    r.Symbol,
		Name:      r.Name,
		Image:     r.Image,
		MarketCap: r.MarketCap,
	}
}

func toHotSetEntryResponse(e *domain.HotSetEntry) HotSetEntryRequest {
	return HotSetEntryRequest{
		Rank:       e.Rank,
		TokenID:    e.TokenID,
		Symbol:     e.Symbol,
		Name:       e.Name,
		Image:      e.Image,
		MarketCap:  e.MarketCap,
		LastSynced: e.LastSynced,
	}
}
