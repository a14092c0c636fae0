// Package precedence declares which data source wins a metadata field
// when two sources disagree. The ranking is a pure configuration table;
// call sites never branch on source tags directly.
package precedence

import "github.com/zeno-studio/zeno-indexer/internal/domain"

// Table maps a metadata field name to its trusted sources, most trusted
// first. A source absent from a field's list ranks below every listed one.
type Table map[string][]domain.SourceTag

// Default returns the precedence used in production.
//
// Contract-level facts (decimals, asset type, symbol) trust the chain
// itself over anything list-sourced. Verification and ABI come from
// explorers. Editorial fields (description, risk, notices) require the
// curated source to displace a value once set by it.
func Default() Table {
	return Table{
		domain.FieldSymbol:      {domain.SourceOnChain, domain.SourceExplorer, domain.SourceAggregator},
		domain.FieldName:        {domain.SourceOnChain, domain.SourceExplorer, domain.SourceAggregator},
		domain.FieldDecimals:    {domain.SourceOnChain, domain.SourceExplorer, domain.SourceAggregator},
		domain.FieldAssetType:   {domain.SourceOnChain, domain.SourceExplorer, domain.SourceAggregator},
		domain.FieldVerified:    {domain.SourceCurated, domain.SourceExplorer},
		domain.FieldRiskLevel:   {domain.SourceCurated, domain.SourceExplorer},
		domain.FieldNotices:     {domain.SourceCurated, domain.SourceAggregator},
		domain.FieldDescription: {domain.SourceCurated, domain.SourceAggregator, domain.SourceExplorer},
		domain.FieldABI:         {domain.SourceExplorer, domain.SourceOnChain},
		domain.FieldHomepage:    {domain.SourceCurated, domain.SourceAggregator, domain.SourceExplorer},
		domain.FieldImage:       {domain.SourceCurated, domain.SourceAggregator, domain.SourceExplorer},
	}
}

// Rank returns the trust position of src for field; 0 is most trusted.
// Sources not listed for the field rank after every listed source.
func (t Table) Rank(field string, src domain.SourceTag) int {
	order := t[field]
	for i, tag := range order {
		if tag == src {
			return i
		}
	}
	return len(order)
}

// Wins reports whether a value from incoming may replace a value the
// field currently holds from existing. Equal rank wins: a source may
// supersede its own earlier data.
func (t Table) Wins(field string, incoming, existing domain.SourceTag) bool {
	return t.Rank(field, incoming) <= t.Rank(field, existing)
}
