package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/precedence"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// mergeRetries bounds how often a merge re-reads after losing the
// version race to a concurrent writer on the same key.
const mergeRetries = 5

// MergeOutcome reports what a reconciliation did, field by field.
// Rejections are not errors: a lower-priority source trying to displace
// a higher-priority field is a logged no-op the caller sees here.
type MergeOutcome struct {
	Created  bool     // first-ever write for this identity
	Applied  []string // fields written by this merge
	Rejected []string // fields refused by precedence
	NoChange bool     // nothing applied, no row written
	Retries  int      // version conflicts absorbed before committing
}

// Reconciler merges partial metadata records from independent sources
// into the single row per (address, chain_id), applying the field-level
// source precedence table.
type Reconciler struct {
	store storage.MetadataStore
	table precedence.Table
	now   func() int64
}

// NewReconciler creates a new metadata reconciler.
func NewReconciler(store storage.MetadataStore, table precedence.Table, now func() int64) *Reconciler {
	return &Reconciler{store: store, table: table, now: now}
}

// Merge folds the partial record into the stored row. A field already
// set is only displaced when the incoming source wins precedence for it;
// an unset incoming field never erases anything. Concurrent merges on
// the same key serialize through the row version: on conflict the merge
// re-reads and re-arbitrates, so a higher-priority write committed in
// between is never clobbered.
func (r *Reconciler) Merge(ctx context.Context, patch *domain.MetadataPatch) (*MergeOutcome, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	patch.Address = domain.NormalizeAddress(patch.Address)

	for attempt := 0; attempt < mergeRetries; attempt++ {
		existing, err := r.store.Get(ctx, patch.Address, patch.ChainID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("read metadata: %w", err)
		}

		if existing == nil {
			outcome, row := r.buildFirstRow(patch)
			err = r.store.Put(ctx, row, 0)
			if errors.Is(err, storage.ErrVersionConflict) {
				continue // lost the create race, merge onto the winner
			}
			if err != nil {
				return nil, fmt.Errorf("create metadata: %w", err)
			}
			outcome.Retries = attempt
			return outcome, nil
		}

		outcome := applyPatch(existing, patch, r.table)
		outcome.Retries = attempt
		if len(outcome.Applied) == 0 {
			outcome.NoChange = true
			return outcome, nil
		}

		existing.UpdatedAt = r.now()
		err = r.store.Put(ctx, existing, existing.Version)
		if errors.Is(err, storage.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("write metadata: %w", err)
		}
		return outcome, nil
	}

	return nil, fmt.Errorf("merge %s/%d: %w after %d attempts",
		patch.Address, patch.ChainID, storage.ErrVersionConflict, mergeRetries)
}

// buildFirstRow materializes the patch as a fresh row. Every set field
// applies; created_at is stamped here and never touched again.
func (r *Reconciler) buildFirstRow(patch *domain.MetadataPatch) (*MergeOutcome, *domain.Metadata) {
	now := r.now()
	row := &domain.Metadata{
		Address:      patch.Address,
		ChainID:      patch.ChainID,
		FieldSources: make(map[string]domain.SourceTag),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	outcome := applyPatch(row, patch, nil)
	outcome.Created = true
	return outcome, row
}

// applyPatch arbitrates every set field of the patch against the row.
// A nil table skips arbitration (first write, nothing to defend).
func applyPatch(row *domain.Metadata, patch *domain.MetadataPatch, table precedence.Table) *MergeOutcome {
	outcome := &MergeOutcome{}
	if row.FieldSources == nil {
		row.FieldSources = make(map[string]domain.SourceTag)
	}

	decide := func(field string, isSet, rowHas bool, write func()) {
		if !isSet {
			return
		}
		if rowHas && table != nil && !table.Wins(field, patch.Source, row.FieldSources[field]) {
			outcome.Rejected = append(outcome.Rejected, field)
			return
		}
		write()
		row.FieldSources[field] = patch.Source
		outcome.Applied = append(outcome.Applied, field)
	}

	decide(domain.FieldSymbol, patch.Symbol != nil, row.Symbol != nil, func() { row.Symbol = patch.Symbol })
	decide(domain.FieldName, patch.Name != nil, row.Name != nil, func() { row.Name = patch.Name })
	decide(domain.FieldDecimals, patch.Decimals != nil, row.Decimals != nil, func() { row.Decimals = patch.Decimals })
	decide(domain.FieldAssetType, patch.AssetType != nil, row.AssetType != nil, func() { row.AssetType = patch.AssetType })
	decide(domain.FieldVerified, patch.Verified != nil, row.Verified != nil, func() { row.Verified = patch.Verified })
	decide(domain.FieldRiskLevel, patch.RiskLevel != nil, row.RiskLevel != nil, func() { row.RiskLevel = patch.RiskLevel })
	decide(domain.FieldNotices, patch.Notices != nil, row.Notices != nil, func() { row.Notices = patch.Notices })
	decide(domain.FieldDescription, patch.Description != nil, row.Description != nil, func() { row.Description = patch.Description })
	decide(domain.FieldABI, patch.ABI != nil, row.ABI != nil, func() { row.ABI = patch.ABI })
	decide(domain.FieldHomepage, patch.Homepage != nil, row.Homepage != nil, func() { row.Homepage = patch.Homepage })
	decide(domain.FieldImage, patch.Image != nil, row.Image != nil, func() { row.Image = patch.Image })

	return outcome
}

func validatePatch(patch *domain.MetadataPatch) error {
	if patch == nil {
		return fmt.Errorf("%w: nil patch", storage.ErrInvalidInput)
	}
	if domain.NormalizeAddress(patch.Address) == "" {
		return fmt.Errorf("%w: empty address", storage.ErrInvalidInput)
	}
	if patch.ChainID <= 0 {
		return fmt.Errorf("%w: chain id %d", storage.ErrInvalidInput, patch.ChainID)
	}
	switch patch.Source {
	case domain.SourceOnChain, domain.SourceExplorer, domain.SourceAggregator, domain.SourceCurated:
	default:
		return fmt.Errorf("%w: unknown source tag %q", storage.ErrInvalidInput, patch.Source)
	}
	if patch.Decimals != nil && *patch.Decimals < 0 {
		return fmt.Errorf("%w: negative decimals %d", storage.ErrInvalidInput, *patch.Decimals)
	}
	if patch.RiskLevel != nil && *patch.RiskLevel < 0 {
		return fmt.Errorf("%w: negative risk level %d", storage.ErrInvalidInput, *patch.RiskLevel)
	}
	return nil
}
