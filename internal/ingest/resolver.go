package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// Resolver maps an incoming (kind, address, chain) sighting to its
// canonical identity, creating the identity row on first sighting.
type Resolver struct {
	chains   storage.ChainStore
	entities storage.EntityStore
	now      func() int64
}

// NewResolver creates a new identity resolver.
func NewResolver(chains storage.ChainStore, entities storage.EntityStore, now func() int64) *Resolver {
	return &Resolver{chains: chains, entities: entities, now: now}
}

// Resolve returns the canonical identity for (address, chainID) within
// kind, creating it if absent, and reports whether this call created it.
// Safe under concurrent first sighting: the loser of the insert race
// falls back to reading the winner's row. Returns ErrIdentityConflict if
// the conflicting row cannot be read back.
func (r *Resolver) Resolve(ctx context.Context, kind domain.EntityKind, address string, chainID int64, symbol, name string) (*domain.Entity, bool, error) {
	address = domain.NormalizeAddress(address)
	if address == "" {
		return nil, false, fmt.Errorf("%w: empty address", storage.ErrInvalidInput)
	}
	if chainID <= 0 {
		return nil, false, fmt.Errorf("%w: chain id %d", storage.ErrInvalidInput, chainID)
	}
	if kind != domain.EntityKindToken && kind != domain.EntityKindNFT {
		return nil, false, fmt.Errorf("%w: unknown entity kind %q", storage.ErrInvalidInput, kind)
	}

	// No entity may reference a chain the registry doesn't know.
	if _, err := r.chains.Get(ctx, chainID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, fmt.Errorf("%w: chain %d not registered", storage.ErrInvalidInput, chainID)
		}
		return nil, false, fmt.Errorf("check chain %d: %w", chainID, err)
	}

	existing, err := r.entities.Get(ctx, kind, address, chainID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, fmt.Errorf("lookup %s identity: %w", kind, err)
	}

	entity := &domain.Entity{
		Kind:      kind,
		Address:   address,
		ChainID:   chainID,
		Symbol:    symbol,
		Name:      name,
		CreatedAt: r.now(),
	}
	err = r.entities.Insert(ctx, entity)
	if err == nil {
		return entity, true, nil
	}
	if !errors.Is(err, storage.ErrDuplicateKey) {
		return nil, false, fmt.Errorf("create %s identity: %w", kind, err)
	}

	// Lost the first-sighting race; the winner's row must be readable now.
	existing, err = r.entities.Get(ctx, kind, address, chainID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, fmt.Errorf("%w: %s %s on chain %d", storage.ErrIdentityConflict, kind, address, chainID)
		}
		return nil, false, fmt.Errorf("re-read %s identity: %w", kind, err)
	}
	return existing, false, nil
}
