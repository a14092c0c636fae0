package postgres

import (
	"context"
	"fmt"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// EntityStore implements storage.EntityStore using PostgreSQL.
// Token and NFT identities live in separate tables with identical shape;
// the kind selects the table.
type EntityStore struct {
	pool *Pool
}

// NewEntityStore creates a new EntityStore.
func NewEntityStore(pool *Pool) *EntityStore {
	return &EntityStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EntityStore = (*EntityStore)(nil)

func entityTable(kind domain.EntityKind) (string, error) {
	switch kind {
	case domain.EntityKindToken:
		return "token_entities", nil
	case domain.EntityKindNFT:
		return "nft_entities", nil
	default:
		return "", fmt.Errorf("%w: unknown entity kind %q", storage.ErrInvalidInput, kind)
	}
}

// Insert adds a new identity row and fills in the assigned EntityID.
// Returns ErrDuplicateKey if (address, chain_id) already exists.
func (s *EntityStore) Insert(ctx context.Context, e *domain.Entity) error {
	table, err := entityTable(e.Kind)
	if err != nil {
		return err
	}

	// ON CONFLICT DO NOTHING plus RETURNING: no row back means a
	// concurrent writer created the identity first.
	query := fmt.Sprintf(`
		INSERT INTO %s (address, chain_id, symbol, name, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (address, chain_id) DO NOTHING
		RETURNING entity_id
	`, table)

	err = s.pool.QueryRow(ctx, query,
		e.Address, e.ChainID, e.Symbol, e.Name, e.CreatedAt,
	).Scan(&e.EntityID)
	if err != nil {
		if isNotFoundError(err) {
			return storage.ErrDuplicateKey
		}
		if isForeignKeyError(err) {
			return fmt.Errorf("%w: chain %d not registered", storage.ErrInvalidInput, e.ChainID)
		}
		return fmt.Errorf("insert %s entity: %w", e.Kind, err)
	}
	return nil
}

// Get retrieves an identity by (address, chain_id) within kind.
// Returns ErrNotFound if not exists.
func (s *EntityStore) Get(ctx context.Context, kind domain.EntityKind, address string, chainID int64) (*domain.Entity, error) {
	table, err := entityTable(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT entity_id, address, chain_id, symbol, name, created_at
		FROM %s
		WHERE address = $1 AND chain_id = $2
	`, table)

	e := domain.Entity{Kind: kind}
	err = s.pool.QueryRow(ctx, query, address, chainID).Scan(
		&e.EntityID, &e.Address, &e.ChainID, &e.Symbol, &e.Name, &e.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get %s entity: %w", kind, err)
	}
	return &e, nil
}
