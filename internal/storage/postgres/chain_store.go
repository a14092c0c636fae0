package postgres

import (
	"context"
	"fmt"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// ChainStore implements storage.ChainStore using PostgreSQL.
type ChainStore struct {
	pool *Pool
}

// NewChainStore creates a new ChainStore.
func NewChainStore(pool *Pool) *ChainStore {
	return &ChainStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ChainStore = (*ChainStore)(nil)

// Insert adds a registry entry. Returns ErrDuplicateKey if chain_id exists.
func (s *ChainStore) Insert(ctx context.Context, c *domain.Chain) error {
	query := `
		INSERT INTO chains (chain_id, name, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := s.pool.Exec(ctx, query, c.ChainID, c.Name, c.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert chain: %w", err)
	}
	return nil
}

// Get retrieves a chain by id. Returns ErrNotFound if not exists.
func (s *ChainStore) Get(ctx context.Context, chainID int64) (*domain.Chain, error) {
	query := `
		SELECT chain_id, name, created_at
		FROM chains
		WHERE chain_id = $1
	`

	var c domain.Chain
	err := s.pool.QueryRow(ctx, query, chainID).Scan(&c.ChainID, &c.Name, &c.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get chain: %w", err)
	}
	return &c, nil
}

// List retrieves all registered chains ordered by chain_id.
func (s *ChainStore) List(ctx context.Context) ([]*domain.Chain, error) {
	query := `
		SELECT chain_id, name, created_at
		FROM chains
		ORDER BY chain_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list chains: %w", err)
	}
	defer rows.Close()

	var chains []*domain.Chain
	for rows.Next() {
		var c domain.Chain
		if err := rows.Scan(&c.ChainID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chain: %w", err)
		}
		chains = append(chains, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chains: %w", err)
	}
	return chains, nil
}
