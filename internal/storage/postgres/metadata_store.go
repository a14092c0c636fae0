package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// MetadataStore implements storage.MetadataStore using PostgreSQL.
// Writes are guarded by the row's version column: an UPDATE that matches
// zero rows means another merge committed in between, and the caller
// re-reads and retries. No partially merged row is ever observable.
type MetadataStore struct {
	pool *Pool
}

// NewMetadataStore creates a new MetadataStore.
func NewMetadataStore(pool *Pool) *MetadataStore {
	return &MetadataStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MetadataStore = (*MetadataStore)(nil)

// Get retrieves the row for (address, chain_id). Returns ErrNotFound if not exists.
func (s *MetadataStore) Get(ctx context.Context, address string, chainID int64) (*domain.Metadata, error) {
	query := `
		SELECT address, chain_id, symbol, name, decimals, asset_type,
		       verified, risk_level, notices, description, abi,
		       homepage, image, field_sources, version, created_at, updated_at
		FROM metadata
		WHERE address = $1 AND chain_id = $2
	`

	row := s.pool.QueryRow(ctx, query, address, chainID)
	m, err := scanMetadata(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get metadata: %w", err)
	}
	return m, nil
}

// Put writes m if the stored version still equals expected.
// expected == 0 creates the row; the stored version becomes expected + 1.
func (s *MetadataStore) Put(ctx context.Context, m *domain.Metadata, expected int64) error {
	if expected == 0 {
		return s.create(ctx, m)
	}
	return s.update(ctx, m, expected)
}

func (s *MetadataStore) create(ctx context.Context, m *domain.Metadata) error {
	query := `
		INSERT INTO metadata (
			address, chain_id, symbol, name, decimals, asset_type,
			verified, risk_level, notices, description, abi,
			homepage, image, field_sources, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,1,$15,$16)
		ON CONFLICT (address, chain_id) DO NOTHING
	`

	tag, err := s.pool.Exec(ctx, query,
		m.Address, m.ChainID, m.Symbol, m.Name, m.Decimals, m.AssetType,
		m.Verified, m.RiskLevel, m.Notices, m.Description, m.ABI,
		m.Homepage, m.Image, m.FieldSources, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Lost the create race; caller re-reads and merges again.
		return storage.ErrVersionConflict
	}
	return nil
}

func (s *MetadataStore) update(ctx context.Context, m *domain.Metadata, expected int64) error {
	query := `
		UPDATE metadata SET
			symbol = $3, name = $4, decimals = $5, asset_type = $6,
			verified = $7, risk_level = $8, notices = $9, description = $10,
			abi = $11, homepage = $12, image = $13, field_sources = $14,
			version = $15, updated_at = $16
		WHERE address = $1 AND chain_id = $2 AND version = $17
	`

	tag, err := s.pool.Exec(ctx, query,
		m.Address, m.ChainID, m.Symbol, m.Name, m.Decimals, m.AssetType,
		m.Verified, m.RiskLevel, m.Notices, m.Description, m.ABI,
		m.Homepage, m.Image, m.FieldSources, expected+1, m.UpdatedAt, expected,
	)
	if err != nil {
		return fmt.Errorf("update metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrVersionConflict
	}
	return nil
}

// scanMetadata scans a single row into Metadata.
func scanMetadata(row pgx.Row) (*domain.Metadata, error) {
	var m domain.Metadata

	err := row.Scan(
		&m.Address, &m.ChainID, &m.Symbol, &m.Name, &m.Decimals, &m.AssetType,
		&m.Verified, &m.RiskLevel, &m.Notices, &m.Description, &m.ABI,
		&m.Homepage, &m.Image, &m.FieldSources, &m.Version, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if m.FieldSources == nil {
		m.FieldSources = make(map[string]domain.SourceTag)
	}

	return &m, nil
}
