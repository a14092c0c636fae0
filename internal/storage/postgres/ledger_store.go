package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// LedgerStore implements storage.LedgerStore using PostgreSQL.
// Blocks, transactions and events each map to their own append-only
// table keyed by the natural key; ON CONFLICT DO NOTHING makes replayed
// deliveries a no-op without any per-key locking.
type LedgerStore struct {
	pool *Pool
}

// NewLedgerStore creates a new LedgerStore.
func NewLedgerStore(pool *Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LedgerStore = (*LedgerStore)(nil)

// Put inserts the record if its natural key is absent and reports
// whether a row was written. The first payload for a key is retained.
func (s *LedgerStore) Put(ctx context.Context, rec *domain.LedgerRecord) (bool, error) {
	switch rec.Kind {
	case domain.LedgerBlock:
		number, err := strconv.ParseInt(rec.Key, 10, 64)
		if err != nil {
			return false, fmt.Errorf("%w: block key %q is not a number", storage.ErrInvalidInput, rec.Key)
		}
		return s.put(ctx, `
			INSERT INTO ledger_blocks (block_number, payload, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (block_number) DO NOTHING
		`, number, rec)

	case domain.LedgerTransaction:
		return s.put(ctx, `
			INSERT INTO ledger_transactions (tx_hash, payload, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (tx_hash) DO NOTHING
		`, rec.Key, rec)

	case domain.LedgerEvent:
		return s.put(ctx, `
			INSERT INTO ledger_events (event_id, payload, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (event_id) DO NOTHING
		`, rec.Key, rec)

	default:
		return false, fmt.Errorf("%w: unknown ledger kind %q", storage.ErrInvalidInput, rec.Kind)
	}
}

func (s *LedgerStore) put(ctx context.Context, query string, key any, rec *domain.LedgerRecord) (bool, error) {
	tag, err := s.pool.Exec(ctx, query, key, rec.Payload, rec.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("put ledger %s: %w", rec.Kind, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Get retrieves a record by kind and key. Returns ErrNotFound if not exists.
func (s *LedgerStore) Get(ctx context.Context, kind domain.LedgerKind, key string) (*domain.LedgerRecord, error) {
	var query string
	var arg any = key

	switch kind {
	case domain.LedgerBlock:
		number, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: block key %q is not a number", storage.ErrInvalidInput, key)
		}
		arg = number
		query = `SELECT payload, created_at FROM ledger_blocks WHERE block_number = $1`
	case domain.LedgerTransaction:
		query = `SELECT payload, created_at FROM ledger_transactions WHERE tx_hash = $1`
	case domain.LedgerEvent:
		query = `SELECT payload, created_at FROM ledger_events WHERE event_id = $1`
	default:
		return nil, fmt.Errorf("%w: unknown ledger kind %q", storage.ErrInvalidInput, kind)
	}

	rec := domain.LedgerRecord{Kind: kind, Key: key}
	err := s.pool.QueryRow(ctx, query, arg).Scan(&rec.Payload, &rec.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get ledger %s: %w", kind, err)
	}
	return &rec, nil
}
