// Package ingest is the reconciliation core: it decides, for each
// incoming record, how it is merged into persistent state and how the
// rolling price windows are maintained. Fetchers, schedulers and the
// query surface live outside this package and talk to Service.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/observability"
	"github.com/zeno-studio/zeno-indexer/internal/precedence"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// Service is the ingestion facade consumed by the transports. Every
// operation is independently atomic; no multi-call transaction exists.
type Service struct {
	resolver   *Resolver
	reconciler *Reconciler
	snapshots  *SnapshotWriter
	retention  *Retention
	ledger     *LedgerWriter
	hotSet     *HotSetRefresher

	chains    storage.ChainStore
	metaStore storage.MetadataStore
	snapStore storage.MarketSnapshotStore
	ringStore storage.PriceRingStore
	dayStore  storage.DailyPriceStore
	hotStore  storage.HotSetStore

	metrics *observability.Metrics
	logger  *log.Logger
	now     func() int64
}

// ServiceOptions contains configuration for creating a Service.
type ServiceOptions struct {
	Chains    storage.ChainStore
	Entities  storage.EntityStore
	Metadata  storage.MetadataStore
	Snapshots storage.MarketSnapshotStore
	Rings     storage.PriceRingStore
	Daily     storage.DailyPriceStore
	Ledger    storage.LedgerStore
	HotSet    storage.HotSetStore

	// DailyMirror optionally receives daily-series writes best-effort
	// (the analytical ClickHouse mirror). May be nil.
	DailyMirror storage.DailyPriceStore

	// Precedence defaults to precedence.Default() when nil.
	Precedence precedence.Table

	// RingCapacity defaults to DefaultRingCapacity when <= 0.
	RingCapacity int

	Metrics *observability.Metrics
	Logger  *log.Logger

	// Now overrides the clock, for tests. Milliseconds.
	Now func() int64
}

// NewService wires the core components from the provided stores.
func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	table := opts.Precedence
	if table == nil {
		table = precedence.Default()
	}
	now := opts.Now
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}

	return &Service{
		resolver:   NewResolver(opts.Chains, opts.Entities, now),
		reconciler: NewReconciler(opts.Metadata, table, now),
		snapshots:  NewSnapshotWriter(opts.Snapshots, now),
		retention:  NewRetention(opts.Rings, opts.Daily, opts.DailyMirror, opts.RingCapacity, now, logger),
		ledger:     NewLedgerWriter(opts.Ledger, now),
		hotSet:     NewHotSetRefresher(opts.HotSet, now),

		chains:    opts.Chains,
		metaStore: opts.Metadata,
		snapStore: opts.Snapshots,
		ringStore: opts.Rings,
		dayStore:  opts.Daily,
		hotStore:  opts.HotSet,

		metrics: opts.Metrics,
		logger:  logger,
		now:     now,
	}
}

// AddChain registers a network. Registering a known chain id again is a
// successful no-op, so management calls are replay-safe.
func (s *Service) AddChain(ctx context.Context, chainID int64, name string) error {
	if chainID <= 0 {
		return fmt.Errorf("%w: chain id %d", storage.ErrInvalidInput, chainID)
	}
	if name == "" {
		return fmt.Errorf("%w: empty chain name", storage.ErrInvalidInput)
	}

	err := s.chains.Insert(ctx, &domain.Chain{ChainID: chainID, Name: name, CreatedAt: s.now()})
	if errors.Is(err, storage.ErrDuplicateKey) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("add chain %d: %w", chainID, err)
	}
	return nil
}

// ListChains returns the chain registry.
func (s *Service) ListChains(ctx context.Context) ([]*domain.Chain, error) {
	return s.chains.List(ctx)
}

// ResolveIdentity maps a sighting to its canonical entity, creating it
// on first sighting. Resolving the same inputs twice yields the same id.
func (s *Service) ResolveIdentity(ctx context.Context, kind domain.EntityKind, address string, chainID int64, symbol, name string) (*domain.Entity, error) {
	entity, created, err := s.resolver.Resolve(ctx, kind, address, chainID, symbol, name)
	if err != nil {
		if s.metrics != nil && errors.Is(err, storage.ErrIdentityConflict) {
			s.metrics.IdentityConflicts.Inc()
		}
		return nil, err
	}
	if s.metrics != nil {
		if created {
			s.metrics.IdentitiesCreated.Inc()
		} else {
			s.metrics.IdentitiesResolved.Inc()
		}
	}
	return entity, nil
}

// SubmitMetadata merges one source's partial record and reports the
// per-field outcome. Precedence rejections are part of the outcome, not
// an error.
func (s *Service) SubmitMetadata(ctx context.Context, patch *domain.MetadataPatch) (*MergeOutcome, error) {
	outcome, err := s.reconciler.Merge(ctx, patch)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		if outcome.NoChange {
			s.metrics.MergesNoChange.Inc()
		} else {
			s.metrics.MergesApplied.Inc()
		}
		for _, field := range outcome.Rejected {
			s.metrics.PrecedenceRejections.WithLabelValues(field).Inc()
		}
		if outcome.Retries > 0 {
			s.metrics.MergeRetries.Add(float64(outcome.Retries))
		}
	}
	for _, field := range outcome.Rejected {
		s.logger.Printf("precedence rejected %s of %s/%d from %s",
			field, patch.Address, patch.ChainID, patch.Source)
	}
	return outcome, nil
}

// GetMetadata returns the reconciled row for (address, chain_id).
func (s *Service) GetMetadata(ctx context.Context, address string, chainID int64) (*domain.Metadata, error) {
	return s.metaStore.Get(ctx, domain.NormalizeAddress(address), chainID)
}

// SubmitMarketSnapshot fully replaces the stored snapshot for the token.
func (s *Service) SubmitMarketSnapshot(ctx context.Context, snapshot *domain.MarketSnapshot) error {
	if err := s.snapshots.Upsert(ctx, snapshot); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.SnapshotsUpserted.Inc()
	}
	return nil
}

// GetMarketSnapshot returns the latest snapshot for a token id.
func (s *Service) GetMarketSnapshot(ctx context.Context, tokenID string) (*domain.MarketSnapshot, error) {
	return s.snapStore.Get(ctx, tokenID)
}

// SubmitPricePoint folds one observation into the 15-minute ring and
// the daily series.
func (s *Service) SubmitPricePoint(ctx context.Context, symbol string, tsMs int64, price float64) (*AppendOutcome, error) {
	outcome, err := s.retention.Append(ctx, symbol, tsMs, price)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		if outcome.RingDropped {
			s.metrics.RingPointsDropped.Inc()
		} else {
			s.metrics.RingPointsAppended.Inc()
		}
		if outcome.RingEvicted > 0 {
			s.metrics.RingEvictions.Add(float64(outcome.RingEvicted))
		}
		if outcome.DailyUpdated {
			s.metrics.DailyUpserts.Inc()
		}
		if outcome.MirrorFailed {
			s.metrics.MirrorWriteErrors.Inc()
		}
	}
	return outcome, nil
}

// GetPriceRing returns the 15-minute window for a symbol.
func (s *Service) GetPriceRing(ctx context.Context, symbol string) (*domain.PriceRing, error) {
	return s.ringStore.Get(ctx, symbol)
}

// GetDailySeries returns the daily series for a symbol, oldest first.
func (s *Service) GetDailySeries(ctx context.Context, symbol string) ([]*domain.DailyPrice, error) {
	return s.dayStore.GetSeries(ctx, symbol)
}

// SubmitLedgerRecord archives a raw chain artifact. A replayed key is a
// successful no-op with Inserted == false.
func (s *Service) SubmitLedgerRecord(ctx context.Context, kind domain.LedgerKind, key string, payload []byte) (PutResult, error) {
	result, err := s.ledger.Put(ctx, kind, key, payload)
	if err != nil {
		return result, err
	}
	if s.metrics != nil {
		if result.Inserted {
			s.metrics.LedgerRecordsStored.Inc()
		} else {
			s.metrics.DuplicatesIgnored.WithLabelValues(string(kind)).Inc()
		}
	}
	return result, nil
}

// GetLedgerRecord returns an archived record by kind and key.
func (s *Service) GetLedgerRecord(ctx context.Context, kind domain.LedgerKind, key string) (*domain.LedgerRecord, error) {
	return s.ledger.Get(ctx, kind, key)
}

// RefreshHotSet replaces the trending view wholesale.
func (s *Service) RefreshHotSet(ctx context.Context, entries []*domain.HotSetEntry) error {
	if err := s.hotSet.Refresh(ctx, entries); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.HotSetRefreshes.Inc()
		s.metrics.HotSetSize.Set(float64(len(entries)))
	}
	return nil
}

// ListHotSet returns the current trending view ordered by rank.
func (s *Service) ListHotSet(ctx context.Context) ([]*domain.HotSetEntry, error) {
	return s.hotStore.List(ctx)
}
