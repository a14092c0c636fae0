package ingest

import (
	"context"
	"testing"

	"github.com/zeno-studio/zeno-indexer/internal/storage/memory"
)

// newTestService wires a Service onto fresh memory stores with a fixed
// clock and the ethereum chain pre-registered.
func newTestService(t *testing.T, opts ServiceOptions) *Service {
	t.Helper()

	if opts.Chains == nil {
		opts.Chains = memory.NewChainStore()
	}
	opts.Entities = memory.NewEntityStore()
	opts.Metadata = memory.NewMetadataStore()
	opts.Snapshots = memory.NewMarketSnapshotStore()
	opts.Rings = memory.NewPriceRingStore()
	opts.Daily = memory.NewPriceDailyStore()
	opts.Ledger = memory.NewLedgerStore()
	opts.HotSet = memory.NewHotSetStore()

	if opts.Now == nil {
		clock := int64(1700000000000)
		opts.Now = func() int64 {
			clock += 1000
			return clock
		}
	}

	svc := NewService(opts)
	if err := svc.AddChain(context.Background(), 1, "ethereum"); err != nil {
		t.Fatalf("AddChain failed: %v", err)
	}
	return svc
}

func ptr[T any](v T) *T {
	return &v
}
