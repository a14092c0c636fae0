package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

func TestSubmitPricePoint_AppendAndRead(t *testing.T) {
	svc := newTestService(t, ServiceOptions{})
	ctx := context.Background()

	base := int64(1700000000000)
	for i := 0; i < 5; i++ {
		outcome, err := svc.SubmitPricePoint(ctx, "ETH", base+int64(i)*1000, 3400.0+float64(i))
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if outcome.RingDropped || outcome.RingEvicted != 0 {
			t.Errorf("Unexpected outcome at %d: %+v", i, outcome)
		}
	}

	ring, err := svc.GetPriceRing(ctx, "ETH")
	if err != nil {
		t.Fatalf("GetPriceRing failed: %v", err)
	}
	if len(ring.Points) != 5 {
		t.Fatalf("Expected 5 points, got %d", len(ring.Points))
	}
	for i := 1; i < len(ring.Points); i++ {
		if ring.Points[i-1].TimestampMs >= ring.Points[i].TimestampMs {
			t.Error("Points must be ordered by timestamp ascending")
		}
	}
}

// Capacity+1 appends: the window holds exactly capacity points, the
// first point is gone and the newest is present.
func TestSubmitPricePoint_FIFOEviction(t *testing.T) {
	svc := newTestService(t, ServiceOptions{RingCapacity: 900})
	ctx := context.Background()

	base := int64(1700000000000)
	for i := 0; i < 901; i++ {
		if _, err := svc.SubmitPricePoint(ctx, "ETH", base+int64(i)*1000, float64(i)); err != nil {
			t.Fatalf("Submit %d failed: %v", i, err)
		}
	}

	ring, err := svc.GetPriceRing(ctx, "ETH")
	if err != nil {
		t.Fatalf("GetPriceRing failed: %v", err)
	}
	if len(ring.Points) != 900 {
		t.Fatalf("Window must hold exactly its capacity, got %d", len(ring.Points))
	}
	if ring.Points[0].TimestampMs == base {
		t.Error("Oldest original point should be evicted")
	}
	if ring.Points[0].TimestampMs != base+1000 {
		t.Errorf("Second point should now be oldest, got %d", ring.Points[0].TimestampMs)
	}
	last, _ := ring.Last()
	if last.TimestampMs != base+900*1000 {
		t.Errorf("Newest point should be present, got %d", last.TimestampMs)
	}
}

func TestSubmitPricePoint_SmallCapacity(t *testing.T) {
	svc := newTestService(t, ServiceOptions{RingCapacity: 3})
	ctx := context.Background()

	base := int64(1700000000000)
	for i := 0; i < 5; i++ {
		outcome, err := svc.SubmitPricePoint(ctx, "BTC", base+int64(i)*1000, float64(i))
		if err != nil {
			t.Fatalf("Submit %d failed: %v", i, err)
		}
		if i >= 3 && outcome.RingEvicted != 1 {
			t.Errorf("Append %d should evict exactly one point, got %d", i, outcome.RingEvicted)
		}
	}

	ring, _ := svc.GetPriceRing(ctx, "BTC")
	if len(ring.Points) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(ring.Points))
	}
	if ring.Points[0].Price != 2.0 || ring.Points[2].Price != 4.0 {
		t.Errorf("Unexpected window content: %+v", ring.Points)
	}
}

func TestSubmitPricePoint_NonMonotonicDropped(t *testing.T) {
	svc := newTestService(t, ServiceOptions{})
	ctx := context.Background()

	base := int64(1700000000000)
	if _, err := svc.SubmitPricePoint(ctx, "ETH", base+5000, 3400.0); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// Older and equal timestamps are dropped from the ring...
	for _, ts := range []int64{base + 1000, base + 5000} {
		outcome, err := svc.SubmitPricePoint(ctx, "ETH", ts, 9999.0)
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if !outcome.RingDropped {
			t.Errorf("Point at %d should be dropped", ts)
		}
		// ...but still reach the daily series (date-granularity replace)
		if !outcome.DailyUpdated {
			t.Error("Dropped ring point should still update the daily series")
		}
	}

	ring, _ := svc.GetPriceRing(ctx, "ETH")
	if len(ring.Points) != 1 || ring.Points[0].Price != 3400.0 {
		t.Errorf("Ring should be unchanged: %+v", ring.Points)
	}

	series, _ := svc.GetDailySeries(ctx, "ETH")
	if len(series) != 1 || series[0].Price != 9999.0 {
		t.Errorf("Daily series should hold the last submitted value: %+v", series)
	}
}

func TestSubmitPricePoint_DailySameDateReplaced(t *testing.T) {
	svc := newTestService(t, ServiceOptions{})
	ctx := context.Background()

	// 2023-11-14 in UTC, two points same date, one the next date
	day1a := int64(1699920000000) // 00:00:00
	day1b := int64(1699963200000) // 12:00:00
	day2 := int64(1700006400000)  // next day 00:00:00

	for _, p := range []struct {
		ts    int64
		price float64
	}{{day1a, 100.0}, {day1b, 110.0}, {day2, 120.0}} {
		if _, err := svc.SubmitPricePoint(ctx, "ETH", p.ts, p.price); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	series, err := svc.GetDailySeries(ctx, "ETH")
	if err != nil {
		t.Fatalf("GetDailySeries failed: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("Two UTC dates should yield two entries, got %d", len(series))
	}
	if series[0].Price != 110.0 {
		t.Errorf("Same-date resubmission should replace, got %f", series[0].Price)
	}
	if series[1].Price != 120.0 {
		t.Errorf("Next date should append, got %f", series[1].Price)
	}
}

func TestSubmitPricePoint_SymbolsIndependent(t *testing.T) {
	svc := newTestService(t, ServiceOptions{RingCapacity: 2})
	ctx := context.Background()

	base := int64(1700000000000)
	for i := 0; i < 3; i++ {
		if _, err := svc.SubmitPricePoint(ctx, "ETH", base+int64(i)*1000, float64(i)); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}
	if _, err := svc.SubmitPricePoint(ctx, "BTC", base, 62000.0); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	btc, _ := svc.GetPriceRing(ctx, "BTC")
	if len(btc.Points) != 1 {
		t.Errorf("BTC ring should be independent of ETH evictions: %+v", btc.Points)
	}
}

func TestSubmitPricePoint_Validation(t *testing.T) {
	svc := newTestService(t, ServiceOptions{})
	ctx := context.Background()

	cases := []struct {
		name   string
		symbol string
		ts     int64
		price  float64
	}{
		{"empty_symbol", "", 1700000000000, 1.0},
		{"zero_timestamp", "ETH", 0, 1.0},
		{"negative_price", "ETH", 1700000000000, -1.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SubmitPricePoint(ctx, tc.symbol, tc.ts, tc.price)
			if !errors.Is(err, storage.ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
