package memory

import (
	"context"
	"testing"
	"time"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
)

func TestPriceDailyStore_SeriesOrderedByDay(t *testing.T) {
	store := NewPriceDailyStore()
	ctx := context.Background()

	days := []time.Time{
		time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range days {
		err := store.Upsert(ctx, &domain.DailyPrice{Symbol: "ETH", Day: d, Price: float64(i), UpdatedAt: int64(i)})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	series, err := store.GetSeries(ctx, "ETH")
	if err != nil {
		t.Fatalf("GetSeries failed: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(series))
	}
	for i := 1; i < len(series); i++ {
		if !series[i-1].Day.Before(series[i].Day) {
			t.Errorf("Series not ordered by day at index %d", i)
		}
	}
}

func TestPriceDailyStore_SameDayLastWriteWins(t *testing.T) {
	store := NewPriceDailyStore()
	ctx := context.Background()

	d := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	_ = store.Upsert(ctx, &domain.DailyPrice{Symbol: "ETH", Day: d, Price: 3400.0, UpdatedAt: 1000})
	_ = store.Upsert(ctx, &domain.DailyPrice{Symbol: "ETH", Day: d, Price: 3455.5, UpdatedAt: 2000})

	series, _ := store.GetSeries(ctx, "ETH")
	if len(series) != 1 {
		t.Fatalf("Expected single entry for the date, got %d", len(series))
	}
	if series[0].Price != 3455.5 {
		t.Errorf("Last write should win: got %f", series[0].Price)
	}
}

func TestPriceDailyStore_SymbolsIsolated(t *testing.T) {
	store := NewPriceDailyStore()
	ctx := context.Background()

	d := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	_ = store.Upsert(ctx, &domain.DailyPrice{Symbol: "ETH", Day: d, Price: 3400.0})
	_ = store.Upsert(ctx, &domain.DailyPrice{Symbol: "BTC", Day: d, Price: 62000.0})

	series, _ := store.GetSeries(ctx, "BTC")
	if len(series) != 1 || series[0].Price != 62000.0 {
		t.Errorf("Unexpected BTC series: %+v", series)
	}
}
