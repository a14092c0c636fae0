package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

type dailyKey struct {
	symbol string
	day    int64 // unix seconds of midnight UTC
}

// PriceDailyStore is an in-memory implementation of storage.DailyPriceStore.
type PriceDailyStore struct {
	mu      sync.RWMutex
	entries map[dailyKey]*domain.DailyPrice
}

// NewPriceDailyStore creates a new in-memory daily price store.
func NewPriceDailyStore() *PriceDailyStore {
	return &PriceDailyStore{
		entries: make(map[dailyKey]*domain.DailyPrice),
	}
}

// Upsert writes the entry for (symbol, day); the last write for a date wins.
func (s *PriceDailyStore) Upsert(_ context.Context, p *domain.DailyPrice) error {
	if p == nil || p.Symbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entryCopy := *p
	entryCopy.Day = p.Day.UTC()
	s.entries[dailyKey{symbol: p.Symbol, day: entryCopy.Day.Unix()}] = &entryCopy
	return nil
}

// GetSeries retrieves all entries for a symbol ordered by day ASC.
func (s *PriceDailyStore) GetSeries(_ context.Context, symbol string) ([]*domain.DailyPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var series []*domain.DailyPrice
	for key, p := range s.entries {
		if key.symbol != symbol {
			continue
		}
		entryCopy := *p
		series = append(series, &entryCopy)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Day.Before(series[j].Day) })
	return series, nil
}

var _ storage.DailyPriceStore = (*PriceDailyStore)(nil)
