package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// DefaultRingCapacity is the number of points the 15-minute window
// holds: one per second.
const DefaultRingCapacity = 900

// ringRetries bounds the compare-and-swap loop on the ring blob.
const ringRetries = 5

// AppendOutcome reports what a price point submission did to each window.
type AppendOutcome struct {
	RingDropped  bool // point was not newer than the ring's last point
	RingEvicted  int  // points evicted to stay within capacity
	DailyUpdated bool
	MirrorFailed bool // best-effort mirror write did not land
}

// Retention maintains the two per-symbol price windows: the bounded
// 15-minute ring, enforced entirely in application logic before the blob
// write, and the unbounded per-UTC-date daily series. An optional mirror
// store receives daily writes best-effort for analytical queries.
type Retention struct {
	rings    storage.PriceRingStore
	daily    storage.DailyPriceStore
	mirror   storage.DailyPriceStore // optional, write failures are logged only
	capacity int
	now      func() int64
	logger   *log.Logger
}

// NewRetention creates a retention manager. capacity <= 0 selects
// DefaultRingCapacity; mirror may be nil.
func NewRetention(rings storage.PriceRingStore, daily storage.DailyPriceStore, mirror storage.DailyPriceStore, capacity int, now func() int64, logger *log.Logger) *Retention {
	if capacity <= 0 {
		capacity = DefaultRingCapacity
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Retention{
		rings:    rings,
		daily:    daily,
		mirror:   mirror,
		capacity: capacity,
		now:      now,
		logger:   logger,
	}
}

// Append folds one (timestamp, price) observation into both windows.
// The windows are independent: a point the ring drops as non-monotonic
// still replaces its calendar date in the daily series, which is
// last-write-wins at date granularity.
func (r *Retention) Append(ctx context.Context, symbol string, tsMs int64, price float64) (*AppendOutcome, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", storage.ErrInvalidInput)
	}
	if tsMs <= 0 {
		return nil, fmt.Errorf("%w: timestamp %d", storage.ErrInvalidInput, tsMs)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return nil, fmt.Errorf("%w: price %f", storage.ErrInvalidInput, price)
	}

	outcome, err := r.appendRing(ctx, symbol, tsMs, price)
	if err != nil {
		return nil, err
	}

	mirrorFailed, err := r.upsertDaily(ctx, symbol, tsMs, price)
	if err != nil {
		return nil, err
	}
	outcome.DailyUpdated = true
	outcome.MirrorFailed = mirrorFailed

	return outcome, nil
}

func (r *Retention) appendRing(ctx context.Context, symbol string, tsMs int64, price float64) (*AppendOutcome, error) {
	for attempt := 0; attempt < ringRetries; attempt++ {
		var expected int64
		ring, err := r.rings.Get(ctx, symbol)
		if errors.Is(err, storage.ErrNotFound) {
			ring = &domain.PriceRing{Symbol: symbol}
		} else if err != nil {
			return nil, fmt.Errorf("read ring %s: %w", symbol, err)
		} else {
			expected = ring.Version
		}

		// Monotonic-time assumption: a point not newer than the last is
		// dropped, never reordered.
		if last, ok := ring.Last(); ok && tsMs <= last.TimestampMs {
			return &AppendOutcome{RingDropped: true}, nil
		}

		evicted := 0
		for len(ring.Points) >= r.capacity {
			ring.Points = ring.Points[1:]
			evicted++
		}
		ring.Points = append(ring.Points, domain.PricePoint{TimestampMs: tsMs, Price: price})

		err = r.rings.Put(ctx, ring, expected)
		if errors.Is(err, storage.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("write ring %s: %w", symbol, err)
		}
		return &AppendOutcome{RingEvicted: evicted}, nil
	}

	return nil, fmt.Errorf("append ring %s: %w after %d attempts", symbol, storage.ErrVersionConflict, ringRetries)
}

func (r *Retention) upsertDaily(ctx context.Context, symbol string, tsMs int64, price float64) (bool, error) {
	entry := &domain.DailyPrice{
		Symbol:    symbol,
		Day:       domain.DayOf(tsMs),
		Price:     price,
		UpdatedAt: r.now(),
	}

	if err := r.daily.Upsert(ctx, entry); err != nil {
		return false, fmt.Errorf("upsert daily %s: %w", symbol, err)
	}

	if r.mirror != nil {
		if err := r.mirror.Upsert(ctx, entry); err != nil {
			r.logger.Printf("daily mirror write failed for %s: %v", symbol, err)
			return true, nil
		}
	}
	return false, nil
}
