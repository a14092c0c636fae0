package domain

import "time"

// PricePoint is one (timestamp, price) observation for a symbol.
type PricePoint struct {
	TimestampMs int64   `json:"ts"`
	Price       float64 `json:"price"`
}

// PriceRing is the bounded 15-minute window for one symbol, stored as a
// single blob replaced wholesale on each update. Points are ordered by
// timestamp ascending; retention is enforced in application logic before
// the write, never by the storage layer.
type PriceRing struct {
	Symbol  string
	Points  []PricePoint
	Version int64 // optimistic concurrency token
}

// Last returns the newest point, or false when the ring is empty.
func (r *PriceRing) Last() (PricePoint, bool) {
	if len(r.Points) == 0 {
		return PricePoint{}, false
	}
	return r.Points[len(r.Points)-1], true
}

// DailyPrice is one entry of the per-symbol daily series, keyed by UTC
// calendar date. The last write for a date wins.
type DailyPrice struct {
	Symbol    string
	Day       time.Time // midnight UTC
	Price     float64
	UpdatedAt int64 // ms, also the ReplacingMergeTree version in ClickHouse
}

// DayOf truncates a millisecond timestamp to its UTC calendar date.
func DayOf(tsMs int64) time.Time {
	t := time.UnixMilli(tsMs).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
