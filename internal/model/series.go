package model

import "time"

// Bar is a single day of OHLCV price data as returned by the backend
// historical endpoint.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// CachedSeries is the full-resolution price history held for one symbol.
// The series is fresh while now - FetchedAt is under the cache TTL and is
// overwritten wholesale on every successful fetch. Stale marks a series
// served past its TTL because a live refresh failed.
type CachedSeries struct {
	Symbol    string    `json:"symbol"`
	FetchedAt time.Time `json:"fetchedAt"`
	Bars      []Bar     `json:"bars"`
	Stale     bool      `json:"stale"`
}

// LastClose returns the most recent closing price in the series.
func (s CachedSeries) LastClose() (float64, bool) {
	if len(s.Bars) == 0 {
		return 0, false
	}
	return s.Bars[len(s.Bars)-1].Close, true
}

// Downsample selects every Nth bar so that at most targetPoints bars remain,
// where N = ceil(len(bars) / targetPoints). The cache always stores full
// resolution; this is a display concern applied by callers. The first bar is
// always kept so charts anchor at the start of the range.
func Downsample(bars []Bar, targetPoints int) []Bar {
	if targetPoints <= 0 || len(bars) <= targetPoints {
		return bars
	}
	step := (len(bars) + targetPoints - 1) / targetPoints
	out := make([]Bar, 0, targetPoints)
	for i := 0; i < len(bars); i += step {
		out = append(out, bars[i])
	}
	return out
}
