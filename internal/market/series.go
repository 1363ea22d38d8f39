// Package market maintains the candle series and feeds price and
// candle events to the decision loop.
package market

import (
	"sync"

	"github.com/minhtran24/meanrev-bot/pkg/types"
)

// maxSeriesLen caps the retained candle history.
const maxSeriesLen = 500

// Series is an ordered candle container. The most recent candle is
// replaced in place when an update carries the same bucket timestamp,
// so an in-progress candle can be refreshed until its bucket closes.
type Series struct {
	mu      sync.Mutex
	candles []types.Candle
}

// NewSeries creates an empty series.
func NewSeries() *Series {
	return &Series{}
}

// Upsert appends a candle or replaces the most recent one when the
// timestamps match. Candles older than the current tail are ignored.
func (s *Series) Upsert(c types.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.candles)
	if n > 0 {
		last := s.candles[n-1]
		if c.Timestamp.Equal(last.Timestamp) {
			s.candles[n-1] = c
			return
		}
		if c.Timestamp.Before(last.Timestamp) {
			return
		}
	}

	s.candles = append(s.candles, c)
	if len(s.candles) > maxSeriesLen {
		s.candles = s.candles[len(s.candles)-maxSeriesLen:]
	}
}

// Replace swaps the whole series for a fresh snapshot, oldest first.
func (s *Series) Replace(candles []types.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(candles) > maxSeriesLen {
		candles = candles[len(candles)-maxSeriesLen:]
	}
	s.candles = append(s.candles[:0], candles...)
}

// Tail returns a copy of the most recent n candles, or all of them
// when fewer are held.
func (s *Series) Tail(n int) []types.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n > len(s.candles) {
		n = len(s.candles)
	}
	out := make([]types.Candle, n)
	copy(out, s.candles[len(s.candles)-n:])
	return out
}

// Len returns the number of candles held.
func (s *Series) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.candles)
}

// Last returns the most recent candle and whether one exists.
func (s *Series) Last() (types.Candle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.candles) == 0 {
		return types.Candle{}, false
	}
	return s.candles[len(s.candles)-1], true
}
