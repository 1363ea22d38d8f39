package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtran24/meanrev-bot/pkg/types"
)

func candleAt(ts time.Time, close float64) types.Candle {
	return types.Candle{
		Timestamp: ts,
		Open:      close,
		High:      close,
		Low:       close,
		Close:     close,
		Volume:    100,
	}
}

func TestSeries_UpsertAppendsNewBuckets(t *testing.T) {
	s := NewSeries()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	s.Upsert(candleAt(base, 100))
	s.Upsert(candleAt(base.Add(time.Minute), 101))

	assert.Equal(t, 2, s.Len())
	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 101.0, last.Close)
}

func TestSeries_UpsertReplacesSameBucket(t *testing.T) {
	s := NewSeries()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	s.Upsert(candleAt(base, 100))
	s.Upsert(candleAt(base, 102))

	assert.Equal(t, 1, s.Len())
	last, _ := s.Last()
	assert.Equal(t, 102.0, last.Close)
}

func TestSeries_UpsertIgnoresStaleBuckets(t *testing.T) {
	s := NewSeries()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	s.Upsert(candleAt(base.Add(time.Minute), 101))
	s.Upsert(candleAt(base, 100))

	assert.Equal(t, 1, s.Len())
	last, _ := s.Last()
	assert.Equal(t, 101.0, last.Close)
}

func TestSeries_TailReturnsMostRecent(t *testing.T) {
	s := NewSeries()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		s.Upsert(candleAt(base.Add(time.Duration(i)*time.Minute), float64(100+i)))
	}

	tail := s.Tail(3)
	require.Len(t, tail, 3)
	assert.Equal(t, 107.0, tail[0].Close)
	assert.Equal(t, 109.0, tail[2].Close)

	assert.Len(t, s.Tail(100), 10)
	assert.Empty(t, s.Tail(0))
}

func TestSeries_CapsRetainedHistory(t *testing.T) {
	s := NewSeries()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < maxSeriesLen+25; i++ {
		s.Upsert(candleAt(base.Add(time.Duration(i)*time.Minute), float64(i)))
	}

	assert.Equal(t, maxSeriesLen, s.Len())
	last, _ := s.Last()
	assert.Equal(t, float64(maxSeriesLen+24), last.Close)
}

func TestSeries_ReplaceSwapsSnapshot(t *testing.T) {
	s := NewSeries()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	s.Upsert(candleAt(base, 100))

	s.Replace([]types.Candle{
		candleAt(base.Add(time.Minute), 200),
		candleAt(base.Add(2*time.Minute), 201),
	})

	assert.Equal(t, 2, s.Len())
	last, _ := s.Last()
	assert.Equal(t, 201.0, last.Close)
}
