package market

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtran24/meanrev-bot/internal/config"
	"github.com/minhtran24/meanrev-bot/internal/logger"
	"github.com/minhtran24/meanrev-bot/pkg/types"
)

// fakeFeed serves a scripted candle series and price.
type fakeFeed struct {
	mu      sync.Mutex
	candles []types.Candle
	price   float64
}

func (f *fakeFeed) GetCandles(_ context.Context, _, _ string, limit int) ([]types.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if limit > len(f.candles) {
		limit = len(f.candles)
	}
	out := make([]types.Candle, limit)
	copy(out, f.candles[len(f.candles)-limit:])
	return out, nil
}

func (f *fakeFeed) GetLatestPrice(context.Context, string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.price, nil
}

func (f *fakeFeed) appendCandle(c types.Candle, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.candles = append(f.candles, c)
	f.price = price
}

func collectorConfig() *config.Config {
	return &config.Config{
		Symbol:          "BTCUSDT",
		CandleInterval:  "1",
		RSIPeriod:       14,
		BollingerPeriod: 20,
		FetchInterval:   5 * time.Millisecond,
	}
}

func TestCollector_BackfillEmitsInitialWindow(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	feed := &fakeFeed{price: 100}
	for i := 0; i < 30; i++ {
		feed.candles = append(feed.candles, candleAt(base.Add(time.Duration(i)*time.Minute), float64(100+i)))
	}

	c := NewCollector(collectorConfig(), logger.Discard(), feed)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	select {
	case ev := <-c.Candles():
		require.NotEmpty(t, ev.Candles)
		assert.Equal(t, 129.0, ev.Candles[len(ev.Candles)-1].Close)
	case <-time.After(time.Second):
		t.Fatal("no candle event after backfill")
	}
}

func TestCollector_PollEmitsPriceAndNewCandles(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	feed := &fakeFeed{price: 100}
	for i := 0; i < 30; i++ {
		feed.candles = append(feed.candles, candleAt(base.Add(time.Duration(i)*time.Minute), float64(100+i)))
	}

	c := NewCollector(collectorConfig(), logger.Discard(), feed)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	<-c.Candles() // drain backfill event

	feed.appendCandle(candleAt(base.Add(30*time.Minute), 135), 135)

	select {
	case ev := <-c.Candles():
		assert.Equal(t, 135.0, ev.Candles[len(ev.Candles)-1].Close)
	case <-time.After(time.Second):
		t.Fatal("no candle event after new bucket")
	}

	select {
	case ev := <-c.Prices():
		assert.Greater(t, ev.Price, 0.0)
	case <-time.After(time.Second):
		t.Fatal("no price event")
	}

	assert.Greater(t, c.LatestPrice(), 0.0)
}
