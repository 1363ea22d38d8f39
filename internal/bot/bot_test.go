package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtran24/meanrev-bot/internal/config"
	"github.com/minhtran24/meanrev-bot/internal/execution"
	"github.com/minhtran24/meanrev-bot/internal/logger"
	"github.com/minhtran24/meanrev-bot/internal/market"
	"github.com/minhtran24/meanrev-bot/internal/monitoring"
	"github.com/minhtran24/meanrev-bot/internal/risk"
	"github.com/minhtran24/meanrev-bot/internal/signal"
	"github.com/minhtran24/meanrev-bot/pkg/types"
)

// stubFeed satisfies the market data interface with empty results.
type stubFeed struct{}

func (stubFeed) GetCandles(context.Context, string, string, int) ([]types.Candle, error) {
	return nil, nil
}

func (stubFeed) GetLatestPrice(context.Context, string) (float64, error) {
	return 0, nil
}

func testBot(t *testing.T) (*Bot, *risk.Manager, *execution.Engine) {
	t.Helper()

	cfg := &config.Config{
		Mode:                config.ModeInstant,
		Symbol:              "BTCUSDT",
		Category:            "spot",
		CandleInterval:      "1",
		OrderType:           config.OrderTypeMarket,
		MaxPositionFraction: 0.1,
		StopLossPct:         2.0,
		TakeProfitPct:       5.0,
		MinOrderSize:        10,
		RSIPeriod:           14,
		RSIOversold:         30,
		RSIOverbought:       70,
		BollingerPeriod:     20,
		BollingerStdDev:     2.0,
		FetchInterval:       time.Minute,
		FillTimeout:         time.Second,
	}
	log := logger.Discard()
	mgr := risk.NewManager(cfg, log)
	mgr.SetBalance(10000)
	engine := execution.NewEngine(cfg, log, mgr, nil)

	b := New(Deps{
		Config:    cfg,
		Log:       log,
		Processor: signal.NewProcessor(cfg, log),
		Risk:      mgr,
		Engine:    engine,
		Collector: market.NewCollector(cfg, log, stubFeed{}),
		Health:    monitoring.NewHealthChecker(),
	})
	return b, mgr, engine
}

func decliningCandles(n int) []types.Candle {
	candles := make([]types.Candle, n)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := range candles {
		close := 50000 - float64(i)*120
		candles[i] = types.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Open:      close,
			High:      close * 1.01,
			Low:       close * 0.99,
			Close:     close,
			Volume:    1000,
		}
	}
	return candles
}

func TestOnCandle_OversoldWindowOpensPosition(t *testing.T) {
	b, mgr, engine := testBot(t)

	b.onCandle(context.Background(), market.CandleEvent{Candles: decliningCandles(30)})

	assert.True(t, mgr.HasPosition())
	stats := engine.Stats()
	assert.Equal(t, 1, stats.TotalOrders)
	assert.Equal(t, 1, stats.SuccessfulOrders)
}

func TestOnCandle_ShortWindowDoesNothing(t *testing.T) {
	b, mgr, engine := testBot(t)

	b.onCandle(context.Background(), market.CandleEvent{Candles: decliningCandles(5)})

	assert.False(t, mgr.HasPosition())
	assert.Equal(t, 0, engine.Stats().TotalOrders)
}

func TestOnPrice_StopLossTriggersExit(t *testing.T) {
	b, mgr, _ := testBot(t)
	mgr.OpenPosition(50000, 0.02, 49000, 52500)

	b.onPrice(context.Background(), market.PriceEvent{Price: 48900, At: time.Now()})

	assert.False(t, mgr.HasPosition())
	assert.InDelta(t, 0.02*(48900-50000), mgr.Metrics().TotalPnL, 1e-9)
}

func TestOnPrice_WithinBandsHoldsPosition(t *testing.T) {
	b, mgr, _ := testBot(t)
	mgr.OpenPosition(50000, 0.02, 49000, 52500)

	b.onPrice(context.Background(), market.PriceEvent{Price: 50500, At: time.Now()})

	assert.True(t, mgr.HasPosition())
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	b, _, _ := testBot(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("run did not stop")
	}
}
