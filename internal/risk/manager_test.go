package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtran24/meanrev-bot/internal/config"
	"github.com/minhtran24/meanrev-bot/internal/logger"
	"github.com/minhtran24/meanrev-bot/internal/signal"
)

func testConfig(mode config.TradingMode) *config.Config {
	return &config.Config{
		Mode:                mode,
		Symbol:              "BTCUSDT",
		MaxPositionFraction: 0.1,
		StopLossPct:         2.0,
		TakeProfitPct:       5.0,
		MinOrderSize:        10,
		CooldownSeconds:     300,
		RSIPeriod:           14,
		RSIOversold:         30,
		RSIOverbought:       70,
		BollingerPeriod:     20,
		BollingerStdDev:     2.0,
	}
}

func newTestManager(t *testing.T, mode config.TradingMode) *Manager {
	t.Helper()
	m := NewManager(testConfig(mode), logger.Discard())
	m.SetBalance(10000)
	return m
}

func TestCanTrade_InstantModeBypassesRules(t *testing.T) {
	m := newTestManager(t, config.ModeInstant)
	m.OpenPosition(50000, 0.02, 49000, 52500)

	// Even with an open position, instant mode admits everything.
	allowed, _ := m.CanTrade(signal.Buy, 50000)
	assert.True(t, allowed)
}

func TestCanTrade_BuyRejectedWithOpenPosition(t *testing.T) {
	m := newTestManager(t, config.ModePaper)
	m.OpenPosition(50000, 0.02, 49000, 52500)
	m.lastTradeTime = time.Time{} // bypass cooldown for this check

	allowed, reason := m.CanTrade(signal.Buy, 50000)
	assert.False(t, allowed)
	assert.Contains(t, reason, "open position")
}

func TestCanTrade_SellRejectedWithoutPosition(t *testing.T) {
	m := newTestManager(t, config.ModePaper)

	allowed, reason := m.CanTrade(signal.Sell, 50000)
	assert.False(t, allowed)
	assert.Contains(t, reason, "no position")
}

func TestCanTrade_CooldownRejection(t *testing.T) {
	m := newTestManager(t, config.ModePaper)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }
	m.OpenPosition(50000, 0.02, 49000, 52500)
	m.ClosePosition(51000)

	// 100s into a 300s cooldown.
	m.now = func() time.Time { return base.Add(100 * time.Second) }
	allowed, reason := m.CanTrade(signal.Buy, 50000)
	assert.False(t, allowed)
	assert.Contains(t, reason, "200s remaining")

	// Cooldown elapsed.
	m.now = func() time.Time { return base.Add(301 * time.Second) }
	allowed, _ = m.CanTrade(signal.Buy, 50000)
	assert.True(t, allowed)
}

func TestCanTrade_MinimumOrderSize(t *testing.T) {
	m := NewManager(testConfig(config.ModePaper), logger.Discard())
	m.SetBalance(50) // 10% of 50 is below the 10 minimum

	allowed, reason := m.CanTrade(signal.Buy, 50000)
	assert.False(t, allowed)
	assert.Contains(t, reason, "below minimum")
}

func TestCalculateOrderDetails_BuySizing(t *testing.T) {
	m := newTestManager(t, config.ModePaper)

	details := m.CalculateOrderDetails(signal.Buy, 50000, 1.0)
	require.NotNil(t, details)

	assert.Equal(t, "buy", details.Side)
	assert.InDelta(t, 0.02, details.Size, 1e-9)
	assert.InDelta(t, 1000.0, details.Value, 1e-6)
	assert.InDelta(t, 49000.0, details.StopLoss, 1e-6)
	assert.InDelta(t, 52500.0, details.TakeProfit, 1e-6)
	assert.InDelta(t, 0.02*(50000-49000), details.RiskAmount, 1e-6)
	assert.InDelta(t, 0.02*(52500-50000), details.PotentialProfit, 1e-6)
}

func TestCalculateOrderDetails_SizeScalesLinearlyWithStrength(t *testing.T) {
	m := newTestManager(t, config.ModePaper)

	full := m.CalculateOrderDetails(signal.Buy, 50000, 1.0)
	require.NotNil(t, full)

	for _, strength := range []float64{0.0, 0.25, 0.5, 0.75} {
		scaled := m.CalculateOrderDetails(signal.Buy, 50000, strength)
		require.NotNil(t, scaled)
		assert.InDelta(t, full.Size*strength, scaled.Size, 1e-9, "strength %v", strength)
		assert.InDelta(t, full.RiskAmount*strength, scaled.RiskAmount, 1e-9, "strength %v", strength)
	}
}

func TestCalculateOrderDetails_SellWithoutPosition(t *testing.T) {
	m := newTestManager(t, config.ModePaper)

	assert.Nil(t, m.CalculateOrderDetails(signal.Sell, 50000, 1.0))
}

func TestCalculateOrderDetails_SellUsesPositionSize(t *testing.T) {
	m := newTestManager(t, config.ModePaper)
	m.OpenPosition(50000, 0.002, 49000, 52500)

	details := m.CalculateOrderDetails(signal.Sell, 51000, 1.0)
	require.NotNil(t, details)

	assert.Equal(t, "sell", details.Side)
	assert.Equal(t, 0.002, details.Size)
	assert.InDelta(t, 0.002*(51000-50000), details.PnL, 1e-9)
}

func TestOpenPosition_DeductsBalance(t *testing.T) {
	m := newTestManager(t, config.ModePaper)
	m.OpenPosition(50000, 0.02, 49000, 52500)

	metrics := m.Metrics()
	assert.True(t, metrics.OpenPosition)
	assert.InDelta(t, 9000.0, metrics.AvailableBalance, 1e-6)
	assert.InDelta(t, 10000.0, metrics.Balance, 1e-6)
}

func TestUpdatePosition_ExitTriggers(t *testing.T) {
	m := newTestManager(t, config.ModePaper)
	m.OpenPosition(50000, 0.002, 49000, 52500)

	assert.Equal(t, signal.Sell, m.UpdatePosition(49000), "stop loss price")
	assert.Equal(t, signal.Sell, m.UpdatePosition(48000), "below stop loss")
	assert.Equal(t, signal.Sell, m.UpdatePosition(52500), "take profit price")
	assert.Equal(t, signal.Sell, m.UpdatePosition(53000), "above take profit")
	assert.Equal(t, signal.Hold, m.UpdatePosition(50000), "between levels")
	assert.Equal(t, signal.Hold, m.UpdatePosition(49001), "just above stop")
	assert.Equal(t, signal.Hold, m.UpdatePosition(52499), "just below take profit")
}

func TestUpdatePosition_StopLossWinsWhenLevelsOverlap(t *testing.T) {
	m := newTestManager(t, config.ModePaper)

	// Misconfigured levels where both sides would trigger at once.
	m.OpenPosition(50000, 0.002, 51000, 50500)

	sig := m.UpdatePosition(50800)
	assert.Equal(t, signal.Sell, sig)
	// The stop loss branch fires first, which is the preserved behavior.
}

func TestUpdatePosition_NoPosition(t *testing.T) {
	m := newTestManager(t, config.ModePaper)
	assert.Equal(t, signal.Hold, m.UpdatePosition(50000))
}

func TestClosePosition_RealizedPnL(t *testing.T) {
	m := newTestManager(t, config.ModePaper)
	m.OpenPosition(50000, 0.002, 49000, 52500)

	require.Equal(t, signal.Sell, m.UpdatePosition(49000))
	m.ClosePosition(49000)

	metrics := m.Metrics()
	assert.False(t, metrics.OpenPosition)
	assert.InDelta(t, -2.0, metrics.TotalPnL, 1e-9)
	assert.InDelta(t, 9998.0, metrics.Balance, 1e-6)
	assert.InDelta(t, 9998.0, metrics.AvailableBalance, 1e-6)
}

func TestClosePosition_NoPositionIsNoOp(t *testing.T) {
	m := newTestManager(t, config.ModePaper)

	m.ClosePosition(50000)

	metrics := m.Metrics()
	assert.Equal(t, 0, metrics.TotalTrades)
	assert.InDelta(t, 10000.0, metrics.Balance, 1e-6)
}

func TestPnL_AccumulatesAcrossCycles(t *testing.T) {
	m := newTestManager(t, config.ModePaper)

	m.OpenPosition(50000, 0.01, 49000, 52500)
	m.ClosePosition(52000) // +20

	m.OpenPosition(52000, 0.01, 50960, 54600)
	m.ClosePosition(51000) // -10

	metrics := m.Metrics()
	assert.InDelta(t, 10.0, metrics.TotalPnL, 1e-6)
	assert.Equal(t, 2, metrics.TotalTrades)
	assert.InDelta(t, 0.5, metrics.WinRate, 1e-9)
	assert.InDelta(t, 10010.0, metrics.Balance, 1e-6)
}

func TestMaxDrawdown_MonotonicallyNonDecreasing(t *testing.T) {
	m := newTestManager(t, config.ModePaper)

	// A losing trade creates drawdown from the peak.
	m.OpenPosition(50000, 0.01, 49000, 52500)
	m.ClosePosition(40000) // -100
	first := m.Metrics().MaxDrawdown
	assert.Greater(t, first, 0.0)

	// A winning trade must not shrink the recorded maximum.
	m.OpenPosition(40000, 0.01, 39200, 42000)
	m.ClosePosition(60000) // +200
	assert.Equal(t, first, m.Metrics().MaxDrawdown)

	// A deeper loss extends it.
	m.OpenPosition(60000, 0.01, 58800, 63000)
	m.ClosePosition(20000) // -400
	assert.Greater(t, m.Metrics().MaxDrawdown, first)
}

func TestTradeHistory_RecordsOpenAndClose(t *testing.T) {
	m := newTestManager(t, config.ModePaper)

	m.OpenPosition(50000, 0.002, 49000, 52500)
	m.ClosePosition(51000)

	history := m.TradeHistory()
	require.Len(t, history, 2)
	assert.Equal(t, TradeOpen, history[0].Type)
	assert.Equal(t, TradeClose, history[1].Type)
	assert.InDelta(t, 0.002*(51000-50000), history[1].PnL, 1e-9)
}
