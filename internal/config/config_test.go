package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Mode:                ModeInstant,
		Symbol:              "BTCUSDT",
		Category:            "spot",
		CandleInterval:      "1m",
		OrderType:           OrderTypeMarket,
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
		FetchInterval:       time.Minute,
		FillTimeout:         30 * time.Second,
	}
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidate_InvalidMode(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = "backtest"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid trading mode")
}

func TestValidate_LiveRequiresCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = ModeLive

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials")
}

func TestValidate_PositionFractionBounds(t *testing.T) {
	for _, fraction := range []float64{0, -0.5, 1.5} {
		cfg := validConfig()
		cfg.MaxPositionFraction = fraction
		assert.Error(t, cfg.Validate(), "fraction %v should be rejected", fraction)
	}

	cfg := validConfig()
	cfg.MaxPositionFraction = 1.0
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RSIThresholds(t *testing.T) {
	cfg := validConfig()
	cfg.RSIOversold = 70
	cfg.RSIOverbought = 30

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RSI thresholds")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.StopLossPct = -1
	cfg.TakeProfitPct = 0
	cfg.MinOrderSize = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STOP_LOSS_PERCENT")
	assert.Contains(t, err.Error(), "TAKE_PROFIT_PERCENT")
	assert.Contains(t, err.Error(), "MIN_ORDER_SIZE")
}

func TestMinCandles(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, 20, cfg.MinCandles())

	cfg.RSIPeriod = 28
	assert.Equal(t, 28, cfg.MinCandles())
}

func TestCooldown(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, 5*time.Minute, cfg.Cooldown())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TRADING_MODE", "paper")
	t.Setenv("MAX_POSITION_FRACTION", "0.25")
	t.Setenv("COOLDOWN_SECONDS", "60")
	t.Setenv("DATA_FETCH_INTERVAL", "30s")

	cfg := Load()
	assert.Equal(t, ModePaper, cfg.Mode)
	assert.Equal(t, 0.25, cfg.MaxPositionFraction)
	assert.Equal(t, 60, cfg.CooldownSeconds)
	assert.Equal(t, 30*time.Second, cfg.FetchInterval)
}
