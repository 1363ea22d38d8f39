package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSI_Calculate(t *testing.T) {
	rsi := NewRSI(14)

	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100.0 + float64(i)
	}

	value, err := rsi.Calculate(prices)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, value, 0.0)
	assert.LessOrEqual(t, value, 100.0)
}

func TestRSI_InsufficientData(t *testing.T) {
	rsi := NewRSI(14)

	_, err := rsi.Calculate(make([]float64, 14))
	assert.Error(t, err)
}

func TestRSI_AllGains(t *testing.T) {
	rsi := NewRSI(14)

	// Strictly rising prices have no losses, so RSI saturates at 100.
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100.0 + float64(i)*2
	}

	value, err := rsi.Calculate(prices)
	require.NoError(t, err)
	assert.Equal(t, 100.0, value)
}

func TestRSI_DecliningPricesAreOversold(t *testing.T) {
	rsi := NewRSI(14)

	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100.0 - float64(i)
	}

	value, err := rsi.Calculate(prices)
	require.NoError(t, err)
	assert.Less(t, value, 30.0)
}

func TestRSI_FlatPrices(t *testing.T) {
	rsi := NewRSI(14)

	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100.0
	}

	// No losses at all counts as maximum strength.
	value, err := rsi.Calculate(prices)
	require.NoError(t, err)
	assert.Equal(t, 100.0, value)
}
