package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBollingerBands_Calculate(t *testing.T) {
	bb := NewBollingerBands(20, 2.0)

	prices := make([]float64, 25)
	for i := range prices {
		if i%2 == 0 {
			prices[i] = 100.0
		} else {
			prices[i] = 110.0
		}
	}

	bands, err := bb.Calculate(prices)
	require.NoError(t, err)

	assert.Equal(t, 105.0, bands.Middle)
	assert.Greater(t, bands.Upper, bands.Middle)
	assert.Less(t, bands.Lower, bands.Middle)
	assert.GreaterOrEqual(t, bands.Position, 0.0)
	assert.LessOrEqual(t, bands.Position, 1.0)
}

func TestBollingerBands_InsufficientData(t *testing.T) {
	bb := NewBollingerBands(20, 2.0)

	_, err := bb.Calculate(make([]float64, 19))
	assert.Error(t, err)
}

func TestBollingerBands_ZeroVolatility(t *testing.T) {
	bb := NewBollingerBands(20, 2.0)

	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100.0
	}

	bands, err := bb.Calculate(prices)
	require.NoError(t, err)

	// Collapsed bands define the position as the midpoint.
	assert.Equal(t, bands.Upper, bands.Lower)
	assert.Equal(t, 0.5, bands.Position)
}

func TestBollingerBands_PositionAtExtremes(t *testing.T) {
	bb := NewBollingerBands(4, 1.0)

	// Last price well above the recent range pushes position past 1.
	prices := []float64{100, 100, 100, 130}
	bands, err := bb.Calculate(prices)
	require.NoError(t, err)
	assert.Greater(t, bands.Position, 0.9)

	prices = []float64{100, 100, 100, 70}
	bands, err = bb.Calculate(prices)
	require.NoError(t, err)
	assert.Less(t, bands.Position, 0.1)
}

func TestVolumeRatio(t *testing.T) {
	volumes := make([]float64, 25)
	for i := range volumes {
		volumes[i] = 1000.0
	}
	volumes[len(volumes)-1] = 1500.0

	ratio := VolumeRatio(volumes)
	assert.InDelta(t, 1.46, ratio, 0.05)
}

func TestVolumeRatio_ShortSeriesIsNeutral(t *testing.T) {
	assert.Equal(t, 1.0, VolumeRatio(make([]float64, 10)))
}

func TestVolumeRatio_ZeroAverageIsNeutral(t *testing.T) {
	assert.Equal(t, 1.0, VolumeRatio(make([]float64, 25)))
}
