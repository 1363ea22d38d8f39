package indicators

import (
	"errors"
	"math"
)

// BollingerBands computes a moving-average envelope of k standard
// deviations around price.
type BollingerBands struct {
	period         int
	stdDevMultiple float64
}

// Bands is a single Bollinger computation result. Position is the
// fractional location of the latest close between the bands: 0 at the
// lower band, 1 at the upper band, 0.5 when the bands collapse.
type Bands struct {
	Upper    float64
	Middle   float64
	Lower    float64
	Position float64
}

// NewBollingerBands creates a Bollinger Bands indicator with the given
// period and standard deviation multiplier.
func NewBollingerBands(period int, stdDev float64) *BollingerBands {
	return &BollingerBands{
		period:         period,
		stdDevMultiple: stdDev,
	}
}

// Period returns the configured lookback period.
func (bb *BollingerBands) Period() int {
	return bb.period
}

// Calculate computes the bands over the trailing period of the series.
func (bb *BollingerBands) Calculate(prices []float64) (Bands, error) {
	if len(prices) < bb.period {
		return Bands{}, errors.New("insufficient data for Bollinger Bands calculation")
	}

	recent := prices[len(prices)-bb.period:]
	middle := mean(recent)
	stdDev := standardDeviation(recent, middle)

	upper := middle + bb.stdDevMultiple*stdDev
	lower := middle - bb.stdDevMultiple*stdDev

	current := prices[len(prices)-1]
	position := 0.5
	if upper != lower {
		position = (current - lower) / (upper - lower)
	}

	return Bands{
		Upper:    upper,
		Middle:   middle,
		Lower:    lower,
		Position: position,
	}, nil
}

func standardDeviation(values []float64, mean float64) float64 {
	sum := 0.0
	for _, value := range values {
		diff := value - mean
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values)))
}
