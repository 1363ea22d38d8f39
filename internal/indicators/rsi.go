package indicators

import (
	"errors"
	"math"
)

// RSI calculates the Relative Strength Index over a fixed period.
type RSI struct {
	period int
}

// NewRSI creates a new RSI instance with the given period.
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

// Period returns the configured lookback period.
func (r *RSI) Period() int {
	return r.period
}

// Calculate computes the RSI value for the given price series. It needs
// period+1 prices to form period changes.
func (r *RSI) Calculate(prices []float64) (float64, error) {
	if len(prices) < r.period+1 {
		return 0, errors.New("insufficient data for RSI calculation")
	}

	changes := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		changes[i-1] = prices[i] - prices[i-1]
	}

	gains := make([]float64, len(changes))
	losses := make([]float64, len(changes))
	for i, change := range changes {
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = math.Abs(change)
		}
	}

	avgGain := mean(gains[len(gains)-r.period:])
	avgLoss := mean(losses[len(losses)-r.period:])

	if avgLoss == 0 {
		return 100, nil
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), nil
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values))
}
