package types

import "time"

// Candle is a single OHLCV aggregate for a fixed time bucket.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Ticker carries the latest traded price for a symbol.
type Ticker struct {
	Symbol    string
	Price     float64
	Volume    float64
	Timestamp time.Time
}

// Balance is an account balance for a single currency.
type Balance struct {
	Currency  string
	Available float64
	Locked    float64
}
