package signal

// Signal is a trading action recommendation.
type Signal int

const (
	Hold Signal = iota
	Buy
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	case Hold:
		return "HOLD"
	default:
		return "UNKNOWN"
	}
}

// Opposite returns the reversing signal, or Hold for Hold.
func (s Signal) Opposite() Signal {
	switch s {
	case Buy:
		return Sell
	case Sell:
		return Buy
	default:
		return Hold
	}
}
