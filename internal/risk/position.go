package risk

import "time"

// PositionStatus is the lifecycle state of the single allowed position.
type PositionStatus string

const (
	PositionNone    PositionStatus = "NONE"
	PositionOpen    PositionStatus = "OPEN"
	PositionClosing PositionStatus = "CLOSING"
)

// Position is the one open trade owned by the Manager.
type Position struct {
	EntryPrice    float64
	Size          float64
	EntryTime     time.Time
	Status        PositionStatus
	StopLoss      float64
	TakeProfit    float64
	UnrealizedPnL float64
	RealizedPnL   float64
}

// TradeType marks a history entry as position open or close.
type TradeType string

const (
	TradeOpen  TradeType = "open"
	TradeClose TradeType = "close"
)

// TradeRecord is one entry in the trade history.
type TradeRecord struct {
	Timestamp time.Time
	Type      TradeType
	Price     float64
	Size      float64
	Value     float64
	PnL       float64
}

// OrderDetails is the sizing record produced for an admitted signal.
type OrderDetails struct {
	Side            string
	Size            float64
	Value           float64
	StopLoss        float64
	TakeProfit      float64
	RiskAmount      float64
	PotentialProfit float64

	// Populated for sell sizing only.
	EntryPrice float64
	ExitPrice  float64
	PnL        float64
}

// Metrics is a read-only snapshot of portfolio performance.
type Metrics struct {
	Balance          float64
	AvailableBalance float64
	TotalPnL         float64
	WinRate          float64
	MaxDrawdown      float64
	TotalTrades      int
	OpenPosition     bool
	PositionPnL      float64
}
