// Package execution tracks order lifecycles and drives signals to
// venue orders through mode-specific executors.
package execution

import (
	"time"

	"github.com/minhtran24/meanrev-bot/internal/signal"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusFilled    Status = "FILLED"
	StatusCancelled Status = "CANCELLED"
	StatusFailed    Status = "FAILED"
)

// Order is a single order tracked by the engine. It is owned by the
// engine while pending and moves to the history list once terminal.
type Order struct {
	ID             string
	Side           signal.Signal
	Size           float64
	RequestedPrice float64
	Status         Status
	CreatedAt      time.Time
	FilledAt       time.Time
	FilledPrice    float64
	FilledSize     float64
	Err            string

	// Sizing levels carried from admission, applied at settlement.
	stopLoss   float64
	takeProfit float64
}

func (o *Order) terminal() bool {
	return o.Status != StatusPending
}

// markFilled records a fill. Terminal orders are never resurrected.
func (o *Order) markFilled(price, size float64, at time.Time) {
	if o.terminal() {
		return
	}
	o.Status = StatusFilled
	o.FilledPrice = price
	o.FilledSize = size
	o.FilledAt = at
}

func (o *Order) markCancelled(reason string) {
	if o.terminal() {
		return
	}
	o.Status = StatusCancelled
	o.Err = reason
}

func (o *Order) markFailed(reason string) {
	if o.terminal() {
		return
	}
	o.Status = StatusFailed
	o.Err = reason
}
