package exchange

import (
	"context"

	"github.com/minhtran24/meanrev-bot/pkg/types"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"
)

// Kind is the order flavor sent to the venue.
type Kind string

const (
	KindMarket Kind = "Market"
	KindLimit  Kind = "Limit"
)

// Status is the venue-side order state, normalized across exchanges.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusFilled    Status = "FILLED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

// OrderRequest describes an order to place. Market buys are sized in
// quote currency, market sells and limit orders in base currency.
type OrderRequest struct {
	Symbol        string
	Side          Side
	Kind          Kind
	QuoteSize     float64 // market buy
	BaseSize      float64 // market sell, limit
	LimitPrice    float64 // limit only
	ClientOrderID string
}

// OrderState is a venue-side view of a tracked order.
type OrderState struct {
	ID          string
	Status      Status
	FilledPrice float64
	FilledSize  float64
}

// Gateway is the order capability the execution engine consumes. The
// engine never talks to a venue SDK directly.
type Gateway interface {
	// GetAccountBalance returns the available balance for a currency.
	GetAccountBalance(ctx context.Context, currency string) (float64, error)

	// PlaceOrder submits an order and returns its venue id.
	PlaceOrder(ctx context.Context, req OrderRequest) (string, error)

	// GetOrder looks up the current state of an order by id.
	GetOrder(ctx context.Context, id string) (*OrderState, error)

	// CancelOrder requests cancellation. Best effort: callers treat
	// failures as non-fatal.
	CancelOrder(ctx context.Context, id string) error
}

// MarketData is the candle and price feed consumed by the collector.
type MarketData interface {
	GetCandles(ctx context.Context, symbol, interval string, limit int) ([]types.Candle, error)
	GetLatestPrice(ctx context.Context, symbol string) (float64, error)
}
