package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/minhtran24/meanrev-bot/internal/config"
	boterrors "github.com/minhtran24/meanrev-bot/internal/errors"
	"github.com/minhtran24/meanrev-bot/internal/exchange"
	"github.com/minhtran24/meanrev-bot/internal/signal"
)

// paperSlippage is the simulated fill deviation from the requested
// price: buys fill slightly above, sells slightly below.
const paperSlippage = 0.001

// limitOffset biases live limit prices toward fill: buy limits sit
// slightly above the current price, sell limits slightly below.
const limitOffset = 0.001

// orderExecutor drives a freshly admitted order toward the venue.
// Instant and paper executors return with the order terminal; the
// live executor returns with it pending and registered for
// fill-waiting.
type orderExecutor interface {
	submit(ctx context.Context, o *Order) error
}

// instantExecutor fills synchronously at the requested price.
type instantExecutor struct {
	now func() time.Time
}

func (x *instantExecutor) submit(_ context.Context, o *Order) error {
	o.markFilled(o.RequestedPrice, o.Size, x.now())
	return nil
}

// paperExecutor simulates venue latency and slippage without placing
// real orders.
type paperExecutor struct {
	delay time.Duration
	now   func() time.Time
}

func (x *paperExecutor) submit(ctx context.Context, o *Order) error {
	select {
	case <-ctx.Done():
		o.markCancelled("cancelled before simulated fill")
		return nil
	case <-time.After(x.delay):
	}

	price := o.RequestedPrice
	if o.Side == signal.Buy {
		price *= 1 + paperSlippage
	} else {
		price *= 1 - paperSlippage
	}
	o.markFilled(price, o.Size, x.now())
	return nil
}

// liveExecutor places real orders through the gateway and hands them
// to the engine's pending set for fill-waiting.
type liveExecutor struct {
	engine *Engine
}

func (x *liveExecutor) submit(ctx context.Context, o *Order) error {
	req, err := x.buildRequest(o)
	if err != nil {
		return err
	}

	id, err := x.engine.gateway.PlaceOrder(ctx, req)
	if err != nil {
		return boterrors.Categorize(err, "execution", "place_order")
	}

	o.ID = id
	x.engine.addPending(o)
	return nil
}

func (x *liveExecutor) buildRequest(o *Order) (exchange.OrderRequest, error) {
	cfg := x.engine.cfg
	req := exchange.OrderRequest{Symbol: cfg.Symbol}

	switch o.Side {
	case signal.Buy:
		req.Side = exchange.SideBuy
	case signal.Sell:
		req.Side = exchange.SideSell
	default:
		return req, fmt.Errorf("signal %s produces no order", o.Side)
	}

	switch cfg.OrderType {
	case config.OrderTypeLimit:
		req.Kind = exchange.KindLimit
		req.BaseSize = o.Size
		if o.Side == signal.Buy {
			req.LimitPrice = o.RequestedPrice * (1 + limitOffset)
		} else {
			req.LimitPrice = o.RequestedPrice * (1 - limitOffset)
		}
	default:
		req.Kind = exchange.KindMarket
		if o.Side == signal.Buy {
			req.QuoteSize = o.Size * o.RequestedPrice
		} else {
			req.BaseSize = o.Size
		}
	}

	return req, nil
}
