package execution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/minhtran24/meanrev-bot/internal/config"
	boterrors "github.com/minhtran24/meanrev-bot/internal/errors"
	"github.com/minhtran24/meanrev-bot/internal/exchange"
	"github.com/minhtran24/meanrev-bot/internal/logger"
	"github.com/minhtran24/meanrev-bot/internal/monitoring"
	"github.com/minhtran24/meanrev-bot/internal/risk"
	"github.com/minhtran24/meanrev-bot/internal/signal"
)

const (
	defaultPollInterval = time.Second
	defaultPaperDelay   = 500 * time.Millisecond
	reconcileTimeout    = 5 * time.Second
)

// Engine turns admitted signals into orders and tracks them to a
// terminal state. Only one ExecuteSignal may be in flight at a time.
type Engine struct {
	cfg     *config.Config
	log     *logger.Logger
	riskMgr *risk.Manager
	gateway exchange.Gateway

	executor     orderExecutor
	pollInterval time.Duration
	now          func() time.Time

	mu sync.Mutex // serializes ExecuteSignal

	pmu     sync.Mutex // guards pending, history, seq and the counters
	pending map[string]*Order
	history []*Order
	seq     int64

	totalOrders      int
	successfulOrders int
	failedOrders     int
}

// NewEngine creates an execution engine for the configured trading
// mode. The gateway may be nil outside live mode.
func NewEngine(cfg *config.Config, log *logger.Logger, riskMgr *risk.Manager, gateway exchange.Gateway) *Engine {
	e := &Engine{
		cfg:          cfg,
		log:          log,
		riskMgr:      riskMgr,
		gateway:      gateway,
		pollInterval: defaultPollInterval,
		now:          time.Now,
		pending:      make(map[string]*Order),
	}

	switch cfg.Mode {
	case config.ModeInstant:
		e.executor = &instantExecutor{now: func() time.Time { return e.now() }}
	case config.ModePaper:
		e.executor = &paperExecutor{
			delay: defaultPaperDelay,
			now:   func() time.Time { return e.now() },
		}
	default:
		e.executor = &liveExecutor{engine: e}
	}

	return e
}

// ExecuteSignal runs admission and sizing for a signal, then drives
// the resulting order through the configured executor. It returns nil
// when no order is produced: hold signals, risk rejections, empty
// sizing, and placement failures all degrade to "no order".
func (e *Engine) ExecuteSignal(ctx context.Context, sig signal.Signal, price, strength float64) *Order {
	if sig == signal.Hold {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	allowed, reason := e.riskMgr.CanTrade(sig, price)
	if !allowed {
		e.log.Info("signal %s rejected: %s", sig, reason)
		return nil
	}

	details := e.riskMgr.CalculateOrderDetails(sig, price, strength)
	if details == nil {
		e.log.Warning("no sizing for %s at %.2f", sig, price)
		return nil
	}

	o := e.newOrder(sig, price, details)
	e.pmu.Lock()
	e.totalOrders++
	e.pmu.Unlock()

	if err := e.executor.submit(ctx, o); err != nil {
		o.markFailed(err.Error())
		e.pmu.Lock()
		e.failedOrders++
		e.history = append(e.history, o)
		e.pmu.Unlock()
		e.log.Error("order placement failed: %v", err)
		return nil
	}

	if o.Status == StatusPending {
		e.waitForFill(ctx, o.ID, e.cfg.FillTimeout)
		return o
	}

	switch o.Status {
	case StatusFilled:
		e.settle(o)
	case StatusCancelled:
		e.pmu.Lock()
		e.failedOrders++
		e.history = append(e.history, o)
		e.pmu.Unlock()
		e.log.Warning("order %s cancelled: %s", o.ID, o.Err)
	}
	return o
}

// waitForFill polls the gateway until the order reaches a terminal
// state or the timeout elapses. On timeout a venue-side cancel is
// attempted before the order is abandoned locally. A nonexistent id
// is a no-op.
func (e *Engine) waitForFill(ctx context.Context, id string, timeout time.Duration) {
	o := e.lookupPending(id)
	if o == nil {
		return
	}

	deadline := e.now().Add(timeout)
	for {
		if !e.now().Before(deadline) {
			e.cancelAbandoned(ctx, id, "timeout waiting for fill")
			return
		}

		state, err := e.gateway.GetOrder(ctx, id)
		if err != nil {
			// Transient: keep polling inside the timeout budget.
			cerr := boterrors.Categorize(err, "execution", "poll_order")
			monitoring.RecordError(string(cerr.Category))
			e.log.Warning("polling order %s: %v", id, cerr)
		} else {
			switch state.Status {
			case exchange.StatusFilled:
				e.settleFill(id, state)
				return
			case exchange.StatusCancelled, exchange.StatusExpired:
				e.finishCancelled(id, fmt.Sprintf("order %s by venue", state.Status), true)
				return
			}
		}

		select {
		case <-ctx.Done():
			e.cancelAbandoned(ctx, id, "context cancelled while waiting for fill")
			return
		case <-time.After(e.pollInterval):
		}
	}
}

// CheckPendingOrders re-polls every pending order once with a short
// timeout, reconciling state opportunistically.
func (e *Engine) CheckPendingOrders(ctx context.Context) {
	for _, id := range e.pendingIDs() {
		pollCtx, cancel := context.WithTimeout(ctx, reconcileTimeout)
		state, err := e.gateway.GetOrder(pollCtx, id)
		cancel()
		if err != nil {
			cerr := boterrors.Categorize(err, "execution", "reconcile_order")
			monitoring.RecordError(string(cerr.Category))
			e.log.Warning("reconciling order %s: %v", id, cerr)
			continue
		}

		switch state.Status {
		case exchange.StatusFilled:
			e.settleFill(id, state)
		case exchange.StatusCancelled, exchange.StatusExpired:
			// Reconciliation sweeps orders that already left the
			// fill-wait path, so these cancels stay total-only.
			e.finishCancelled(id, fmt.Sprintf("order %s by venue", state.Status), false)
		}
	}
}

// Stats is a read snapshot of the engine's order counters.
type Stats struct {
	TotalOrders      int
	SuccessfulOrders int
	FailedOrders     int
	PendingOrders    int
	SuccessRate      float64
}

// Stats returns the engine's current counters.
func (e *Engine) Stats() Stats {
	e.pmu.Lock()
	defer e.pmu.Unlock()

	s := Stats{
		TotalOrders:      e.totalOrders,
		SuccessfulOrders: e.successfulOrders,
		FailedOrders:     e.failedOrders,
		PendingOrders:    len(e.pending),
	}
	if s.TotalOrders > 0 {
		s.SuccessRate = float64(s.SuccessfulOrders) / float64(s.TotalOrders)
	}
	return s
}

// History returns a copy of the terminal-order history.
func (e *Engine) History() []*Order {
	e.pmu.Lock()
	defer e.pmu.Unlock()

	out := make([]*Order, len(e.history))
	copy(out, e.history)
	return out
}

func (e *Engine) newOrder(sig signal.Signal, price float64, details *risk.OrderDetails) *Order {
	e.pmu.Lock()
	e.seq++
	id := fmt.Sprintf("sim-%d", e.seq)
	e.pmu.Unlock()

	return &Order{
		ID:             id,
		Side:           sig,
		Size:           details.Size,
		RequestedPrice: price,
		Status:         StatusPending,
		CreatedAt:      e.now(),
		stopLoss:       details.StopLoss,
		takeProfit:     details.TakeProfit,
	}
}

// settle applies a filled order to the position book and records it.
func (e *Engine) settle(o *Order) {
	switch o.Side {
	case signal.Buy:
		e.riskMgr.OpenPosition(o.FilledPrice, o.FilledSize, o.stopLoss, o.takeProfit)
	case signal.Sell:
		e.riskMgr.ClosePosition(o.FilledPrice)
	}

	e.pmu.Lock()
	e.successfulOrders++
	e.history = append(e.history, o)
	e.pmu.Unlock()

	e.log.Trade("%s %.6f @ %.2f (order %s)", o.Side, o.FilledSize, o.FilledPrice, o.ID)
}

// settleFill claims a pending order and settles it with the venue
// fill. Claiming removes it from the pending set first so the
// fill-wait loop and reconciliation cannot settle the same order
// twice.
func (e *Engine) settleFill(id string, state *exchange.OrderState) {
	o := e.takePending(id)
	if o == nil {
		return
	}

	price := state.FilledPrice
	if price == 0 {
		price = o.RequestedPrice
	}
	size := state.FilledSize
	if size == 0 {
		size = o.Size
	}

	o.markFilled(price, size, e.now())
	e.settle(o)
}

// finishCancelled claims a pending order and records it cancelled.
// An order abandoned while its fill was awaited counts as failed;
// reconciliation-path cancels do not.
func (e *Engine) finishCancelled(id, reason string, failed bool) {
	o := e.takePending(id)
	if o == nil {
		return
	}

	o.markCancelled(reason)
	e.pmu.Lock()
	if failed {
		e.failedOrders++
	}
	e.history = append(e.history, o)
	e.pmu.Unlock()
	e.log.Warning("order %s cancelled: %s", id, reason)
}

// cancelAbandoned sends a best-effort venue cancel before marking the
// order cancelled locally. Cancel errors are swallowed. A fresh
// context is used so the cancel still goes out when the caller's
// context is already dead.
func (e *Engine) cancelAbandoned(_ context.Context, id, reason string) {
	cancelCtx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()
	if err := e.gateway.CancelOrder(cancelCtx, id); err != nil {
		e.log.Warning("cancelling order %s: %v", id, err)
	}
	e.finishCancelled(id, reason, true)
}

func (e *Engine) addPending(o *Order) {
	e.pmu.Lock()
	defer e.pmu.Unlock()
	e.pending[o.ID] = o
}

func (e *Engine) lookupPending(id string) *Order {
	e.pmu.Lock()
	defer e.pmu.Unlock()
	return e.pending[id]
}

func (e *Engine) takePending(id string) *Order {
	e.pmu.Lock()
	defer e.pmu.Unlock()

	o := e.pending[id]
	delete(e.pending, id)
	return o
}

func (e *Engine) pendingIDs() []string {
	e.pmu.Lock()
	defer e.pmu.Unlock()

	ids := make([]string, 0, len(e.pending))
	for id := range e.pending {
		ids = append(ids, id)
	}
	return ids
}
