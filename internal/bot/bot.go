// Package bot runs the decision loop that turns market events into
// trading actions.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/minhtran24/meanrev-bot/internal/config"
	"github.com/minhtran24/meanrev-bot/internal/execution"
	"github.com/minhtran24/meanrev-bot/internal/logger"
	"github.com/minhtran24/meanrev-bot/internal/market"
	"github.com/minhtran24/meanrev-bot/internal/monitoring"
	"github.com/minhtran24/meanrev-bot/internal/notifications"
	"github.com/minhtran24/meanrev-bot/internal/risk"
	"github.com/minhtran24/meanrev-bot/internal/signal"
)

const (
	reconcileInterval = 30 * time.Second
	statusInterval    = time.Minute
)

// Deps are the collaborators the bot is wired with.
type Deps struct {
	Config    *config.Config
	Log       *logger.Logger
	Processor *signal.Processor
	Risk      *risk.Manager
	Engine    *execution.Engine
	Collector *market.Collector
	Health    *monitoring.HealthChecker
	Notifier  notifications.Notifier
}

// Bot consumes price and candle events on a single goroutine. All
// trading decisions flow through that one loop, so position and
// order mutations never race between the tick path and the candle
// path.
type Bot struct {
	cfg       *config.Config
	log       *logger.Logger
	processor *signal.Processor
	riskMgr   *risk.Manager
	engine    *execution.Engine
	collector *market.Collector
	health    *monitoring.HealthChecker
	notifier  notifications.Notifier
}

// New wires a bot from its dependencies.
func New(d Deps) *Bot {
	notifier := d.Notifier
	if notifier == nil {
		notifier = notifications.Noop{}
	}
	return &Bot{
		cfg:       d.Config,
		log:       d.Log,
		processor: d.Processor,
		riskMgr:   d.Risk,
		engine:    d.Engine,
		collector: d.Collector,
		health:    d.Health,
		notifier:  notifier,
	}
}

// Run starts the collector and processes events until the context
// ends.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Status("bot started: %s interval=%s mode=%s",
		b.cfg.Symbol, b.cfg.CandleInterval, b.cfg.Mode)

	go b.collector.Run(ctx)

	reconcile := time.NewTicker(reconcileInterval)
	defer reconcile.Stop()
	status := time.NewTicker(statusInterval)
	defer status.Stop()

	for {
		select {
		case <-ctx.Done():
			b.log.Status("bot stopping")
			return nil
		case ev := <-b.collector.Prices():
			b.onPrice(ctx, ev)
		case ev := <-b.collector.Candles():
			b.onCandle(ctx, ev)
		case <-reconcile.C:
			b.engine.CheckPendingOrders(ctx)
		case <-status.C:
			b.logStatus()
		}
	}
}

// onPrice runs the exit check against the latest price.
func (b *Bot) onPrice(ctx context.Context, ev market.PriceEvent) {
	monitoring.UpdatePrice(b.cfg.Symbol, ev.Price)
	if b.health != nil {
		b.health.ObservePrice(ev.Price)
	}

	if exit := b.riskMgr.UpdatePosition(ev.Price); exit == signal.Sell {
		b.log.Info("exit level crossed at %.2f", ev.Price)
		b.execute(ctx, signal.Sell, ev.Price, 1.0)
	}
}

// onCandle evaluates the strategy on the updated candle window.
func (b *Bot) onCandle(ctx context.Context, ev market.CandleEvent) {
	sig, snap := b.processor.Process(ev.Candles)
	if snap == nil || sig == signal.Hold {
		return
	}

	strength := b.processor.Strength(snap)
	monitoring.UpdateSignalStrength(b.cfg.Symbol, strength)
	b.log.Info("signal %s at %.2f (strength %.2f, rsi %.1f)",
		sig, snap.Close, strength, snap.RSI)

	b.execute(ctx, sig, snap.Close, strength)
}

func (b *Bot) execute(ctx context.Context, sig signal.Signal, price, strength float64) {
	o := b.engine.ExecuteSignal(ctx, sig, price, strength)
	if o == nil {
		return
	}

	monitoring.RecordOrder(b.cfg.Symbol, string(o.Status))
	if o.Status != execution.StatusFilled {
		return
	}

	monitoring.RecordTrade(b.cfg.Symbol, sig.String())
	m := b.riskMgr.Metrics()
	monitoring.UpdateBalance(m.Balance)

	if sig == signal.Buy {
		b.notify("success", fmt.Sprintf("Opened %.6f %s @ %.2f",
			o.FilledSize, b.cfg.Symbol, o.FilledPrice))
	} else {
		b.notify("success", fmt.Sprintf("Closed %s position @ %.2f (total PnL $%.2f)",
			b.cfg.Symbol, o.FilledPrice, m.TotalPnL))
	}
}

func (b *Bot) notify(level, message string) {
	if err := b.notifier.SendAlert(level, message); err != nil {
		b.log.Warning("sending alert: %v", err)
	}
}

func (b *Bot) logStatus() {
	m := b.riskMgr.Metrics()
	stats := b.engine.Stats()
	monitoring.UpdateBalance(m.Balance)

	b.log.Status("balance=%.2f pnl=%.2f winrate=%.1f%% drawdown=%.2f%% orders=%d/%d pending=%d price=%.2f",
		m.Balance, m.TotalPnL, m.WinRate*100, m.MaxDrawdown*100,
		stats.SuccessfulOrders, stats.TotalOrders, stats.PendingOrders,
		b.collector.LatestPrice())
}
