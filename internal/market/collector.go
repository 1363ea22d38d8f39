package market

import (
	"context"
	"sync"
	"time"

	"github.com/minhtran24/meanrev-bot/internal/config"
	"github.com/minhtran24/meanrev-bot/internal/exchange"
	"github.com/minhtran24/meanrev-bot/internal/logger"
	"github.com/minhtran24/meanrev-bot/pkg/types"
)

// PriceEvent is a latest-price observation.
type PriceEvent struct {
	Price float64
	At    time.Time
}

// CandleEvent carries the current candle window, oldest first.
type CandleEvent struct {
	Candles []types.Candle
}

// candleFetchPad widens the initial backfill beyond the indicator
// window so indicators are computable immediately.
const candleFetchPad = 50

// Collector polls the market data feed and emits price and candle
// events. When the websocket stream is enabled it supplements the
// price feed with lower-latency ticks; polling always continues as
// the fallback path.
type Collector struct {
	cfg    *config.Config
	log    *logger.Logger
	feed   exchange.MarketData
	series *Series

	prices  chan PriceEvent
	candles chan CandleEvent

	mu        sync.Mutex
	lastPrice float64
}

// NewCollector creates a collector for the configured symbol.
func NewCollector(cfg *config.Config, log *logger.Logger, feed exchange.MarketData) *Collector {
	return &Collector{
		cfg:     cfg,
		log:     log,
		feed:    feed,
		series:  NewSeries(),
		prices:  make(chan PriceEvent, 64),
		candles: make(chan CandleEvent, 8),
	}
}

// Prices returns the price event channel.
func (c *Collector) Prices() <-chan PriceEvent {
	return c.prices
}

// Candles returns the candle event channel.
func (c *Collector) Candles() <-chan CandleEvent {
	return c.candles
}

// LatestPrice returns the most recent observed price, 0 before the
// first observation.
func (c *Collector) LatestPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPrice
}

// Run backfills the candle series and then polls until the context
// ends. It blocks; run it in its own goroutine.
func (c *Collector) Run(ctx context.Context) {
	if err := c.backfill(ctx); err != nil {
		c.log.Error("initial candle backfill failed: %v", err)
	}

	if c.cfg.WebsocketEnabled {
		stream := newTickerStream(c.cfg, c.log, c.observePrice)
		go stream.run(ctx)
	}

	ticker := time.NewTicker(c.cfg.FetchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.poll(ctx)
		}
	}
}

func (c *Collector) backfill(ctx context.Context) error {
	limit := c.cfg.MinCandles() + candleFetchPad
	candles, err := c.feed.GetCandles(ctx, c.cfg.Symbol, c.cfg.CandleInterval, limit)
	if err != nil {
		return err
	}

	c.series.Replace(candles)
	c.log.Info("backfilled %d candles for %s", len(candles), c.cfg.Symbol)
	c.emitCandles()
	return nil
}

func (c *Collector) poll(ctx context.Context) {
	price, err := c.feed.GetLatestPrice(ctx, c.cfg.Symbol)
	if err != nil {
		c.log.Warning("fetching latest price: %v", err)
	} else {
		c.observePrice(price)
	}

	// Two most recent buckets: the closed candle plus the live one.
	candles, err := c.feed.GetCandles(ctx, c.cfg.Symbol, c.cfg.CandleInterval, 2)
	if err != nil {
		c.log.Warning("fetching candles: %v", err)
		return
	}

	grew := false
	for _, candle := range candles {
		before := c.series.Len()
		c.series.Upsert(candle)
		if c.series.Len() > before {
			grew = true
		}
	}
	if grew {
		c.emitCandles()
	}
}

func (c *Collector) observePrice(price float64) {
	if price <= 0 {
		return
	}

	c.mu.Lock()
	c.lastPrice = price
	c.mu.Unlock()

	select {
	case c.prices <- PriceEvent{Price: price, At: time.Now()}:
	default:
		// Consumer is behind; stale ticks are droppable.
	}
}

func (c *Collector) emitCandles() {
	window := c.series.Tail(c.cfg.MinCandles() + candleFetchPad)
	select {
	case c.candles <- CandleEvent{Candles: window}:
	default:
	}
}
