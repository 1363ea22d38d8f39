package market

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/minhtran24/meanrev-bot/internal/config"
	"github.com/minhtran24/meanrev-bot/internal/logger"
)

const (
	wsHandshakeTimeout = 10 * time.Second
	wsPingInterval     = 20 * time.Second
	wsReconnectDelay   = 5 * time.Second
)

// tickerStream subscribes to the public Bybit ticker websocket and
// pushes prices into the collector. Connection loss triggers a
// reconnect after a short delay; REST polling keeps running either
// way, so the stream is purely additive.
type tickerStream struct {
	cfg     *config.Config
	log     *logger.Logger
	onPrice func(float64)
}

func newTickerStream(cfg *config.Config, log *logger.Logger, onPrice func(float64)) *tickerStream {
	return &tickerStream{cfg: cfg, log: log, onPrice: onPrice}
}

func (t *tickerStream) url() string {
	host := "stream.bybit.com"
	if t.cfg.Testnet {
		host = "stream-testnet.bybit.com"
	}
	category := t.cfg.Category
	if category == "" {
		category = "spot"
	}
	return fmt.Sprintf("wss://%s/v5/public/%s", host, category)
}

func (t *tickerStream) run(ctx context.Context) {
	for {
		if err := t.connectAndRead(ctx); err != nil {
			t.log.Warning("ticker stream: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wsReconnectDelay):
		}
	}
}

func (t *tickerStream) connectAndRead(ctx context.Context) error {
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = wsHandshakeTimeout

	conn, _, err := dialer.DialContext(ctx, t.url(), nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", t.url(), err)
	}
	defer conn.Close()

	sub := map[string]interface{}{
		"op":   "subscribe",
		"args": []string{"tickers." + t.cfg.Symbol},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribing: %w", err)
	}
	t.log.Info("subscribed to tickers.%s", t.cfg.Symbol)

	// Close the connection when the context ends so the read loop
	// unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	go t.pingLoop(ctx, conn, done)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading: %w", err)
		}
		t.handleMessage(message)
	}
}

// pingLoop keeps the connection alive with Bybit's application-level
// ping.
func (t *tickerStream) pingLoop(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteJSON(map[string]string{"op": "ping"}); err != nil {
				return
			}
		}
	}
}

func (t *tickerStream) handleMessage(message []byte) {
	var tick struct {
		Topic string `json:"topic"`
		Data  struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
		} `json:"data"`
	}
	if err := json.Unmarshal(message, &tick); err != nil {
		return
	}
	if tick.Data.LastPrice == "" {
		return
	}

	price, err := strconv.ParseFloat(tick.Data.LastPrice, 64)
	if err != nil {
		return
	}
	t.onPrice(price)
}
