// Package bybit implements the order gateway and market data feed
// against the Bybit v5 API.
package bybit

import (
	bybit_api "github.com/bybit-exchange/bybit.go.api"

	"github.com/minhtran24/meanrev-bot/internal/safety"
)

// Config holds the connection settings for the Bybit client.
type Config struct {
	APIKey    string
	APISecret string
	Symbol    string // e.g. "BTCUSDT"
	Category  string // "spot", "linear", "inverse"
	Testnet   bool
	Demo      bool // demo trading environment (paper money, real API)
}

// Client talks to Bybit's unified trading account endpoints. It
// implements the exchange.Gateway and exchange.MarketData interfaces.
type Client struct {
	httpClient *bybit_api.Client
	limiter    *safety.RateLimiter
	symbol     string
	category   string
	demo       bool
	testnet    bool
}

// NewClient creates a Bybit client for the configured environment.
// All requests share a token bucket sized for Bybit's per-key limit.
func NewClient(cfg Config) *Client {
	var baseURL string
	switch {
	case cfg.Demo:
		baseURL = "https://api-demo.bybit.com"
	case cfg.Testnet:
		baseURL = bybit_api.TESTNET
	default:
		baseURL = bybit_api.MAINNET
	}

	category := cfg.Category
	if category == "" {
		category = "spot"
	}

	return &Client{
		httpClient: bybit_api.NewBybitHttpClient(
			cfg.APIKey,
			cfg.APISecret,
			bybit_api.WithBaseURL(baseURL),
		),
		limiter:  safety.NewRateLimiter("bybit-api", 10, 10),
		symbol:   cfg.Symbol,
		category: category,
		demo:     cfg.Demo,
		testnet:  cfg.Testnet,
	}
}

// Environment names the venue environment this client talks to.
func (c *Client) Environment() string {
	switch {
	case c.demo:
		return "demo"
	case c.testnet:
		return "testnet"
	default:
		return "mainnet"
	}
}
