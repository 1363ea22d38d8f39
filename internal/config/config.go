package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// TradingMode selects how orders are executed.
type TradingMode string

const (
	// ModeInstant fills orders synchronously at the requested price.
	ModeInstant TradingMode = "instant"
	// ModePaper simulates venue latency and slippage without real orders.
	ModePaper TradingMode = "paper"
	// ModeLive places real orders on the exchange.
	ModeLive TradingMode = "live"
)

// OrderType selects the gateway order flavor for live trading.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// Config holds the validated, immutable bot configuration.
type Config struct {
	// Exchange credentials
	APIKey    string
	APISecret string
	Testnet   bool
	Demo      bool

	// Trading
	Mode           TradingMode
	Symbol         string
	Category       string
	CandleInterval string
	OrderType      OrderType

	// Risk management
	InitialBalance      float64 // simulated starting balance outside live mode
	MaxPositionFraction float64 // fraction of available balance per trade, (0,1]
	StopLossPct         float64 // percent, e.g. 2.0
	TakeProfitPct       float64 // percent, e.g. 5.0
	MinOrderSize        float64 // quote currency
	CooldownSeconds     int

	// Strategy parameters
	RSIPeriod       int
	RSIOversold     float64
	RSIOverbought   float64
	BollingerPeriod int
	BollingerStdDev float64

	// Market data
	WebsocketEnabled bool
	FetchInterval    time.Duration

	// Execution
	FillTimeout time.Duration

	// Observability
	LogDir      string
	MetricsPort int

	// Notifications (optional)
	TelegramToken  string
	TelegramChatID string
}

// Load reads configuration from the environment. Call Validate before use.
func Load() *Config {
	return &Config{
		APIKey:    getEnv("BYBIT_API_KEY", ""),
		APISecret: getEnv("BYBIT_API_SECRET", ""),
		Testnet:   getEnvBool("BYBIT_TESTNET", false),
		Demo:      getEnvBool("BYBIT_DEMO", true),

		Mode:           TradingMode(strings.ToLower(getEnv("TRADING_MODE", string(ModeInstant)))),
		Symbol:         getEnv("TRADING_SYMBOL", "BTCUSDT"),
		Category:       getEnv("TRADING_CATEGORY", "spot"),
		CandleInterval: getEnv("CANDLE_INTERVAL", "1"),
		OrderType:      OrderType(strings.ToLower(getEnv("ORDER_TYPE", string(OrderTypeMarket)))),

		InitialBalance:      getEnvFloat("INITIAL_BALANCE", 10000),
		MaxPositionFraction: getEnvFloat("MAX_POSITION_FRACTION", 0.1),
		StopLossPct:         getEnvFloat("STOP_LOSS_PERCENT", 2.0),
		TakeProfitPct:       getEnvFloat("TAKE_PROFIT_PERCENT", 5.0),
		MinOrderSize:        getEnvFloat("MIN_ORDER_SIZE", 10),
		CooldownSeconds:     getEnvInt("COOLDOWN_SECONDS", 300),

		RSIPeriod:       getEnvInt("RSI_PERIOD", 14),
		RSIOversold:     getEnvFloat("RSI_OVERSOLD", 30),
		RSIOverbought:   getEnvFloat("RSI_OVERBOUGHT", 70),
		BollingerPeriod: getEnvInt("BOLLINGER_PERIOD", 20),
		BollingerStdDev: getEnvFloat("BOLLINGER_STD", 2.0),

		WebsocketEnabled: getEnvBool("WEBSOCKET_ENABLED", true),
		FetchInterval:    getEnvDuration("DATA_FETCH_INTERVAL", time.Minute),

		FillTimeout: getEnvDuration("FILL_TIMEOUT", 30*time.Second),

		LogDir:      getEnv("LOG_DIR", "logs"),
		MetricsPort: getEnvInt("METRICS_PORT", 8080),

		TelegramToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID: getEnv("TELEGRAM_CHAT_ID", ""),
	}
}

// Validate checks the configuration and returns all problems at once.
func (c *Config) Validate() error {
	var errs []string

	switch c.Mode {
	case ModeInstant, ModePaper, ModeLive:
	default:
		errs = append(errs, fmt.Sprintf("invalid trading mode: %q", c.Mode))
	}

	if c.Mode == ModeLive && (c.APIKey == "" || c.APISecret == "") {
		errs = append(errs, "exchange API credentials are required for live trading")
	}

	switch c.OrderType {
	case OrderTypeMarket, OrderTypeLimit:
	default:
		errs = append(errs, fmt.Sprintf("invalid order type: %q", c.OrderType))
	}

	if c.Symbol == "" {
		errs = append(errs, "trading symbol is required")
	}

	if c.MaxPositionFraction <= 0 || c.MaxPositionFraction > 1 {
		errs = append(errs, "MAX_POSITION_FRACTION must be in (0, 1]")
	}
	if c.StopLossPct <= 0 {
		errs = append(errs, "STOP_LOSS_PERCENT must be positive")
	}
	if c.TakeProfitPct <= 0 {
		errs = append(errs, "TAKE_PROFIT_PERCENT must be positive")
	}
	if c.MinOrderSize <= 0 {
		errs = append(errs, "MIN_ORDER_SIZE must be positive")
	}
	if c.CooldownSeconds < 0 {
		errs = append(errs, "COOLDOWN_SECONDS must not be negative")
	}

	if c.RSIPeriod <= 0 {
		errs = append(errs, "RSI_PERIOD must be positive")
	}
	if !(0 <= c.RSIOversold && c.RSIOversold < c.RSIOverbought && c.RSIOverbought <= 100) {
		errs = append(errs, "RSI thresholds must satisfy 0 <= oversold < overbought <= 100")
	}
	if c.BollingerPeriod <= 0 {
		errs = append(errs, "BOLLINGER_PERIOD must be positive")
	}
	if c.BollingerStdDev <= 0 {
		errs = append(errs, "BOLLINGER_STD must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Cooldown returns the configured cooldown as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// MinCandles is the smallest candle count the strategy can work with.
func (c *Config) MinCandles() int {
	if c.RSIPeriod > c.BollingerPeriod {
		return c.RSIPeriod
	}
	return c.BollingerPeriod
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return defaultVal
}
