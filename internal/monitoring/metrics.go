// Package monitoring exposes Prometheus metrics and a health
// endpoint for the bot.
package monitoring

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meanrev_bot_trades_total",
			Help: "Total number of trades executed",
		},
		[]string{"symbol", "side"},
	)

	ordersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meanrev_bot_orders_total",
			Help: "Total number of orders by terminal status",
		},
		[]string{"symbol", "status"},
	)

	currentPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "meanrev_bot_current_price",
			Help: "Latest observed price of the trading symbol",
		},
		[]string{"symbol"},
	)

	accountBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "meanrev_bot_account_balance",
			Help: "Current account balance in quote currency",
		},
	)

	signalStrength = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "meanrev_bot_signal_strength",
			Help: "Strength of the most recent non-hold signal",
		},
		[]string{"symbol"},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meanrev_bot_errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(tradesTotal)
	prometheus.MustRegister(ordersTotal)
	prometheus.MustRegister(currentPrice)
	prometheus.MustRegister(accountBalance)
	prometheus.MustRegister(signalStrength)
	prometheus.MustRegister(errorsTotal)
}

// RecordTrade records an executed trade.
func RecordTrade(symbol, side string) {
	tradesTotal.WithLabelValues(symbol, side).Inc()
}

// RecordOrder records an order reaching a terminal status.
func RecordOrder(symbol, status string) {
	ordersTotal.WithLabelValues(symbol, status).Inc()
}

// UpdatePrice updates the current price gauge.
func UpdatePrice(symbol string, price float64) {
	currentPrice.WithLabelValues(symbol).Set(price)
}

// UpdateBalance updates the account balance gauge.
func UpdateBalance(balance float64) {
	accountBalance.Set(balance)
}

// UpdateSignalStrength updates the last signal strength gauge.
func UpdateSignalStrength(symbol string, strength float64) {
	signalStrength.WithLabelValues(symbol).Set(strength)
}

// RecordError records an error by category.
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}

// StartServer serves /metrics and /health on the given port. It
// returns the server so the caller can shut it down.
func StartServer(port int, health *HealthChecker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/health", health)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		_ = srv.ListenAndServe()
	}()

	return srv
}
