package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// staleFeedThreshold marks the feed degraded when no price has been
// observed for this long.
const staleFeedThreshold = 5 * time.Minute

// HealthChecker tracks liveness signals and serves them as JSON.
type HealthChecker struct {
	mu        sync.RWMutex
	startTime time.Time
	lastPrice float64
	lastTick  time.Time
	connected bool
	lastError string
}

// HealthStatus is the JSON body served on /health.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	LastPrice float64   `json:"last_price"`
	LastTick  time.Time `json:"last_tick"`
	Connected bool      `json:"connected"`
	Uptime    string    `json:"uptime"`
	LastError string    `json:"last_error,omitempty"`
}

// NewHealthChecker creates a checker stamped with the current time.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{startTime: time.Now()}
}

// SetConnected records venue connectivity.
func (h *HealthChecker) SetConnected(connected bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connected = connected
}

// ObservePrice records a price observation.
func (h *HealthChecker) ObservePrice(price float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastPrice = price
	h.lastTick = time.Now()
}

// RecordError stores the most recent error message.
func (h *HealthChecker) RecordError(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastError = msg
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if !h.connected || (!h.lastTick.IsZero() && time.Since(h.lastTick) > staleFeedThreshold) {
		status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	body := HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		LastPrice: h.lastPrice,
		LastTick:  h.lastTick,
		Connected: h.connected,
		Uptime:    time.Since(h.startTime).String(),
		LastError: h.lastError,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}
