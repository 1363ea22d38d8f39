package risk

import (
	"fmt"
	"sync"
	"time"

	"github.com/minhtran24/meanrev-bot/internal/config"
	"github.com/minhtran24/meanrev-bot/internal/logger"
	"github.com/minhtran24/meanrev-bot/internal/signal"
)

// Manager owns the single allowed position, the balance, the cooldown
// timer and the realized-PnL history. All mutations go through its
// methods under one mutex so price-tick exits and candle-driven entries
// cannot race each other.
type Manager struct {
	cfg *config.Config
	log *logger.Logger

	mu sync.Mutex

	balance          float64
	availableBalance float64
	position         *Position

	tradeHistory  []TradeRecord
	lastTradeTime time.Time

	totalPnL    float64
	winRate     float64
	maxDrawdown float64
	peakBalance float64

	now func() time.Time
}

// NewManager creates a risk manager. Balance starts at zero until
// SetBalance seeds it from the account.
func NewManager(cfg *config.Config, log *logger.Logger) *Manager {
	return &Manager{
		cfg: cfg,
		log: log,
		now: time.Now,
	}
}

// SetBalance seeds the account balance, typically once at startup.
func (m *Manager) SetBalance(balance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.balance = balance
	m.availableBalance = balance
	m.peakBalance = balance
	m.log.Info("balance set: %.2f", balance)
}

// CanTrade checks the admission rules for a signal at the given price.
// The returned reason explains a rejection in human terms.
func (m *Manager) CanTrade(sig signal.Signal, price float64) (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Instant simulation bypasses admission; it exists for fast
	// deterministic testing, not capital protection.
	if m.cfg.Mode == config.ModeInstant {
		return true, "instant mode, trading allowed"
	}

	if remaining := m.cooldownRemaining(); remaining > 0 {
		return false, fmt.Sprintf("cooldown active: %ds remaining", int(remaining.Seconds()))
	}

	if sig == signal.Buy && m.position != nil {
		return false, "already have an open position"
	}
	if sig == signal.Sell && m.position == nil {
		return false, "no position to sell"
	}

	if sig == signal.Buy {
		size := m.positionSize(price)
		if size*price < m.cfg.MinOrderSize {
			return false, fmt.Sprintf("position value below minimum: %.2f", size*price)
		}
		if m.availableBalance < m.cfg.MinOrderSize {
			return false, fmt.Sprintf("insufficient balance: %.2f", m.availableBalance)
		}
	}

	return true, "trade allowed"
}

// CalculateOrderDetails produces sizing and risk levels for a signal.
// Sell sizing requires an open position; without one it returns nil.
func (m *Manager) CalculateOrderDetails(sig signal.Signal, price, strength float64) *OrderDetails {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch sig {
	case signal.Buy:
		size := m.positionSize(price) * strength
		stopLoss := price * (1 - m.cfg.StopLossPct/100)
		takeProfit := price * (1 + m.cfg.TakeProfitPct/100)

		return &OrderDetails{
			Side:            "buy",
			Size:            size,
			Value:           size * price,
			StopLoss:        stopLoss,
			TakeProfit:      takeProfit,
			RiskAmount:      size * (price - stopLoss),
			PotentialProfit: size * (takeProfit - price),
		}

	case signal.Sell:
		if m.position == nil {
			return nil
		}
		return &OrderDetails{
			Side:       "sell",
			Size:       m.position.Size,
			Value:      m.position.Size * price,
			EntryPrice: m.position.EntryPrice,
			ExitPrice:  price,
			PnL:        m.position.Size * (price - m.position.EntryPrice),
		}
	}

	return nil
}

// OpenPosition records a confirmed buy fill: creates the position,
// deducts its value from the available balance and starts the cooldown.
func (m *Manager) OpenPosition(entryPrice, size, stopLoss, takeProfit float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.position = &Position{
		EntryPrice: entryPrice,
		Size:       size,
		EntryTime:  now,
		Status:     PositionOpen,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
	}

	value := size * entryPrice
	m.availableBalance -= value

	m.log.Trade("position opened: entry=%.2f size=%.6f value=%.2f sl=%.2f tp=%.2f",
		entryPrice, size, value, stopLoss, takeProfit)

	m.lastTradeTime = now
	m.tradeHistory = append(m.tradeHistory, TradeRecord{
		Timestamp: now,
		Type:      TradeOpen,
		Price:     entryPrice,
		Size:      size,
		Value:     value,
	})
}

// ClosePosition records a confirmed sell fill. Closing with no open
// position is logged as an anomaly and ignored; racy exit triggers can
// legitimately reach here after the position is already gone.
func (m *Manager) ClosePosition(exitPrice float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.position == nil {
		m.log.Error("close requested with no open position")
		return
	}

	pnl := m.position.Size * (exitPrice - m.position.EntryPrice)
	m.position.RealizedPnL = pnl
	m.totalPnL += pnl

	m.balance += pnl
	m.availableBalance = m.balance
	if m.balance > m.peakBalance {
		m.peakBalance = m.balance
	}

	m.log.Trade("position closed: exit=%.2f entry=%.2f size=%.6f pnl=%.2f total_pnl=%.2f",
		exitPrice, m.position.EntryPrice, m.position.Size, pnl, m.totalPnL)

	now := m.now()
	m.lastTradeTime = now
	m.tradeHistory = append(m.tradeHistory, TradeRecord{
		Timestamp: now,
		Type:      TradeClose,
		Price:     exitPrice,
		Size:      m.position.Size,
		PnL:       pnl,
	})

	m.position = nil
	m.updateMetrics()
}

// UpdatePosition refreshes unrealized PnL for the current price and
// returns Sell when a protective exit level is breached. The stop loss
// is checked before the take profit, so it wins if thresholds were
// misconfigured to overlap.
func (m *Manager) UpdatePosition(price float64) signal.Signal {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.position == nil {
		return signal.Hold
	}

	m.position.UnrealizedPnL = m.position.Size * (price - m.position.EntryPrice)

	if price <= m.position.StopLoss {
		m.log.Warning("stop loss triggered: price=%.2f sl=%.2f", price, m.position.StopLoss)
		return signal.Sell
	}
	if price >= m.position.TakeProfit {
		m.log.Info("take profit triggered: price=%.2f tp=%.2f", price, m.position.TakeProfit)
		return signal.Sell
	}

	return signal.Hold
}

// HasPosition reports whether a position is currently open.
func (m *Manager) HasPosition() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position != nil
}

// Metrics returns a point-in-time snapshot of portfolio performance.
func (m *Manager) Metrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	closed := 0
	for _, t := range m.tradeHistory {
		if t.Type == TradeClose {
			closed++
		}
	}

	metrics := Metrics{
		Balance:          m.balance,
		AvailableBalance: m.availableBalance,
		TotalPnL:         m.totalPnL,
		WinRate:          m.winRate,
		MaxDrawdown:      m.maxDrawdown,
		TotalTrades:      closed,
		OpenPosition:     m.position != nil,
	}
	if m.position != nil {
		metrics.PositionPnL = m.position.UnrealizedPnL
	}
	return metrics
}

// TradeHistory returns a copy of all recorded trades, oldest first.
func (m *Manager) TradeHistory() []TradeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := make([]TradeRecord, len(m.tradeHistory))
	copy(history, m.tradeHistory)
	return history
}

func (m *Manager) positionSize(price float64) float64 {
	return m.availableBalance * m.cfg.MaxPositionFraction / price
}

func (m *Manager) cooldownRemaining() time.Duration {
	if m.lastTradeTime.IsZero() {
		return 0
	}
	elapsed := m.now().Sub(m.lastTradeTime)
	if remaining := m.cfg.Cooldown() - elapsed; remaining > 0 {
		return remaining
	}
	return 0
}

func (m *Manager) updateMetrics() {
	winning, closed := 0, 0
	for _, t := range m.tradeHistory {
		if t.Type != TradeClose {
			continue
		}
		closed++
		if t.PnL > 0 {
			winning++
		}
	}
	if closed > 0 {
		m.winRate = float64(winning) / float64(closed)
	}

	if m.peakBalance > 0 {
		drawdown := (m.peakBalance - m.balance) / m.peakBalance
		if drawdown > m.maxDrawdown {
			m.maxDrawdown = drawdown
		}
	}
}
