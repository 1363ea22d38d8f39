// Package safety provides client-side protections for venue API usage.
package safety

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket limiter shared by all venue calls.
type RateLimiter struct {
	capacity   int
	tokens     int
	refillRate int // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
	name       string
}

// NewRateLimiter creates a limiter starting at full capacity.
func NewRateLimiter(name string, capacity, refillRate int) *RateLimiter {
	return &RateLimiter{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
		name:       name,
	}
}

// Allow reports whether one operation may proceed right now.
func (rl *RateLimiter) Allow() bool {
	return rl.AllowN(1)
}

// AllowN reports whether n operations may proceed right now.
func (rl *RateLimiter) AllowN(n int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()

	if rl.tokens >= n {
		rl.tokens -= n
		return true
	}
	return false
}

// Wait blocks until one operation is allowed or the context ends.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		if rl.Allow() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rl.waitTime(1)):
		}
	}
}

func (rl *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill)
	if elapsed < time.Second {
		return
	}

	added := int(elapsed.Seconds()) * rl.refillRate
	if added > 0 {
		rl.tokens += added
		if rl.tokens > rl.capacity {
			rl.tokens = rl.capacity
		}
		rl.lastRefill = now
	}
}

func (rl *RateLimiter) waitTime(n int) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()

	if rl.tokens >= n {
		return 0
	}

	needed := n - rl.tokens
	seconds := float64(needed) / float64(rl.refillRate)
	// Small buffer against timer precision.
	return time.Duration(seconds*1000+100) * time.Millisecond
}

// Stats is a point-in-time view of a limiter.
type Stats struct {
	Name       string
	Capacity   int
	Tokens     int
	RefillRate int
}

// GetStats returns the limiter's current state.
func (rl *RateLimiter) GetStats() Stats {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()

	return Stats{
		Name:       rl.name,
		Capacity:   rl.capacity,
		Tokens:     rl.tokens,
		RefillRate: rl.refillRate,
	}
}
