// Package ratelimit throttles noisy, repeatable side effects such as failure
// log lines.
//
// A listener that fails on every event would otherwise write one error line
// per emission. The bus routes its default failure reporting through a
// Throttle so that a burst is logged in full and the remainder is counted and
// summarized once the rate allows it again.
//
// # Basic Usage
//
//	// 10 reports/second with burst of 20
//	th := ratelimit.NewThrottle(ratelimit.NewTokenBucket(10, 20))
//
//	if ok, suppressed := th.Allow(); ok {
//	    logger.Error("listener failed", "suppressed", suppressed)
//	}
package ratelimit

import (
	"sync/atomic"

	"golang.org/x/time/rate"
)

// Limiter decides whether an event may happen now.
// Implementations must be safe for concurrent use.
type Limiter interface {
	// Allow returns true if an event can happen right now.
	// This is a non-blocking check.
	Allow() bool
}

// TokenBucket is a local token bucket backed by golang.org/x/time/rate.
//
//   - Tokens are added at rps per second
//   - At most burst tokens accumulate
//   - Each event consumes one token
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket creates a limiter allowing rps events per second with the
// given burst. A non-positive rps disables limiting.
func NewTokenBucket(rps float64, burst int) *TokenBucket {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{limiter: rate.NewLimiter(limit, burst)}
}

// Allow consumes one token if available.
func (t *TokenBucket) Allow() bool {
	return t.limiter.Allow()
}

// Unlimited reports whether the bucket never refuses.
func (t *TokenBucket) Unlimited() bool {
	return t.limiter.Limit() == rate.Inf
}

// Limit returns the rate in events per second.
func (t *TokenBucket) Limit() float64 {
	return float64(t.limiter.Limit())
}

// Burst returns the burst size.
func (t *TokenBucket) Burst() int {
	return t.limiter.Burst()
}

var _ Limiter = (*TokenBucket)(nil)

// Throttle gates a side effect behind a Limiter and counts what it dropped.
type Throttle struct {
	limiter    Limiter
	suppressed atomic.Uint64
	total      atomic.Uint64
}

// NewThrottle wraps l. A nil limiter never suppresses.
func NewThrottle(l Limiter) *Throttle {
	return &Throttle{limiter: l}
}

// Allow reports whether the side effect may run now. When it may, the number
// of calls suppressed since the last allowed one is returned and reset.
func (t *Throttle) Allow() (ok bool, suppressed uint64) {
	if t.limiter != nil && !t.limiter.Allow() {
		t.suppressed.Add(1)
		t.total.Add(1)
		return false, 0
	}
	return true, t.suppressed.Swap(0)
}

// Suppressed returns the number of calls dropped since the last allowed one.
func (t *Throttle) Suppressed() uint64 {
	return t.suppressed.Load()
}

// TotalSuppressed returns the number of calls dropped over the throttle's
// lifetime.
func (t *Throttle) TotalSuppressed() uint64 {
	return t.total.Load()
}
