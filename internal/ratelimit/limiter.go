// Package ratelimit implements per-customer token bucket rate limiting.
// Buckets refill lazily on each consume call; there is no background refill
// task. Buckets are created on first use and live for the process lifetime.
package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket admits a call while accumulated tokens >= 1, refilled
// continuously over elapsed time.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   int
	tokens     float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	now        func() time.Time
}

// NewTokenBucket creates a bucket starting at full capacity.
func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return newTokenBucket(capacity, refillRate, time.Now)
}

func newTokenBucket(capacity int, refillRate float64, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
	}
}

// Consume refills the bucket for elapsed time, then takes one token if
// available. Returns false, leaving tokens unchanged, when the bucket is
// empty.
func (b *TokenBucket) Consume() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// refill credits tokens proportionally to time elapsed since the last refill,
// capped at capacity. Must be called holding b.mu.
func (b *TokenBucket) refill() {
	now := b.now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	b.tokens = min(float64(b.capacity), b.tokens+elapsed*b.refillRate)
	b.lastRefill = now
}

// Limiter keeps one token bucket per customer.
type Limiter struct {
	mu         sync.RWMutex
	buckets    map[string]*TokenBucket
	capacity   int
	refillRate float64
	now        func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// NewLimiter creates a limiter whose buckets share the given capacity and
// refill rate.
func NewLimiter(capacity int, refillRate float64, opts ...Option) *Limiter {
	l := &Limiter{
		buckets:    make(map[string]*TokenBucket),
		capacity:   capacity,
		refillRate: refillRate,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow consumes one token from the customer's bucket, creating the bucket at
// full capacity on first use.
func (l *Limiter) Allow(customerID string) bool {
	return l.bucket(customerID).Consume()
}

// bucket returns the customer's bucket, lazily creating it. The registry lock
// covers only the map insertion.
func (l *Limiter) bucket(customerID string) *TokenBucket {
	l.mu.RLock()
	b := l.buckets[customerID]
	l.mu.RUnlock()
	if b != nil {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b := l.buckets[customerID]; b != nil {
		return b
	}
	b = newTokenBucket(l.capacity, l.refillRate, l.now)
	l.buckets[customerID] = b
	return b
}
