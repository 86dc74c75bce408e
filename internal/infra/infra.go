// Package infra provides shared infrastructure components: an expiring
// in-memory store used to keep one form session per browser, and a token
// bucket pacing session creation and document requests.
package infra

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCacheFull is returned by GetOrCreate when the cache holds its maximum
// number of live entries.
var ErrCacheFull = errors.New("cache is full")

// CacheEntry holds a cached value with expiration.
type CacheEntry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// Cache is a thread-safe in-memory cache whose entries expire after a
// period of inactivity. Reading an entry through Get extends its life.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry[V]
	ttl     time.Duration
	limit   int // max entries; zero means unbounded
	now     func() time.Time
	onEvict func(key string, value V)
}

// NewCache creates a new cache with the given idle TTL.
func NewCache[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]CacheEntry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// OnEvict registers fn to be called for every entry removed by Cleanup.
func (c *Cache[V]) OnEvict(fn func(key string, value V)) {
	c.mu.Lock()
	c.onEvict = fn
	c.mu.Unlock()
}

// SetLimit caps the number of entries GetOrCreate will hold. Zero removes
// the cap.
func (c *Cache[V]) SetLimit(n int) {
	c.mu.Lock()
	c.limit = n
	c.mu.Unlock()
}

// Get retrieves a value and refreshes its expiry. Returns the zero value
// and false if the key is missing or expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	now := c.now()
	if !ok || now.After(entry.ExpiresAt) {
		var zero V
		return zero, false
	}
	entry.ExpiresAt = now.Add(c.ttl)
	c.entries[key] = entry
	return entry.Value, true
}

// Set stores a value with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	c.entries[key] = CacheEntry[V]{
		Value:     value,
		ExpiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// GetOrCreate returns the live value for key, or stores and returns the
// result of create when there is none. created reports which happened.
// When the cache is at its limit, expired entries are dropped first and
// ErrCacheFull is returned if none were; create is not called.
func (c *Cache[V]) GetOrCreate(key string, create func() V) (value V, created bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if entry, ok := c.entries[key]; ok && !now.After(entry.ExpiresAt) {
		entry.ExpiresAt = now.Add(c.ttl)
		c.entries[key] = entry
		return entry.Value, false, nil
	}
	if c.limit > 0 && len(c.entries) >= c.limit {
		for k, v := range c.entries {
			if now.After(v.ExpiresAt) {
				delete(c.entries, k)
			}
		}
		if len(c.entries) >= c.limit {
			var zero V
			return zero, false, ErrCacheFull
		}
	}
	value = create()
	c.entries[key] = CacheEntry[V]{Value: value, ExpiresAt: now.Add(c.ttl)}
	return value, true, nil
}

// Invalidate removes a key from the cache.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of stored entries, including expired ones not yet
// cleaned up.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Cleanup removes expired entries and returns how many were removed.
func (c *Cache[V]) Cleanup() int {
	c.mu.Lock()
	now := c.now()
	var evicted []CacheEntry[V]
	var keys []string
	for k, v := range c.entries {
		if now.After(v.ExpiresAt) {
			delete(c.entries, k)
			keys = append(keys, k)
			evicted = append(evicted, v)
		}
	}
	onEvict := c.onEvict
	c.mu.Unlock()

	if onEvict != nil {
		for i, k := range keys {
			onEvict(k, evicted[i].Value)
		}
	}
	return len(keys)
}

// RunJanitor calls Cleanup every interval until ctx is cancelled.
func (c *Cache[V]) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.Cleanup()
		}
	}
}

// RateLimiter provides simple token-bucket rate limiting. The bucket holds
// up to maxTokens and gains one token every refillRate.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
	now        func() time.Time
}

// NewRateLimiter creates a rate limiter that allows bursts of maxTokens
// requests and refills one token per refillRate.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// OptionalRateLimiter is NewRateLimiter, except that a non-positive
// maxTokens returns nil, which never limits.
func OptionalRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	if maxTokens <= 0 {
		return nil
	}
	return NewRateLimiter(maxTokens, refillRate)
}

// Allow takes a token if one is available and reports whether it did.
// A nil limiter always allows.
func (rl *RateLimiter) Allow() bool {
	if rl == nil {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or context is cancelled.
// A nil limiter never blocks.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}
	for {
		if rl.Allow() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
			// Check again after a short sleep.
		}
	}
}

// refill adds tokens based on elapsed time. Must be called with mu held.
func (rl *RateLimiter) refill() {
	if rl.refillRate <= 0 {
		return
	}
	now := rl.now()
	elapsed := now.Sub(rl.lastRefill)
	if elapsed >= rl.refillRate {
		periods := int(elapsed / rl.refillRate)
		rl.tokens += periods
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		rl.lastRefill = rl.lastRefill.Add(time.Duration(periods) * rl.refillRate)
	}
}
