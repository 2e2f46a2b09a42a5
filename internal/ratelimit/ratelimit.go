// Package ratelimit provides a keyed token-bucket rate limiter with
// non-blocking (Allow) and blocking (Wait) modes.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// cleanupInterval is how often idle entries are swept.
	cleanupInterval = 5 * time.Minute
	// idleTTL is how long a key may go unused before eviction.
	idleTTL = 10 * time.Minute
)

// KeyedRateLimiter manages per-key rate limiting. Each unique key gets
// its own independent token bucket. Keys are client IPs on the inbound
// side and API hosts on the outbound side; entries idle longer than
// idleTTL are evicted so the map stays bounded.
type KeyedRateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int

	// Cleanup
	done     chan struct{}
	stopOnce sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a new keyed rate limiter allowing rps requests per
// second with the given burst size.
func New(rps float64, burst int) *KeyedRateLimiter {
	krl := &KeyedRateLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(rps),
		burst:    burst,
		done:     make(chan struct{}),
	}

	go krl.cleanup()

	return krl
}

// Allow reports whether a request for the key may proceed right now.
// Use for inbound request protection.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.getLimiter(key).Allow()
}

// Wait blocks until a request for the key is allowed or the context is
// canceled. Use for outbound requests to respect an upstream's limits.
func (krl *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return krl.getLimiter(key).Wait(ctx)
}

func (krl *KeyedRateLimiter) getLimiter(key string) *rate.Limiter {
	now := time.Now()

	krl.mu.RLock()
	entry, exists := krl.limiters[key]
	krl.mu.RUnlock()

	if exists {
		krl.mu.Lock()
		entry.lastSeen = now
		krl.mu.Unlock()
		return entry.limiter
	}

	krl.mu.Lock()
	defer krl.mu.Unlock()

	// Double-check after acquiring the write lock
	if entry, exists = krl.limiters[key]; exists {
		entry.lastSeen = now
		return entry.limiter
	}

	entry = &limiterEntry{
		limiter:  rate.NewLimiter(krl.limit, krl.burst),
		lastSeen: now,
	}
	krl.limiters[key] = entry
	return entry.limiter
}

// Stop shuts down the cleanup goroutine.
func (krl *KeyedRateLimiter) Stop() {
	krl.stopOnce.Do(func() {
		close(krl.done)
	})
}

// cleanup periodically evicts entries that have not been used for
// idleTTL, keeping the per-client map from growing without bound.
func (krl *KeyedRateLimiter) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-krl.done:
			return
		case now := <-ticker.C:
			krl.evictIdle(now)
		}
	}
}

func (krl *KeyedRateLimiter) evictIdle(now time.Time) {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	for key, entry := range krl.limiters {
		if now.Sub(entry.lastSeen) > idleTTL {
			delete(krl.limiters, key)
		}
	}
}

// Len returns the number of tracked keys.
func (krl *KeyedRateLimiter) Len() int {
	krl.mu.RLock()
	defer krl.mu.RUnlock()
	return len(krl.limiters)
}
