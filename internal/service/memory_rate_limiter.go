package service

import (
	"context"
	"sync"
	"time"
)

const (
	memoryMaxEntries      = 10000
	memoryCleanupInterval = time.Minute
)

type memoryEntry struct {
	timestamps []time.Time
	window     time.Duration
	lastAccess time.Time
}

// MemoryRateLimiter is an in-process sliding window limiter. Counts are
// per process and lost on restart, so it only backs best-effort throttles.
type MemoryRateLimiter struct {
	mu          sync.Mutex
	store       map[string]*memoryEntry
	lastCleanup time.Time
	now         func() time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		store:       make(map[string]*memoryEntry),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

func (rl *MemoryRateLimiter) Backend() string {
	return RateLimiterMemory
}

func (rl *MemoryRateLimiter) cleanup(now time.Time) {
	if now.Sub(rl.lastCleanup) < memoryCleanupInterval {
		return
	}
	rl.lastCleanup = now

	for key, entry := range rl.store {
		if now.Sub(entry.lastAccess) > entry.window {
			delete(rl.store, key)
		}
	}

	if len(rl.store) > memoryMaxEntries {
		oldest := make([]string, 0, len(rl.store)/5)
		for key := range rl.store {
			oldest = append(oldest, key)
			if len(oldest) >= len(rl.store)/5 {
				break
			}
		}
		for _, key := range oldest {
			delete(rl.store, key)
		}
	}
}

func (rl *MemoryRateLimiter) CheckLimit(_ context.Context, key string, limit int, window time.Duration) RateLimitDecision {
	if limit <= 0 {
		return RateLimitDecision{Allowed: true}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.cleanup(now)

	windowStart := now.Add(-window)

	entry, exists := rl.store[key]
	if !exists {
		entry = &memoryEntry{
			timestamps: make([]time.Time, 0, limit),
		}
		rl.store[key] = entry
	}

	entry.lastAccess = now
	entry.window = window

	filtered := entry.timestamps[:0]
	for _, ts := range entry.timestamps {
		if ts.After(windowStart) {
			filtered = append(filtered, ts)
		}
	}
	entry.timestamps = filtered

	if len(entry.timestamps) >= limit {
		return RateLimitDecision{
			Allowed: false,
			ResetAt: entry.timestamps[0].Add(window),
		}
	}

	entry.timestamps = append(entry.timestamps, now)
	return RateLimitDecision{
		Allowed:   true,
		Remaining: limit - len(entry.timestamps),
		ResetAt:   entry.timestamps[0].Add(window),
	}
}
