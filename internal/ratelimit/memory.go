package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is the single-host fallback when Redis is not
// configured. Windows reset lazily on check; stale entries are pruned
// opportunistically so the map does not grow unbounded.
type MemoryLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	windowStart time.Time
	count       int
}

// NewMemoryLimiter creates an in-memory keyed limiter.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*memoryEntry),
	}
}

// Allow admits the event unless the key's window is exhausted.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}

	now := time.Now().UTC()
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := l.entries[key]
	if entry == nil || now.Sub(entry.windowStart) > l.window {
		entry = &memoryEntry{windowStart: now}
		l.entries[key] = entry
	}

	if entry.count >= l.limit {
		return false, nil
	}
	entry.count++

	if len(l.entries) > 10000 {
		l.prune(now)
	}
	return true, nil
}

// prune drops entries whose window has fully elapsed. Callers must
// hold mu.
func (l *MemoryLimiter) prune(now time.Time) {
	for key, entry := range l.entries {
		if now.Sub(entry.windowStart) > l.window {
			delete(l.entries, key)
		}
	}
}
