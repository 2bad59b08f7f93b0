package subscription

import (
	"sync"
	"time"
)

// WindowLimiter is the per-form sliding-window submission limit. The
// count resets lazily: no timers, the window is re-evaluated whenever
// the limiter is consulted. State is owned by one Subscriber and lives
// for the process lifetime.
type WindowLimiter struct {
	window time.Duration
	max    int

	mu    sync.Mutex
	count int
	last  time.Time
}

// NewWindowLimiter creates a limiter allowing max accepted submissions
// per window.
func NewWindowLimiter(window time.Duration, max int) *WindowLimiter {
	return &WindowLimiter{window: window, max: max}
}

// Allow reports whether a submission at the given time would be
// admitted. It never increments: the counter moves only via Record,
// after a successful settled submit.
func (l *WindowLimiter) Allow(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetIfElapsed(now)
	return l.count < l.max
}

// Record counts an accepted submission. Call only after the transport
// settled successfully; failed submissions never consume the window.
func (l *WindowLimiter) Record(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetIfElapsed(now)
	l.count++
	l.last = now
}

// Count returns the current in-window submission count.
func (l *WindowLimiter) Count(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetIfElapsed(now)
	return l.count
}

// resetIfElapsed zeroes the count once the window has passed since the
// last accepted submission. Callers must hold mu.
func (l *WindowLimiter) resetIfElapsed(now time.Time) {
	if now.Sub(l.last) > l.window {
		l.count = 0
	}
}
