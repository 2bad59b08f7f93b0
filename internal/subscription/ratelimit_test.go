package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowLimiter(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewWindowLimiter(60*time.Second, 3)

	// Three accepted submissions fill the window
	for i := 0; i < 3; i++ {
		now := base.Add(time.Duration(i) * time.Second)
		assert.True(t, l.Allow(now), "submission %d should be admitted", i+1)
		l.Record(now)
	}

	// A fourth within the same window is rejected
	assert.False(t, l.Allow(base.Add(10*time.Second)))
	assert.Equal(t, 3, l.Count(base.Add(10*time.Second)))

	// Exactly at the window boundary the count still stands
	assert.False(t, l.Allow(base.Add(2*time.Second).Add(60*time.Second)))

	// Past the window from the last accepted submission, admitted again
	later := base.Add(2 * time.Second).Add(60*time.Second + time.Millisecond)
	assert.True(t, l.Allow(later))
	assert.Equal(t, 0, l.Count(later))

	l.Record(later)
	assert.Equal(t, 1, l.Count(later))
}

func TestWindowLimiterAllowNeverIncrements(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewWindowLimiter(60*time.Second, 3)

	// Checking admission repeatedly must not consume the window
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow(base))
	}
	assert.Equal(t, 0, l.Count(base))
}
