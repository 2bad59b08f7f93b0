// Package transport provides submission backends for the gateway: a
// stub for local development, an HTTP backend for generic list
// providers, and an AWS SES v2 contact-list backend for production.
package transport

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/subscription-gateway/internal/subscription"
)

// Stub simulates a list provider for local testing: it waits a fixed
// delay, then succeeds with probability 1-failureRate (~90% by
// default). All responses are fabricated; nothing leaves the process.
type Stub struct {
	delay       time.Duration
	failureRate float64

	// rand and sleep are injectable so tests run deterministic and
	// timer-free.
	rand  func() float64
	sleep func(ctx context.Context, d time.Duration) error
}

// NewStub creates a stub transport with the given simulated delay and
// a 10% failure rate.
func NewStub(delay time.Duration) *Stub {
	return &Stub{
		delay:       delay,
		failureRate: 0.1,
		rand:        rand.Float64,
		sleep:       sleepCtx,
	}
}

// Submit waits the configured delay and fabricates an outcome.
func (s *Stub) Submit(ctx context.Context, data subscription.Data) (subscription.Result, error) {
	if err := s.sleep(ctx, s.delay); err != nil {
		return subscription.Result{}, err
	}

	if s.rand() < s.failureRate {
		return subscription.Result{}, fmt.Errorf("stub: simulated delivery failure")
	}

	return subscription.Result{
		SubscriptionID: "sub_" + uuid.NewString(),
		Message:        "subscribed",
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
