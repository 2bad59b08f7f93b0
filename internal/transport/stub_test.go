package transport

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/subscription-gateway/internal/subscription"
)

func newDeterministicStub(roll float64) *Stub {
	s := NewStub(0)
	s.rand = func() float64 { return roll }
	s.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return s
}

func TestStubSuccess(t *testing.T) {
	s := newDeterministicStub(0.99)

	res, err := s.Submit(context.Background(), subscription.Data{
		Email:  "user@example.com",
		Source: "landing-hero",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.SubscriptionID, "sub_"))
	assert.Equal(t, "subscribed", res.Message)
}

func TestStubSimulatedFailure(t *testing.T) {
	s := newDeterministicStub(0.05) // below the 10% failure rate

	_, err := s.Submit(context.Background(), subscription.Data{Email: "user@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulated")
}

func TestStubHonorsCancellation(t *testing.T) {
	s := NewStub(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Submit(ctx, subscription.Data{Email: "user@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStubIssuesUniqueIDs(t *testing.T) {
	s := newDeterministicStub(0.99)

	first, err := s.Submit(context.Background(), subscription.Data{Email: "a@example.com"})
	require.NoError(t, err)
	second, err := s.Submit(context.Background(), subscription.Data{Email: "b@example.com"})
	require.NoError(t, err)

	assert.NotEqual(t, first.SubscriptionID, second.SubscriptionID)
}
