package subscription

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ignite/subscription-gateway/internal/analytics"
	"github.com/ignite/subscription-gateway/internal/pkg/logger"
)

// Subscriber handles submissions for one form instance: ordered
// validation, the per-form submission window, and a single-flight
// transport call. Rate-limit state is mutated only on the settled
// success path, never during validation.
type Subscriber struct {
	validator *Validator
	limiter   *WindowLimiter
	transport Transport
	sink      analytics.Sink

	// inFlight is the single-flight guard. CAS, not a mutex: a second
	// Submit while one is outstanding is rejected locally without
	// touching the transport.
	inFlight atomic.Bool

	timeout time.Duration
	now     func() time.Time

	mu   sync.Mutex
	last Snapshot
}

// SubscriberOptions tunes a Subscriber beyond its collaborators.
type SubscriberOptions struct {
	// Timeout bounds the transport call. Zero disables the bound; the
	// guard then depends solely on the transport settling.
	Timeout time.Duration
	// Now overrides the clock, for deterministic tests.
	Now func() time.Time
}

// NewSubscriber creates a subscriber with default options.
func NewSubscriber(v *Validator, l *WindowLimiter, t Transport, sink analytics.Sink) *Subscriber {
	return NewSubscriberWithOptions(v, l, t, sink, SubscriberOptions{})
}

// NewSubscriberWithOptions creates a subscriber with explicit options.
func NewSubscriberWithOptions(v *Validator, l *WindowLimiter, t Transport, sink analytics.Sink, opts SubscriberOptions) *Subscriber {
	if sink == nil {
		sink = analytics.NopSink{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Subscriber{
		validator: v,
		limiter:   l,
		transport: t,
		sink:      sink,
		timeout:   opts.Timeout,
		now:       now,
	}
}

// Submit validates the attempt, checks the submission window, and
// delivers through the transport. While a submission is in flight,
// concurrent calls fail with ErrSubmissionInFlight without reaching
// the transport. The guard is released unconditionally when the call
// settles, so a failed or timed-out delivery never locks the form out.
func (s *Subscriber) Submit(ctx context.Context, attempt Attempt) (Result, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrSubmissionInFlight
	}
	defer s.inFlight.Store(false)

	data, err := s.validator.ValidateSubmission(attempt)
	if err != nil {
		s.settle("", err)
		return Result{}, err
	}

	if !s.limiter.Allow(s.now()) {
		s.settle("", ErrRateLimited)
		return Result{}, ErrRateLimited
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.transport.Submit(callCtx, data)
	if err != nil {
		// Cause stays in the logs; callers get the generic kind.
		logger.Error("subscription delivery failed",
			"source", data.Source,
			"email", data.Email,
			"error", err.Error(),
		)
		s.settle("", ErrTransportFailure)
		return Result{}, ErrTransportFailure
	}
	if result.SubscriptionID == "" {
		logger.Error("transport settled without a subscription id", "source", data.Source)
		s.settle("", ErrUnknownFailure)
		return Result{}, ErrUnknownFailure
	}

	// Counter mutation is the last step of the accepted path, after the
	// transport has settled. Failures above never reach this point, so
	// they never consume the window.
	s.limiter.Record(s.now())
	s.settle(result.SubscriptionID, nil)

	return result, nil
}

// settle updates the per-form snapshot and emits the analytics event
// for a settled submission.
func (s *Subscriber) settle(subscriptionID string, cause error) {
	now := s.now()

	outcome := "accepted"
	if cause != nil {
		outcome = ErrorKind(cause)
	}

	s.mu.Lock()
	s.last = Snapshot{
		LastOutcome:        outcome,
		LastSubscriptionID: subscriptionID,
		LastAttemptAt:      now,
		WindowCount:        s.limiter.Count(now),
	}
	s.mu.Unlock()

	props := map[string]string{
		"source":  s.validator.source,
		"outcome": outcome,
	}
	if cause != nil {
		s.sink.Track("subscription_failed", props)
		return
	}
	props["subscription_id"] = subscriptionID
	s.sink.Track("subscription_accepted", props)
}

// Status returns the current per-form snapshot.
func (s *Subscriber) Status() Snapshot {
	s.mu.Lock()
	snap := s.last
	s.mu.Unlock()
	snap.InFlight = s.inFlight.Load()
	snap.WindowCount = s.limiter.Count(s.now())
	return snap
}

// Reset clears the transient snapshot. The rate-limit counters are
// deliberately untouched: clearing a form never refunds its window.
func (s *Subscriber) Reset() {
	s.mu.Lock()
	s.last = Snapshot{}
	s.mu.Unlock()
}
