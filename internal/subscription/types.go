package subscription

import (
	"context"
	"time"
)

// Attempt is the raw field state collected from a form, before any
// validation or normalization.
type Attempt struct {
	Email   string `json:"email"`
	Consent bool   `json:"consent"`
}

// Data is a validated, normalized submission: trimmed email, the
// form's fixed source tag, and the validation timestamp.
type Data struct {
	Email     string    `json:"email"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// Result is a settled successful submission.
type Result struct {
	SubscriptionID string `json:"subscription_id"`
	Message        string `json:"message,omitempty"`
}

// Transport delivers a validated submission to the backing list
// provider. Implementations live in internal/transport; tests inject
// deterministic fakes.
type Transport interface {
	Submit(ctx context.Context, data Data) (Result, error)
}

// Snapshot is the per-form transient state exposed to the presentation
// layer. Reset clears it; the rate-limit counters are not part of it.
type Snapshot struct {
	InFlight           bool      `json:"in_flight"`
	LastOutcome        string    `json:"last_outcome,omitempty"`
	LastSubscriptionID string    `json:"last_subscription_id,omitempty"`
	LastAttemptAt      time.Time `json:"last_attempt_at,omitzero"`
	WindowCount        int       `json:"window_count"`
}
