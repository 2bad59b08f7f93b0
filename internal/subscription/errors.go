package subscription

import "errors"

// Submission error kinds. All are recoverable at the caller: the user
// may correct input and resubmit, subject to rate limiting.
var (
	ErrEmptyEmail         = errors.New("email is required")
	ErrInvalidEmailFormat = errors.New("email address is not valid")
	ErrConsentRequired    = errors.New("consent is required to subscribe")
	ErrRateLimited        = errors.New("too many subscription attempts, try again later")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrTransportFailure   = errors.New("subscription could not be delivered")
	ErrUnknownFailure     = errors.New("subscription failed")
)

// ErrorKind returns a stable machine-readable code for a submission
// error, suitable for API payloads and analytics events. Unknown
// errors map to "unknown_failure".
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrEmptyEmail):
		return "empty_email"
	case errors.Is(err, ErrInvalidEmailFormat):
		return "invalid_email_format"
	case errors.Is(err, ErrConsentRequired):
		return "consent_required"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrSubmissionInFlight):
		return "submission_in_flight"
	case errors.Is(err, ErrTransportFailure):
		return "transport_failure"
	default:
		return "unknown_failure"
	}
}
