package subscription

import (
	"regexp"
	"strings"
	"time"
)

// RFC 5321 length limits enforced before the grammar check.
const (
	maxEmailLength     = 254
	maxLocalPartLength = 64
)

// Grammar: local-part characters, "@", then dot-separated domain labels
// of 1-63 alphanumeric-plus-hyphen characters that neither start nor
// end with a hyphen. Single-label domains ("a@b") are accepted.
var emailGrammar = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// ValidateEmail reports whether candidate is an acceptable subscription
// address. Pure and deterministic: trims, then rejects empty input,
// overlong addresses (>254), overlong local parts (>64), consecutive
// dots anywhere, and grammar violations.
func ValidateEmail(candidate string) bool {
	email := strings.TrimSpace(candidate)
	if email == "" || len(email) > maxEmailLength {
		return false
	}
	at := strings.Index(email, "@")
	if at < 0 || at > maxLocalPartLength {
		return false
	}
	if strings.Contains(email, "..") {
		return false
	}
	return emailGrammar.MatchString(email)
}

// Validator checks submissions for one form instance.
type Validator struct {
	source          string
	consentRequired bool
	now             func() time.Time
}

// NewValidator creates a validator for a form. The source tag is
// stamped onto every accepted submission.
func NewValidator(source string, consentRequired bool) *Validator {
	return &Validator{
		source:          source,
		consentRequired: consentRequired,
		now:             time.Now,
	}
}

// ValidateSubmission checks the attempt in order: email present, email
// format valid, consent given (only when this form requires consent).
// The first failing check's error is returned; errors are never
// aggregated. On success the normalized Data carries the trimmed
// email, the form's source tag, and the current timestamp.
func (v *Validator) ValidateSubmission(attempt Attempt) (Data, error) {
	email := strings.TrimSpace(attempt.Email)
	if email == "" {
		return Data{}, ErrEmptyEmail
	}
	if !ValidateEmail(email) {
		return Data{}, ErrInvalidEmailFormat
	}
	if v.consentRequired && !attempt.Consent {
		return Data{}, ErrConsentRequired
	}

	return Data{
		Email:     email,
		Source:    v.source,
		Timestamp: v.now(),
	}, nil
}
