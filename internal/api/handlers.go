package api

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/subscription-gateway/internal/pkg/httputil"
	"github.com/ignite/subscription-gateway/internal/subscription"
)

type subscribeBody struct {
	Email   string `json:"email"`
	Consent bool   `json:"consent"`
}

type subscribeResponse struct {
	SubscriptionID string `json:"subscription_id"`
	Message        string `json:"message,omitempty"`
}

// handleSubscribe validates and delivers one submission for a form.
// Rate-limit rejections are reported distinctly (429) from validation
// failures (400) so the frontend can message them differently.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.lookupForm(w, r)
	if !ok {
		return
	}

	var body subscribeBody
	if !httputil.Decode(w, r, &body) {
		return
	}

	result, err := sub.Submit(r.Context(), subscription.Attempt{
		Email:   body.Email,
		Consent: body.Consent,
	})
	if err != nil {
		writeSubmitError(w, err)
		return
	}

	httputil.Created(w, subscribeResponse{
		SubscriptionID: result.SubscriptionID,
		Message:        result.Message,
	})
}

func writeSubmitError(w http.ResponseWriter, err error) {
	kind := subscription.ErrorKind(err)
	switch {
	case errors.Is(err, subscription.ErrEmptyEmail),
		errors.Is(err, subscription.ErrInvalidEmailFormat),
		errors.Is(err, subscription.ErrConsentRequired):
		httputil.BadRequest(w, kind, err.Error())
	case errors.Is(err, subscription.ErrSubmissionInFlight):
		httputil.Conflict(w, kind, err.Error())
	case errors.Is(err, subscription.ErrRateLimited):
		httputil.TooManyRequests(w, kind, err.Error())
	default:
		// Transport and unknown failures: generic message, cause is
		// already in the logs
		httputil.BadGateway(w, kind, err)
	}
}

// handleStatus returns the form's transient snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.lookupForm(w, r)
	if !ok {
		return
	}
	httputil.OK(w, sub.Status())
}

// handleReset clears the form's transient snapshot. The submission
// window is not refunded.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.lookupForm(w, r)
	if !ok {
		return
	}
	sub.Reset()
	httputil.NoContent(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{
		"status": "healthy",
		"forms":  len(s.forms),
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) lookupForm(w http.ResponseWriter, r *http.Request) (*subscription.Subscriber, bool) {
	formID := chi.URLParam(r, "formID")
	sub, ok := s.forms[formID]
	if !ok {
		httputil.NotFound(w, "unknown form")
		return nil, false
	}
	return sub, true
}

// clientKey derives the edge-limiter key from the request. The port is
// stripped so one client maps to one counter.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
