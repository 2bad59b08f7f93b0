package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the standard error envelope for all API errors.
// Kind carries a stable machine-readable code so the form frontend can
// pick per-kind messaging (rate limiting is rendered differently from
// validation failures).
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// JSON writes a JSON response with the given status code. Content-Type
// is set automatically; encode failures are logged, not surfaced.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[httputil] JSON encode error: %v", err)
	}
}

// OK writes a 200 response with the given data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 response with the given data.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// NoContent writes a 204 response with no body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Fail writes a kind-coded JSON error response.
func Fail(w http.ResponseWriter, status int, kind, message string) {
	JSON(w, status, ErrorResponse{Error: message, Kind: kind})
}

// BadRequest writes a 400 error with the given kind code.
func BadRequest(w http.ResponseWriter, kind, message string) {
	Fail(w, http.StatusBadRequest, kind, message)
}

// Conflict writes a 409 error, used for the in-flight submission guard.
func Conflict(w http.ResponseWriter, kind, message string) {
	Fail(w, http.StatusConflict, kind, message)
}

// TooManyRequests writes a 429 error for rate-limited submissions.
func TooManyRequests(w http.ResponseWriter, kind, message string) {
	Fail(w, http.StatusTooManyRequests, kind, message)
}

// NotFound writes a 404 error.
func NotFound(w http.ResponseWriter, message string) {
	Fail(w, http.StatusNotFound, "not_found", message)
}

// BadGateway writes a 502 error. Logs the real error but returns a
// generic message to the client (never leak the transport cause).
func BadGateway(w http.ResponseWriter, kind string, err error) {
	log.Printf("[httputil] upstream error: %v", err)
	Fail(w, http.StatusBadGateway, kind, "subscription could not be completed, please try again later")
}

// InternalError writes a 500 error. Logs the real error but returns a
// generic message to the client.
func InternalError(w http.ResponseWriter, err error) {
	log.Printf("[httputil] internal error: %v", err)
	Fail(w, http.StatusInternalServerError, "internal", "internal server error")
}

// Decode reads JSON from the request body into dst.
// Returns false and writes a 400 response if parsing fails.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		BadRequest(w, "invalid_body", "invalid JSON: "+err.Error())
		return false
	}
	return true
}
