package domain

import "errors"

// Common domain errors
var (
	// ErrInvalidInput marks a caller error: empty or oversized text, or an
	// unrecognized tone value.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingCredential marks a server misconfiguration: the scoring API
	// credential is absent from process configuration. Not retryable by the
	// caller.
	ErrMissingCredential = errors.New("scoring credential not configured")
	// ErrUpstreamUnavailable marks a transient connectivity failure reaching
	// the scoring service. Callers may retry later.
	ErrUpstreamUnavailable = errors.New("scoring service unavailable")
	// ErrUpstreamFormat marks an upstream response whose payload could not be
	// interpreted as a toxicity score.
	ErrUpstreamFormat = errors.New("unexpected scoring service response format")
	// ErrModerationFailed marks any other unexpected moderation failure.
	ErrModerationFailed = errors.New("moderation failed")
	// ErrInternal marks an unexpected failure inside the rewrite logic.
	ErrInternal = errors.New("internal error")
)

// ErrorResponse defines the standard JSON error model returned by the API.
// It intentionally avoids exposing internal details or secrets; the message
// is stable and safe for callers.
type ErrorResponse struct {
	Error string `json:"error"`
}
