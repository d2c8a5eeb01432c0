package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tonedown/tonedown/pkg/domain"
	"github.com/tonedown/tonedown/pkg/moderation"
	"github.com/tonedown/tonedown/pkg/rewrite"
)

type moderateRequest struct {
	Text string `json:"text"`
	// Safer is a pointer so an omitted field is distinguishable from an
	// explicit zero; omitted defaults to moderation.DefaultSafer.
	Safer *float64 `json:"safer"`
}

type moderateResponse struct {
	ScorePct int             `json:"scorePct"`
	Score01  float64         `json:"score01"`
	Raw      json.RawMessage `json:"raw"`
}

type rewriteRequest struct {
	Text string `json:"text"`
	Tone string `json:"tone"`
}

type rewriteResponse struct {
	Rewritten string `json:"rewritten"`
	Tone      string `json:"tone"`
}

func (s *Server) handleModerate(w http.ResponseWriter, r *http.Request) {
	var req moderateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	safer := moderation.DefaultSafer
	if req.Safer != nil {
		safer = *req.Safer
	}

	result, err := s.moderator.Moderate(r.Context(), moderation.Request{
		Text:  req.Text,
		Safer: safer,
	})
	if err != nil {
		// Validation failures never reached the upstream.
		if outcome := upstreamOutcome(err); outcome != "" {
			s.metrics.RecordUpstreamCall(outcome)
		}
		s.writeError(w, r, err)
		return
	}
	s.metrics.RecordUpstreamCall("ok")

	writeJSON(w, http.StatusOK, moderateResponse{
		ScorePct: result.ScorePercent,
		Score01:  result.ScoreFraction,
		Raw:      result.Raw,
	})
}

func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	var req rewriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	tone, err := rewrite.ParseTone(req.Tone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.rewriter.Rewrite(req.Text, tone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.RecordRewrite(string(result.Tone))

	writeJSON(w, http.StatusOK, rewriteResponse{
		Rewritten: result.Rewritten,
		Tone:      string(result.Tone),
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("malformed request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError converts a domain error into the {"error": ...} body and status
// code the API promises. Internal details never reach the caller; the full
// error is logged with the request ID by the observability middleware.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	s.logger.Warn("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"request_id", requestIDFrom(r.Context()),
		"error", err,
	)
	writeJSON(w, status, domain.ErrorResponse{Error: publicMessage(err)})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	default:
		// Missing credential, upstream format problems and everything
		// unexpected are server-side failures.
		return http.StatusInternalServerError
	}
}

// publicMessage keeps validation detail for caller errors and collapses
// everything else to its sentinel message.
func publicMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidInput) {
		return err.Error()
	}
	for _, sentinel := range []error{
		domain.ErrMissingCredential,
		domain.ErrUpstreamUnavailable,
		domain.ErrUpstreamFormat,
		domain.ErrModerationFailed,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return domain.ErrInternal.Error()
}

// upstreamOutcome classifies a moderation failure for metrics, or returns ""
// when the upstream was never called.
func upstreamOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrMissingCredential):
		return ""
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrUpstreamFormat):
		return "bad_format"
	default:
		return "failed"
	}
}
