package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/tonedown/tonedown/pkg/domain"
)

const (
	// MaxTextLength is the upper bound on moderated text, counted in runes
	// after trimming.
	MaxTextLength = 5000

	// DefaultSafer is the bias forwarded to the scoring service when the
	// caller does not supply one.
	DefaultSafer = 0.1
)

// Request is a validated-on-entry moderation request.
type Request struct {
	Text  string
	Safer float64
}

// Result is the normalized moderation outcome.
type Result struct {
	// ScorePercent is the toxicity fraction converted to an integer
	// percentage, rounding half away from zero (0.754 → 75, 0.755 → 76).
	ScorePercent int
	// ScoreFraction is the raw upstream fraction in [0,1].
	ScoreFraction float64
	// Raw is the upstream payload, passed through for inspection.
	Raw json.RawMessage
}

// Service validates moderation requests and normalizes upstream scores. It
// holds no mutable state and is safe for concurrent use.
type Service struct {
	scorer      Scorer
	credentials bool
	logger      *slog.Logger
}

// NewService creates the moderation service. credentialConfigured reports
// whether the scoring API key is present in process configuration; when
// false every request fails with domain.ErrMissingCredential without
// touching the network.
func NewService(scorer Scorer, credentialConfigured bool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{scorer: scorer, credentials: credentialConfigured, logger: logger}
}

// Moderate validates the request, invokes the scoring service once, and
// returns the normalized result. No retries are performed here.
func (s *Service) Moderate(ctx context.Context, req Request) (Result, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Result{}, fmt.Errorf("%w: text is required", domain.ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(text); n > MaxTextLength {
		return Result{}, fmt.Errorf("%w: text length %d exceeds %d", domain.ErrInvalidInput, n, MaxTextLength)
	}
	if req.Safer < 0 || req.Safer > 1 {
		return Result{}, fmt.Errorf("%w: safer must be within [0,1]", domain.ErrInvalidInput)
	}
	if !s.credentials {
		return Result{}, domain.ErrMissingCredential
	}

	score, err := s.scorer.ScoreToxicity(ctx, text, req.Safer)
	if err != nil {
		s.logger.Warn("toxicity scoring failed", "error", err)
		return Result{}, err
	}

	return Result{
		ScorePercent:  Percent(score.Fraction),
		ScoreFraction: score.Fraction,
		Raw:           score.Raw,
	}, nil
}

// Percent converts a toxicity fraction to an integer percentage, rounding
// half away from zero.
func Percent(fraction float64) int {
	return int(math.Round(fraction * 100))
}
