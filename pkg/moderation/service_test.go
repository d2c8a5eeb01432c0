package moderation

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonedown/tonedown/pkg/domain"
)

// fakeScorer lets tests script the upstream without a network.
type fakeScorer struct {
	score Score
	err   error

	calls     int
	lastText  string
	lastSafer float64
}

func (f *fakeScorer) ScoreToxicity(_ context.Context, text string, safer float64) (Score, error) {
	f.calls++
	f.lastText = text
	f.lastSafer = safer
	return f.score, f.err
}

func TestModerate_ValidatesText(t *testing.T) {
	scorer := &fakeScorer{}
	svc := NewService(scorer, true, nil)

	cases := []string{"", "   ", "\t\n", strings.Repeat("x", MaxTextLength+1)}
	for _, text := range cases {
		_, err := svc.Moderate(context.Background(), Request{Text: text, Safer: DefaultSafer})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "text of %d chars", len(text))
	}
	assert.Zero(t, scorer.calls, "invalid input must not reach the scorer")
}

func TestModerate_TextLengthBoundary(t *testing.T) {
	scorer := &fakeScorer{score: Score{Fraction: 0.2}}
	svc := NewService(scorer, true, nil)

	// Exactly at the limit is accepted; length counts runes after trimming.
	text := "  " + strings.Repeat("a", MaxTextLength) + "  "
	_, err := svc.Moderate(context.Background(), Request{Text: text, Safer: DefaultSafer})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", MaxTextLength), scorer.lastText)
}

func TestModerate_ValidatesSafer(t *testing.T) {
	svc := NewService(&fakeScorer{}, true, nil)

	for _, safer := range []float64{-0.1, 1.1, 100} {
		_, err := svc.Moderate(context.Background(), Request{Text: "hello", Safer: safer})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "safer %v", safer)
	}
}

func TestModerate_MissingCredential(t *testing.T) {
	scorer := &fakeScorer{}
	svc := NewService(scorer, false, nil)

	_, err := svc.Moderate(context.Background(), Request{Text: "hello", Safer: DefaultSafer})
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Zero(t, scorer.calls, "missing credential must not reach the scorer")
}

func TestModerate_NormalizesScore(t *testing.T) {
	raw := json.RawMessage(`{"max_value":0.87,"categories":{"insult":0.87}}`)
	scorer := &fakeScorer{score: Score{Fraction: 0.87, Raw: raw}}
	svc := NewService(scorer, true, nil)

	result, err := svc.Moderate(context.Background(), Request{Text: " be nice ", Safer: 0.3})
	require.NoError(t, err)

	assert.Equal(t, 87, result.ScorePercent)
	assert.InDelta(t, 0.87, result.ScoreFraction, 1e-9)
	assert.Equal(t, raw, result.Raw)
	assert.Equal(t, "be nice", scorer.lastText, "text is trimmed before scoring")
	assert.InDelta(t, 0.3, scorer.lastSafer, 1e-9)
}

func TestModerate_PropagatesScorerErrors(t *testing.T) {
	for _, sentinel := range []error{
		domain.ErrUpstreamUnavailable,
		domain.ErrUpstreamFormat,
		domain.ErrModerationFailed,
	} {
		scorer := &fakeScorer{err: sentinel}
		svc := NewService(scorer, true, nil)

		_, err := svc.Moderate(context.Background(), Request{Text: "hello", Safer: DefaultSafer})
		assert.ErrorIs(t, err, sentinel)
	}
}

// Percent rounds half away from zero.
func TestPercent_Rounding(t *testing.T) {
	cases := map[float64]int{
		0:     0,
		0.004: 0,
		0.125: 13,
		0.376: 38,
		0.5:   50,
		0.754: 75,
		0.755: 76,
		0.875: 88,
		1:     100,
	}
	for fraction, want := range cases {
		assert.Equal(t, want, Percent(fraction), "fraction %v", fraction)
	}
}
