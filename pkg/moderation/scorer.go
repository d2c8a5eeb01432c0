// Package moderation proxies text to the remote toxicity-scoring service and
// normalizes its response.
package moderation

import (
	"context"
	"encoding/json"
)

// Score is the upstream's assessment of a piece of text.
type Score struct {
	// Fraction is the toxicity score in [0,1]; higher is more toxic.
	Fraction float64
	// Raw is the decoded upstream payload, passed through untouched so
	// callers can inspect the per-category breakdown.
	Raw json.RawMessage
}

// Scorer abstracts the remote scoring service so the moderation service can
// be exercised against a fake in tests.
type Scorer interface {
	// ScoreToxicity submits text with the given safer bias and returns the
	// upstream's score. The bias is forwarded opaquely.
	ScoreToxicity(ctx context.Context, text string, safer float64) (Score, error)
}
