package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tonedown/tonedown/pkg/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout bounds a single upstream attempt when the configuration
// does not specify one. Timeouts surface as domain.ErrUpstreamUnavailable.
const DefaultTimeout = 10 * time.Second

// ClientConfig holds the settings for the scoring service client.
type ClientConfig struct {
	// Endpoint is the scoring API URL.
	Endpoint string
	// APIKey is the bearer credential. It may be empty at construction; the
	// moderation service rejects requests before the client is invoked when
	// no credential is configured.
	APIKey string
	// Timeout bounds a single request. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Ensure Client implements the Scorer interface
var _ Scorer = (*Client)(nil)

// Client calls the remote toxicity-scoring API over HTTP. A single call is a
// single attempt; retry policy belongs to the caller.
type Client struct {
	httpClient *http.Client
	config     ClientConfig
}

// scoreRequest is the wire request accepted by the scoring API.
type scoreRequest struct {
	Text  string  `json:"text"`
	Safer float64 `json:"safer"`
}

// scoreEnvelope is the outer response: Response carries a JSON-encoded
// payload whose max_value field is the toxicity score.
type scoreEnvelope struct {
	Response string `json:"response"`
}

type scorePayload struct {
	MaxValue *float64 `json:"max_value"`
}

// NewClient creates a scoring service client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Endpoint == "" {
		return nil, errors.New("moderation: endpoint URL is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   config.Timeout,
		},
		config: config,
	}, nil
}

// ScoreToxicity submits text to the scoring API and extracts the score.
func (c *Client) ScoreToxicity(ctx context.Context, text string, safer float64) (Score, error) {
	req, err := c.makeScoreRequest(ctx, text, safer)
	if err != nil {
		return Score{}, fmt.Errorf("%w: %v", domain.ErrModerationFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Connection refused, DNS failure, timeout: all transient from the
		// caller's point of view.
		return Score{}, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused; the body is not reported to
		// avoid leaking upstream internals.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Score{}, fmt.Errorf("%w: upstream returned status %d", domain.ErrModerationFailed, resp.StatusCode)
	}

	return parseScoreResponse(resp.Body)
}

func (c *Client) makeScoreRequest(ctx context.Context, text string, safer float64) (*http.Request, error) {
	body, err := json.Marshal(scoreRequest{Text: text, Safer: safer})
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	return req, nil
}

// parseScoreResponse decodes the two-level response envelope. The outer
// document holds a JSON-encoded string payload; its max_value field is the
// maximum toxicity fraction across the categories the service tracks.
func parseScoreResponse(body io.Reader) (Score, error) {
	var envelope scoreEnvelope
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		return Score{}, fmt.Errorf("%w: %v", domain.ErrUpstreamFormat, err)
	}
	if envelope.Response == "" {
		return Score{}, fmt.Errorf("%w: missing response payload", domain.ErrUpstreamFormat)
	}

	raw := json.RawMessage(envelope.Response)
	var payload scorePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Score{}, fmt.Errorf("%w: %v", domain.ErrUpstreamFormat, err)
	}
	if payload.MaxValue == nil {
		return Score{}, fmt.Errorf("%w: max_value missing from payload", domain.ErrUpstreamFormat)
	}
	fraction := *payload.MaxValue
	if fraction < 0 || fraction > 1 {
		return Score{}, fmt.Errorf("%w: max_value %v outside [0,1]", domain.ErrUpstreamFormat, fraction)
	}

	return Score{Fraction: fraction, Raw: raw}, nil
}
