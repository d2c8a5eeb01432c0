// Package server wires the moderation and rewrite services onto the HTTP/JSON
// surface and maps domain errors to status codes at the handler boundary.
package server

import (
	"log/slog"
	"net/http"

	"github.com/tonedown/tonedown/pkg/moderation"
	"github.com/tonedown/tonedown/pkg/rewrite"
	"github.com/tonedown/tonedown/pkg/telemetry"
)

// maxBodyBytes caps request bodies well above the 5000-char text limit while
// keeping memory bounded.
const maxBodyBytes = 64 << 10

// Server holds the request handlers and their dependencies. It is stateless
// across requests; every field is read-only after construction.
type Server struct {
	moderator *moderation.Service
	rewriter  *rewrite.Engine
	metrics   *telemetry.Metrics
	logger    *slog.Logger
}

// Config holds configuration for creating a Server.
type Config struct {
	Moderator *moderation.Service
	Rewriter  *rewrite.Engine
	Metrics   *telemetry.Metrics
	Logger    *slog.Logger
}

// New constructs a Server.
func New(cfg Config) *Server {
	if cfg.Moderator == nil {
		panic("server: moderation service is required")
	}
	if cfg.Rewriter == nil {
		panic("server: rewrite engine is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NewMetrics()
	}

	return &Server{
		moderator: cfg.Moderator,
		rewriter:  cfg.Rewriter,
		metrics:   metrics,
		logger:    logger,
	}
}

// Routes returns the fully wired handler for the service.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("POST /api/moderate", s.handleModerate)
	mux.HandleFunc("POST /api/rewrite", s.handleRewrite)

	return s.withObservability(mux)
}
