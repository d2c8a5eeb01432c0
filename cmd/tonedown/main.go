// Package main is the entry point for the tonedown binary.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tonedown/tonedown/pkg/config"
	"github.com/tonedown/tonedown/pkg/logging"
	"github.com/tonedown/tonedown/pkg/moderation"
	"github.com/tonedown/tonedown/pkg/rewrite"
	serverpkg "github.com/tonedown/tonedown/pkg/server"
	"github.com/tonedown/tonedown/pkg/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "tonedown"

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	addr := flag.String("addr", "", "Address to listen on (overrides config)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error; overrides config)")
	flag.Parse()

	// Bootstrap logger so config errors are reported structurally; rebuilt
	// below once config is known.
	logger, levelVar := logging.NewLogger(logging.Config{Level: "info"})
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	logger, levelVar = logging.NewLogger(logging.Config(cfg.Logging))
	slog.SetDefault(logger)

	logger.Info("Starting tonedown", "config", *configPath, "addr", cfg.Server.Addr)

	// Tracing
	shutdownTracing, err := telemetry.SetupProvider(context.Background(), telemetry.Config{
		ServiceName: serviceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		logger.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Core components
	scorer, err := moderation.NewClient(moderation.ClientConfig{
		Endpoint: cfg.Moderation.Endpoint,
		APIKey:   cfg.Moderation.APIKey,
		Timeout:  cfg.Moderation.Timeout,
	})
	if err != nil {
		logger.Error("Failed to initialize scoring client", "error", err)
		os.Exit(1)
	}
	if cfg.Moderation.APIKey == "" {
		logger.Warn("No scoring credential configured; /api/moderate will fail until TOXICITY_API_KEY is set")
	}

	moderator := moderation.NewService(scorer, cfg.Moderation.APIKey != "", logger)

	engine, err := rewrite.NewEngine(nil)
	if err != nil {
		logger.Error("Failed to compile rewrite rules", "error", err)
		os.Exit(1)
	}

	metrics := telemetry.NewMetrics()

	srv := serverpkg.New(serverpkg.Config{
		Moderator: moderator,
		Rewriter:  engine,
		Metrics:   metrics,
		Logger:    logger,
	})

	// Hot-reload the log level when the config file changes.
	if *configPath != "" {
		watcher, err := config.NewWatcher(*configPath, logger, func(next *config.Config) {
			levelVar.Set(logging.ParseLevel(next.Logging.Level))
		})
		if err != nil {
			logger.Warn("Failed to start config watcher", "error", err)
		} else {
			defer func() {
				if err := watcher.Close(); err != nil {
					logger.Error("Failed to close config watcher", "error", err)
				}
			}()
		}
	}

	server := startServer(cfg, srv.Routes(), logger)
	waitForShutdown(server, shutdownTracing, logger)
}

func startServer(cfg *config.Config, handler http.Handler, logger *slog.Logger) *http.Server {
	server := &http.Server{
		Handler:      otelhttp.NewHandler(handler, serviceName),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	listener, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		logger.Error("Failed to bind listener", "addr", cfg.Server.Addr, "error", err)
		os.Exit(1)
	}

	// Log the actual resolved address (useful when addr is :0)
	logger.Info("Server listening", "addr", listener.Addr().String())

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	return server
}

func waitForShutdown(server *http.Server, shutdownTracing func(context.Context) error, logger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh

	logger.Info("Shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Error("Tracing shutdown error", "error", err)
	}
}
