// Package main starts an HTTP server that provides endpoints for health checks,
// topology listing and graph synthesis. It uses the internal handlers package to
// process incoming requests and return JSON responses.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/topograph/core/cmd/api/middleware"
	"github.com/topograph/core/internal/config"
	"github.com/topograph/core/internal/handlers"
	"github.com/topograph/core/internal/logging"
	"github.com/topograph/core/internal/synth"
	"github.com/topograph/core/internal/topology"
)

func newRouter(registry *topology.Registry, cfg *config.Config, log zerolog.Logger) http.Handler {
	opts := []synth.Option{
		synth.WithLogger(logging.Logr(&log, "synth")),
		synth.WithMaxNodes(cfg.MaxNodes),
	}
	if cfg.Seed != nil {
		opts = append(opts, synth.WithSeed(*cfg.Seed))
	}
	synthesizer := synth.New(registry, opts...)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handlers.HealthHandler(registry))
	mux.HandleFunc("/topologies", handlers.TopologiesHandler(registry))
	mux.HandleFunc("/synthesize", handlers.SynthesizeHandler(synthesizer, cfg.MaxBodyBytes))

	return middleware.RequestLogger(log)(middleware.Cors(cfg.CORSAllowedOrigin)(mux))
}

func main() {
	configPath := flag.String("config", os.Getenv("TOPOGRAPH_CONFIG"), "path to an HCL config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback, _ := logging.New("info", logging.FormatConsole, os.Stderr)
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		fallback, _ := logging.New("info", logging.FormatConsole, os.Stderr)
		fallback.Fatal().Err(err).Msg("invalid logging configuration")
	}

	registry, err := topology.NewDefault()
	if err != nil {
		log.Fatal().Err(err).Msg("topology registration failed")
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newRouter(registry, cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		log.Info().Msg("shutting down")
		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().
		Str("addr", cfg.ListenAddr).
		Strs("topologies", registry.List()).
		Msg("🚀 Server starting")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
}
