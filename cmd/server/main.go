package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/johnkhitrov-cpu/mappico/internal/auth"
	"github.com/johnkhitrov-cpu/mappico/internal/config"
	"github.com/johnkhitrov-cpu/mappico/internal/logging"
	"github.com/johnkhitrov-cpu/mappico/internal/memstore"
	"github.com/johnkhitrov-cpu/mappico/internal/ratelimit"
	"github.com/johnkhitrov-cpu/mappico/internal/server"
	"github.com/johnkhitrov-cpu/mappico/internal/sse"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Optional .env for local development; the environment wins in production.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	clock := clockwork.NewRealClock()

	tokens, err := auth.NewTokenService(cfg.JWTSecret, clock)
	if err != nil {
		log.Fatalf("Failed to initialize token service: %v", err)
	}

	// Process-wide singletons: one registry and one limiter for the lifetime
	// of the process, injected into everything that needs them.
	registry := sse.NewRegistry()
	broadcaster := sse.NewBroadcaster(registry)
	limiter := ratelimit.NewStore(clock, ratelimit.DefaultSweepInterval)
	defer limiter.Stop()

	store := memstore.New()

	srv := server.New(cfg, server.Dependencies{
		Users:     store,
		Points:    store,
		Friends:   store,
		Registry:  registry,
		Publisher: broadcaster,
		Limiter:   limiter,
		Tokens:    tokens,
		Clock:     clock,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	slog.Info("Shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Shutdown complete")
}
