// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

// Command server runs the event synchronization engine: the HTTP API, the
// BadgerDB-backed store, the read cache, and one guarded adapter per enabled
// partner platform.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/eventgraph/internal/api"
	"github.com/tomtom215/eventgraph/internal/cache"
	"github.com/tomtom215/eventgraph/internal/config"
	"github.com/tomtom215/eventgraph/internal/logging"
	"github.com/tomtom215/eventgraph/internal/models"
	"github.com/tomtom215/eventgraph/internal/platform"
	"github.com/tomtom215/eventgraph/internal/resilience"
	"github.com/tomtom215/eventgraph/internal/store"
	enginesync "github.com/tomtom215/eventgraph/internal/sync"
)

// shutdownTimeout bounds graceful drain on SIGINT/SIGTERM.
const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Timestamp: true,
	})

	gateway, err := store.Open(cfg.Store.Path, cfg.Store.InMemory)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := gateway.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close store")
		}
	}()

	eventCache := cache.New(cfg.Cache.TTL)
	defer eventCache.Close()

	adapters := buildAdapters(cfg)
	guards := resilience.NewRegistry(models.ExternalPlatforms, guardSettings(&cfg.Resilience))

	orchestrator := enginesync.New(gateway, eventCache, guards, adapters)
	handler := api.NewHandler(orchestrator)
	router := api.NewRouter(handler, &cfg.Server)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", server.Addr).
			Int("platforms", len(adapters)).
			Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logging.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// buildAdapters creates an adapter for each enabled partner platform.
func buildAdapters(cfg *config.Config) []platform.Adapter {
	var adapters []platform.Adapter
	if cfg.Platforms.Luma.Enabled {
		adapters = append(adapters, platform.NewLumaAdapter(&cfg.Platforms.Luma))
	}
	if cfg.Platforms.Eventbrite.Enabled {
		adapters = append(adapters, platform.NewEventbriteAdapter(&cfg.Platforms.Eventbrite))
	}
	if cfg.Platforms.Partiful.Enabled {
		adapters = append(adapters, platform.NewPartifulAdapter(&cfg.Platforms.Partiful))
	}
	return adapters
}

// guardSettings maps resilience configuration onto guard settings.
func guardSettings(cfg *config.ResilienceConfig) resilience.GuardSettings {
	return resilience.GuardSettings{
		Breaker: resilience.BreakerSettings{
			FailureRate: cfg.BreakerFailureRate,
			MinRequests: cfg.BreakerMinRequests,
			Interval:    cfg.BreakerInterval,
			OpenTimeout: cfg.BreakerOpenTimeout,
		},
		RetryAttempts:     cfg.RetryAttempts,
		RetryBaseDelay:    cfg.RetryBaseDelay,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	}
}
