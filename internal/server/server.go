// Package server holds the process plumbing shared by every binary:
// configuration, logging, metrics and the record store backend on the
// way up, graceful shutdown on the way down.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/learnhub/internal/config"
	"github.com/geocoder89/learnhub/internal/db"
	apphttp "github.com/geocoder89/learnhub/internal/http"
	"github.com/geocoder89/learnhub/internal/observability"
	"github.com/geocoder89/learnhub/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	connectAttempts = 5
	shutdownTimeout = 10 * time.Second
)

// retryDelay is the wait between store connect attempts.
var retryDelay = Backoff

type Runtime struct {
	Config config.Config
	Log    *slog.Logger
	Prom   *observability.Prom

	// Backend is nil for binaries that keep no records (the gateway).
	Backend store.Backend
}

// Bootstrap loads configuration for the named binary and installs its
// logger as the slog default.
func Bootstrap(name string) *Runtime {
	cfg := config.Load(name)

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Runtime{Config: cfg, Log: log, Prom: observability.NewProm(reg)}
}

// OpenStore connects the configured backend, retrying while it comes up,
// and wraps it with store metrics.
func (rt *Runtime) OpenStore(ctx context.Context) error {
	var lastErr error

	for attempt := 0; attempt < connectAttempts; attempt++ {
		backend, err := db.OpenBackend(ctx, rt.Config)
		if err == nil {
			rt.Backend = backend
			if rt.Prom != nil {
				rt.Backend = store.WithMetrics(backend, rt.Prom)
			}
			rt.Log.Info("record store ready", "backend", rt.Config.StoreBackend)
			return nil
		}
		lastErr = err

		if attempt == connectAttempts-1 {
			break
		}

		wait := retryDelay(attempt)
		rt.Log.Warn("record store not ready, retrying",
			"backend", rt.Config.StoreBackend,
			"attempt", attempt+1,
			"wait", wait,
			"err", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("open %s store: %w", rt.Config.StoreBackend, lastErr)
}

// Base is the engine configuration shared by every router.
func (rt *Runtime) Base() apphttp.Base {
	base := apphttp.Base{Config: rt.Config, Prom: rt.Prom}
	if rt.Backend != nil {
		base.Ping = rt.Backend.Ping
	}
	return base
}

// Serve runs handler until SIGINT/SIGTERM, then drains in-flight requests
// and closes the store.
func (rt *Runtime) Serve(handler http.Handler) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rt.serve(ctx, handler, fmt.Sprintf(":%d", rt.Config.Port))
}

func (rt *Runtime) serve(ctx context.Context, handler http.Handler, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.Log.Info("server starting", "service", rt.Config.ServiceName, "addr", addr, "env", rt.Config.Env)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	rt.Log.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		rt.Log.Error("graceful shutdown failed", "err", err)
	}

	if rt.Backend != nil {
		if cerr := rt.Backend.Close(); cerr != nil {
			rt.Log.Error("closing record store failed", "err", cerr)
		}
	}

	rt.Log.Info("shutdown complete")
	return err
}
