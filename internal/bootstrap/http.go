package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/stepperslife/tickets/config"
	httpx "github.com/stepperslife/tickets/internal/http"
	"golang.org/x/sync/errgroup"
)

// RunConfig contains everything Run needs.
type RunConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// BuildHTTPHandler wires the services into the router.
func BuildHTTPHandler(cfg *config.AppConfig, services ServiceContainer, logger *slog.Logger) http.Handler {
	routerServices := httpx.RouterServices{
		Auth:         services.Auth,
		DocStore:     services.DocStore,
		Availability: services.Availability,
		CookieDomain: cfg.HTTP.CookieDomain,
		CallbackURL:  CallbackURL(cfg.Auth),
		Logger:       logger,
	}
	if services.UserSync != nil {
		routerServices.Sync = services.UserSync
	}
	return httpx.NewRouter(routerServices)
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// Run serves HTTP until ctx is cancelled, SIGINT/SIGTERM arrives, or the listener fails.
// On the way out it drains in-flight requests and pending user syncs.
func Run(ctx context.Context, cfg RunConfig) error {
	if cfg.Config == nil {
		return errors.New("run config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := newHTTPServer(cfg.Config.HTTP.Addr, BuildHTTPHandler(cfg.Config, cfg.Services, logger))
	shutdownTimeout := cfg.Config.HTTP.ShutdownTimeout

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	})

	err := g.Wait()

	if cfg.Services.UserSync != nil {
		done := make(chan struct{})
		go func() {
			cfg.Services.UserSync.Wait()
			close(done)
		}()
		waitForService(done, "user sync", shutdownTimeout, logger)
	}
	if cfg.Services.Metrics != nil {
		if cerr := cfg.Services.Metrics.Close(); cerr != nil {
			logger.Warn("close statsd client failed", "error", cerr)
		}
	}

	return err
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, timeout time.Duration, logger *slog.Logger) {
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(timeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
