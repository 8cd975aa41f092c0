package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stepperslife/tickets/config"
	"github.com/stepperslife/tickets/internal/domain/availability"
	"github.com/stepperslife/tickets/internal/observability/statsd"
	"github.com/stepperslife/tickets/internal/ports"
	"github.com/stepperslife/tickets/internal/service"
)

// ServiceContainer holds the application services shared by the HTTP layer.
type ServiceContainer struct {
	Auth     *service.AuthService
	UserSync *service.UserSyncService
	// DocStore is a nil interface when the document store is not configured.
	DocStore     ports.DocumentStore
	Availability availability.Report
	Metrics      *statsd.Client
}

// ServiceDeps contains the inputs for NewServices.
type ServiceDeps struct {
	Config *config.AppConfig
	Infra  *Infrastructure
	Logger *slog.Logger
}

// NewServices builds every service from the validated config and open connections.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil || deps.Infra == nil {
		return ServiceContainer{}, errors.New("service deps require config and infrastructure")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	report := availability.Check(cfg.ServiceSnapshot())
	logger.InfoContext(ctx, "service availability",
		"database_configured", report.Database.Configured,
		"database", report.Database.Message,
		"payments_configured", report.Payments,
	)

	metricsClient := buildMetrics(cfg.Observability, logger)
	var sink statsd.Sink
	if metricsClient != nil {
		sink = metricsClient
	}

	convexClient, err := BuildDocumentStore(cfg, logger)
	if err != nil {
		return ServiceContainer{}, err
	}
	var docs ports.DocumentStore
	if convexClient != nil {
		docs = convexClient
	}

	store, err := BuildUserStore(ctx, UserStoreDeps{
		Config: cfg,
		Infra:  deps.Infra,
		Convex: convexClient,
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build user store: %w", err)
	}

	authSvc, err := BuildAuthService(AuthConfig{
		Auth:          cfg.Auth,
		RedisClient:   deps.Infra.Redis,
		SessionPrefix: cfg.Redis.SessionPrefix,
		Metrics:       sink,
		Logger:        logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	return ServiceContainer{
		Auth: authSvc,
		UserSync: service.NewUserSyncService(service.UserSyncServiceOptions{
			Store:  store,
			Logger: logger,
			Config: service.UserSyncConfig{
				Timeout: cfg.UserSync.Timeout,
				Backend: string(cfg.UserSync.Store),
				Metrics: sink,
			},
		}),
		DocStore:     docs,
		Availability: report,
		Metrics:      metricsClient,
	}, nil
}

// buildMetrics returns a StatsD client, or nil when metrics are disabled or the dial fails.
func buildMetrics(cfg config.ObservabilityConfig, logger *slog.Logger) *statsd.Client {
	if !cfg.Metrics.IsEnabled() {
		return nil
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  logger,
		GlobalTags: map[string]string{
			"service": "tickets",
		},
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}
