package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/stepperslife/tickets/config"
	"github.com/stepperslife/tickets/internal/adapters/convex"
	mongostore "github.com/stepperslife/tickets/internal/adapters/mongo"
	"github.com/stepperslife/tickets/internal/data"
	"github.com/stepperslife/tickets/internal/domain/availability"
	"github.com/stepperslife/tickets/internal/ports"
	"go.mongodb.org/mongo-driver/mongo"
)

// Infrastructure holds the connections opened at startup.
// DB and Mongo are only opened when the matching user store backend is selected.
type Infrastructure struct {
	Redis redis.UniversalClient
	DB    *sql.DB
	Mongo *mongo.Client
}

// OpenInfrastructure connects Redis and whichever database the user store needs.
// Connections opened before a failure are closed again.
func OpenInfrastructure(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{}

	redisClient, err := ConnectRedis(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	infra.Redis = redisClient

	switch cfg.UserSync.Store {
	case config.UserStorePostgres:
		db, dbErr := ConnectDB(ctx, cfg.Postgres, logger)
		if dbErr != nil {
			return nil, errors.Join(fmt.Errorf("connect db: %w", dbErr), infra.Close(ctx, logger))
		}
		infra.DB = db
		if cfg.Postgres.RunMigrationsOnStart {
			if migErr := RunMigrations(ctx, db, logger); migErr != nil {
				return nil, errors.Join(migErr, infra.Close(ctx, logger))
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}

	case config.UserStoreMongo:
		client, mErr := ConnectMongo(ctx, cfg.Mongo, logger)
		if mErr != nil {
			return nil, errors.Join(mErr, infra.Close(ctx, logger))
		}
		infra.Mongo = client
	}

	return infra, nil
}

// Close releases every open connection and joins their errors.
func (i *Infrastructure) Close(ctx context.Context, logger *slog.Logger) error {
	var errs []error
	if i.Mongo != nil {
		if err := i.Mongo.Disconnect(context.WithoutCancel(ctx)); err != nil {
			errs = append(errs, fmt.Errorf("disconnect mongo: %w", err))
		}
	}
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	err := errors.Join(errs...)
	if err != nil && logger != nil {
		logger.ErrorContext(ctx, "close infrastructure failed", "error", err)
	}
	return err
}

// BuildDocumentStore returns the hosted document store client, or nil when the
// deployment URL is unset or still the placeholder.
func BuildDocumentStore(cfg *config.AppConfig, logger *slog.Logger) (*convex.Client, error) {
	status := availability.CheckDatabase(cfg.ServiceSnapshot())
	if !status.Configured {
		logger.Warn("document store unavailable; database-backed routes will answer 503",
			"reason", status.Message,
		)
		return nil, nil
	}
	client, err := convex.NewClient(convex.Config{
		URL:       cfg.Convex.URL,
		DeployKey: cfg.Convex.DeployKey,
		Timeout:   cfg.Convex.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("build convex client: %w", err)
	}
	return client, nil
}

// UserStoreDeps are the candidates BuildUserStore picks from.
type UserStoreDeps struct {
	Config *config.AppConfig
	Infra  *Infrastructure
	Convex *convex.Client
	Logger *slog.Logger
}

// BuildUserStore selects the external user store for USER_STORE.
// A nil store disables syncing; the sync service treats it as a no-op.
//
//nolint:ireturn // the backend is chosen at runtime from USER_STORE.
func BuildUserStore(ctx context.Context, deps UserStoreDeps) (ports.UserStore, error) {
	cfg := deps.Config
	switch cfg.UserSync.Store {
	case config.UserStoreConvex:
		if deps.Convex == nil {
			deps.Logger.WarnContext(ctx, "user sync disabled: convex store selected but not configured")
			return nil, nil
		}
		return deps.Convex, nil

	case config.UserStoreMongo:
		if deps.Infra == nil || deps.Infra.Mongo == nil {
			return nil, errors.New("mongo user store selected without a mongo connection")
		}
		store := mongostore.NewUserStore(deps.Infra.Mongo.Database(cfg.Mongo.Database))
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		return store, nil

	case config.UserStorePostgres:
		if deps.Infra == nil || deps.Infra.DB == nil {
			return nil, errors.New("postgres user store selected without a database connection")
		}
		return data.NewUserRepo(deps.Infra.DB), nil

	case config.UserStoreNone:
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown user store %q", cfg.UserSync.Store)
	}
}
