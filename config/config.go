package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/stepperslife/tickets/internal/domain/availability"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication and role routing configuration
//   - database.go: Session, user store, and document database configuration
//   - payments.go: Payment processor key presence
//   - http.go: HTTP server configuration
//   - observability.go: Metrics configuration
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// Session and user store configuration
	Redis    RedisConfig  `envPrefix:"REDIS_"`
	Postgres DBConfig     `envPrefix:"DB_"`
	Mongo    MongoConfig  `envPrefix:"MONGO_"`
	Convex   ConvexConfig `envPrefix:"CONVEX_"`
	UserSync UserSyncConfig

	// Payment processor configuration
	Payments PaymentsConfig

	// HTTP server configuration
	HTTP HTTPConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Auth.Sanitize()
	c.Convex.Sanitize()
	c.Mongo.Sanitize()
	c.UserSync.Sanitize()
	c.Payments.Sanitize()
	c.HTTP.Sanitize()
	c.Observability.Sanitize()

	c.detectDevMode()
}

// Validate reports settings the selected modes cannot run without.
func (c *AppConfig) Validate() error {
	var errs []error
	if err := c.Auth.Validate(c.IsDev); err != nil {
		errs = append(errs, err)
	}
	switch c.UserSync.Store {
	case UserStoreMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when USER_STORE=mongo"))
		}
	case UserStoreConvex, UserStorePostgres, UserStoreNone:
	default:
		errs = append(errs, fmt.Errorf("unknown user store %q", c.UserSync.Store))
	}
	return errors.Join(errs...)
}

// ServiceSnapshot returns the immutable view of external service settings
// consumed by the availability probes.
func (c *AppConfig) ServiceSnapshot() availability.ServiceConfig {
	return availability.ServiceConfig{
		DatabaseURL:            c.Convex.URL,
		PaymentsSecretKey:      c.Payments.SecretKey,
		PaymentsPublishableKey: c.Payments.PublishableKey,
	}
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
