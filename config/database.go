package config

import (
	"fmt"
	"strings"
	"time"
)

// DBConfig contains PostgreSQL database configuration (USER_STORE=postgres).
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"tickets"`
	Password string `env:"PASSWORD"                envDefault:"tickets"`
	Name     string `env:"NAME"                    envDefault:"tickets"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration for the session store.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
	SessionPrefix      string   `env:"SESSION_PREFIX"       envDefault:"tickets:session:"`
}

// MongoConfig contains MongoDB configuration (USER_STORE=mongo).
type MongoConfig struct {
	URI            string        `env:"URI"`
	Database       string        `env:"DATABASE"        envDefault:"tickets"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
}

// Sanitize trims connection settings.
func (m *MongoConfig) Sanitize() {
	m.URI = strings.TrimSpace(m.URI)
	if m.Database = strings.TrimSpace(m.Database); m.Database == "" {
		m.Database = "tickets"
	}
	if m.ConnectTimeout <= 0 {
		m.ConnectTimeout = 10 * time.Second
	}
}

// ConvexConfig contains the hosted document database settings.
type ConvexConfig struct {
	// URL is the deployment URL. Empty or the placeholder means the database is not usable.
	URL       string        `env:"URL"`
	DeployKey string        `env:"DEPLOY_KEY"`
	Timeout   time.Duration `env:"TIMEOUT"    envDefault:"10s"`
}

// Sanitize trims the deployment URL and key.
func (c *ConvexConfig) Sanitize() {
	c.URL = strings.TrimSpace(c.URL)
	c.DeployKey = strings.TrimSpace(c.DeployKey)
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}

// UserStoreBackend selects where user records are synced.
type UserStoreBackend string

const (
	UserStoreConvex   UserStoreBackend = "convex"
	UserStoreMongo    UserStoreBackend = "mongo"
	UserStorePostgres UserStoreBackend = "postgres"
	UserStoreNone     UserStoreBackend = "none"
)

// UnmarshalText implements encoding.TextUnmarshaler for UserStoreBackend.
func (b *UserStoreBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch UserStoreBackend(v) {
	case UserStoreConvex, UserStoreMongo, UserStorePostgres, UserStoreNone:
		*b = UserStoreBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid UserStoreBackend: %q (valid options: convex, mongo, postgres, none)", v)
	}
}

// UserSyncConfig controls the best-effort user sync.
type UserSyncConfig struct {
	Store UserStoreBackend `env:"USER_STORE" envDefault:"convex"`
	// Timeout bounds each background upsert. Zero leaves it to the store client.
	Timeout time.Duration `env:"USER_SYNC_TIMEOUT" envDefault:"0s"`
}

// Sanitize clamps negative timeouts to zero.
func (u *UserSyncConfig) Sanitize() {
	if u.Timeout < 0 {
		u.Timeout = 0
	}
}
