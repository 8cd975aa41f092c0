package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/stepperslife/tickets/config"
	"github.com/stepperslife/tickets/internal/adapters/authroles"
	"github.com/stepperslife/tickets/internal/adapters/devauth"
	"github.com/stepperslife/tickets/internal/adapters/oidc"
	redisadapter "github.com/stepperslife/tickets/internal/adapters/redis"
	"github.com/stepperslife/tickets/internal/adapters/widgetauth"
	"github.com/stepperslife/tickets/internal/domain/routing"
	"github.com/stepperslife/tickets/internal/observability/statsd"
	"github.com/stepperslife/tickets/internal/ports"
	"github.com/stepperslife/tickets/internal/service"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth          config.AuthConfig
	RedisClient   redis.UniversalClient
	SessionPrefix string
	Metrics       statsd.Sink
	Logger        *slog.Logger
}

// BuildAuthService wires the identity provider for the configured mode together with
// the Redis session store, the trusted role authorizer, and the post-login router.
func BuildAuthService(cfg AuthConfig) (*service.AuthService, error) {
	if cfg.RedisClient == nil {
		return nil, errors.New("auth requires a redis client for sessions")
	}

	prov, err := buildIdentityProvider(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("build %s identity provider: %w", cfg.Auth.Mode, err)
	}

	prefix := cfg.SessionPrefix
	if prefix == "" {
		prefix = "session:"
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("auth configured",
			"mode", cfg.Auth.Mode,
			"admin_emails", len(cfg.Auth.AdminEmails),
			"admin_group", cfg.Auth.AdminGroup,
			"organizer_group", cfg.Auth.OrganizerGroup,
		)
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: prov,
		Sessions: redisadapter.NewSessionStoreWithPrefix(cfg.RedisClient, prefix),
		Authorizer: authroles.NewStaticAuthorizer(authroles.StaticAuthorizerOptions{
			AdminEmails:    cfg.Auth.AdminEmails,
			AdminGroup:     cfg.Auth.AdminGroup,
			OrganizerGroup: cfg.Auth.OrganizerGroup,
		}),
		Router:       routing.NewRouter(cfg.Auth.AdminEmails...),
		ProviderName: string(cfg.Auth.Mode),
		Metrics:      cfg.Metrics,
	}), nil
}

//nolint:ireturn // the provider is chosen at runtime from AUTH_MODE.
func buildIdentityProvider(auth config.AuthConfig) (ports.IdentityProvider, error) {
	switch auth.Mode {
	case config.AuthModeOAuth:
		return oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     auth.OAuth.ClientID,
			ClientSecret: auth.OAuth.ClientSecret,
			RedirectURL:  auth.OAuth.RedirectURL,
			Scope:        auth.OAuth.Scope,
			DiscoveryURL: auth.OAuth.DiscoveryURL,
			LogoutURL:    auth.OAuth.LogoutURL,
		})

	case config.AuthModeWidget:
		return widgetauth.NewProvider(widgetauth.Config{
			SignInURL: auth.Widget.SignInURL,
			Secret:    auth.Widget.JWTSecret,
			Issuer:    auth.Widget.Issuer,
			Audience:  auth.Widget.Audience,
			Leeway:    auth.Widget.Leeway,
		})

	case config.AuthModeMock:
		users, err := devauth.ParseUsers(auth.DevAuth.Users)
		if err != nil {
			return nil, err
		}
		return devauth.NewProvider(devauth.Config{
			Users:           users,
			SessionDuration: auth.DevAuth.SessionDuration,
		})

	default:
		return nil, fmt.Errorf("unknown auth mode %q", auth.Mode)
	}
}

// CallbackURL is the redirect target handed to the provider for the configured mode.
func CallbackURL(auth config.AuthConfig) string {
	switch auth.Mode {
	case config.AuthModeOAuth:
		return auth.OAuth.RedirectURL
	case config.AuthModeWidget:
		return auth.Widget.RedirectURL
	default:
		return ""
	}
}
