package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the identity provider selected at startup.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeWidget uses the hosted sign-in widget and its signed session tokens.
	AuthModeWidget AuthMode = "widget"
	// AuthModeMock uses configured test users (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "oauth", "widget", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, widget, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	LogoutURL    string `env:"LOGOUT_URL"`
}

// WidgetConfig contains hosted sign-in widget configuration.
type WidgetConfig struct {
	SignInURL   string        `env:"SIGN_IN_URL"`
	RedirectURL string        `env:"REDIRECT_URL" envDefault:"http://localhost:8080/auth/callback"`
	JWTSecret   string        `env:"JWT_SECRET"`
	Issuer      string        `env:"ISSUER"`
	Audience    string        `env:"AUDIENCE"`
	Leeway      time.Duration `env:"LEEWAY"       envDefault:"30s"`
}

// DevAuthConfig lists the accounts offered when AUTH_MODE=mock.
// Users is "id|email|name|group1,group2" entries separated by ';'.
type DevAuthConfig struct {
	Users           string        `env:"USERS"            envDefault:"dev-admin|admin@example.com|Dev Admin|admins;dev-organizer|organizer@example.com|Dev Organizer|organizers;dev-customer|customer@example.com|Dev Customer"`
	SessionDuration time.Duration `env:"SESSION_DURATION" envDefault:"8h"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// Widget configuration (used when Mode=widget).
	Widget WidgetConfig `envPrefix:"WIDGET_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// AdminEmails is the allow-list that routes to the admin area and grants the admin role.
	// Matching is exact.
	AdminEmails []string `env:"AUTH_ADMIN_EMAILS" envSeparator:","`

	// AdminGroup is the provider group granting the admin role.
	AdminGroup string `env:"AUTH_ADMIN_GROUP" envDefault:"admins"`

	// OrganizerGroup is the provider group granting the organizer role.
	OrganizerGroup string `env:"AUTH_ORGANIZER_GROUP" envDefault:"organizers"`
}

// Sanitize trims allow-list entries and drops empty ones.
func (a *AuthConfig) Sanitize() {
	emails := a.AdminEmails[:0]
	for _, e := range a.AdminEmails {
		if e = strings.TrimSpace(e); e != "" {
			emails = append(emails, e)
		}
	}
	a.AdminEmails = emails
	a.AdminGroup = strings.TrimSpace(a.AdminGroup)
	a.OrganizerGroup = strings.TrimSpace(a.OrganizerGroup)
	a.Widget.SignInURL = strings.TrimSpace(a.Widget.SignInURL)
}

// Validate checks the settings required by the selected mode.
// Mock mode is refused outside development.
func (a *AuthConfig) Validate(isDev bool) error {
	switch a.Mode {
	case AuthModeOAuth:
		if a.OAuth.DiscoveryURL == "" || a.OAuth.ClientID == "" || a.OAuth.ClientSecret == "" {
			return errors.New("OAUTH_DISCOVERY_URL, OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET are required when AUTH_MODE=oauth")
		}
	case AuthModeWidget:
		if a.Widget.SignInURL == "" || a.Widget.JWTSecret == "" {
			return errors.New("WIDGET_SIGN_IN_URL and WIDGET_JWT_SECRET are required when AUTH_MODE=widget")
		}
	case AuthModeMock:
		if !isDev {
			return errors.New("AUTH_MODE=mock is only allowed when DEV=true")
		}
	default:
		return fmt.Errorf("unknown auth mode %q", a.Mode)
	}
	return nil
}
