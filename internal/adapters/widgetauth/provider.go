package widgetauth

// Package widgetauth implements the hosted sign-in widget identity provider.
// The widget authenticates the user on its own domain and redirects back to our
// callback with a signed session token in place of an authorization code.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/stepperslife/tickets/internal/domain/auth"
	"github.com/stepperslife/tickets/internal/ports"
)

var _ ports.IdentityProvider = (*Provider)(nil)

// Config configures the widget provider.
type Config struct {
	// SignInURL is the hosted widget page users are sent to.
	SignInURL string
	// Secret verifies HS256 session tokens.
	Secret string
	// Issuer and Audience are checked when non-empty.
	Issuer   string
	Audience string
	// Leeway tolerates clock skew on exp/nbf/iat.
	Leeway time.Duration
}

// Provider verifies widget session tokens and maps their claims to an Identity.
type Provider struct {
	signInURL *url.URL
	secret    []byte
	parser    *jwt.Parser
}

// sessionClaims is the widget session token payload.
type sessionClaims struct {
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	FullName       string         `json:"full_name"`
	Email          string         `json:"email"`
	EmailAddresses []string       `json:"email_addresses"`
	Groups         []string       `json:"groups"`
	PublicMetadata map[string]any `json:"public_metadata"`
	UnsafeMetadata map[string]any `json:"unsafe_metadata"`
	jwt.RegisteredClaims
}

// NewProvider validates cfg and builds a Provider.
func NewProvider(cfg Config) (*Provider, error) {
	raw := strings.TrimSpace(cfg.SignInURL)
	if raw == "" {
		return nil, errors.New("widget sign-in URL is required")
	}
	signIn, err := url.Parse(raw)
	if err != nil || signIn.Scheme == "" || signIn.Host == "" {
		return nil, fmt.Errorf("widget sign-in URL %q must be absolute", raw)
	}
	if cfg.Secret == "" {
		return nil, errors.New("widget JWT secret is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &Provider{
		signInURL: signIn,
		secret:    []byte(cfg.Secret),
		parser:    jwt.NewParser(opts...),
	}, nil
}

// Begin returns the widget URL carrying our callback and a fresh state.
// The nonce is kept in a cookie by the handler; widget tokens do not echo it.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}
	state, err := randomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	u := *p.signInURL
	q := u.Query()
	q.Set("redirect_url", in.RedirectURL)
	q.Set("state", state)
	if in.LoginHint != "" {
		q.Set("login_hint", in.LoginHint)
	}
	u.RawQuery = q.Encode()
	return u.String(), state, nonce, nil
}

// Exchange verifies the session token passed as the code.
func (p *Provider) Exchange(_ context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" {
		return domainauth.Identity{}, errors.New("session token is required")
	}

	var claims sessionClaims
	_, err := p.parser.ParseWithClaims(in.Code, &claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	})
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("verify session token: %w", err)
	}
	if claims.Subject == "" {
		return domainauth.Identity{}, errors.New("session token has no subject")
	}

	return claims.identity(), nil
}

func (c sessionClaims) identity() domainauth.Identity {
	emails := make([]string, 0, 1+len(c.EmailAddresses))
	if c.Email != "" {
		emails = append(emails, c.Email)
	}
	for _, e := range c.EmailAddresses {
		if e != "" && !slices.Contains(emails, e) {
			emails = append(emails, e)
		}
	}

	id := domainauth.Identity{
		UserID:    c.Subject,
		FullName:  c.FullName,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Emails:    emails,
		Groups:    slices.Clone(c.Groups),
		Hint:      domainauth.HintFromMetadata(c.PublicMetadata, c.UnsafeMetadata),
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}

func randomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
