// Package oidc implements the session-cookie OAuth/OIDC identity provider.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/stepperslife/tickets/internal/domain/auth"
	"github.com/stepperslife/tickets/internal/ports"
	"golang.org/x/oauth2"
)

const (
	stateBytes       = 32
	defaultTokenLife = time.Hour
	wellKnownSuffix  = "/.well-known/openid-configuration"
)

var _ ports.IdentityProvider = (*Provider)(nil)

// Provider runs the authorization code flow against an OIDC issuer and maps
// the profile claims (including metadata role hints) to an Identity.
type Provider struct {
	oauth      *oauth2.Config
	logoutURL  string
	httpClient *http.Client

	issuer   *gooidc.Provider
	verifier *gooidc.IDTokenVerifier
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	DiscoveryURL string
	LogoutURL    string
	HTTPClient   *http.Client // defaults to a 30s client
}

func (c ProviderConfig) validate() error {
	var errs []error
	for _, f := range []struct{ name, value string }{
		{"client ID", c.ClientID},
		{"client secret", c.ClientSecret},
		{"redirect URL", c.RedirectURL},
		{"discovery URL", c.DiscoveryURL},
	} {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", f.name))
		}
	}
	return errors.Join(errs...)
}

// NewProvider fetches the discovery document once and builds the verifier.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	issuerURL := strings.TrimSuffix(strings.TrimSuffix(cfg.DiscoveryURL, "/"), wellKnownSuffix)
	op, err := gooidc.NewProvider(gooidc.ClientContext(context.Background(), httpClient), issuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery %s: %w", issuerURL, err)
	}

	return &Provider{
		logoutURL:  cfg.LogoutURL,
		httpClient: httpClient,
		issuer:     op,
		verifier:   op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       strings.Fields(cfg.Scope),
			Endpoint:     op.Endpoint(),
		},
	}, nil
}

// LogoutURL returns the provider's end-session URL, if configured.
func (p *Provider) LogoutURL() string { return p.logoutURL }

// Begin returns the authorization URL. The redirect_uri sent is always the
// configured one; in.RedirectURL only has to be present.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state, err := randomToken(stateBytes)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomToken(stateBytes)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	opts := []oauth2.AuthCodeOption{gooidc.Nonce(nonce)}
	if in.LoginHint != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", in.LoginHint))
	} else {
		opts = append(opts, oauth2.SetAuthURLParam("prompt", "select_account"))
	}
	return p.oauth.AuthCodeURL(state, opts...), state, nonce, nil
}

// Exchange redeems the code, verifies the ID token and falls back to UserInfo
// when the token lacks a subject or email.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	switch {
	case in.Code == "":
		return domainauth.Identity{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Identity{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.httpClient)
	token, err := p.oauth.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	claims, err := p.verifiedClaims(ctx, token, in.Nonce)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("extract id_token: %w", err)
	}
	if claims.Sub == "" || claims.Email == "" {
		ui, uiErr := p.userInfo(ctx, token)
		if uiErr != nil {
			return domainauth.Identity{}, fmt.Errorf("get user info: %w", uiErr)
		}
		claims.fillFrom(ui)
	}
	if claims.Sub == "" {
		return domainauth.Identity{}, errors.New("identity provider returned no subject")
	}

	id := claims.identity()
	id.ExpiresAt = time.Now().Add(defaultTokenLife)
	if !token.Expiry.IsZero() {
		id.ExpiresAt = token.Expiry
	}
	return id, nil
}

// profileClaims is the claim shape shared by the ID token and the UserInfo endpoint.
type profileClaims struct {
	Sub            string         `json:"sub"`
	Name           string         `json:"name"`
	GivenName      string         `json:"given_name"`
	FamilyName     string         `json:"family_name"`
	Email          string         `json:"email"`
	Groups         []string       `json:"groups"`
	PublicMetadata map[string]any `json:"public_metadata"`
	UnsafeMetadata map[string]any `json:"unsafe_metadata"`
	Nonce          string         `json:"nonce"`
}

func (c profileClaims) identity() domainauth.Identity {
	var emails []string
	if c.Email != "" {
		emails = []string{c.Email}
	}
	return domainauth.Identity{
		UserID:    c.Sub,
		FullName:  c.Name,
		FirstName: c.GivenName,
		LastName:  c.FamilyName,
		Emails:    emails,
		Groups:    slices.Clone(c.Groups),
		Hint:      domainauth.HintFromMetadata(c.PublicMetadata, c.UnsafeMetadata),
	}
}

// fillFrom copies fields from ui that are missing on c. Present values win.
func (c *profileClaims) fillFrom(ui profileClaims) {
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&c.Sub, ui.Sub},
		{&c.Name, ui.Name},
		{&c.GivenName, ui.GivenName},
		{&c.FamilyName, ui.FamilyName},
		{&c.Email, ui.Email},
	} {
		if *f.dst == "" {
			*f.dst = f.src
		}
	}
	if len(c.Groups) == 0 {
		c.Groups = ui.Groups
	}
	if c.PublicMetadata == nil {
		c.PublicMetadata = ui.PublicMetadata
	}
	if c.UnsafeMetadata == nil {
		c.UnsafeMetadata = ui.UnsafeMetadata
	}
}

func (p *Provider) userInfo(ctx context.Context, token *oauth2.Token) (profileClaims, error) {
	var claims profileClaims
	ui, err := p.issuer.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		return claims, fmt.Errorf("fetch user info: %w", err)
	}
	if err := ui.Claims(&claims); err != nil {
		return claims, fmt.Errorf("decode user info: %w", err)
	}
	return claims, nil
}

// verifiedClaims returns empty claims when the openid scope was not requested.
func (p *Provider) verifiedClaims(ctx context.Context, token *oauth2.Token, nonce string) (profileClaims, error) {
	var claims profileClaims
	if !slices.Contains(p.oauth.Scopes, gooidc.ScopeOpenID) {
		return claims, nil
	}
	raw, err := rawIDToken(token)
	if err != nil {
		return claims, err
	}
	idTok, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return claims, fmt.Errorf("verify id_token: %w", err)
	}
	if err := idTok.Claims(&claims); err != nil {
		return claims, fmt.Errorf("parse id_token claims: %w", err)
	}
	if claims.Nonce != nonce {
		return claims, errors.New("invalid nonce")
	}
	return claims, nil
}

// randomToken returns a URL-safe string of exactly n characters.
func randomToken(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}

func rawIDToken(token *oauth2.Token) (string, error) {
	if token == nil {
		return "", errors.New("nil token")
	}
	raw, _ := token.Extra("id_token").(string)
	if raw == "" {
		return "", errors.New("missing id_token in token response")
	}
	return raw, nil
}
