// Package ports defines the interfaces the services depend on.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"

	domainauth "github.com/stepperslife/tickets/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
	// LoginHint is an optional email the provider may use to preselect an account.
	LoginHint string
}

// IdentityProvider initiates and completes an authentication flow against an IdP.
// Exactly one implementation is selected at startup (see config.AuthMode).
type IdentityProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// Authorizer assigns the trusted application role for a verified identity.
// Implementations must not read Identity.Hint.
type Authorizer interface {
	Authorize(id domainauth.Identity) domainauth.Role
}
