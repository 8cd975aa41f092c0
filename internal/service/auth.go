package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/stepperslife/tickets/internal/domain/auth"
	"github.com/stepperslife/tickets/internal/domain/routing"
	"github.com/stepperslife/tickets/internal/observability/metrics"
	"github.com/stepperslife/tickets/internal/observability/statsd"
	"github.com/stepperslife/tickets/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider   ports.IdentityProvider
	Sessions   ports.SessionStore
	Authorizer ports.Authorizer
	// Router decides the landing page after login. Nil routes everyone to the profile.
	Router *routing.Router
	// ProviderName labels login metrics (oauth, widget, mock).
	ProviderName string
	Metrics      statsd.Sink
}

// AuthService orchestrates authentication flows by coordinating the identity provider,
// trusted role assignment, session persistence, and the post-login routing decision.
type AuthService struct {
	provider   ports.IdentityProvider
	sessions   ports.SessionStore
	authorizer ports.Authorizer
	router     *routing.Router
	provName   string
	metrics    statsd.Sink
}

// ErrSessionExpired is returned by GetSession when the stored session has passed its expiry.
var ErrSessionExpired = errors.New("session expired")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		provider:   opts.Provider,
		sessions:   opts.Sessions,
		authorizer: opts.Authorizer,
		router:     opts.Router,
		provName:   opts.ProviderName,
		metrics:    opts.Metrics,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
// loginHint is optional and passed through to the provider.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL, loginHint string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	input := ports.BeginInput{RedirectURL: redirectURL, LoginHint: strings.TrimSpace(loginHint)}
	authURL, state, nonce, err := s.provider.Begin(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{
		AuthURL: authURL,
		State:   state,
		Nonce:   nonce,
	}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the result of completing a login flow.
type CompleteLoginResult struct {
	Session  domainauth.Session
	Identity domainauth.Identity
	// Destination is the router's suggested landing page. It is navigation only.
	Destination routing.Route
}

// CompleteLogin exchanges the code for an identity, assigns the trusted role,
// persists a session, and decides where the user lands.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		err = fmt.Errorf("exchange authorization code: %w", err)
		s.recordLogin("", err)
		return nil, err
	}
	if strings.TrimSpace(identity.UserID) == "" {
		err = errors.New("identity provider returned no user id")
		s.recordLogin("", err)
		return nil, err
	}

	role := domainauth.RoleCustomer
	if s.authorizer != nil {
		role = s.authorizer.Authorize(identity)
	}

	session := domainauth.Session{
		ID:        generateSessionID(),
		UserID:    identity.UserID,
		FullName:  identity.FullName,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Email:     identity.PrimaryEmail(),
		Role:      role,
		Hint:      identity.Hint,
		ExpiresAt: identity.ExpiresAt,
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		err = fmt.Errorf("save session: %w", saveErr)
		s.recordLogin("", err)
		return nil, err
	}

	dest := s.router.DecidePostLoginDestination(session.Principal())
	s.recordLogin(dest, nil)
	return &CompleteLoginResult{
		Session:     session,
		Identity:    identity,
		Destination: dest,
	}, nil
}

func (s *AuthService) recordLogin(dest routing.Route, err error) {
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.EmitLogin(s.metrics, metrics.LoginMetric{
		Provider:    s.provName,
		Result:      result,
		Destination: string(dest),
		Err:         err,
	})
}

// Destination returns the landing page for an existing session, or the
// unauthenticated default when sess is nil.
func (s *AuthService) Destination(sess *domainauth.Session) routing.Route {
	if sess == nil {
		return routing.DecideUnauthenticatedDestination()
	}
	return s.router.DecidePostLoginDestination(sess.Principal())
}

// GetSession retrieves a session by ID.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// Logout removes a session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

func generateSessionID() string {
	return uuid.New().String()
}
