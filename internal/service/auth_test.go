package service

import (
	"context"
	"errors"
	"testing"
	"time"

	domainauth "github.com/stepperslife/tickets/internal/domain/auth"
	"github.com/stepperslife/tickets/internal/domain/routing"
	mocks "github.com/stepperslife/tickets/internal/mocks/auth"
	"github.com/stepperslife/tickets/internal/observability/metrics"
	"github.com/stepperslife/tickets/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSessionStore is a test helper for testing session store errors.
type mockSessionStore struct {
	saveFunc   func(context.Context, domainauth.Session) error
	getFunc    func(context.Context, string) (domainauth.Session, error)
	deleteFunc func(context.Context, string) error
}

func (m *mockSessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, sess)
	}
	return nil
}

func (m *mockSessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return domainauth.Session{}, nil
}

func (m *mockSessionStore) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }

func newTestAuthService(provider ports.IdentityProvider, sessions ports.SessionStore) *AuthService {
	return NewAuthService(AuthServiceOptions{
		Provider:   provider,
		Sessions:   sessions,
		Authorizer: mocks.StaticAuthorizer{AdminGroup: "admins", OrganizerGroup: "organizers"},
		Router:     routing.NewRouter("boss@stepperslife.com"),
	})
}

func providerReturning(id domainauth.Identity) *mocks.MockIdentityProvider {
	p := mocks.NewMockIdentityProvider()
	p.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
		return id, nil
	}
	return p
}

func validInput() CompleteLoginInput {
	return CompleteLoginInput{Code: "code", State: "state-1", Nonce: "nonce-1"}
}

func TestAuthService_BeginLogin(t *testing.T) {
	var got ports.BeginInput
	provider := mocks.NewMockIdentityProvider()
	provider.BeginFunc = func(_ context.Context, in ports.BeginInput) (string, string, string, error) {
		got = in
		return "https://idp/auth", "s", "n", nil
	}
	svc := newTestAuthService(provider, mocks.NewMemorySessionStore())

	res, err := svc.BeginLogin(context.Background(), "http://localhost:8080/auth/callback", "  ada@x.com ")
	require.NoError(t, err)
	assert.Equal(t, &BeginLoginResult{AuthURL: "https://idp/auth", State: "s", Nonce: "n"}, res)
	assert.Equal(t, "ada@x.com", got.LoginHint)
	assert.Equal(t, "http://localhost:8080/auth/callback", got.RedirectURL)
}

func TestAuthService_BeginLogin_Errors(t *testing.T) {
	t.Run("empty redirect", func(t *testing.T) {
		svc := newTestAuthService(mocks.NewMockIdentityProvider(), mocks.NewMemorySessionStore())
		_, err := svc.BeginLogin(context.Background(), "", "")
		require.Error(t, err)
	})

	t.Run("provider error", func(t *testing.T) {
		provider := mocks.NewMockIdentityProvider()
		provider.BeginFunc = func(context.Context, ports.BeginInput) (string, string, string, error) {
			return "", "", "", errors.New("idp down")
		}
		svc := newTestAuthService(provider, mocks.NewMemorySessionStore())
		_, err := svc.BeginLogin(context.Background(), "http://x/cb", "")
		require.ErrorContains(t, err, "begin auth flow")
	})
}

func TestAuthService_CompleteLogin_RoutesAndRoles(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	tests := []struct {
		name     string
		identity domainauth.Identity
		wantRole domainauth.Role
		wantDest routing.Route
	}{
		{
			name:     "admin email",
			identity: domainauth.Identity{UserID: "u1", Emails: []string{"boss@stepperslife.com"}, Groups: []string{"admins"}, ExpiresAt: exp},
			wantRole: domainauth.RoleAdmin,
			wantDest: routing.RouteAdmin,
		},
		{
			name: "organizer hint does not grant organizer role",
			identity: domainauth.Identity{
				UserID: "u2", Emails: []string{"dj@x.com"},
				Hint:      domainauth.RoleHint{IsOrganizer: boolPtr(true)},
				ExpiresAt: exp,
			},
			wantRole: domainauth.RoleCustomer,
			wantDest: routing.RouteOrganizer,
		},
		{
			name:     "organizer group",
			identity: domainauth.Identity{UserID: "u3", Groups: []string{"organizers"}, ExpiresAt: exp},
			wantRole: domainauth.RoleOrganizer,
			wantDest: routing.RouteCustomerProfile,
		},
		{
			name:     "plain customer",
			identity: domainauth.Identity{UserID: "u4", Emails: []string{"fan@x.com"}, ExpiresAt: exp},
			wantRole: domainauth.RoleCustomer,
			wantDest: routing.RouteCustomerProfile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := mocks.NewMemorySessionStore()
			svc := newTestAuthService(providerReturning(tt.identity), sessions)

			res, err := svc.CompleteLogin(context.Background(), validInput())
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, res.Session.Role)
			assert.Equal(t, tt.wantDest, res.Destination)
			assert.Equal(t, tt.identity.PrimaryEmail(), res.Session.Email)
			assert.Equal(t, tt.identity.Hint, res.Session.Hint)
			assert.NotEmpty(t, res.Session.ID)
			assert.Equal(t, 1, sessions.Len())
		})
	}
}

func TestAuthService_CompleteLogin_Validation(t *testing.T) {
	svc := newTestAuthService(mocks.NewMockIdentityProvider(), mocks.NewMemorySessionStore())
	ctx := context.Background()

	_, err := svc.CompleteLogin(ctx, CompleteLoginInput{State: "s", Nonce: "n"})
	require.ErrorContains(t, err, "authorization code")
	_, err = svc.CompleteLogin(ctx, CompleteLoginInput{Code: "c", Nonce: "n"})
	require.ErrorContains(t, err, "state")
	_, err = svc.CompleteLogin(ctx, CompleteLoginInput{Code: "c", State: "s"})
	require.ErrorContains(t, err, "nonce")
}

func TestAuthService_CompleteLogin_Failures(t *testing.T) {
	t.Run("exchange error", func(t *testing.T) {
		provider := mocks.NewMockIdentityProvider()
		provider.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
			return domainauth.Identity{}, errors.New("bad code")
		}
		svc := newTestAuthService(provider, mocks.NewMemorySessionStore())
		_, err := svc.CompleteLogin(context.Background(), validInput())
		require.ErrorContains(t, err, "exchange authorization code")
	})

	t.Run("missing user id", func(t *testing.T) {
		svc := newTestAuthService(providerReturning(domainauth.Identity{}), mocks.NewMemorySessionStore())
		_, err := svc.CompleteLogin(context.Background(), validInput())
		require.Error(t, err)
	})

	t.Run("save error", func(t *testing.T) {
		store := &mockSessionStore{saveFunc: func(context.Context, domainauth.Session) error {
			return errors.New("redis down")
		}}
		svc := newTestAuthService(mocks.NewMockIdentityProvider(), store)
		_, err := svc.CompleteLogin(context.Background(), validInput())
		require.ErrorContains(t, err, "save session")
	})
}

func TestAuthService_Destination(t *testing.T) {
	svc := newTestAuthService(mocks.NewMockIdentityProvider(), mocks.NewMemorySessionStore())

	assert.Equal(t, routing.RouteCustomerProfile, svc.Destination(nil))
	assert.Equal(t, routing.RouteAdmin, svc.Destination(&domainauth.Session{Email: "boss@stepperslife.com"}))
	assert.Equal(t, routing.RouteOrganizer, svc.Destination(&domainauth.Session{
		Hint: domainauth.RoleHint{UnsafeRole: "organizer"},
	}))
}

func TestAuthService_NilRouter(t *testing.T) {
	svc := NewAuthService(AuthServiceOptions{
		Provider: mocks.NewMockIdentityProvider(),
		Sessions: mocks.NewMemorySessionStore(),
	})
	res, err := svc.CompleteLogin(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, routing.RouteCustomerProfile, res.Destination)
	assert.Equal(t, domainauth.RoleCustomer, res.Session.Role)
}

func TestAuthService_GetSession(t *testing.T) {
	ctx := context.Background()

	t.Run("empty id", func(t *testing.T) {
		svc := newTestAuthService(mocks.NewMockIdentityProvider(), mocks.NewMemorySessionStore())
		_, err := svc.GetSession(ctx, "")
		require.Error(t, err)
	})

	t.Run("valid", func(t *testing.T) {
		sessions := mocks.NewMemorySessionStore()
		require.NoError(t, sessions.Save(ctx, domainauth.Session{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}))
		svc := newTestAuthService(mocks.NewMockIdentityProvider(), sessions)

		sess, err := svc.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "u1", sess.UserID)
	})

	t.Run("expired is deleted", func(t *testing.T) {
		sessions := mocks.NewMemorySessionStore()
		require.NoError(t, sessions.Save(ctx, domainauth.Session{ID: "s1", ExpiresAt: time.Now().Add(-time.Minute)}))
		svc := newTestAuthService(mocks.NewMockIdentityProvider(), sessions)

		_, err := svc.GetSession(ctx, "s1")
		require.ErrorIs(t, err, ErrSessionExpired)
		assert.Equal(t, 0, sessions.Len())
	})

	t.Run("expired with delete failure", func(t *testing.T) {
		store := &mockSessionStore{
			getFunc: func(context.Context, string) (domainauth.Session, error) {
				return domainauth.Session{ID: "s1", ExpiresAt: time.Now().Add(-time.Minute)}, nil
			},
			deleteFunc: func(context.Context, string) error { return errors.New("boom") },
		}
		svc := newTestAuthService(mocks.NewMockIdentityProvider(), store)

		_, err := svc.GetSession(ctx, "s1")
		require.ErrorIs(t, err, ErrSessionExpired)
		assert.ErrorContains(t, err, "delete session")
	})

	t.Run("store error", func(t *testing.T) {
		store := &mockSessionStore{getFunc: func(context.Context, string) (domainauth.Session, error) {
			return domainauth.Session{}, mocks.ErrNotFound
		}}
		svc := newTestAuthService(mocks.NewMockIdentityProvider(), store)

		_, err := svc.GetSession(ctx, "missing")
		require.ErrorIs(t, err, mocks.ErrNotFound)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	sessions := mocks.NewMemorySessionStore()
	require.NoError(t, sessions.Save(ctx, domainauth.Session{ID: "s1"}))
	svc := newTestAuthService(mocks.NewMockIdentityProvider(), sessions)

	require.NoError(t, svc.Logout(ctx, ""))
	require.NoError(t, svc.Logout(ctx, "s1"))
	assert.Equal(t, 0, sessions.Len())

	failing := newTestAuthService(mocks.NewMockIdentityProvider(), &mockSessionStore{
		deleteFunc: func(context.Context, string) error { return errors.New("boom") },
	})
	require.ErrorContains(t, failing.Logout(ctx, "s1"), "delete session")
}

func TestAuthService_CompleteLogin_EmitsLoginMetrics(t *testing.T) {
	sink := &recordingSink{}
	failing := mocks.NewMockIdentityProvider()
	failing.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
		return domainauth.Identity{}, errors.New("bad code")
	}

	for _, provider := range []*mocks.MockIdentityProvider{mocks.NewMockIdentityProvider(), failing} {
		svc := NewAuthService(AuthServiceOptions{
			Provider:     provider,
			Sessions:     mocks.NewMemorySessionStore(),
			Router:       routing.NewRouter(),
			ProviderName: "mock",
			Metrics:      sink,
		})
		_, _ = svc.CompleteLogin(context.Background(), validInput())
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, int64(1), sink.counts[metrics.LoginCount+":"+metrics.ResultSuccess])
	assert.Equal(t, int64(1), sink.counts[metrics.LoginCount+":"+metrics.ResultError])
}
