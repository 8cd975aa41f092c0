package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	domainauth "github.com/stepperslife/tickets/internal/domain/auth"
	"github.com/stepperslife/tickets/internal/domain/usersync"
	"github.com/stepperslife/tickets/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockIdentityProvider_Begin_Defaults(t *testing.T) {
	provider := NewMockIdentityProvider()
	ctx := context.Background()

	input := ports.BeginInput{RedirectURL: "http://localhost:8080/callback"}
	authURL, state, nonce, err := provider.Begin(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", authURL)
	assert.Equal(t, "state-1", state)
	assert.Equal(t, "nonce-1", nonce)

	// Second call should increment counters
	_, state2, nonce2, err2 := provider.Begin(ctx, input)
	require.NoError(t, err2)
	assert.Equal(t, "state-2", state2)
	assert.Equal(t, "nonce-2", nonce2)
}

func TestMockIdentityProvider_Exchange_FreshExpiry(t *testing.T) {
	provider := &MockIdentityProvider{}
	id, err := provider.Exchange(context.Background(), ports.ExchangeInput{Code: "c"})
	require.NoError(t, err)
	assert.Equal(t, "mock-user-1", id.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), id.ExpiresAt, 5*time.Second)
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.Error(t, store.Save(ctx, domainauth.Session{}))
	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "s1", UserID: "u1"}))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.Equal(t, ErrNotFound, err)
}

func TestStaticAuthorizer(t *testing.T) {
	a := StaticAuthorizer{AdminGroup: "admins", OrganizerGroup: "organizers"}
	assert.Equal(t, domainauth.RoleAdmin, a.Authorize(domainauth.Identity{Groups: []string{"organizers", "admins"}}))
	assert.Equal(t, domainauth.RoleOrganizer, a.Authorize(domainauth.Identity{Groups: []string{"organizers"}}))
	assert.Equal(t, domainauth.RoleCustomer, a.Authorize(domainauth.Identity{}))
}

func TestMemoryUserStore_UpsertIsIdempotent(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()
	rec := usersync.SyncRecord{ExternalUserID: "u1", Name: "Ada", Email: "ada@x.com"}

	require.NoError(t, store.UpsertUser(ctx, rec))
	require.NoError(t, store.UpsertUser(ctx, rec))

	assert.Len(t, store.Users(), 1)
	assert.Equal(t, 2, store.Calls())

	store.Err = errors.New("down")
	assert.Error(t, store.UpsertUser(ctx, rec))
}
