package mongo

import (
	"context"
	"testing"

	"github.com/stepperslife/tickets/internal/domain/usersync"
	"github.com/stepperslife/tickets/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestUserStore_UpsertIsIdempotent(t *testing.T) {
	db := testutil.SetupTestMongo(t)
	store := NewUserStore(db)
	ctx := context.Background()
	require.NoError(t, store.EnsureIndexes(ctx))
	require.NoError(t, store.EnsureIndexes(ctx))

	rec := usersync.SyncRecord{ExternalUserID: "user_2abc", Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, store.UpsertUser(ctx, rec))
	first, err := store.FindByUserID(ctx, rec.ExternalUserID)
	require.NoError(t, err)

	rec.Name = "Ada Lovelace"
	require.NoError(t, store.UpsertUser(ctx, rec))

	n, err := db.Collection(DefaultCollection).CountDocuments(ctx, bson.M{"user_id": rec.ExternalUserID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := store.FindByUserID(ctx, rec.ExternalUserID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.Equal(t, first.ID, got.ID)
	assert.True(t, got.CreatedAt.Equal(first.CreatedAt))
}

func TestUserStore_FindMissing(t *testing.T) {
	db := testutil.SetupTestMongo(t)
	_, err := NewUserStore(db).FindByUserID(context.Background(), "nobody")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserStore_RequiresUserID(t *testing.T) {
	store := &UserStore{}
	require.Error(t, store.UpsertUser(context.Background(), usersync.SyncRecord{}))
}
