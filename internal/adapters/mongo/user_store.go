package mongo

// Package mongo provides the MongoDB-backed external user store.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stepperslife/tickets/internal/domain/usersync"
	"github.com/stepperslife/tickets/internal/ports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollection holds mirrored users.
const DefaultCollection = "users"

// ErrNotFound is returned by FindByUserID when no document matches.
var ErrNotFound = errors.New("user not found")

var _ ports.UserStore = (*UserStore)(nil)

// UserDocument is the stored shape of a synced user.
type UserDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"` // identity provider id, unique
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// UserStore upserts users into a Mongo collection keyed by user_id.
type UserStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewUserStore returns a store over db's users collection.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(DefaultCollection), now: time.Now}
}

// EnsureIndexes creates the unique user_id index. It is safe to call repeatedly.
func (s *UserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("user_id_unique"),
	})
	if err != nil {
		return fmt.Errorf("create user_id index: %w", err)
	}
	return nil
}

// UpsertUser writes rec, creating the document on first sight.
func (s *UserStore) UpsertUser(ctx context.Context, rec usersync.SyncRecord) error {
	if rec.ExternalUserID == "" {
		return errors.New("user id is required")
	}

	now := s.now().UTC()
	filter := bson.M{"user_id": rec.ExternalUserID}
	update := bson.M{
		"$set": bson.M{
			"name":       rec.Name,
			"email":      rec.Email,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"user_id":    rec.ExternalUserID,
			"created_at": now,
		},
	}

	if _, err := s.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("mongo upsert user: %w", err)
	}
	return nil
}

// FindByUserID loads the document for the identity provider id.
func (s *UserStore) FindByUserID(ctx context.Context, userID string) (*UserDocument, error) {
	var doc UserDocument
	err := s.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find user: %w", err)
	}
	return &doc, nil
}
