package testutil

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetTestMongoURI returns the Mongo URI used by integration tests.
// Defaults to the local test instance from the docker-compose test profile.
func GetTestMongoURI() string {
	return getEnvOrDefault("TEST_MONGO_URI", "mongodb://localhost:57017")
}

// SetupTestMongo connects to the test Mongo server and returns a throwaway database.
// The database is dropped when the test finishes. Tests are skipped when Mongo is unavailable.
func SetupTestMongo(t TestingTB) *mongo.Database {
	t.Helper()

	uri := GetTestMongoURI()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(2*time.Second))
	if err != nil {
		skipOrFail(t, requireMongo(), fmt.Sprintf("mongo not available at %s: %v", uri, err))
		return nil
	}
	if pingErr := client.Ping(ctx, nil); pingErr != nil {
		if derr := client.Disconnect(context.Background()); derr != nil {
			t.Logf("warning: failed to disconnect mongo client: %v", derr)
		}
		skipOrFail(t, requireMongo(), fmt.Sprintf("mongo not available at %s: %v", uri, pingErr))
		return nil
	}

	db := client.Database(schemaName())
	t.Logf("Using Mongo database %s at %s", db.Name(), uri)

	cleanup := func() {
		cctx, ccancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer ccancel()
		if err := db.Drop(cctx); err != nil {
			t.Logf("warning: failed to drop mongo database %s: %v", db.Name(), err)
		}
		if err := client.Disconnect(cctx); err != nil {
			t.Logf("warning: failed to disconnect mongo client: %v", err)
		}
	}
	t.Cleanup(cleanup)

	return db
}
