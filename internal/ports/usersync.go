package ports

import (
	"context"
	"encoding/json"

	"github.com/stepperslife/tickets/internal/domain/usersync"
)

// UserStore is the external store that owns the durable copy of user records.
// UpsertUser must be idempotent: repeated calls with the same ExternalUserID
// update a single entity and never create duplicates.
type UserStore interface {
	UpsertUser(ctx context.Context, rec usersync.SyncRecord) error
}

// DocumentStore is the read/storage surface of the hosted document database
// that HTTP handlers proxy to. Values are passed through as raw JSON.
type DocumentStore interface {
	// Events lists published events.
	Events(ctx context.Context) (json.RawMessage, error)
	// TicketByID returns the ticket document, or (nil, nil) when it does not exist.
	TicketByID(ctx context.Context, id string) (json.RawMessage, error)
	// GenerateUploadURL issues a short-lived URL for a direct file upload.
	GenerateUploadURL(ctx context.Context) (string, error)
	// StorageURL resolves a storage id to a servable URL ("" when unknown).
	StorageURL(ctx context.Context, storageID string) (string, error)
}
