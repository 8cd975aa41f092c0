// Package usersync builds the normalized identity record pushed to the
// external user store so the identity provider and the store stay
// eventually consistent.
package usersync

import (
	"strings"

	domainauth "github.com/stepperslife/tickets/internal/domain/auth"
)

// FallbackName is used when the provider gives neither a name nor an email.
const FallbackName = "User"

// SyncRecord is the payload upserted into the external store, keyed by ExternalUserID.
// It is built per page visit and never persisted locally.
type SyncRecord struct {
	ExternalUserID string `json:"userId"`
	Name           string `json:"name"`
	Email          string `json:"email"`
}

// BuildSyncRecord derives a SyncRecord from provider-supplied identity facts.
//
// Name priority, first non-empty wins: full name, "first last" (trimmed),
// the local part of the primary email, then FallbackName.
func BuildSyncRecord(id domainauth.Identity) SyncRecord {
	email := id.PrimaryEmail()
	return SyncRecord{
		ExternalUserID: strings.TrimSpace(id.UserID),
		Name:           deriveName(id, email),
		Email:          email,
	}
}

func deriveName(id domainauth.Identity, email string) string {
	if full := strings.TrimSpace(id.FullName); full != "" {
		return full
	}
	if first := strings.TrimSpace(id.FirstName); first != "" {
		return strings.TrimSpace(first + " " + strings.TrimSpace(id.LastName))
	}
	if local, _, _ := strings.Cut(email, "@"); strings.TrimSpace(local) != "" {
		return strings.TrimSpace(local)
	}
	return FallbackName
}
