package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"

	"github.com/stepperslife/tickets/internal/domain/routing"
)

// Role represents an application's authorization role.
// Roles are assigned by a trusted Authorizer and are the only input to access control.
// Keep string form for easy persistence and cookies.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOrganizer Role = "organizer"
	RoleCustomer  Role = "customer"
)

// roleLevels orders roles for hierarchical checks: customer < organizer < admin.
var roleLevels = map[Role]int{
	RoleCustomer:  0,
	RoleOrganizer: 1,
	RoleAdmin:     2,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// AtLeast reports whether r grants everything required grants.
// Unknown roles never satisfy and are never satisfied.
func (r Role) AtLeast(required Role) bool {
	have, ok := roleLevels[r]
	if !ok {
		return false
	}
	want, ok := roleLevels[required]
	if !ok {
		return false
	}
	return have >= want
}

// RoleHint carries provider-supplied, client-editable profile metadata.
// It is NOT trustworthy: it only steers navigation and must never be
// consulted for authorization. Nil pointers mean the provider omitted the flag.
type RoleHint struct {
	IsOrganizer *bool  `json:"is_organizer,omitempty"`
	IsSeller    *bool  `json:"is_seller,omitempty"`
	UnsafeRole  string `json:"unsafe_role,omitempty"`
}

// Signals converts the hint into the router's signal shape.
func (h RoleHint) Signals() routing.RoleSignals {
	return routing.RoleSignals{
		IsOrganizer:     h.IsOrganizer,
		IsSeller:        h.IsSeller,
		UnsafeRoleClaim: h.UnsafeRole,
	}
}

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // stable user identifier from the provider (e.g., sub)
	FullName  string // provider-supplied display name, when present
	FirstName string
	LastName  string
	Emails    []string // provider order; the first entry is primary
	Groups    []string // verified group memberships (trusted)
	Hint      RoleHint
	ExpiresAt time.Time // absolute expiry from IdP token
}

// PrimaryEmail returns the first email address or "" when the provider gave none.
func (i Identity) PrimaryEmail() string {
	for _, e := range i.Emails {
		if e = strings.TrimSpace(e); e != "" {
			return e
		}
	}
	return ""
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (e.g., random URL-safe string).
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name,omitempty"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Hint      RoleHint  `json:"hint"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HasRole reports whether the session's trusted role satisfies required.
func (s Session) HasRole(required Role) bool { return s.Role.AtLeast(required) }

// Identity rebuilds the identity facts carried by the session.
func (s Session) Identity() Identity {
	var emails []string
	if s.Email != "" {
		emails = []string{s.Email}
	}
	return Identity{
		UserID:    s.UserID,
		FullName:  s.FullName,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Emails:    emails,
		Hint:      s.Hint,
		ExpiresAt: s.ExpiresAt,
	}
}

// Principal projects the session into the router's view of the user.
func (s Session) Principal() *routing.Principal {
	return &routing.Principal{
		PrimaryEmail: s.Email,
		DisplayName:  routing.NameParts{First: s.FirstName, Last: s.LastName},
		Signals:      s.Hint.Signals(),
	}
}
