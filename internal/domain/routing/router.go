// Package routing decides where a freshly authenticated user lands.
//
// The decision is a navigation convenience built on untrusted profile
// metadata. It is never an authorization check: every protected route
// re-verifies the session's trusted role on its own.
package routing

import "strings"

// Route is an application path a user can be sent to.
type Route string

const (
	RouteAdmin           Route = "/admin"
	RouteOrganizer       Route = "/organizer"
	RouteCustomerProfile Route = "/profile"
)

// organizerClaim is the unsafe role claim value that marks an organizer.
const organizerClaim = "organizer"

// NameParts holds the optional name fragments a provider may supply.
type NameParts struct {
	First string
	Last  string
}

// RoleSignals are provider-supplied, client-settable role flags.
// Nil flags mean the provider did not send them.
type RoleSignals struct {
	IsOrganizer     *bool
	IsSeller        *bool
	UnsafeRoleClaim string
}

func (s RoleSignals) organizer() bool {
	return isTrue(s.IsOrganizer) || isTrue(s.IsSeller) || s.UnsafeRoleClaim == organizerClaim
}

// Principal is the authenticated user as seen by the router.
type Principal struct {
	PrimaryEmail string
	DisplayName  NameParts
	Signals      RoleSignals
}

// Router maps principals to their landing route.
// A Router is immutable after construction and safe for concurrent use.
type Router struct {
	adminEmails map[string]struct{}
}

// NewRouter builds a Router whose admin allow-list is adminEmails.
// Entries are trimmed; empty entries are dropped so an empty email never matches.
func NewRouter(adminEmails ...string) *Router {
	set := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.TrimSpace(e); e != "" {
			set[e] = struct{}{}
		}
	}
	return &Router{adminEmails: set}
}

// DecidePostLoginDestination returns the single next screen for p.
// Checks run in strict priority order and the first match wins:
// admin email, then any organizer signal, then the customer profile.
// It is total: nil routers and nil principals fall through to the profile.
func (r *Router) DecidePostLoginDestination(p *Principal) Route {
	if p == nil {
		return RouteCustomerProfile
	}
	if r.isAdmin(p.PrimaryEmail) {
		return RouteAdmin
	}
	if p.Signals.organizer() {
		return RouteOrganizer
	}
	return RouteCustomerProfile
}

// DecideUnauthenticatedDestination returns the generic default landing route.
func DecideUnauthenticatedDestination() Route {
	return RouteCustomerProfile
}

// IsAdminEmail reports whether email is on the router's admin allow-list.
func (r *Router) IsAdminEmail(email string) bool { return r.isAdmin(email) }

func (r *Router) isAdmin(email string) bool {
	if r == nil || email == "" {
		return false
	}
	_, ok := r.adminEmails[email]
	return ok
}

func isTrue(b *bool) bool { return b != nil && *b }
