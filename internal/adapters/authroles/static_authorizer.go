package authroles

import (
	"slices"
	"strings"

	domainauth "github.com/stepperslife/tickets/internal/domain/auth"
	"github.com/stepperslife/tickets/internal/ports"
)

var _ ports.Authorizer = (*StaticAuthorizer)(nil)

// StaticAuthorizer assigns roles from verified facts only: the admin email
// allow-list and provider group membership. Profile metadata hints are ignored.
type StaticAuthorizer struct {
	adminEmails    map[string]struct{}
	adminGroup     string
	organizerGroup string
}

// StaticAuthorizerOptions configures a StaticAuthorizer.
type StaticAuthorizerOptions struct {
	AdminEmails    []string
	AdminGroup     string
	OrganizerGroup string
}

// NewStaticAuthorizer builds a StaticAuthorizer. Empty allow-list entries are dropped.
func NewStaticAuthorizer(opts StaticAuthorizerOptions) *StaticAuthorizer {
	emails := make(map[string]struct{}, len(opts.AdminEmails))
	for _, e := range opts.AdminEmails {
		if e = strings.TrimSpace(e); e != "" {
			emails[e] = struct{}{}
		}
	}
	return &StaticAuthorizer{
		adminEmails:    emails,
		adminGroup:     strings.TrimSpace(opts.AdminGroup),
		organizerGroup: strings.TrimSpace(opts.OrganizerGroup),
	}
}

func (a *StaticAuthorizer) Authorize(id domainauth.Identity) domainauth.Role {
	if email := id.PrimaryEmail(); email != "" {
		if _, ok := a.adminEmails[email]; ok {
			return domainauth.RoleAdmin
		}
	}
	if a.adminGroup != "" && slices.Contains(id.Groups, a.adminGroup) {
		return domainauth.RoleAdmin
	}
	if a.organizerGroup != "" && slices.Contains(id.Groups, a.organizerGroup) {
		return domainauth.RoleOrganizer
	}
	return domainauth.RoleCustomer
}
