package httpx

import (
	"net/http"

	domainauth "github.com/stepperslife/tickets/internal/domain/auth"
	"github.com/stepperslife/tickets/internal/domain/routing"
)

// landingPage serves the JSON view for one of the role landing routes.
// The wrapping middleware has already enforced the role; the handler only reads the session.
func landingPage(route routing.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: errAuthRequired})
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			"page": route,
			"user": sessionView(session),
		})
	}
}

// landingRole is the trusted role each landing route requires.
func landingRole(route routing.Route) domainauth.Role {
	switch route {
	case routing.RouteAdmin:
		return domainauth.RoleAdmin
	case routing.RouteOrganizer:
		return domainauth.RoleOrganizer
	default:
		return domainauth.RoleCustomer
	}
}
