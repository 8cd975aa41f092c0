package httpx

import (
	"context"

	domainauth "github.com/stepperslife/tickets/internal/domain/auth"
)

type sessionKey struct{}

// WithSession attaches the authenticated session. A nil session returns ctx as is.
func WithSession(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session set by RequireAuth, RequireRole or OptionalAuth.
func SessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(*domainauth.Session)
	return session, ok && session != nil
}
