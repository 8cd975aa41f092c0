package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	domainauth "github.com/stepperslife/tickets/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := SessionFromContext(r.Context()); ok {
			w.Header().Set("X-User", s.UserID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func withSession(r *http.Request, id string) *http.Request {
	r.AddCookie(&http.Cookie{Name: sessionCookie, Value: id})
	return r
}

func TestRequireAuth_Success(t *testing.T) {
	sess := testSession(domainauth.RoleCustomer)
	h := RequireAuth(newMockAuth(sess))(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withSession(httptest.NewRequest(http.MethodGet, "/api/tickets/1", nil), sess.ID))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sess.UserID, rec.Header().Get("X-User"))
}

func TestRequireAuth_APIUnauthorized(t *testing.T) {
	h := RequireAuth(newMockAuth())(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withSession(httptest.NewRequest(http.MethodGet, "/api/tickets/1", nil), "stale"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authentication_required")
}

func TestRequireAuth_BrowserRedirect(t *testing.T) {
	h := RequireAuth(newMockAuth())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/profile?tab=tickets", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login?redirect_uri=%2Fprofile%3Ftab%3Dtickets", rec.Header().Get("Location"))
}

func TestRequireAuth_NilService(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireAuth(nil)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tickets/1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole_TrustedRoleOnly(t *testing.T) {
	hinted := testSession(domainauth.RoleCustomer)
	yes := true
	hinted.Hint = domainauth.RoleHint{IsOrganizer: &yes, UnsafeRole: "admin"}
	organizer := testSession(domainauth.RoleOrganizer)
	admin := testSession(domainauth.RoleAdmin)
	svc := newMockAuth(hinted, organizer, admin)

	tests := []struct {
		name     string
		session  *domainauth.Session
		required domainauth.Role
		want     int
	}{
		{name: "hint does not grant organizer", session: hinted, required: domainauth.RoleOrganizer, want: http.StatusForbidden},
		{name: "hint does not grant admin", session: hinted, required: domainauth.RoleAdmin, want: http.StatusForbidden},
		{name: "organizer passes organizer", session: organizer, required: domainauth.RoleOrganizer, want: http.StatusOK},
		{name: "organizer blocked from admin", session: organizer, required: domainauth.RoleAdmin, want: http.StatusForbidden},
		{name: "admin passes organizer", session: admin, required: domainauth.RoleOrganizer, want: http.StatusOK},
		{name: "customer passes customer", session: hinted, required: domainauth.RoleCustomer, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RequireRole(svc, tt.required)(okHandler()).ServeHTTP(rec,
				withSession(httptest.NewRequest(http.MethodGet, "/api/uploads", nil), tt.session.ID))
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusForbidden {
				assert.Contains(t, rec.Body.String(), "insufficient_permissions")
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	sess := testSession(domainauth.RoleCustomer)
	h := OptionalAuth(newMockAuth(sess))(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-User"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withSession(httptest.NewRequest(http.MethodGet, "/api/events", nil), sess.ID))
	assert.Equal(t, sess.UserID, rec.Header().Get("X-User"))
}

func TestSyncUser(t *testing.T) {
	sess := testSession(domainauth.RoleOrganizer)

	t.Run("syncs session identity", func(t *testing.T) {
		syncer := &recordingSyncer{}
		h := SyncUser(syncer)(okHandler())
		req := httptest.NewRequest(http.MethodGet, "/organizer", nil)
		req = req.WithContext(WithSession(req.Context(), sess))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{sess.UserID}, syncer.synced())
	})

	t.Run("no session no sync", func(t *testing.T) {
		syncer := &recordingSyncer{}
		rec := httptest.NewRecorder()
		SyncUser(syncer)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/organizer", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, syncer.synced())
	})

	t.Run("nil syncer is passthrough", func(t *testing.T) {
		next := okHandler()
		rec := httptest.NewRecorder()
		SyncUser(nil)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/organizer", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(okHandler(), mw("a"), mw("b"), mw("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRecover(t *testing.T) {
	h := Recover(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background()))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
}

func TestIsBrowserRequest(t *testing.T) {
	tests := []struct {
		path, accept string
		want         bool
	}{
		{path: "/profile", accept: "", want: true},
		{path: "/profile", accept: "text/html", want: true},
		{path: "/profile", accept: "application/json", want: false},
		{path: "/api/events", accept: "text/html", want: false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.accept != "" {
			req.Header.Set("Accept", tt.accept)
		}
		assert.Equal(t, tt.want, isBrowserRequest(req), tt.path+" "+tt.accept)
	}
}
