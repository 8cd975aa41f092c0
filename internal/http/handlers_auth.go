package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/stepperslife/tickets/internal/domain/auth"
	"github.com/stepperslife/tickets/internal/domain/routing"
	"github.com/stepperslife/tickets/internal/service"
)

// Cookie names shared by the auth handlers and middleware.
const (
	sessionCookie      = "session_id"
	stateCookie        = "oauth_state"
	nonceCookie        = "oauth_nonce"
	postLoginCookie    = "post_login_redirect"
	flowCookieLifetime = 600 // seconds
)

// AuthServiceInterface defines the auth operations the HTTP layer depends on.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, redirectURL, loginHint string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
	Destination(sess *domainauth.Session) routing.Route
}

// UserSyncer pushes an identity to the external user store without blocking the caller.
type UserSyncer interface {
	SyncIdentity(ctx context.Context, id domainauth.Identity)
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	Sync         UserSyncer // optional
	CookieDomain string
	// CallbackURL is where the provider returns the user. Defaults to /auth/callback.
	CallbackURL string
	Logger      *slog.Logger
}

func (h *AuthHandlers) callbackURL() string {
	if h.CallbackURL != "" {
		return h.CallbackURL
	}
	return "/auth/callback"
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login starts the provider flow.
// GET /auth/login?redirect_uri=<optional deep link>&login_hint=<optional email>.
// When redirect_uri is omitted the callback lets the role router pick the landing page.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	deepLink := q.Get("redirect_uri")
	if safeRedirectPath(deepLink) != deepLink {
		// Unsafe targets are dropped so the role router decides instead.
		deepLink = ""
	}

	result, err := h.Svc.BeginLogin(r.Context(), h.callbackURL(), q.Get("login_hint"))
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "login_failed", Err: err})
		return
	}

	h.setFlowCookies(w, r, flowCookies{State: result.State, Nonce: result.Nonce, DeepLink: deepLink})
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback completes the provider flow.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		})
		return
	}
	if state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_state",
			Err:     errors.New("state parameter is required"),
		})
		return
	}

	sc, err := r.Cookie(stateCookie)
	if err != nil || sc.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nc, err := r.Cookie(nonceCookie)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nc.Value,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "login completion failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_completion_failed",
			Err:     err,
		})
		return
	}

	h.setSessionCookie(w, r, result.Session)
	h.clearCookie(w, r, stateCookie)
	h.clearCookie(w, r, nonceCookie)

	if h.Sync != nil {
		h.Sync.SyncIdentity(r.Context(), result.Identity)
	}

	target := string(result.Destination)
	if deepLink := h.takeDeepLink(w, r); deepLink != "" {
		target = deepLink
	}
	if target == "" {
		target = string(routing.DecideUnauthenticatedDestination())
	}
	h.logger().InfoContext(r.Context(), "login completed",
		"user_id", result.Session.UserID,
		"role", result.Session.Role,
		"redirect", target,
	)
	http.Redirect(w, r, target, http.StatusFound)
}

// AfterLogin sends the caller to the landing page the role router picks.
// GET /auth/after-login.
func (h *AuthHandlers) AfterLogin(w http.ResponseWriter, r *http.Request) {
	sess := getSessionFromRequest(r, h.Svc)
	http.Redirect(w, r, string(h.Svc.Destination(sess)), http.StatusFound)
}

// Logout ends the session.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), c.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}
	h.clearCookie(w, r, sessionCookie)

	redirectURI := r.FormValue("redirect_uri")
	if redirectURI == "" {
		redirectURI = string(routing.DecideUnauthenticatedDestination())
	}

	u := url.URL{Path: "/auth/signed-out"}
	q := url.Values{}
	q.Set("redirect_uri", safeRedirectPath(redirectURI))
	u.RawQuery = q.Encode()
	signedOutURL := u.String()

	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": signedOutURL,
		})
		return
	}
	http.Redirect(w, r, signedOutURL, http.StatusFound)
}

// SignedOut confirms the sign-out and points back at the login flow.
// GET /auth/signed-out?redirect_uri=<path>.
func (h *AuthHandlers) SignedOut(w http.ResponseWriter, r *http.Request) {
	login := url.URL{Path: "/auth/login"}
	if raw := r.URL.Query().Get("redirect_uri"); raw != "" {
		q := url.Values{}
		q.Set("redirect_uri", safeRedirectPath(raw))
		login.RawQuery = q.Encode()
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "signed_out",
		"login_url": login.String(),
	})
}

// Status reports the current session.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	sess, err := h.Svc.GetSession(r.Context(), c.Value)
	if err != nil {
		h.clearCookie(w, r, sessionCookie)
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          sessionView(sess),
		"destination":   h.Svc.Destination(sess),
		"expires_at":    sess.ExpiresAt,
	})
}

func sessionView(s *domainauth.Session) map[string]any {
	return map[string]any{
		"id":         s.UserID,
		"name":       s.FullName,
		"first_name": s.FirstName,
		"last_name":  s.LastName,
		"email":      s.Email,
		"role":       s.Role,
		"hint":       s.Hint,
	}
}

type flowCookies struct {
	State    string
	Nonce    string
	DeepLink string // empty when the caller did not ask for a specific page
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func (h *AuthHandlers) cookie(r *http.Request, name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

func (h *AuthHandlers) setFlowCookies(w http.ResponseWriter, r *http.Request, p flowCookies) {
	http.SetCookie(w, h.cookie(r, stateCookie, p.State, flowCookieLifetime))
	http.SetCookie(w, h.cookie(r, nonceCookie, p.Nonce, flowCookieLifetime))
	if p.DeepLink != "" {
		http.SetCookie(w, h.cookie(r, postLoginCookie, p.DeepLink, flowCookieLifetime))
	} else {
		h.clearCookie(w, r, postLoginCookie)
	}
}

func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	http.SetCookie(w, h.cookie(r, sessionCookie, s.ID, int(time.Until(s.ExpiresAt).Seconds())))
}

// clearCookie expires a cookie, mirroring the attributes used when it was set.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	c := h.cookie(r, name, "", -1)
	c.Expires = time.Unix(0, 0).UTC()
	http.SetCookie(w, c)
}

// takeDeepLink returns the explicit post-login target, if any, and clears it.
func (h *AuthHandlers) takeDeepLink(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(postLoginCookie)
	if err != nil {
		return ""
	}
	h.clearCookie(w, r, postLoginCookie)
	if c.Value == "" || safeRedirectPath(c.Value) != c.Value {
		return ""
	}
	return c.Value
}

// safeRedirectPath ensures the redirect is a same-origin relative path
// starting with "/". Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(candidate, "//") {
		return "/"
	}
	return candidate
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}
