package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/stepperslife/tickets/internal/domain/auth"
	"github.com/stepperslife/tickets/internal/domain/availability"
	"github.com/stepperslife/tickets/internal/domain/routing"
	"github.com/stepperslife/tickets/internal/ports"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth AuthServiceInterface
	// Sync mirrors users into the external store. Optional.
	Sync UserSyncer
	// DocStore is nil when the document store is not configured.
	DocStore ports.DocumentStore
	// Availability is computed once from the startup configuration.
	Availability availability.Report
	CookieDomain string
	CallbackURL  string
	Logger       *slog.Logger
}

// NewRouter creates the HTTP handler with request ids, panic recovery and logging applied.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)
	mux.Handle("GET /api/status", statusHandler(services.Availability))

	registerAuthRoutes(mux, &AuthHandlers{
		Svc:          services.Auth,
		Sync:         services.Sync,
		CookieDomain: services.CookieDomain,
		CallbackURL:  services.CallbackURL,
		Logger:       logger,
	})
	registerLandingRoutes(mux, services)
	registerDocStoreRoutes(mux, services, &DocStoreHandlers{Store: services.DocStore, Logger: logger})

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: errors.New("not found")})
	})

	return Chain(mux, RequestID, Recover(logger), Logging(logger))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
	mux.HandleFunc("GET /auth/after-login", h.AfterLogin)
	mux.HandleFunc("GET /auth/signed-out", h.SignedOut)
}

// registerLandingRoutes wires the three role landing pages. Each re-checks the
// trusted role and then mirrors the user to the external store.
func registerLandingRoutes(mux *http.ServeMux, s RouterServices) {
	for _, route := range []routing.Route{routing.RouteCustomerProfile, routing.RouteOrganizer, routing.RouteAdmin} {
		mux.Handle("GET "+string(route), Chain(landingPage(route),
			RequireRole(s.Auth, landingRole(route)),
			SyncUser(s.Sync),
		))
	}
}

func registerDocStoreRoutes(mux *http.ServeMux, s RouterServices, h *DocStoreHandlers) {
	mux.Handle("GET /api/events", OptionalAuth(s.Auth)(http.HandlerFunc(h.Events)))
	mux.Handle("GET /api/tickets/{id}", RequireAuth(s.Auth)(http.HandlerFunc(h.Ticket)))
	mux.Handle("POST /api/uploads", RequireRole(s.Auth, domainauth.RoleOrganizer)(http.HandlerFunc(h.UploadURL)))
	mux.HandleFunc("GET /api/storage/{id}", h.StorageFile)
}
