package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/stepperslife/tickets/internal/errors"
	"github.com/stepperslife/tickets/internal/ports"
)

const maxDocumentIDLength = 128

// DocStoreHandlers proxies reads and upload URLs to the hosted document store.
// A nil Store answers every route with 503 database_unavailable.
type DocStoreHandlers struct {
	Store  ports.DocumentStore
	Logger *slog.Logger
}

func (h *DocStoreHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *DocStoreHandlers) available(w http.ResponseWriter) bool {
	if h.Store != nil {
		return true
	}
	WriteAppError(w, apperrors.Unavailable("database is not configured"))
	return false
}

// Events lists published events.
// GET /api/events.
func (h *DocStoreHandlers) Events(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	events, err := h.Store.Events(r.Context())
	if err != nil {
		h.fail(w, r, "list events", err)
		return
	}
	WriteRawJSON(w, http.StatusOK, events)
}

// Ticket returns one ticket document.
// GET /api/tickets/{id}.
func (h *DocStoreHandlers) Ticket(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	id, ok := documentID(w, r)
	if !ok {
		return
	}
	ticket, err := h.Store.TicketByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get ticket", err)
		return
	}
	if ticket == nil {
		WriteAppError(w, apperrors.NotFound("ticket not found"))
		return
	}
	WriteRawJSON(w, http.StatusOK, ticket)
}

// UploadURL issues a short-lived direct upload URL.
// POST /api/uploads.
func (h *DocStoreHandlers) UploadURL(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	uploadURL, err := h.Store.GenerateUploadURL(r.Context())
	if err != nil {
		h.fail(w, r, "generate upload url", err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"upload_url": uploadURL})
}

// StorageFile redirects to the servable URL of a stored file.
// GET /api/storage/{id}.
func (h *DocStoreHandlers) StorageFile(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	id, ok := documentID(w, r)
	if !ok {
		return
	}
	fileURL, err := h.Store.StorageURL(r.Context(), id)
	if err != nil {
		h.fail(w, r, "resolve storage url", err)
		return
	}
	if fileURL == "" {
		WriteAppError(w, apperrors.NotFound("file not found"))
		return
	}
	http.Redirect(w, r, fileURL, http.StatusFound)
}

func documentID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" || len(id) > maxDocumentIDLength {
		WriteAppError(w, apperrors.ValidationField("id", "id must be between 1 and 128 characters"))
		return "", false
	}
	return id, true
}

// fail reports an upstream failure. Timeouts map to 504; everything else is a 502.
func (h *DocStoreHandlers) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger().WarnContext(r.Context(), "document store call failed", "op", op, "error", err)
	code := apperrors.ErrCodeUpstream
	if errors.Is(err, context.DeadlineExceeded) {
		code = apperrors.ErrCodeTimeout
	}
	WriteAppError(w, apperrors.Wrap(err, code, "document store "+op+" failed"))
}
