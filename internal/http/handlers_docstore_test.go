package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stepperslife/tickets/internal/mocks"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func docStoreRequest(method, target, id string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if id != "" {
		req.SetPathValue("id", id)
	}
	return req
}

func TestDocStoreHandlers_Unconfigured(t *testing.T) {
	h := &DocStoreHandlers{}
	calls := map[string]http.HandlerFunc{
		"events":  h.Events,
		"ticket":  h.Ticket,
		"upload":  h.UploadURL,
		"storage": h.StorageFile,
	}
	for name, fn := range calls {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			fn(rec, docStoreRequest(http.MethodGet, "/api/x/1", "1"))
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.Contains(t, rec.Body.String(), "database_unavailable")
		})
	}
}

func TestDocStoreHandlers_Events(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDocumentStore(ctrl)
	store.EXPECT().Events(gomock.Any()).Return(json.RawMessage(`[{"_id":"e1","name":"Chicago Steppers Ball"}]`), nil)

	rec := httptest.NewRecorder()
	(&DocStoreHandlers{Store: store}).Events(rec, docStoreRequest(http.MethodGet, "/api/events", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[{"_id":"e1","name":"Chicago Steppers Ball"}]`, rec.Body.String())
}

func TestDocStoreHandlers_Ticket(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		setup    func(*mocks.MockDocumentStore)
		wantCode int
		wantBody string
	}{
		{
			name: "found",
			id:   "t1",
			setup: func(m *mocks.MockDocumentStore) {
				m.EXPECT().TicketByID(gomock.Any(), "t1").Return(json.RawMessage(`{"_id":"t1"}`), nil)
			},
			wantCode: http.StatusOK,
			wantBody: `"_id":"t1"`,
		},
		{
			name: "missing",
			id:   "t2",
			setup: func(m *mocks.MockDocumentStore) {
				m.EXPECT().TicketByID(gomock.Any(), "t2").Return(nil, nil)
			},
			wantCode: http.StatusNotFound,
			wantBody: "not_found",
		},
		{
			name: "timeout",
			id:   "t3",
			setup: func(m *mocks.MockDocumentStore) {
				m.EXPECT().TicketByID(gomock.Any(), "t3").
					Return(nil, fmt.Errorf("query: %w", context.DeadlineExceeded))
			},
			wantCode: http.StatusGatewayTimeout,
			wantBody: "timeout",
		},
		{
			name: "upstream failure",
			id:   "t4",
			setup: func(m *mocks.MockDocumentStore) {
				m.EXPECT().TicketByID(gomock.Any(), "t4").Return(nil, errors.New("convex: 500"))
			},
			wantCode: http.StatusBadGateway,
			wantBody: "document_store_error",
		},
		{
			name:     "blank id",
			id:       "  ",
			setup:    func(*mocks.MockDocumentStore) {},
			wantCode: http.StatusBadRequest,
			wantBody: "validation",
		},
		{
			name:     "oversized id",
			id:       strings.Repeat("a", maxDocumentIDLength+1),
			setup:    func(*mocks.MockDocumentStore) {},
			wantCode: http.StatusBadRequest,
			wantBody: "validation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mocks.NewMockDocumentStore(ctrl)
			tt.setup(store)

			rec := httptest.NewRecorder()
			(&DocStoreHandlers{Store: store}).Ticket(rec, docStoreRequest(http.MethodGet, "/api/tickets/x", tt.id))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestDocStoreHandlers_UploadURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDocumentStore(ctrl)
	store.EXPECT().GenerateUploadURL(gomock.Any()).Return("https://upload.example.com/abc", nil)

	rec := httptest.NewRecorder()
	(&DocStoreHandlers{Store: store}).UploadURL(rec, docStoreRequest(http.MethodPost, "/api/uploads", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"upload_url":"https://upload.example.com/abc"}`, rec.Body.String())
}

func TestDocStoreHandlers_StorageFile(t *testing.T) {
	t.Run("redirects", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockDocumentStore(ctrl)
		store.EXPECT().StorageURL(gomock.Any(), "kg2abc").Return("https://files.example.com/kg2abc", nil)

		rec := httptest.NewRecorder()
		(&DocStoreHandlers{Store: store}).StorageFile(rec, docStoreRequest(http.MethodGet, "/api/storage/kg2abc", "kg2abc"))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "https://files.example.com/kg2abc", rec.Header().Get("Location"))
	})

	t.Run("missing file", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockDocumentStore(ctrl)
		store.EXPECT().StorageURL(gomock.Any(), "gone").Return("", nil)

		rec := httptest.NewRecorder()
		(&DocStoreHandlers{Store: store}).StorageFile(rec, docStoreRequest(http.MethodGet, "/api/storage/gone", "gone"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
