package httpx

import (
	"io"
	"net/http"

	"github.com/stepperslife/tickets/internal/domain/availability"
)

const healthResponse = `{"status":"ok"}`

// healthHandler returns a simple 200 OK status for readiness/liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	// Nothing more to do if the client connection is gone.
	_, _ = io.WriteString(w, healthResponse)
}

// statusHandler reports which backing services are configured.
// It answers 503 while the document store is unusable so load balancers can hold traffic.
func statusHandler(report availability.Report) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		code := http.StatusOK
		if !report.Healthy() {
			code = http.StatusServiceUnavailable
		}
		WriteJSON(w, code, report)
	}
}
