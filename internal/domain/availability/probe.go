// Package availability reports whether external services the app depends on
// are usable, based purely on the process configuration snapshot.
// Nothing here touches the network; callers use the results to degrade
// gracefully instead of failing deep inside a request.
package availability

import "strings"

// PlaceholderDatabaseURL is the sentinel used by deployments that have not
// been pointed at a real document store yet.
const PlaceholderDatabaseURL = "https://dummy.convex.cloud"

// Database status messages.
const (
	MessageNotSet      = "not set"
	MessagePlaceholder = "using placeholder"
	MessageConfigured  = "configured"
)

// ServiceConfig is the immutable, process-wide snapshot of the settings the
// probes look at. Empty or whitespace-only values count as absent.
type ServiceConfig struct {
	DatabaseURL            string
	PaymentsSecretKey      string
	PaymentsPublishableKey string
}

// DatabaseStatus describes document store availability.
type DatabaseStatus struct {
	Configured bool   `json:"configured"`
	Message    string `json:"message"`
}

// CheckDatabase reports whether the document store URL is usable.
func CheckDatabase(cfg ServiceConfig) DatabaseStatus {
	url := strings.TrimSpace(cfg.DatabaseURL)
	switch {
	case url == "":
		return DatabaseStatus{Configured: false, Message: MessageNotSet}
	case url == PlaceholderDatabaseURL:
		return DatabaseStatus{Configured: false, Message: MessagePlaceholder}
	default:
		return DatabaseStatus{Configured: true, Message: MessageConfigured}
	}
}

// PaymentsConfigured is true only when both the secret and the publishable
// key are present. Key format and validity are not checked.
func PaymentsConfigured(cfg ServiceConfig) bool {
	return present(cfg.PaymentsSecretKey) && present(cfg.PaymentsPublishableKey)
}

// Report aggregates every probe for status endpoints.
type Report struct {
	Database DatabaseStatus `json:"database"`
	Payments bool           `json:"payments"`
}

// Healthy reports whether the app can serve its database-backed features.
func (r Report) Healthy() bool { return r.Database.Configured }

// Check runs all probes against cfg.
func Check(cfg ServiceConfig) Report {
	return Report{
		Database: CheckDatabase(cfg),
		Payments: PaymentsConfigured(cfg),
	}
}

func present(s string) bool { return strings.TrimSpace(s) != "" }
