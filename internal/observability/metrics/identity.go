package metrics

import (
	"time"

	obserrors "github.com/stepperslife/tickets/internal/observability/errors"
	"github.com/stepperslife/tickets/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metric names.
const (
	LoginCount       = "auth.login"
	UserSyncCount    = "user_sync.attempt"
	UserSyncDuration = "user_sync.duration"
)

// LoginMetric describes a completed (or failed) login callback.
type LoginMetric struct {
	Provider    string
	Result      string
	Destination string // landing route; empty on failure
	Err         error
}

// EmitLogin counts a login attempt.
func EmitLogin(sink statsd.Sink, in LoginMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"provider": in.Provider,
		"result":   in.Result,
	}
	if in.Destination != "" {
		tags["destination"] = in.Destination
	}
	addErrorClass(tags, in.Result, in.Err)
	sink.Count(LoginCount, 1, tags)
}

// UserSyncMetric describes one upsert against the external user store.
type UserSyncMetric struct {
	Backend  string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitUserSync counts a sync attempt and records its latency.
func EmitUserSync(sink statsd.Sink, in UserSyncMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"backend": in.Backend,
		"result":  in.Result,
	}
	addErrorClass(tags, in.Result, in.Err)
	sink.Count(UserSyncCount, 1, tags)
	if in.Duration > 0 {
		sink.Timing(UserSyncDuration, in.Duration, CloneTags(tags))
	}
}

func addErrorClass(tags map[string]string, result string, err error) {
	if err == nil || result != ResultError {
		return
	}
	if class := obserrors.Classify(err); class != "" {
		tags["error_class"] = class
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
