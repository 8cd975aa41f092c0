package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	domainauth "github.com/stepperslife/tickets/internal/domain/auth"
	"github.com/stepperslife/tickets/internal/domain/usersync"
	"github.com/stepperslife/tickets/internal/observability/metrics"
	"github.com/stepperslife/tickets/internal/observability/statsd"
	"github.com/stepperslife/tickets/internal/ports"
)

// ErrMissingUserID is returned when a record has no external user id to key the upsert on.
var ErrMissingUserID = errors.New("sync record has no user id")

// SyncError reports a failed upsert for a specific user.
type SyncError struct {
	UserID string
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync user %q: %v", e.UserID, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// UserSyncServiceOptions groups dependencies for UserSyncService.
type UserSyncServiceOptions struct {
	Store  ports.UserStore // Required unless sync is disabled; nil disables sync.
	Logger *slog.Logger
	Config UserSyncConfig
}

// UserSyncConfig tunes background sync behavior.
type UserSyncConfig struct {
	// Timeout bounds a background upsert. Zero leaves it to the store's transport.
	Timeout time.Duration
	// Backend labels metrics and logs (convex, mongo, postgres, none).
	Backend string
	Metrics statsd.Sink
}

// UserSyncService pushes identity facts to the external user store.
// Background syncs are detached from the triggering request and their
// failures are logged and dropped; nothing is retried.
type UserSyncService struct {
	store   ports.UserStore
	logger  *slog.Logger
	timeout time.Duration
	backend string
	metrics statsd.Sink

	wg sync.WaitGroup
}

// NewUserSyncService constructs a UserSyncService.
func NewUserSyncService(opts UserSyncServiceOptions) *UserSyncService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := opts.Store
	if store == nil {
		store = noopUserStore{}
	}
	backend := strings.TrimSpace(opts.Config.Backend)
	if backend == "" {
		backend = "unknown"
	}
	return &UserSyncService{
		store:   store,
		logger:  logger.With("component", "user_sync"),
		timeout: opts.Config.Timeout,
		backend: backend,
		metrics: opts.Config.Metrics,
	}
}

// SyncToExternalStore upserts rec into the external store and reports the outcome.
// Repeated calls with the same ExternalUserID update one record.
func (s *UserSyncService) SyncToExternalStore(ctx context.Context, rec usersync.SyncRecord) error {
	if strings.TrimSpace(rec.ExternalUserID) == "" {
		return &SyncError{Err: ErrMissingUserID}
	}

	start := time.Now()
	err := s.store.UpsertUser(ctx, rec)
	s.record(err, time.Since(start))
	if err != nil {
		return &SyncError{UserID: rec.ExternalUserID, Err: err}
	}
	return nil
}

// SyncIdentity builds the record for id and syncs it in the background.
func (s *UserSyncService) SyncIdentity(ctx context.Context, id domainauth.Identity) {
	s.SyncInBackground(ctx, usersync.BuildSyncRecord(id))
}

// SyncInBackground runs SyncToExternalStore on a goroutine that outlives ctx's
// cancellation. Errors are logged and swallowed.
func (s *UserSyncService) SyncInBackground(ctx context.Context, rec usersync.SyncRecord) {
	detached := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		syncCtx := detached
		if s.timeout > 0 {
			var cancel context.CancelFunc
			syncCtx, cancel = context.WithTimeout(detached, s.timeout)
			defer cancel()
		}

		if err := s.SyncToExternalStore(syncCtx, rec); err != nil {
			s.logger.Warn("user sync failed",
				"user_id", rec.ExternalUserID,
				"backend", s.backend,
				"error", err,
			)
			return
		}
		s.logger.Debug("user synced", "user_id", rec.ExternalUserID, "backend", s.backend)
	}()
}

// Wait blocks until all background syncs started so far have finished.
func (s *UserSyncService) Wait() {
	s.wg.Wait()
}

func (s *UserSyncService) record(err error, elapsed time.Duration) {
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.EmitUserSync(s.metrics, metrics.UserSyncMetric{
		Backend:  s.backend,
		Result:   result,
		Duration: elapsed,
		Err:      err,
	})
}

// noopUserStore accepts every record. It backs USER_STORE=none.
type noopUserStore struct{}

func (noopUserStore) UpsertUser(context.Context, usersync.SyncRecord) error { return nil }
