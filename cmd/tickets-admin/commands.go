package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/stepperslife/tickets/config"
	"github.com/stepperslife/tickets/internal/bootstrap"
	domainauth "github.com/stepperslife/tickets/internal/domain/auth"
	"github.com/stepperslife/tickets/internal/domain/availability"
	"github.com/stepperslife/tickets/internal/domain/routing"
	"github.com/stepperslife/tickets/internal/domain/usersync"
	"github.com/stepperslife/tickets/internal/ports"
	"github.com/stepperslife/tickets/internal/service"
)

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultSyncTimeout      = 30 * time.Second
)

type migrateOptions struct {
	Timeout time.Duration
}

type routeOptions struct {
	Email     string
	First     string
	Last      string
	Organizer bool
	Seller    bool
	RoleClaim string
}

type syncUserOptions struct {
	UserID  string
	Email   string
	First   string
	Last    string
	Name    string
	Timeout time.Duration
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(ctx, cmdCtx.Config.Postgres, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	cmdCtx.Logger.Info("running database migrations")
	return bootstrap.RunMigrations(ctx, db, cmdCtx.Logger)
}

func runStatus(cmdCtx *commandContext, _ []string) error {
	report := availability.Check(cmdCtx.Config.ServiceSnapshot())

	tw := tabwriter.NewWriter(cmdCtx.Out, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"database", fmt.Sprintf("%s (configured=%t)", report.Database.Message, report.Database.Configured)},
		{"payments", fmt.Sprintf("configured=%t", report.Payments)},
		{"auth mode", string(cmdCtx.Config.Auth.Mode)},
		{"user store", string(cmdCtx.Config.UserSync.Store)},
		{"healthy", fmt.Sprintf("%t", report.Healthy())},
	}
	for _, r := range rows {
		if err := writef(tw, "%s\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runRoute(cmdCtx *commandContext, args []string) error {
	opts, err := parseRouteFlags(args)
	if err != nil {
		return err
	}
	return writef(cmdCtx.Out, "%s\n", decideRoute(cmdCtx.Config.Auth, opts))
}

func decideRoute(auth config.AuthConfig, opts routeOptions) routing.Route {
	hint := domainauth.RoleHint{UnsafeRole: opts.RoleClaim}
	if opts.Organizer {
		hint.IsOrganizer = &opts.Organizer
	}
	if opts.Seller {
		hint.IsSeller = &opts.Seller
	}
	return routing.NewRouter(auth.AdminEmails...).DecidePostLoginDestination(&routing.Principal{
		PrimaryEmail: opts.Email,
		DisplayName:  routing.NameParts{First: opts.First, Last: opts.Last},
		Signals:      hint.Signals(),
	})
}

func runSyncUser(cmdCtx *commandContext, args []string) error {
	opts, err := parseSyncUserFlags(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	store, closeStore, err := openUserStore(ctx, cmdCtx)
	if err != nil {
		return err
	}
	defer closeStore()
	if store == nil {
		return fmt.Errorf("user store %q is disabled or not configured", cmdCtx.Config.UserSync.Store)
	}

	syncSvc := service.NewUserSyncService(service.UserSyncServiceOptions{
		Store:  store,
		Logger: cmdCtx.Logger,
		Config: service.UserSyncConfig{Backend: string(cmdCtx.Config.UserSync.Store)},
	})

	var emails []string
	if opts.Email != "" {
		emails = []string{opts.Email}
	}
	rec := usersync.BuildSyncRecord(domainauth.Identity{
		UserID:    opts.UserID,
		FullName:  opts.Name,
		FirstName: opts.First,
		LastName:  opts.Last,
		Emails:    emails,
	})
	if err := syncSvc.SyncToExternalStore(ctx, rec); err != nil {
		return err
	}
	return writef(cmdCtx.Out, "synced %s (%s) to %s\n", rec.ExternalUserID, rec.Name, cmdCtx.Config.UserSync.Store)
}

// openUserStore connects only what the selected backend needs; sessions are not touched.
//
//nolint:ireturn // the backend is chosen at runtime from USER_STORE.
func openUserStore(ctx context.Context, cmdCtx *commandContext) (ports.UserStore, func(), error) {
	cfg := &cmdCtx.Config
	infra := &bootstrap.Infrastructure{}
	closeAll := func() { _ = infra.Close(ctx, cmdCtx.Logger) }

	switch cfg.UserSync.Store {
	case config.UserStorePostgres:
		db, err := bootstrap.ConnectDB(ctx, cfg.Postgres, cmdCtx.Logger)
		if err != nil {
			return nil, closeAll, fmt.Errorf("connect db: %w", err)
		}
		infra.DB = db
	case config.UserStoreMongo:
		client, err := bootstrap.ConnectMongo(ctx, cfg.Mongo, cmdCtx.Logger)
		if err != nil {
			return nil, closeAll, err
		}
		infra.Mongo = client
	}

	convexClient, err := bootstrap.BuildDocumentStore(cfg, cmdCtx.Logger)
	if err != nil {
		return nil, closeAll, err
	}
	store, err := bootstrap.BuildUserStore(ctx, bootstrap.UserStoreDeps{
		Config: cfg,
		Infra:  infra,
		Convex: convexClient,
		Logger: cmdCtx.Logger,
	})
	return store, closeAll, err
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout,
		"Maximum duration to wait for migrations to complete")

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseRouteFlags(args []string) (routeOptions, error) {
	fs := flag.NewFlagSet("route", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts routeOptions
	fs.StringVar(&opts.Email, "email", "", "Primary email address")
	fs.StringVar(&opts.First, "first", "", "First name")
	fs.StringVar(&opts.Last, "last", "", "Last name")
	fs.BoolVar(&opts.Organizer, "organizer", false, "Set the is_organizer profile flag")
	fs.BoolVar(&opts.Seller, "seller", false, "Set the is_seller profile flag")
	fs.StringVar(&opts.RoleClaim, "role-claim", "", "Unsafe role claim, e.g. organizer")

	if err := fs.Parse(args); err != nil {
		return routeOptions{}, err
	}
	opts.Email = strings.TrimSpace(opts.Email)
	return opts, nil
}

func parseSyncUserFlags(args []string) (syncUserOptions, error) {
	fs := flag.NewFlagSet("sync-user", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts syncUserOptions
	fs.StringVar(&opts.UserID, "id", "", "Identity provider user id (required)")
	fs.StringVar(&opts.Email, "email", "", "Primary email address")
	fs.StringVar(&opts.First, "first", "", "First name")
	fs.StringVar(&opts.Last, "last", "", "Last name")
	fs.StringVar(&opts.Name, "name", "", "Full display name")
	fs.DurationVar(&opts.Timeout, "timeout", defaultSyncTimeout, "Maximum duration for the upsert")

	if err := fs.Parse(args); err != nil {
		return syncUserOptions{}, err
	}
	if opts.UserID = strings.TrimSpace(opts.UserID); opts.UserID == "" {
		return syncUserOptions{}, errors.New("--id is required")
	}
	if opts.Timeout <= 0 {
		return syncUserOptions{}, errors.New("--timeout must be greater than zero")
	}
	opts.Email = strings.TrimSpace(opts.Email)
	return opts, nil
}
