package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/suhastanajipatil1735-oss/super-management/internal/academy/http"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/remote"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/service"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/store"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/store/drivers/sqlite"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the academy service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db        store.Store
	authority remote.Authority

	loginService       *service.LoginService
	entitlementService *service.EntitlementService
	linkService        *service.LinkService
	recordsService     *service.RecordsService
	adminService       *service.AdminService
	reconciler         *service.Reconciler
	sweeper            *service.Sweeper

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "academy-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initAuthority(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.sweeper.Start()

	app.logger.Info("academy service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"remote_backend", app.cfg.RemoteBackend,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down academy service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.sweeper.Stop()
	app.reconciler.Close()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("academy service stopped")
	return nil
}

// initDatabase opens the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initAuthority selects the approval backend binding. Callers never see the
// difference; the binding is swappable by configuration alone.
func (app *Application) initAuthority() error {
	switch app.cfg.RemoteBackend {
	case "airtable":
		if app.cfg.AirtableToken == "" || app.cfg.AirtableBaseID == "" {
			return fmt.Errorf("airtable backend requires ACADEMY_AIRTABLE_TOKEN and ACADEMY_AIRTABLE_BASE_ID")
		}
		app.authority = remote.NewAirtableAuthority(
			app.cfg.AirtableBaseURL,
			app.cfg.AirtableToken,
			app.cfg.AirtableBaseID,
			app.cfg.AirtableTable,
		)
	case "sheets":
		if app.cfg.SheetsScriptURL == "" {
			return fmt.Errorf("sheets backend requires ACADEMY_SHEETS_SCRIPT_URL")
		}
		app.authority = remote.NewSheetsAuthority(app.cfg.SheetsScriptURL)
	case "supabase":
		if app.cfg.SupabaseURL == "" || app.cfg.SupabaseKey == "" {
			return fmt.Errorf("supabase backend requires ACADEMY_SUPABASE_URL and ACADEMY_SUPABASE_KEY")
		}
		app.authority = remote.NewSupabaseAuthority(app.cfg.SupabaseURL, app.cfg.SupabaseKey)
	case "none", "":
		app.authority = remote.Disabled{}
		app.logger.Warn("no approval backend configured, reconciliation disabled")
	default:
		return fmt.Errorf("unknown remote backend %q", app.cfg.RemoteBackend)
	}
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.reconciler = service.NewReconciler(app.db, app.authority, app.cfg.RemoteTimeout)

	app.loginService = &service.LoginService{
		Store:      app.db,
		Reconciler: app.reconciler,
		AdminName:  app.cfg.AdminName,
		AdminPhone: app.cfg.AdminPhone,
	}
	app.entitlementService = &service.EntitlementService{
		Store:          app.db,
		Authority:      app.authority,
		ActivationCode: app.cfg.ActivationCode,
	}
	app.linkService = &service.LinkService{
		Store:       app.db,
		JoinBaseURL: app.cfg.JoinLinkBaseURL,
	}
	app.recordsService = &service.RecordsService{Store: app.db}
	app.adminService = &service.AdminService{Store: app.db}

	app.sweeper = service.NewSweeper(app.reconciler, app.logger, app.cfg.SweepInterval)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.LoginService = app.loginService
	router.EntitlementService = app.entitlementService
	router.LinkService = app.linkService
	router.RecordsService = app.recordsService
	router.AdminService = app.adminService
	router.Reconciler = app.reconciler
	router.AdminPhone = app.cfg.AdminPhone
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
