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

	httpapi "github.com/fairworkhq/payday/internal/auth/http"
	"github.com/fairworkhq/payday/internal/auth/mail"
	"github.com/fairworkhq/payday/internal/auth/service"
	"github.com/fairworkhq/payday/internal/auth/store"
	"github.com/fairworkhq/payday/internal/auth/store/drivers/sqlite"
	"github.com/fairworkhq/payday/pkg/cryptox"
	"github.com/fairworkhq/payday/pkg/jwtx"
	"github.com/fairworkhq/payday/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *jwtx.Signer
	mailer mail.Mailer

	loginService        *service.LoginService
	mfaService          *service.MFAService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "payday-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSigner(); err != nil {
		return nil, err
	}

	app.initMailer()
	app.initServices()

	if err := app.seedAccount(context.Background()); err != nil {
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

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
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase opens the store and applies migrations.
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

// initSigner loads or generates the Ed25519 session-token key. Without a
// configured key file the key is ephemeral and sessions die with the process.
func (app *Application) initSigner() error {
	var (
		signer *jwtx.Signer
		err    error
	)

	if app.cfg.SigningKeyFile != "" {
		signer, err = jwtx.LoadSigner(app.cfg.SigningKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load signing key: %w", err)
		}
		app.logger.Info("signing key loaded", "kid", signer.KID(), "path", app.cfg.SigningKeyFile)
	} else {
		signer, err = jwtx.NewEphemeralSigner()
		if err != nil {
			return fmt.Errorf("failed to generate signing key: %w", err)
		}
		app.logger.Warn("using ephemeral signing key, sessions will not survive restarts", "kid", signer.KID())
	}

	app.signer = signer
	return nil
}

// initMailer picks SMTP when configured, otherwise logs codes (dev).
func (app *Application) initMailer() {
	if app.cfg.SMTPHost == "" {
		app.mailer = mail.LogMailer{}
		app.logger.Warn("no SMTP host configured, one-time codes will be logged")
		return
	}

	app.mailer = mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		User:     app.cfg.SMTPUser,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.SMTPFrom,
		AppName:  app.cfg.AppName,
	})
}

func (app *Application) initServices() {
	app.loginService = &service.LoginService{
		Store:        app.db,
		Signer:       app.signer,
		Mailer:       app.mailer,
		Issuer:       app.cfg.Issuer,
		SessionTTL:   app.cfg.SessionTTL,
		TicketTTL:    app.cfg.TicketTTL,
		EmailCodeTTL: app.cfg.EmailCodeTTL,
	}

	app.mfaService = &service.MFAService{
		Store:         app.db,
		Mailer:        app.mailer,
		AppName:       app.cfg.AppName,
		EnrollmentTTL: app.cfg.EnrollmentTTL,
		EmailCodeTTL:  app.cfg.EmailCodeTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP wires the router and server.
func (app *Application) initHTTP() {
	verifier := jwtx.NewVerifier(app.signer.Public(), app.cfg.Issuer)

	router := httpapi.NewRouter(
		app.signer,
		verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.LoginService = app.loginService
	router.MFAService = app.mfaService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
