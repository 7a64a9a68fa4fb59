package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/accounts/internal/accounts/http"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/shell"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/csvfile"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/accounts/internal/accounts/verify"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the accounts service: user store, verification
// provider, services and the HTTP server. The terminal shell reuses the
// same wiring without the server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	gateway verify.Gateway

	// Services
	loginService        *service.LoginService
	registrationService *service.RegistrationService
	attempts            *service.AttemptRegistry
	passService         *service.PassService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "accounts",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  cfg.LogOutput,
		}),
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	app.initGateway()

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler is the HTTP API with its middleware chain.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the HTTP server and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("accounts service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"store", app.cfg.StoreDriver,
		"provider", app.cfg.VerifyProvider,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down accounts service...")

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
		app.logger.Error("error closing user store", "error", err)
		return err
	}

	app.logger.Info("accounts service stopped")
	return nil
}

// RunShell runs the interactive terminal front end on in/out until the user
// quits or ctx is cancelled. The user store is closed on return.
func (app *Application) RunShell(ctx context.Context, in io.Reader, out io.Writer) error {
	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing user store", "error", err)
		}
	}()

	ctx = slogx.WithContext(ctx, app.logger)
	sh := shell.New(service.NewController(app.loginService), app.registrationService, in, out)
	return sh.Run(ctx)
}

// initStore opens the configured user store and prepares its schema
func (app *Application) initStore() error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.StoreDriver {
	case StoreDriverCSV:
		db = csvfile.NewStore(app.cfg.UsersCSVFile)
	default:
		db, err = sqlite.NewStore(app.cfg.DatabaseFile)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize user store: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply user store migrations: %w", err)
	}

	app.logger.Info("user store ready", "driver", app.cfg.StoreDriver)
	return nil
}

// initGateway selects the verification provider
func (app *Application) initGateway() {
	switch app.cfg.VerifyProvider {
	case ProviderLocal:
		app.logger.Warn("using local verification provider; codes are written to the log")
		app.gateway = verify.NewLocalGateway(verify.LogDispatcher{Logger: app.logger})
	default:
		app.gateway = verify.NewTwilioGateway(verify.TwilioConfig{
			AccountSID:  app.cfg.TwilioAccountSID,
			AuthToken:   app.cfg.TwilioAuthToken,
			ServiceSID:  app.cfg.TwilioServiceSID,
			BaseURL:     app.cfg.TwilioBaseURL,
			Logger:      app.logger,
			MaxFailures: app.cfg.BreakerMaxFailures,
			OpenTimeout: app.cfg.BreakerOpenTimeout,
		})
		if app.cfg.TwilioAccountSID == "" || app.cfg.TwilioAuthToken == "" || app.cfg.TwilioServiceSID == "" {
			app.logger.Warn("twilio credentials are incomplete; logins will fail to send codes")
		}
	}
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	app.loginService = &service.LoginService{
		Store:       app.db,
		Gateway:     app.gateway,
		Policy:      app.cfg.DestinationPolicy(),
		MaxAttempts: app.cfg.VerifyMaxAttempts,
	}
	app.registrationService = &service.RegistrationService{Store: app.db}
	app.attempts = service.NewAttemptRegistry(app.loginService, app.cfg.LoginAttemptTTL)

	passes, err := service.NewPassService(app.cfg.PassIssuer, app.cfg.PassTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize pass service: %w", err)
	}
	app.passService = passes

	app.housekeepingService = service.NewHousekeepingService(
		app.attempts,
		app.passService,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.RegistrationService = app.registrationService
	router.Attempts = app.attempts
	router.PassService = app.passService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
