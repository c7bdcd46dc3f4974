package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/domain"
	httpapi "github.com/aussiebroadwan/lmsconsole/internal/mockapi/http"
	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/service"
	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/store"
	"github.com/aussiebroadwan/lmsconsole/pkg/cryptox"
	"github.com/aussiebroadwan/lmsconsole/pkg/httpx"
	"github.com/aussiebroadwan/lmsconsole/pkg/idx"
	"github.com/aussiebroadwan/lmsconsole/pkg/jwtx"
	"github.com/aussiebroadwan/lmsconsole/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application is the mock LMS backend with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *jwtx.Signer
	hasher *cryptox.Hasher

	authService         *service.AuthService
	lmsService          *service.LMSService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with seeded data and a ready HTTP server.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "lms-mock",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		db:     store.NewMemory(),
		hasher: cryptox.NewHasher(cfg.Pepper),
	}

	if err := app.initKeys(); err != nil {
		return nil, err
	}

	app.initServices()

	ctx := slogx.WithContext(context.Background(), app.logger)
	if err := app.seed(ctx); err != nil {
		return nil, fmt.Errorf("failed to seed data: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Handler exposes the routed handler, used to serve the mock from tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("lms mock starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	app.logger.Info("shutting down lms mock...")

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
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("lms mock stopped")
	return nil
}

func (app *Application) initKeys() error {
	key, err := cryptox.LoadOrGenerateEd25519Key(app.cfg.SigningKeyFile)
	if err != nil {
		return fmt.Errorf("failed to load signing key: %w", err)
	}

	signer, err := jwtx.NewSigner(idx.New().String(), key)
	if err != nil {
		return fmt.Errorf("failed to create signer: %w", err)
	}
	app.signer = signer

	if app.cfg.SigningKeyFile == "" {
		app.logger.Warn("using ephemeral signing key, tokens will not survive a restart")
	}
	return nil
}

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:      app.db,
		Signer:     app.signer,
		Hasher:     app.hasher,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}
	app.lmsService = &service.LMSService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) seed(ctx context.Context) error {
	seeder := &service.SeedService{Store: app.db, Hasher: app.hasher}
	return seeder.Seed(ctx, []service.SeedUser{
		{Email: app.cfg.AdminEmail, Name: "Administrator", Role: domain.RoleAdmin, Password: app.cfg.AdminPassword},
		{Email: app.cfg.TeacherEmail, Name: "Teacher", Role: domain.RoleTeacher, Password: app.cfg.TeacherPassword},
		{Email: "ada@lms.local", Name: "Ada Lovelace", Role: domain.RoleStudent},
		{Email: "alan@lms.local", Name: "Alan Turing", Role: domain.RoleStudent},
	}, app.cfg.SeedSampleData)
}

func (app *Application) initHTTP() {
	verifier := jwtx.NewVerifier(app.signer.PublicKey(), app.cfg.Issuer, 0)

	router := httpapi.NewRouter(verifier, BuildVersion, app.db, app.logger)
	router.AuthService = app.authService
	router.LMSService = app.lmsService
	router.LoginLimit = httpx.RateLimitConfig{
		RequestsPerWindow: app.cfg.LoginRateLimit,
		Window:            time.Minute,
		Burst:             app.cfg.LoginRateLimit,
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
