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

	"golang.org/x/sync/errgroup"

	httpapi "github.com/aussiebroadwan/tenancy/internal/tenancy/http"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/notify"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/memory"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/redis"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the tenancy service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	denylist   store.Denylist
	keyManager *jwtx.KeyManager
	secrets    *cryptox.SecretBox
	notifier   service.Notifier

	// Services
	sessions          *service.SessionIssuer
	authService       *service.AuthService
	userService       *service.UserService
	mfaService        *service.MFAService
	companyService    *service.CompanyService
	membershipService *service.MembershipService
	inviteService     *service.InviteService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tenancy-service",
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

	if err := app.initDenylist(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	keyManager, err := InitSessionKeys(app.cfg, app.logger)
	if err != nil {
		app.closeStores()
		return nil, err
	}
	app.keyManager = keyManager

	secrets, err := InitSecretBox(app.cfg, app.logger)
	if err != nil {
		app.closeStores()
		return nil, err
	}
	app.secrets = secrets

	app.initNotifier()
	app.initServices()
	app.initHTTP()

	if app.cfg.Seed {
		ctx := slogx.WithContext(context.Background(), app.logger)
		token, err := SeedDemo(ctx, app.db, time.Now().UTC())
		if err != nil {
			app.closeStores()
			return nil, err
		}
		if token != "" {
			app.logger.Info("demo invite ready",
				"url", fmt.Sprintf("%s/accept-invite?token=%s", app.cfg.FrontendURL, token),
			)
		}
	}

	return app, nil
}

// Handler exposes the HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.serve(ctx)
}

// serve runs the HTTP server until ctx is done or the server fails, then
// shuts everything down.
func (app *Application) serve(ctx context.Context) error {
	app.logger.Info("tenancy service starting", "port", app.cfg.Port, "version", BuildVersion)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutdown requested", "cause", context.Cause(gctx))

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down tenancy service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("tenancy service stopped")
	return nil
}

func (app *Application) closeStores() error {
	var errs []error
	if app.denylist != nil {
		if err := app.denylist.Close(); err != nil {
			app.logger.Error("error closing denylist", "error", err)
			errs = append(errs, err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initDenylist picks Redis when configured so logouts hold across replicas.
func (app *Application) initDenylist() error {
	if app.cfg.RedisURL == "" {
		app.denylist = memory.NewDenylist()
		app.logger.Info("using in-memory session denylist")
		return nil
	}

	denylist, err := redis.NewDenylist(app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to initialize redis denylist: %w", err)
	}
	app.denylist = denylist
	app.logger.Info("using redis session denylist")
	return nil
}

func (app *Application) initNotifier() {
	if app.cfg.SMTPHost == "" {
		app.notifier = notify.LogNotifier{}
		app.logger.Info("SMTP not configured, invite emails will be logged")
		return
	}

	app.notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.SMTPFrom,
	})
	app.logger.Info("SMTP notifier enabled", "host", app.cfg.SMTPHost, "port", app.cfg.SMTPPort)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.sessions = service.NewSessionIssuer(
		app.keyManager,
		app.cfg.Issuer,
		app.cfg.SessionTTL,
		app.denylist,
		nil,
	)

	app.mfaService = &service.MFAService{
		Store:   app.db,
		Secrets: app.secrets,
		Issuer:  app.cfg.Issuer,
	}
	app.authService = &service.AuthService{
		Store:    app.db,
		Sessions: app.sessions,
		MFA:      app.mfaService,
	}
	app.userService = &service.UserService{Store: app.db}
	app.companyService = &service.CompanyService{Store: app.db}
	app.membershipService = &service.MembershipService{Store: app.db}
	app.inviteService = &service.InviteService{
		Store:       app.db,
		Sessions:    app.sessions,
		Notifier:    app.notifier,
		FrontendURL: app.cfg.FrontendURL,
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		BuildVersion,
		app.db,
		app.denylist,
		app.logger,
		app.cfg.CORSOrigin,
	)

	router.Cookie = httpapi.CookieConfig{
		Name:   "token",
		TTL:    app.sessions.TTL,
		Secure: app.cfg.Env != "dev",
	}

	// Wire services to router
	router.Sessions = app.sessions
	router.AuthService = app.authService
	router.UserService = app.userService
	router.MFAService = app.mfaService
	router.CompanyService = app.companyService
	router.MembershipService = app.membershipService
	router.InviteService = app.inviteService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
