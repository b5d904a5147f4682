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

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"

	"github.com/discoveruz/edge/internal/edge/csrf"
	httpapi "github.com/discoveruz/edge/internal/edge/http"
	"github.com/discoveruz/edge/internal/edge/mail"
	"github.com/discoveruz/edge/internal/edge/ratelimit"
	"github.com/discoveruz/edge/internal/edge/service"
	"github.com/discoveruz/edge/internal/edge/store"
	"github.com/discoveruz/edge/internal/edge/store/drivers/sqlite"
	"github.com/discoveruz/edge/pkg/jwtx"
	"github.com/discoveruz/edge/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application wires the edge service together: config, store, rate
// limiter, services and the HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	redis   *redis.Client
	guard   *csrf.Guard
	codec   *jwtx.Codec
	limiter *ratelimit.Limiter
	mailer  mail.Mailer

	// Services
	sessionService      *service.SessionService
	userService         *service.UserService
	contactService      *service.ContactService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router

	// Cancels background loops (sweeper, housekeeping)
	bgCancel context.CancelFunc
}

// New creates an Application with all dependencies initialized. Config
// validation is fail-secure: a prod process without its secrets never
// gets this far.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "edge",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
			Release:     BuildVersion,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sentry: %w", err)
		}
	}

	codec, err := jwtx.NewCodec([]byte(cfg.SessionSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session codec: %w", err)
	}
	app.codec = codec

	guard, err := csrf.NewGuard([]byte(cfg.CSRFSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize csrf guard: %w", err)
	}
	app.guard = guard

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initRateLimiter()
	app.initMailer()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	bgCtx, cancel := context.WithCancel(context.Background())
	app.bgCancel = cancel

	app.housekeepingService.Start(bgCtx)
	go app.limiter.StartSweeper(bgCtx, app.cfg.SweepInterval)

	app.logger.Info("edge service starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down edge service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()
	if app.bgCancel != nil {
		app.bgCancel()
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	sentry.Flush(2 * time.Second)

	app.logger.Info("edge service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
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

// initRateLimiter builds the fixed-window limiter. Without a redis
// address the in-memory window is all there is; with one, redis is the
// primary and memory only covers outages.
func (app *Application) initRateLimiter() {
	var primary ratelimit.Counter
	if app.cfg.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
		})
		primary = ratelimit.NewRedisCounter(app.redis)
		app.logger.Info("rate limiter using redis", "addr", app.cfg.RedisAddr)
	} else {
		app.logger.Warn("no redis configured, rate limiter runs in-memory only")
	}

	app.limiter = ratelimit.New(
		ratelimit.Config{},
		primary,
		ratelimit.LogMetrics{Log: app.logger},
	)
}

func (app *Application) initMailer() {
	if app.cfg.ResendAPIKey != "" {
		app.mailer = mail.NewResendMailer(app.cfg.ResendAPIKey, app.cfg.MailFrom)
		return
	}
	app.logger.Warn("no mail API key configured, using log mailer")
	app.mailer = &mail.LogMailer{Log: app.logger}
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Store: app.db,
		Codec: app.codec,
	}

	app.userService = &service.UserService{
		Store:    app.db,
		Sessions: app.sessionService,
		Mailer:   app.mailer,
		BaseURL:  app.cfg.BaseURL,
		Log:      app.logger,
	}

	app.contactService = &service.ContactService{
		Mailer:  app.mailer,
		InboxTo: app.cfg.ContactInbox,
		Log:     app.logger,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.guard,
		app.limiter,
		[]byte(app.cfg.EmailSecret),
		app.cfg.IsProd(),
		BuildVersion,
		app.db,
		app.redis,
		app.logger,
	)

	router.SessionService = app.sessionService
	router.UserService = app.userService
	router.ContactService = app.contactService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
