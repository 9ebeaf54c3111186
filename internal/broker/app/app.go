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

	httpapi "github.com/aussiebroadwan/smartbroker/internal/broker/http"
	"github.com/aussiebroadwan/smartbroker/internal/broker/service"
	"github.com/aussiebroadwan/smartbroker/internal/broker/store/memory"
	"github.com/aussiebroadwan/smartbroker/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the broker's store, services and HTTP server together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	sessions *memory.Sessions
	registry *prometheus.Registry
	outbound *service.Outbound
	metrics  *service.Metrics

	// Services
	discovery        *service.DiscoveryClient
	authorizeService *service.AuthorizeService
	tokenService     *service.TokenService
	fetchService     *service.FetchService
	sessionService   *service.SessionService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "smart-broker",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	app.initStore()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the root HTTP handler, mainly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("smart broker starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"client_id", app.cfg.ClientID,
		"redirect_uri", app.cfg.RedirectURI,
		"frontend_url", app.cfg.FrontendURL,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
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

// Shutdown gracefully shuts down the application. Sessions live in memory
// only and are dropped.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down smart broker...", "sessions", app.sessions.Count())

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
		return err
	}

	app.logger.Info("smart broker stopped")
	return nil
}

// initStore creates the session repository and the metrics registry that
// reports on it.
func (app *Application) initStore() {
	app.sessions = memory.NewSessions()

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = service.NewMetrics(app.registry, app.sessions.Count)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.outbound = service.NewOutbound(nil, service.DefaultUserAgent)

	app.discovery = &service.DiscoveryClient{
		HTTP:    app.outbound,
		Timeout: app.cfg.DiscoveryTimeout,
	}

	app.tokenService = &service.TokenService{
		Sessions:     app.sessions,
		HTTP:         app.outbound,
		ClientSecret: app.cfg.ClientSecret,
		Timeout:      app.cfg.TokenTimeout,
		Margin:       app.cfg.RefreshMargin,
		Metrics:      app.metrics,
	}

	app.authorizeService = &service.AuthorizeService{
		Sessions:  app.sessions,
		Discovery: app.discovery,
		Claims:    &service.ClaimsExtractor{},
		HTTP:      app.outbound,
		Client: service.ClientConfig{
			ClientID:     app.cfg.ClientID,
			ClientSecret: app.cfg.ClientSecret,
			RedirectURI:  app.cfg.RedirectURI,
			Scope:        app.cfg.Scope,
		},
		TokenTimeout: app.cfg.TokenTimeout,
		Metrics:      app.metrics,
	}

	app.fetchService = &service.FetchService{
		Sessions: app.sessions,
		Tokens:   app.tokenService,
		HTTP:     app.outbound,
		Timeout:  app.cfg.FetchTimeout,
		Metrics:  app.metrics,
	}

	app.sessionService = &service.SessionService{Sessions: app.sessions}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.cfg.FrontendURL,
		BuildVersion,
		app.cfg.CORSOrigins,
		app.cfg.RateLimits,
		app.sessions,
		app.registry,
		app.logger,
	)

	// Wire services to router
	router.Discovery = app.discovery
	router.AuthorizeService = app.authorizeService
	router.SessionService = app.sessionService
	router.FetchService = app.fetchService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
