package server

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/api/middleware"
	"github.com/GriffinCanCode/webdesk/internal/core"
	"github.com/GriffinCanCode/webdesk/internal/domain/auth"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/config"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/fetch"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
	httpProvider "github.com/GriffinCanCode/webdesk/internal/providers/http"
	packagesProvider "github.com/GriffinCanCode/webdesk/internal/providers/packages"
)

// sweepInterval is how often expired sessions are dropped.
const sweepInterval = time.Minute

// Server wires configuration, logging, metrics and providers together.
type Server struct {
	config   *config.Config
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	core     *core.Core
	auth     *auth.Service
	http     *httpProvider.Provider
	packages *packagesProvider.Provider
}

// NewServer creates a new server instance. Nothing listens until Run.
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.FromLevel(cfg.Logging.Level, cfg.Logging.Development || cfg.Development)

	logger.Info("Initializing webdesk server",
		zap.String("port", cfg.Server.Port),
		zap.String("public", cfg.Paths.Public),
		zap.Bool("development", cfg.Development),
	)

	metrics := monitoring.NewMetrics()
	c := core.New(logger.Component("core"), nil, metrics)

	authService := auth.NewService(auth.Options{
		SessionTTL:    cfg.Auth.SessionTTL,
		DefaultGroups: cfg.Auth.DefaultGroups,
		AllowRegister: cfg.Auth.AllowRegister,
		Logger:        logger.Component("auth"),
		Metrics:       metrics,
	})

	fetchOpts := fetch.DefaultOptions()
	fetchOpts.Timeout = cfg.Fetch.Timeout
	fetchOpts.Retries = cfg.Fetch.Retries
	fetchOpts.MaxBytes = cfg.Fetch.MaxBytes
	fetchOpts.Logger = logger.Component("fetch")
	fetcher := fetch.NewClient(fetchOpts)

	rateLimit := middleware.DefaultRateLimitConfig()
	rateLimit.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
	rateLimit.Burst = cfg.RateLimit.Burst

	httpP := httpProvider.New(httpProvider.Options{
		Addr:             net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
		PublicDir:        resolvePath(cfg.Paths.Root, cfg.Paths.Public),
		CORS:             middleware.DefaultCORSConfig(),
		RateLimit:        rateLimit,
		RateLimitEnabled: cfg.RateLimit.Enabled,
		Auth:             authService,
		Bus:              c.Bus(),
		Binder:           c,
		Logger:           logger.Component("http"),
		Metrics:          metrics,
	})

	pkgP, err := packagesProvider.New(packagesProvider.Options{
		PublicRoot:  resolvePath(cfg.Paths.Root, cfg.Paths.Public),
		ConfigRoot:  cfg.Paths.Root,
		Metadata:    cfg.Packages.Metadata,
		Discovery:   cfg.Packages.Discovery,
		HomeRoot:    resolvePath(cfg.Paths.Root, cfg.Paths.Home),
		Development: cfg.Development,
		Router:      httpP,
		Binder:      c,
		Broadcaster: c,
		Fetcher:     fetcher,
		Logger:      logger.Component("packages"),
		Metrics:     metrics,
	})
	if err != nil {
		return nil, err
	}

	for _, p := range []core.Provider{pkgP, httpP} {
		if err := c.Register(p); err != nil {
			return nil, err
		}
	}

	return &Server{
		config:   cfg,
		logger:   logger,
		metrics:  metrics,
		core:     c,
		auth:     authService,
		http:     httpP,
		packages: pkgP,
	}, nil
}

// Core returns the provider container.
func (s *Server) Core() *core.Core { return s.core }

// Auth returns the session service.
func (s *Server) Auth() *auth.Service { return s.auth }

// Addr returns the bound HTTP address once Run has booted the providers.
func (s *Server) Addr() string { return s.http.Addr() }

// Run boots every provider and blocks until ctx is done or the HTTP server
// stops on its own.
func (s *Server) Run(ctx context.Context) error {
	if err := s.core.Boot(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.http.Done():
			return errors.New("http server stopped unexpectedly")
		case <-ticker.C:
			s.auth.Sweep()
		}
	}
}

// Discover scans the configured package roots and rewrites the discovered
// list and the system manifest.
func (s *Server) Discover(ctx context.Context) ([]string, error) {
	roots := make([]string, len(s.config.Packages.Roots))
	for i, root := range s.config.Packages.Roots {
		roots[i] = resolvePath(s.config.Paths.Root, root)
	}
	return s.packages.Manager().Discover(ctx, roots)
}

// Close destroys every provider and flushes the logger.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout+time.Second)
	defer cancel()

	err := s.core.Destroy(ctx)
	if err != nil {
		s.logger.Error("Shutdown finished with errors", zap.Error(err))
	}

	s.logger.Sync()
	return err
}
