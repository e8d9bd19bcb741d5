package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/api/middleware"
	"github.com/GriffinCanCode/webdesk/internal/api/ws"
	"github.com/GriffinCanCode/webdesk/internal/core"
	"github.com/GriffinCanCode/webdesk/internal/core/events"
	"github.com/GriffinCanCode/webdesk/internal/domain/auth"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/tracing"
)

// Binder binds a capability to a value.
type Binder interface {
	Singleton(name string, value any)
}

// Options configures the HTTP provider.
type Options struct {
	Addr            string
	ShutdownTimeout time.Duration
	// PublicDir is served for unmatched GET requests when it exists.
	PublicDir        string
	CORS             middleware.CORSConfig
	RateLimit        middleware.RateLimitConfig
	RateLimitEnabled bool

	Auth    *auth.Service
	Bus     *events.Bus
	Binder  Binder
	Logger  *zap.Logger
	Metrics *monitoring.Metrics
}

// Provider owns the gin engine and the HTTP listener.
type Provider struct {
	core.Base

	opts   Options
	logger *zap.Logger

	engine  *gin.Engine
	private *gin.RouterGroup
	hub     *ws.Hub

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	done     chan struct{}
	stopped  bool
}

// New creates the provider. Nothing is bound until Init.
func New(opts Options) *Provider {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.Bus == nil {
		opts.Bus = events.NewBus(opts.Logger)
	}
	return &Provider{opts: opts, logger: opts.Logger}
}

func (p *Provider) Name() string       { return "http" }
func (p *Provider) Provides() []string { return []string{core.CapabilityHTTP} }

// Init builds the engine, the middleware chain and the built-in routes.
func (p *Provider) Init(ctx context.Context) error {
	if p.opts.Auth == nil {
		return errors.New("http provider requires an auth service")
	}

	engine := gin.New()
	engine.Use(
		middleware.Recovery(p.logger),
		tracing.HTTPMiddleware(p.logger),
		monitoring.Middleware(p.opts.Metrics),
		middleware.CORS(p.opts.CORS),
	)
	if p.opts.RateLimitEnabled {
		engine.Use(middleware.RateLimit(p.opts.RateLimit))
	}

	p.engine = engine
	p.private = engine.Group("", middleware.Authenticate(p.opts.Auth))
	p.hub = ws.NewHub(p.opts.Bus, p.logger.Named("ws"), p.opts.Metrics)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(p.opts.Metrics.Handler()))

	h := &authHandlers{auth: p.opts.Auth, logger: p.logger}
	engine.POST("/api/login", h.login)
	engine.POST("/api/logout", h.logout)
	engine.POST("/api/register", h.register)
	p.private.GET("/api/session", h.session)
	p.private.GET("/api/ws", p.hub.Handle)

	if dir := p.opts.PublicDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			fs := gin.Dir(dir, false)
			engine.NoRoute(func(c *gin.Context) {
				if c.Request.Method != http.MethodGet {
					c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
					return
				}
				c.FileFromFS(c.Request.URL.Path, fs)
			})
		}
	}

	if p.opts.Binder != nil {
		p.opts.Binder.Singleton(core.CapabilityHTTP, p)
	}
	return nil
}

// Route binds a public route.
func (p *Provider) Route(method, path string, handlers ...gin.HandlerFunc) {
	p.engine.Handle(method, path, handlers...)
}

// RouteAuthenticated binds a route that requires a valid session.
func (p *Provider) RouteAuthenticated(method, path string, handlers ...gin.HandlerFunc) {
	p.private.Handle(method, path, handlers...)
}

// Handler exposes the engine. Valid after Init.
func (p *Provider) Handler() http.Handler {
	return p.engine
}

// Start listens on the configured address and serves in the background.
func (p *Provider) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", p.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", p.opts.Addr, err)
	}

	srv := &http.Server{
		Handler:           p.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	done := make(chan struct{})

	p.mu.Lock()
	p.server, p.listener, p.done = srv, ln, done
	p.mu.Unlock()

	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	p.logger.Info("HTTP server listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or "" before Start.
func (p *Provider) Addr() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.listener == nil {
		return ""
	}
	return p.listener.Addr().String()
}

// Done is closed when the server stops serving. It is nil before Start.
func (p *Provider) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Destroy disconnects websocket clients and shuts the server down.
func (p *Provider) Destroy(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	srv, done := p.server, p.done
	p.mu.Unlock()

	if p.hub != nil {
		p.hub.Close()
	}

	var errs []error
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, p.opts.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown: %w", err))
		}
		<-done
		p.logger.Info("HTTP server stopped")
	}

	errs = append(errs, p.Base.Destroy(ctx))
	return errors.Join(errs...)
}
