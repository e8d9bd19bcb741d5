package packages

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/core"
	"github.com/GriffinCanCode/webdesk/internal/domain/packages"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/watch"
)

// MetadataChangedEvent is broadcast when the manifest file changes on disk.
const MetadataChangedEvent = "packages:metadata:changed"

// Router binds routes that require a session.
type Router interface {
	RouteAuthenticated(method, path string, handlers ...gin.HandlerFunc)
}

// Binder binds a capability to a value.
type Binder interface {
	Singleton(name string, value any)
}

// Broadcaster publishes process-wide events.
type Broadcaster interface {
	Broadcast(name string, params ...any)
}

// Options configures the package provider.
type Options struct {
	// PublicRoot is the directory served to clients; the manifest lives here.
	PublicRoot string
	// ConfigRoot anchors a relative Discovery path.
	ConfigRoot string
	// Metadata is the manifest file name inside PublicRoot.
	Metadata string
	// Discovery is the discovered package list, relative to ConfigRoot.
	Discovery string
	HomeRoot  string
	// Development enables the manifest watch.
	Development bool

	Router      Router
	Binder      Binder
	Broadcaster Broadcaster
	Fetcher     packages.Fetcher
	Logger      *zap.Logger
	Metrics     *monitoring.Metrics
}

// Provider serves the package manifest and install routes and owns the
// package manager.
type Provider struct {
	core.Base

	opts           Options
	logger         *zap.Logger
	manifestFile   string
	discoveredFile string
	manager        *packages.Manager

	mu      sync.Mutex
	watches []*watch.Handle
}

// New resolves the manifest and discovery paths and builds the manager.
func New(opts Options) (*Provider, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	manifestFile := filepath.Join(opts.PublicRoot, opts.Metadata)
	discoveredFile, err := resolve(opts.ConfigRoot, opts.Discovery)
	if err != nil {
		return nil, fmt.Errorf("resolve discovery path: %w", err)
	}

	p := &Provider{
		opts:           opts,
		logger:         opts.Logger,
		manifestFile:   manifestFile,
		discoveredFile: discoveredFile,
	}
	p.manager = packages.New(packages.Options{
		ManifestFile:   manifestFile,
		DiscoveredFile: discoveredFile,
		HomeRoot:       opts.HomeRoot,
		Fetcher:        opts.Fetcher,
		Logger:         opts.Logger,
		Metrics:        opts.Metrics,
	})
	return p, nil
}

func resolve(root, p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	return filepath.Abs(filepath.Join(root, p))
}

func (p *Provider) Name() string       { return "packages" }
func (p *Provider) Depends() []string  { return []string{core.CapabilityHTTP} }
func (p *Provider) Provides() []string { return []string{core.CapabilityPackages} }

// ManifestFile returns the resolved manifest path.
func (p *Provider) ManifestFile() string { return p.manifestFile }

// DiscoveredFile returns the resolved discovered package list path.
func (p *Provider) DiscoveredFile() string { return p.discoveredFile }

// Manager returns the package manager owned by the provider.
func (p *Provider) Manager() *packages.Manager { return p.manager }

// Init binds the routes and the core/packages capability, then initializes
// the manager.
func (p *Provider) Init(ctx context.Context) error {
	if p.opts.Router == nil {
		return errors.New("packages provider requires a router")
	}

	p.opts.Router.RouteAuthenticated(http.MethodGet, "/api/packages/manifest", p.handleManifest)
	p.opts.Router.RouteAuthenticated(http.MethodPost, "/api/packages/install", p.handleInstall)

	if p.opts.Binder != nil {
		p.opts.Binder.Singleton(core.CapabilityPackages, p.manager)
	}

	return p.manager.Init(ctx)
}

// Start starts the manager and, in development, watches the manifest file.
func (p *Provider) Start(ctx context.Context) error {
	if err := p.manager.Start(ctx); err != nil {
		return err
	}
	if p.opts.Development {
		p.watchManifest()
	}
	return nil
}

// watchManifest broadcasts MetadataChangedEvent on every change of the
// manifest. A manifest missing at this point is never watched.
func (p *Provider) watchManifest() {
	if _, err := os.Stat(p.manifestFile); err != nil {
		p.logger.Debug("Manifest not present, not watching", zap.String("path", p.manifestFile))
		return
	}

	h, err := watch.File(p.manifestFile, p.logger.Named("watch"), func(fsnotify.Event) {
		p.opts.Metrics.IncWatchEvents()
		if p.opts.Broadcaster != nil {
			p.opts.Broadcaster.Broadcast(MetadataChangedEvent)
		}
	})
	if err != nil {
		p.logger.Warn("Manifest watch failed", zap.String("path", p.manifestFile), zap.Error(err))
		return
	}

	p.mu.Lock()
	p.watches = append(p.watches, h)
	p.mu.Unlock()

	p.logger.Info("Watching package manifest", zap.String("path", p.manifestFile))
}

// Watches returns the number of open watches.
func (p *Provider) Watches() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.watches)
}

// Destroy closes the watches, destroys the manager and runs the base
// teardown. Every step runs; errors are joined.
func (p *Provider) Destroy(ctx context.Context) error {
	p.mu.Lock()
	watches := p.watches
	p.watches = nil
	p.mu.Unlock()

	return errors.Join(
		watch.CloseAll(watches),
		p.manager.Destroy(ctx),
		p.Base.Destroy(ctx),
	)
}
