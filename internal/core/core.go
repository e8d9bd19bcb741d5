package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/core/events"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
)

var (
	ErrAlreadyBooted       = errors.New("core already booted")
	ErrUnknownCapability   = errors.New("unknown capability")
	ErrDependencyCycle     = errors.New("provider dependency cycle")
	ErrDuplicateCapability = errors.New("capability provided twice")
)

type lifecycle int

const (
	stateNew lifecycle = iota
	stateBooted
	stateDestroyed
)

// Core orders providers by their capabilities and drives their lifecycle.
type Core struct {
	logger  *zap.Logger
	bus     *events.Bus
	metrics *monitoring.Metrics

	capabilities sync.Map // name -> value bound by Singleton

	mu        sync.Mutex
	state     lifecycle
	providers []Provider
	// initialized holds providers whose Init was attempted, in order.
	initialized []Provider
}

// New creates a core. bus may be nil.
func New(logger *zap.Logger, bus *events.Bus, metrics *monitoring.Metrics) *Core {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bus == nil {
		bus = events.NewBus(logger)
	}
	return &Core{logger: logger, bus: bus, metrics: metrics}
}

// Register adds a provider. Providers must be registered before Boot.
func (c *Core) Register(p Provider) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateNew {
		return fmt.Errorf("register %s: %w", p.Name(), ErrAlreadyBooted)
	}
	c.providers = append(c.providers, p)
	return nil
}

// Boot initializes every provider in dependency order, then starts them in
// the same order. The first failure stops the boot; Destroy still tears down
// whatever was initialized.
func (c *Core) Boot(ctx context.Context) error {
	c.mu.Lock()
	if c.state != stateNew {
		c.mu.Unlock()
		return ErrAlreadyBooted
	}
	ordered, err := order(c.providers)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = stateBooted
	c.mu.Unlock()

	for _, p := range ordered {
		c.mu.Lock()
		c.initialized = append(c.initialized, p)
		c.mu.Unlock()

		c.logger.Debug("Initializing provider", zap.String("provider", p.Name()))
		if err := p.Init(ctx); err != nil {
			return fmt.Errorf("init %s: %w", p.Name(), err)
		}
	}

	for _, p := range ordered {
		c.logger.Debug("Starting provider", zap.String("provider", p.Name()))
		if err := p.Start(ctx); err != nil {
			return fmt.Errorf("start %s: %w", p.Name(), err)
		}
	}

	c.logger.Info("Core started", zap.Int("providers", len(ordered)))
	return nil
}

// Destroy tears providers down in reverse initialization order. Every
// provider is destroyed even if another fails; errors are joined. Calling
// Destroy again is a no-op.
func (c *Core) Destroy(ctx context.Context) error {
	c.mu.Lock()
	if c.state == stateDestroyed {
		c.mu.Unlock()
		return nil
	}
	c.state = stateDestroyed
	initialized := c.initialized
	c.initialized = nil
	c.mu.Unlock()

	var errs []error
	for i := len(initialized) - 1; i >= 0; i-- {
		p := initialized[i]
		if err := p.Destroy(ctx); err != nil {
			c.logger.Error("Provider teardown failed", zap.String("provider", p.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("destroy %s: %w", p.Name(), err))
		}
	}

	c.logger.Info("Core destroyed")
	return errors.Join(errs...)
}

// Singleton binds value to a capability name.
func (c *Core) Singleton(name string, value any) {
	c.capabilities.Store(name, value)
}

// Make returns the value bound to name.
func (c *Core) Make(name string) (any, bool) {
	return c.capabilities.Load(name)
}

// Has reports whether name is bound.
func (c *Core) Has(name string) bool {
	_, ok := c.capabilities.Load(name)
	return ok
}

// Broadcast publishes a process-wide event. Fire-and-forget.
func (c *Core) Broadcast(name string, params ...any) {
	c.metrics.RecordBroadcast(name)
	n := c.bus.Publish(name, params...)
	c.logger.Debug("Broadcast", zap.String("event", name), zap.Int("listeners", n))
}

// Bus returns the event bus used for broadcasts.
func (c *Core) Bus() *events.Bus {
	return c.bus
}

// Make resolves a typed capability.
func Make[T any](c *Core, name string) (T, error) {
	var zero T

	v, ok := c.Make(name)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrUnknownCapability, name)
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("capability %s has type %T", name, v)
	}
	return typed, nil
}

// order sorts providers so that every dependency is provided by an earlier
// provider. Registration order is kept wherever dependencies allow.
func order(providers []Provider) ([]Provider, error) {
	owner := make(map[string]string)
	for _, p := range providers {
		for _, name := range p.Provides() {
			if prev, ok := owner[name]; ok {
				return nil, fmt.Errorf("%w: %s by %s and %s", ErrDuplicateCapability, name, prev, p.Name())
			}
			owner[name] = p.Name()
		}
	}
	for _, p := range providers {
		for _, dep := range p.Depends() {
			if _, ok := owner[dep]; !ok {
				return nil, fmt.Errorf("%s depends on %s: %w", p.Name(), dep, ErrUnknownCapability)
			}
		}
	}

	available := make(map[string]bool)
	placed := make([]bool, len(providers))
	ordered := make([]Provider, 0, len(providers))

	for len(ordered) < len(providers) {
		progressed := false
		for i, p := range providers {
			if placed[i] || !satisfied(p.Depends(), available) {
				continue
			}
			placed[i] = true
			ordered = append(ordered, p)
			for _, name := range p.Provides() {
				available[name] = true
			}
			progressed = true
			// Restart so earlier-registered providers keep priority.
			break
		}
		if !progressed {
			var stuck []string
			for i, p := range providers {
				if !placed[i] {
					stuck = append(stuck, p.Name())
				}
			}
			return nil, fmt.Errorf("%w: %s", ErrDependencyCycle, strings.Join(stuck, ", "))
		}
	}

	return ordered, nil
}

func satisfied(deps []string, available map[string]bool) bool {
	for _, dep := range deps {
		if !available[dep] {
			return false
		}
	}
	return true
}
