package core

import (
	"context"
	"sync/atomic"
)

// Capability names shared by providers.
const (
	CapabilityHTTP     = "core/http"
	CapabilityPackages = "core/packages"
)

// Provider is a unit that offers capabilities and takes part in the
// init/start/destroy lifecycle driven by Core.
type Provider interface {
	// Name identifies the provider in logs and errors.
	Name() string
	// Depends lists capabilities that must be initialized first.
	Depends() []string
	// Provides lists capabilities this provider offers.
	Provides() []string
	Init(ctx context.Context) error
	Start(ctx context.Context) error
	Destroy(ctx context.Context) error
}

// Base supplies no-op lifecycle defaults and the base teardown. Embed it and
// override what the provider needs.
type Base struct {
	destroyed atomic.Bool
}

func (b *Base) Depends() []string               { return nil }
func (b *Base) Provides() []string              { return nil }
func (b *Base) Init(ctx context.Context) error  { return nil }
func (b *Base) Start(ctx context.Context) error { return nil }

// Destroy is the base teardown. It only records that teardown happened.
func (b *Base) Destroy(ctx context.Context) error {
	b.destroyed.Store(true)
	return nil
}

// Destroyed reports whether the base teardown has run.
func (b *Base) Destroyed() bool {
	return b.destroyed.Load()
}
