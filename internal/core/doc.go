// Package core wires providers together.
//
// Providers declare the capabilities they depend on and provide. Boot orders
// them so dependencies initialize first, runs every Init, then every Start.
// Destroy tears them down in reverse. Shared services are bound by
// capability name with Singleton and resolved with Make.
//
// Example Usage:
//
//	c := core.New(logger, nil, metrics)
//	_ = c.Register(httpProvider)
//	_ = c.Register(packagesProvider)
//	if err := c.Boot(ctx); err != nil {
//		...
//	}
//	defer c.Destroy(context.Background())
package core
