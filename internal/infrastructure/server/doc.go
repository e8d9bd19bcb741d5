// Package server assembles the webdesk backend.
//
// It builds the logger, metrics, auth service and download client from
// configuration, then registers the providers with the core:
//   - http: gin engine, sessions, websocket broadcasts (core/http)
//   - packages: manifest and install routes, manifest watch (core/packages)
//
// Server Lifecycle:
//  1. Load configuration from environment/flags
//  2. NewServer wires components and registers providers
//  3. Run boots providers in dependency order and blocks
//  4. Close destroys providers in reverse order
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Close()
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
