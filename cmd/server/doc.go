// Package main is the entry point for the webdesk backend server.
//
// The server hosts the web desktop API: session login, the package manifest
// and install routes, and a WebSocket channel that carries core broadcasts
// to the browser.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000
//
//	# Development mode (colored logs, manifest watch)
//	./server -dev
//
//	# Rebuild packages.json and the package manifest, then exit
//	./server -discover
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
