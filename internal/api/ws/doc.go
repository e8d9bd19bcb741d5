// Package ws pushes core broadcasts to browser clients over WebSocket.
//
// Every event published on the core bus is written to each client as
// {"name": ..., "params": [...]}. Inbound messages are read only to keep
// the connection alive.
package ws
