/*
Package monitoring provides metrics collection for the webdesk server.

# Overview

Metrics are registered on a per-instance Prometheus registry so several
servers (or tests) can coexist in one process. A nil *Metrics is accepted
everywhere and records nothing.

# Features

- HTTP request metrics (count, latency) labelled by route template
- Package manifest reads and installs by result
- Broadcasts, watch notifications and websocket connections
- Active sessions and login outcomes

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer()
	// ... install ...
	metrics.RecordInstall("ok", timer.Elapsed())
*/
package monitoring
