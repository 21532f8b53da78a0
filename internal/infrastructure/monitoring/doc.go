/*
Package monitoring provides Prometheus metrics for the browsing engine.

# Overview

Each Metrics value owns a private prometheus.Registry, so a process can run
several engine clients without duplicate registration. Every record method is
nil-safe; components take an optional *Metrics and call it unconditionally.

# Collected

  - Response cache lookups (hit / miss / stale), evictions, size
  - Transport exchanges by method and status class, duration, body size,
    spilled bodies, failures by kind
  - Logical loads by scheme, redirect hops by status, denied frames
  - Open windows and queued background downloads
  - Control API requests (Gin middleware)

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))
*/
package monitoring
