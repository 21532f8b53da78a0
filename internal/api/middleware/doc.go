// Package middleware provides the Gin middleware of the control API.
//
//   - CORS: cross-origin access for browser-based dashboards
//   - RateLimit: per-client token buckets, idle clients are forgotten
//   - GlobalRateLimit: one bucket for the whole API
//   - RequestID: X-Request-ID propagation and request logging
package middleware
