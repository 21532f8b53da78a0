// Package config provides 12-factor configuration for the browsing engine.
//
// Configuration is loaded from environment variables with sensible defaults.
//
// Configuration Sections:
//   - Cache: response cache capacity
//   - Transport: timeouts, spill threshold, TLS policy, cookies, throttling
//   - Navigation: redirect following, hop budget, history size, do-not-track
//   - Proxy: client-wide proxy, bypass list, proxy auto-config URL
//   - Profile: simulated browser profile and optional override file
//   - Script: script engine limits
//   - Logging: log level and output format
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	client, err := browser.New(cfg)
package config
