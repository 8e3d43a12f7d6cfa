// Package app is the composition root of the Dahell console.
//
// Setup loads config.toml and prefs.toml, opens the zap log file, and builds
// the HTTP client, the gateway and the shared state.Store. Run adds the
// background pollers and hands everything to the Bubble Tea UI, blocking until
// the operator quits.
//
// # Pollers
//
//	cluster          audit logs + orphans + stats, fetched in parallel (3s)
//	system-logs      container log lines (5s)
//	container-stats  per-service status and resource usage (2s)
//
// Each feed is a poll.Subscription gated on store visibility: it only calls
// the backend while its screen is active and the terminal has focus. Failures
// are already logged by the gateway; the pollers record them against the feed
// so the header can show a degraded state.
package app
