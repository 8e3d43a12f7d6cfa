// Package config loads the console configuration from TOML.
//
// # Resolution
//
//  1. An explicit path wins; otherwise ~/.config/dahell/config.toml is used.
//  2. A missing file yields Default().
//  3. Empty strings and non-positive numbers fall back to their defaults.
//  4. DAHELL_API_URL, when set, overrides api_url.
//
// Invalid TOML is an error. Durations are configured in milliseconds
// (request_timeout_ms, filter_debounce_ms, [poll] cluster_ms, ...) and
// exposed as time.Duration.
//
// # Example
//
//	api_url = "http://localhost:8000/api"
//	log_file = "~/.local/state/dahell/dahell.log"
//	page_size = 20
//
//	[poll]
//	cluster_ms = 3000
//	system_logs_ms = 5000
//	container_stats_ms = 2000
package config
