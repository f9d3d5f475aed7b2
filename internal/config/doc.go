// Package config loads the njtstatus configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/njtstatus/config.toml (default)
//  3. If the config file doesn't exist, fall back to built-in defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. Apply NJT_* environment overrides (a .env file in the working
//     directory is loaded first and never replaces variables already set)
//
// # TOML Format
//
//	endpoint = "http://pebble.mattdonders.com/njtransit/v1/status.php"
//	request_cookie = 1597854
//	poll_seconds = 300     # 0 disables the refresh timer
//	timeout_seconds = 10
//	log_file = "~/.local/state/njtstatus/njtstatus.log"
//	log_level = "info"
//	clock_24h = true
//
// Every field is optional. Tilde expansion is performed on log_file.
//
// # Environment
//
//   - NJT_ENDPOINT: status endpoint URL
//   - NJT_POLL_SECONDS: refresh interval in seconds
//   - NJT_LOG_LEVEL: debug, info, warn or error
//
// # Error Handling
//
// Load returns errors for unreadable or malformed files, out-of-range
// values, and an endpoint that is not an http(s) URL. A missing config file
// is not an error.
package config
