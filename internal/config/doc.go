// Package config loads the optional watchdog settings file and the .env file
// holding provider API keys.
//
// # Configuration Discovery
//
// Load resolves the path in this order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/apiwatchdog/config.toml
//  3. If the file doesn't exist, fall back to Default()
//
// Files ending in .yaml or .yml are parsed as YAML; anything else is TOML.
// Sections left out of the file keep their defaults.
//
// # Example
//
//	[fetch]
//	max_retries = 5
//	delay_seconds = 5.0
//	timeout_seconds = 10.0
//
//	[log]
//	max_size_mb = 10
//	max_backups = 3
//	compress = false
//	mirror = false
//	level = "info"
//
//	[weather]
//	base_url = "https://api.openweathermap.org"
//
//	[stock]
//	base_url = "https://www.alphavantage.co"
//
//	[metrics]
//	addr = "127.0.0.1:9464"
//
// # API Keys
//
// Keys never live in the settings file. LoadEnv reads .env into the process
// environment (existing variables win) and Endpoint copies
// OPENWEATHERMAP_API_KEY or ALPHAVANTAGE_API_KEY into the endpoint.
//
// # Error Handling
//
// Out-of-range values are reported together, wrapped in ErrInvalid. Missing
// files are not an error.
package config
