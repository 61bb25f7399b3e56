// Package config loads the storefront client settings.
//
// # Resolution Order
//
//  1. Built-in defaults
//  2. The TOML file (explicit path, or ~/.config/storefront/config.toml)
//  3. STOREFRONT_* environment variables
//
// A missing file is not an error. Empty values fall back to defaults.
//
// # TOML Format
//
//	api_url = "http://127.0.0.1:3000"
//	catalog_url = "https://fakestoreapi.com"
//	data_dir = "~/.local/share/storefront"
//	log_level = "info"
//	request_timeout = "10s"
//	orders_refresh = "30s"
//
// orders_refresh = "0s" disables the background order refresh.
//
// # Environment
//
//   - STOREFRONT_API_URL, STOREFRONT_CATALOG_URL
//   - STOREFRONT_DATA_DIR, STOREFRONT_LOG_LEVEL
//   - STOREFRONT_REQUEST_TIMEOUT, STOREFRONT_ORDERS_REFRESH (Go durations)
//
// # Derived Paths
//
//   - Carts: <data_dir>/carts
//   - Log file: <data_dir>/storefront.log
//
// Paths beginning with ~ expand to the user's home directory.
package config
