// Package app is the composition root for storefront.
//
// Run loads config.toml and prefs.toml, opens the JSON log file, builds the
// API client, the file-backed cart store and the coordinator, starts the
// background order refresher and then hands the coordinator to the UI.
//
// # Order Refresher
//
// While a user is signed in and the credential has not expired, orders are
// re-fetched every orders_refresh (default 30s) so the unpaid badge stays
// current. Consecutive failures double the delay up to five minutes; one
// success resets it. An interval of zero disables the refresher.
//
// # Error Handling
//
// Run returns an error only for startup failures: an unreadable config, an
// unusable data directory or an invalid API URL. Failures after startup are
// recorded in the stores and shown by the UI.
package app
