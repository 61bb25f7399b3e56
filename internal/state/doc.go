// Package state provides the request lifecycle tracker shared by the
// storefront stores and the composed Snapshot read by consumers.
//
// # Request lifecycle
//
// Each store owns a Tracker and drives it through
//
//	idle → loading → succeeded | failed
//
// for every remote or persistence call. A failure keeps whatever data the
// store held before and records the error for display; a success clears the
// error and resets the consecutive failure counter. There is no global
// loading flag: the cart, the order list, the session and the catalog each
// report their own state.
//
// # Snapshot
//
// Snapshot is assembled by the coordinator from defensive copies of every
// store. Consumers render from it and dispatch mutations back through the
// coordinator; they never hold references into store internals.
//
// Derived values such as the cart badge and the unpaid order count are
// computed from the snapshot on demand so they can't drift from the data.
package state
