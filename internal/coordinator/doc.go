// Package coordinator sequences the cross-store effects of user actions.
//
// # Sign-in
//
// A successful sign-in or sign-up restores the user's persisted cart and
// fetches their orders. Either follow-up may fail without failing the
// sign-in; the failure is recorded by the store that owns it.
//
// # Sign-out
//
// Sign-out snapshots the cart and email, clears the session, resets the
// in-memory cart and orders, and then persists the snapshot under the old
// email. The next sign-in as the same user finds the cart where they left it.
//
// # Checkout
//
// The cart becomes an order only once the server acknowledges it. The cart
// is cleared afterwards; a failed order leaves the cart untouched.
//
// # Concurrency
//
// Actions are serialized by a single mutex. Snapshot and catalog reads do
// not take it, so a slow request never blocks rendering.
package coordinator
