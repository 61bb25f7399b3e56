// Package ui provides the terminal interface for storefront.
//
// The UI is a Bubble Tea program. Every view reads from a state.Snapshot
// refreshed on a tick, and every mutation goes through the Actions interface
// on a command so the update loop never blocks on the network.
//
// # Views
//
//   - Catalog: categories on the left, products of the selected category on the right
//   - Cart: lines of the signed-in user's cart, totals, checkout
//   - Orders: order history with paid/delivered transitions and a status filter
//   - Account: sign-in/sign-up form, profile name editing, sign-out
//   - Activity: the client's own structured log, humanized
//
// # Key Bindings
//
//   - 1-5 or Tab: switch views
//   - a/x: add to or remove from the cart
//   - c: check out
//   - p/d: mark the selected order paid or delivered
//   - T: cycle theme
//   - e or Ctrl+C: exit
package ui
