// Package model holds the domain types shared by the storefront stores:
// products, the signed-in identity, cart lines and orders.
//
// Types here carry no behavior beyond derived values (cart totals, order
// status) so every store can depend on them without import cycles.
package model
