// Package storeapi provides the HTTP client for the storefront backend.
//
// # Overview
//
// Two services sit behind one Client:
//
//   - the account/order API (sign-up, sign-in, profile, orders)
//   - the public catalog API (categories, products)
//
// Both are plain JSON over HTTP. Account and order calls carry the session
// token as a bearer credential; catalog calls are anonymous.
//
// # Endpoints
//
//   - POST /users/signup, POST /users/signin, POST /users/update
//   - GET /orders/all, POST /orders/updateorder, POST /orders/neworder
//   - GET /products/categories, GET /products/category/{name}, GET /products/{id}
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json and a User-Agent header
//   - Carry an X-Request-ID for server-side correlation
//   - Have a 10-second timeout (override with WithTimeout)
//
// Order creation also sends an Idempotency-Key so a resubmitted checkout can
// be recognized by the server.
//
// # Error Handling
//
// Non-2xx answers become *APIError. Credential rejections (401/403, a failed
// sign-in, or a sign-in body with status "error") match ErrAuthentication via
// errors.Is. Transport failures are wrapped with "execute request" and decode
// failures with "decode response".
//
// # Wire Quirks
//
// Order records arrive with their items as a JSON-encoded string, numeric
// flags for is_paid/is_delivered, and a server-local timestamp. OrderRecord
// normalizes all three.
package storeapi
