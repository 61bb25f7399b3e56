// Package session owns the signed-in identity and its bearer credential.
//
// Sign-up and sign-in replace the identity only on success; a failure leaves
// whatever session existed before untouched and records the error. Sign-out
// is local and synchronous. The credential is never persisted.
package session
