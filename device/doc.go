// Package device implements the per-device secret registry and the
// HMAC-based device proof used to authorize refresh requests without
// re-presenting the user's primary credentials.
//
// # Wire protocol
//
// A proof is computed as
//
//	signature = base64url_nopad(HMAC_SHA256(secret, deviceID + ":" + timestamp))
//
// where timestamp is a decimal string of epoch milliseconds and secret is the
// base64url string issued when the device first registered a session. The
// encoding is bit-exact for interoperability with non-Go clients.
//
// # What this package must NOT do
//
//   - Enforce the timestamp freshness window (the coordinator owns time).
//   - Propagate verification errors: [Verifier.Verify] fails closed to false.
package device
