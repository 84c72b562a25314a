// Package httpapi exposes HTTP handlers for the goSession engine: register,
// login, refresh, logout, and logout-all.
//
// # Wire contract
//
// Refresh reads the device proof from the X-Device-Id, X-Timestamp, and
// X-Signature headers, falling back to body fields of the same meaning.
// Logout reads X-Session-Id; logout-all reads X-User-Id.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement session logic itself — all decisions are delegated to the
// engine, and error mapping goes through goSession.StatusForError.
//
// # What this package must NOT do
//
//   - Touch Redis or the identity provider directly.
//   - Leak internal failure detail in 5xx responses.
package httpapi
