// Package flows contains the session lifecycle orchestrators behind every
// Engine operation: register, login, refresh, logout, and logout-all.
//
// Each flow is a pure function over an explicit dependency struct. The root
// engine wires the dependency structs once at build time; flows never reach
// for globals, ambient clocks, or Redis clients directly. Flow results carry
// failure kinds that the root maps to sentinel errors, metrics, and events.
//
// # What this package must NOT do
//
//   - Import the root goSession package (no upward imports).
//   - Talk to Redis or the identity provider except through injected funcs.
package flows
