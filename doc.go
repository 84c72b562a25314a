// Package goSession provides device-bound session and refresh-token
// management on top of an external identity provider: Redis-backed session
// records with device and user indexes, a replay-resistant HMAC device-proof
// protocol, and single-session and all-sessions revocation.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (LoginResponse, Event, MetricsSnapshot, etc.). All internal
// coordination — flow orchestration, session encoding, event dispatch — lives
// under internal/ and is never exported. The identity provider and the event
// sink are collaborators behind interfaces; goSession never implements grant
// flows or message-bus semantics itself.
//
// # What this package must NOT do
//
//   - Expose Redis clients, stored refresh tokens, or encoding details in its
//     public API.
//   - Issue, validate, or introspect access tokens beyond extracting the
//     principal ID from a freshly minted one.
//   - Retry or queue identity provider calls (best-effort revocation is the
//     single documented exception, and it only logs).
package goSession
