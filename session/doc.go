// Package session implements the Redis-backed session store for goSession.
//
// A [Session] binds an authenticated user, the device that established the
// session, and the current opaque refresh credential issued by the identity
// provider. The store maintains three key families that expire together:
// the session record, a per-user set of session IDs, and a (user, device)
// pointer that enforces at most one live session per device.
//
// # Architecture boundaries
//
// The store is a passive collaborator. It performs no business logic: flow
// orchestration, device-proof verification, and upstream token rotation all
// live above it. Writes are owned exclusively by the lifecycle coordinator.
//
// # What this package must NOT do
//
//   - Call the identity provider or verify device signatures.
//   - Retry on Redis failures (unavailability propagates as ErrRedisUnavailable).
//   - Keep any in-process session cache.
package session
