package internal

import "github.com/google/uuid"

// NewSessionID returns a fresh opaque session identifier. Session IDs are
// random UUIDv4 strings: opaque to clients, unique across the store, and
// never derived from user or device identifiers.
func NewSessionID() string {
	return uuid.NewString()
}
