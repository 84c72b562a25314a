package goSession

import (
	"errors"
	"net/http"
)

var (
	// ErrEngineNotReady is returned when an Engine method is called before
	// Build completed successfully.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrInvalidRequest is returned when required request fields are blank.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidCredentials is returned when the identity provider rejects
	// the presented username/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when registration collides with an existing
	// username or email at the identity provider.
	ErrUserExists = errors.New("user already exists")
	// ErrSessionNotFound is returned when the referenced session does not
	// exist or has expired. Callers must re-authenticate.
	ErrSessionNotFound = errors.New("session not found")
	// ErrDeviceSignatureInvalid is returned when the device proof does not
	// verify against the stored secret, including when no secret was ever
	// issued for the device.
	ErrDeviceSignatureInvalid = errors.New("invalid device signature")
	// ErrTimestampStale is returned when the proof timestamp falls outside
	// the configured freshness window in either direction.
	ErrTimestampStale = errors.New("request timestamp outside freshness window")
	// ErrDeviceMismatch is returned when a session exists but is bound to a
	// different device than the caller presented.
	ErrDeviceMismatch = errors.New("device mismatch")
	// ErrRotationConflict is returned to the loser of two refreshes racing
	// on one session id. The winning rotation stands; the loser must
	// re-authenticate.
	ErrRotationConflict = errors.New("refresh rotation conflict")
	// ErrUpstream is returned when an identity provider call fails or comes
	// back with an incomplete token set.
	ErrUpstream = errors.New("identity provider request failed")
	// ErrInternal is returned for store unavailability, serialization
	// failures, and any other unexpected fault. No internal detail is meant
	// to reach clients.
	ErrInternal = errors.New("internal error")
)

// StatusForError maps the goSession failure taxonomy onto HTTP-equivalent
// status codes: unauthorized and forbidden outcomes tell the client to
// re-authenticate or stop, upstream failures surface as bad gateway, and
// everything else collapses to a generic internal error.
func StatusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrDeviceSignatureInvalid),
		errors.Is(err, ErrTimestampStale),
		errors.Is(err, ErrRotationConflict):
		return http.StatusUnauthorized
	case errors.Is(err, ErrDeviceMismatch):
		return http.StatusForbidden
	case errors.Is(err, ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
