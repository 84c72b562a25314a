package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/goSession/session"
)

// LogoutFailureKind classifies logout flow failures for root-level mapping.
type LogoutFailureKind int

const (
	LogoutFailureNone LogoutFailureKind = iota
	LogoutFailureSessionNotFound
	LogoutFailureStore
)

// LogoutResult carries the revoked session identity or failure metadata.
type LogoutResult struct {
	Failure LogoutFailureKind
	Err     error

	SessionID string
	UserID    string
	DeviceID  string
}

// LogoutAllResult reports how many sessions were cleared for the user.
type LogoutAllResult struct {
	Failure LogoutFailureKind
	Err     error

	UserID  string
	Revoked int
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	GetSession         func(ctx context.Context, sessionID string) (*session.Session, error)
	DeleteSession      func(ctx context.Context, sessionID string) error
	ActiveSessionIDs   func(ctx context.Context, userID string) ([]string, error)
	DeleteAllForUser   func(ctx context.Context, userID string) error
	RevokeRefreshToken func(ctx context.Context, refreshToken string) error
	Warn               func(format string, args ...any)
	// OnRevokeFailure is an optional hook fired once per failed upstream
	// revocation, after Warn.
	OnRevokeFailure func()

	SessionAbsent error
}

// RunLogout revokes a single session. The upstream revoke is best-effort:
// a provider failure is logged and the local session is still removed.
func RunLogout(ctx context.Context, sessionID string, deps LogoutDeps) LogoutResult {
	sess, err := deps.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, deps.SessionAbsent) {
			return LogoutResult{
				Failure:   LogoutFailureSessionNotFound,
				Err:       err,
				SessionID: sessionID,
			}
		}
		return LogoutResult{Failure: LogoutFailureStore, Err: err, SessionID: sessionID}
	}

	if err := deps.RevokeRefreshToken(ctx, sess.RefreshToken); err != nil {
		if deps.Warn != nil {
			deps.Warn("goSession: upstream revoke failed for session %s: %v", sessionID, err)
		}
		if deps.OnRevokeFailure != nil {
			deps.OnRevokeFailure()
		}
	}

	if err := deps.DeleteSession(ctx, sessionID); err != nil {
		return LogoutResult{
			Failure:   LogoutFailureStore,
			Err:       err,
			SessionID: sessionID,
			UserID:    sess.UserID,
			DeviceID:  sess.DeviceID,
		}
	}

	return LogoutResult{
		SessionID: sessionID,
		UserID:    sess.UserID,
		DeviceID:  sess.DeviceID,
	}
}

// RunLogoutAll revokes every session tracked for a user. Having no sessions
// is a no-op, not an error. Each session's upstream revoke is best-effort and
// per-device: one failing device never blocks clearing the rest.
func RunLogoutAll(ctx context.Context, userID string, deps LogoutDeps) LogoutAllResult {
	sessionIDs, err := deps.ActiveSessionIDs(ctx, userID)
	if err != nil {
		return LogoutAllResult{Failure: LogoutFailureStore, Err: err, UserID: userID}
	}
	if len(sessionIDs) == 0 {
		return LogoutAllResult{UserID: userID}
	}

	for _, sessionID := range sessionIDs {
		sess, err := deps.GetSession(ctx, sessionID)
		if err != nil {
			// Stale set member or transient read failure; deletion below
			// still clears the record if it exists.
			if !errors.Is(err, deps.SessionAbsent) && deps.Warn != nil {
				deps.Warn("goSession: could not resolve session %s during logout-all: %v", sessionID, err)
			}
			continue
		}
		if err := deps.RevokeRefreshToken(ctx, sess.RefreshToken); err != nil {
			if deps.Warn != nil {
				deps.Warn("goSession: upstream revoke failed for session %s: %v", sessionID, err)
			}
			if deps.OnRevokeFailure != nil {
				deps.OnRevokeFailure()
			}
		}
	}

	if err := deps.DeleteAllForUser(ctx, userID); err != nil {
		return LogoutAllResult{Failure: LogoutFailureStore, Err: err, UserID: userID}
	}

	return LogoutAllResult{UserID: userID, Revoked: len(sessionIDs)}
}
