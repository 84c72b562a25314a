package flows

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/MrEthical07/goSession/session"
)

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureSignature
	RefreshFailureStaleTimestamp
	RefreshFailureSessionNotFound
	RefreshFailureDeviceMismatch
	RefreshFailureUpstream
	RefreshFailureConflict
	RefreshFailureStore
)

// RefreshResult carries either the rotated session or failure metadata.
type RefreshResult struct {
	Failure RefreshFailureKind
	Err     error

	AccessToken string
	SessionID   string
	UserID      string
	DeviceID    string
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	SessionTTL      time.Duration
	FreshnessWindow time.Duration
	Now             func() time.Time

	VerifySignature func(ctx context.Context, deviceID, timestamp, signature string) bool
	GetSession      func(ctx context.Context, sessionID string) (*session.Session, error)
	RefreshGrant    func(ctx context.Context, refreshToken string) (TokenPair, error)
	ReplaceRefreshToken func(
		ctx context.Context,
		sess *session.Session,
		newRefreshToken string,
		ttl time.Duration,
	) (*session.Session, error)

	SessionAbsent  error
	RotateConflict error
}

// RunRefresh executes the device-proof check, freshness window, session and
// device binding checks, upstream rotation, and store update, in that order.
// Check ordering is part of the contract: a caller that cannot produce a
// valid proof learns nothing about session existence or device binding.
func RunRefresh(ctx context.Context, sessionID, deviceID, timestamp, signature string, deps RefreshDeps) RefreshResult {
	if !deps.VerifySignature(ctx, deviceID, timestamp, signature) {
		return RefreshResult{
			Failure:  RefreshFailureSignature,
			Err:      errors.New("invalid device signature"),
			DeviceID: deviceID,
		}
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return RefreshResult{
			Failure:  RefreshFailureStaleTimestamp,
			Err:      errors.New("malformed request timestamp"),
			DeviceID: deviceID,
		}
	}
	nowMillis := deps.Now().UnixMilli()
	window := deps.FreshnessWindow.Milliseconds()
	if delta := nowMillis - ts; delta > window || delta < -window {
		return RefreshResult{
			Failure:  RefreshFailureStaleTimestamp,
			Err:      errors.New("request timestamp outside freshness window"),
			DeviceID: deviceID,
		}
	}

	sess, err := deps.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, deps.SessionAbsent) {
			return RefreshResult{
				Failure:   RefreshFailureSessionNotFound,
				Err:       err,
				SessionID: sessionID,
				DeviceID:  deviceID,
			}
		}
		return RefreshResult{
			Failure:   RefreshFailureStore,
			Err:       err,
			SessionID: sessionID,
			DeviceID:  deviceID,
		}
	}

	if sess.DeviceID != deviceID {
		return RefreshResult{
			Failure:   RefreshFailureDeviceMismatch,
			Err:       errors.New("device does not match session binding"),
			SessionID: sessionID,
			UserID:    sess.UserID,
			DeviceID:  deviceID,
		}
	}

	tokens, err := deps.RefreshGrant(ctx, sess.RefreshToken)
	if err != nil {
		return RefreshResult{
			Failure:   RefreshFailureUpstream,
			Err:       err,
			SessionID: sessionID,
			UserID:    sess.UserID,
			DeviceID:  deviceID,
		}
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return RefreshResult{
			Failure:   RefreshFailureUpstream,
			Err:       errors.New("identity provider returned incomplete token set"),
			SessionID: sessionID,
			UserID:    sess.UserID,
			DeviceID:  deviceID,
		}
	}

	if _, err := deps.ReplaceRefreshToken(ctx, sess, tokens.RefreshToken, deps.SessionTTL); err != nil {
		failure := RefreshFailureStore
		switch {
		case deps.RotateConflict != nil && errors.Is(err, deps.RotateConflict):
			failure = RefreshFailureConflict
		case deps.SessionAbsent != nil && errors.Is(err, deps.SessionAbsent):
			failure = RefreshFailureSessionNotFound
		}
		return RefreshResult{
			Failure:   failure,
			Err:       err,
			SessionID: sessionID,
			UserID:    sess.UserID,
			DeviceID:  deviceID,
		}
	}

	return RefreshResult{
		AccessToken: tokens.AccessToken,
		SessionID:   sessionID,
		UserID:      sess.UserID,
		DeviceID:    deviceID,
	}
}
