package flows

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/MrEthical07/goSession/session"
)

var errAbsent = errors.New("absent")

func TestRunLogoutBestEffortRevoke(t *testing.T) {
	var warned, deleted bool
	deps := LogoutDeps{
		GetSession: func(context.Context, string) (*session.Session, error) {
			return &session.Session{
				SessionID: "sid-1", UserID: "u-1", DeviceID: "d-1", RefreshToken: "rt-1",
			}, nil
		},
		DeleteSession: func(_ context.Context, sessionID string) error {
			deleted = true
			return nil
		},
		RevokeRefreshToken: func(context.Context, string) error {
			return errors.New("provider down")
		},
		Warn: func(format string, args ...any) {
			warned = true
		},
		SessionAbsent: errAbsent,
	}

	result := RunLogout(context.Background(), "sid-1", deps)
	if result.Failure != LogoutFailureNone {
		t.Fatalf("expected success, got %v: %v", result.Failure, result.Err)
	}
	if !warned {
		t.Fatal("expected a warning for the failed upstream revoke")
	}
	if !deleted {
		t.Fatal("local deletion must proceed despite the revoke failure")
	}
	if result.UserID != "u-1" || result.DeviceID != "d-1" {
		t.Fatalf("expected session identity in result, got %+v", result)
	}
}

func TestRunLogoutAllToleratesStaleMembers(t *testing.T) {
	sessions := map[string]*session.Session{
		"sid-live": {SessionID: "sid-live", UserID: "u-1", DeviceID: "d-1", RefreshToken: "rt-live"},
	}
	var revoked []string
	var clearedUser string

	deps := LogoutDeps{
		ActiveSessionIDs: func(context.Context, string) ([]string, error) {
			// sid-stale's record expired but its set entry survived.
			return []string{"sid-live", "sid-stale"}, nil
		},
		GetSession: func(_ context.Context, sessionID string) (*session.Session, error) {
			sess, ok := sessions[sessionID]
			if !ok {
				return nil, fmt.Errorf("%w: %s", errAbsent, sessionID)
			}
			return sess, nil
		},
		RevokeRefreshToken: func(_ context.Context, refreshToken string) error {
			revoked = append(revoked, refreshToken)
			return nil
		},
		DeleteAllForUser: func(_ context.Context, userID string) error {
			clearedUser = userID
			return nil
		},
		SessionAbsent: errAbsent,
	}

	result := RunLogoutAll(context.Background(), "u-1", deps)
	if result.Failure != LogoutFailureNone {
		t.Fatalf("expected success, got %v: %v", result.Failure, result.Err)
	}
	if len(revoked) != 1 || revoked[0] != "rt-live" {
		t.Fatalf("expected only the live token revoked, got %v", revoked)
	}
	if clearedUser != "u-1" {
		t.Fatalf("expected user cleared, got %q", clearedUser)
	}
	if result.Revoked != 2 {
		t.Fatalf("expected 2 tracked sessions cleared, got %d", result.Revoked)
	}
}

func TestRunLogoutAllEmptyIsNoOp(t *testing.T) {
	called := false
	deps := LogoutDeps{
		ActiveSessionIDs: func(context.Context, string) ([]string, error) {
			return nil, nil
		},
		DeleteAllForUser: func(context.Context, string) error {
			called = true
			return nil
		},
		SessionAbsent: errAbsent,
	}

	result := RunLogoutAll(context.Background(), "u-none", deps)
	if result.Failure != LogoutFailureNone || result.Revoked != 0 {
		t.Fatalf("expected clean no-op, got %+v", result)
	}
	if called {
		t.Fatal("no sessions means no store clear call")
	}
}
