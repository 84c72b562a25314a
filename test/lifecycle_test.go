//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/device"
)

func signProof(secret, deviceID string, ts int64) (string, string) {
	timestamp := strconv.FormatInt(ts, 10)
	return timestamp, device.Sign(secret, deviceID, timestamp)
}

// TestFullSessionLifecycle walks the public API through the complete
// journey: registration, first login on a device, repeated refreshes with
// rotating credentials, a second device, single logout, and logout-all.
func TestFullSessionLifecycle(t *testing.T) {
	engine, provider, done := newLifecycleEngine(t)
	defer done()
	ctx := context.Background()

	reg, err := engine.Register(ctx, goSession.CreateUserInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw-123456",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.UserID != "uid-alice" {
		t.Fatalf("unexpected user id %s", reg.UserID)
	}

	login, err := engine.Login(ctx, "alice", "pw-123456", "d-phone")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.DeviceSecret == "" {
		t.Fatal("first device login must issue a secret")
	}

	// Three consecutive refreshes on the same session. Each one consumes the
	// previous refresh token at the provider, so success here proves the
	// stored credential rotates in lockstep.
	for i := 0; i < 3; i++ {
		ts, sig := signProof(login.DeviceSecret, "d-phone", lifecycleNow.UnixMilli()+int64(i))
		resp, err := engine.Refresh(ctx, login.SessionID, "d-phone", ts, sig)
		if err != nil {
			t.Fatalf("refresh %d: %v", i, err)
		}
		if resp.SessionID != login.SessionID {
			t.Fatalf("refresh %d changed session id", i)
		}
	}

	second, err := engine.Login(ctx, "alice", "pw-123456", "d-laptop")
	if err != nil {
		t.Fatalf("second device login: %v", err)
	}

	if err := engine.Logout(ctx, second.SessionID); err != nil {
		t.Fatalf("logout second device: %v", err)
	}
	ids, err := engine.ActiveSessionIDs(ctx, "uid-alice")
	if err != nil {
		t.Fatalf("active session ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != login.SessionID {
		t.Fatalf("expected only the phone session, got %v", ids)
	}

	if err := engine.LogoutAll(ctx, "uid-alice"); err != nil {
		t.Fatalf("logout all: %v", err)
	}
	ids, err = engine.ActiveSessionIDs(ctx, "uid-alice")
	if err != nil {
		t.Fatalf("active session ids after clear: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no sessions, got %v", ids)
	}

	// Every live refresh token was revoked upstream along the way.
	provider.mu.Lock()
	liveCount := len(provider.live)
	provider.mu.Unlock()
	if liveCount != 0 {
		t.Fatalf("expected no live refresh tokens at the provider, got %d", liveCount)
	}

	ts, sig := signProof(login.DeviceSecret, "d-phone", lifecycleNow.UnixMilli())
	if _, err := engine.Refresh(ctx, login.SessionID, "d-phone", ts, sig); !errors.Is(err, goSession.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after logout-all, got %v", err)
	}
}

// TestLoginAfterLogoutIssuesFreshSecret verifies a device can re-establish a
// session after its old one was revoked, getting a new secret that
// invalidates proofs from the previous enrollment.
func TestLoginAfterLogoutIssuesFreshSecret(t *testing.T) {
	engine, _, done := newLifecycleEngine(t)
	defer done()
	ctx := context.Background()

	if _, err := engine.Register(ctx, goSession.CreateUserInput{
		Username: "bob", Email: "bob@example.com", Password: "pw-123456",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	first, err := engine.Login(ctx, "bob", "pw-123456", "d-1")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	if err := engine.Logout(ctx, first.SessionID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	second, err := engine.Login(ctx, "bob", "pw-123456", "d-1")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if second.SessionID == first.SessionID {
		t.Fatal("expected a fresh session after logout")
	}
	if second.DeviceSecret == "" || second.DeviceSecret == first.DeviceSecret {
		t.Fatal("expected a fresh device secret after re-enrollment")
	}

	// Proofs under the first enrollment's secret no longer pass.
	ts, sig := signProof(first.DeviceSecret, "d-1", lifecycleNow.UnixMilli())
	if _, err := engine.Refresh(ctx, second.SessionID, "d-1", ts, sig); !errors.Is(err, goSession.ErrDeviceSignatureInvalid) {
		t.Fatalf("expected ErrDeviceSignatureInvalid under stale secret, got %v", err)
	}
}
