package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goSession/session"
)

// LoginFailureKind classifies login flow failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureInvalidInput
	LoginFailureCredentials
	LoginFailureUpstream
	LoginFailureSubject
	LoginFailureSecretIssue
	LoginFailureStore
)

// LoginResult carries either the established session or failure metadata.
// DeviceSecret is non-empty only when the device registered its first
// session in this call; it is never returned again.
type LoginResult struct {
	Failure LoginFailureKind
	Err     error

	AccessToken  string
	SessionID    string
	UserID       string
	DeviceID     string
	DeviceSecret string
	Reused       bool
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	SessionTTL time.Duration
	Now        func() time.Time

	PasswordGrant  func(ctx context.Context, username, password string) (TokenPair, error)
	ExtractSubject func(accessToken string) (string, error)

	FindByUserAndDevice func(ctx context.Context, userID, deviceID string) (*session.Session, error)
	SaveSession         func(ctx context.Context, sess *session.Session, ttl time.Duration) error
	CreateDeviceSecret  func(ctx context.Context, deviceID string) (string, error)
	NewSessionID        func() string

	// Sentinels owned by collaborators, injected to keep flows import-free.
	InvalidCredentials error
	SessionAbsent      error
}

// RunLogin materializes tokens from the identity provider and binds them to
// a device-scoped session. A second login from the same (user, device) pair
// reuses the existing session untouched; only a brand-new pair issues a
// device secret and a session record.
func RunLogin(ctx context.Context, username, password, deviceID string, deps LoginDeps) LoginResult {
	if username == "" || password == "" || deviceID == "" {
		return LoginResult{
			Failure: LoginFailureInvalidInput,
			Err:     errors.New("username, password, and deviceId are required"),
		}
	}

	tokens, err := deps.PasswordGrant(ctx, username, password)
	if err != nil {
		failure := LoginFailureUpstream
		if deps.InvalidCredentials != nil && errors.Is(err, deps.InvalidCredentials) {
			failure = LoginFailureCredentials
		}
		return LoginResult{Failure: failure, Err: err}
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return LoginResult{
			Failure: LoginFailureUpstream,
			Err:     errors.New("identity provider returned incomplete token set"),
		}
	}

	userID, err := deps.ExtractSubject(tokens.AccessToken)
	if err != nil {
		return LoginResult{Failure: LoginFailureSubject, Err: err}
	}

	existing, err := deps.FindByUserAndDevice(ctx, userID, deviceID)
	if err != nil && !errors.Is(err, deps.SessionAbsent) {
		return LoginResult{Failure: LoginFailureStore, Err: err, UserID: userID}
	}
	if err == nil {
		return LoginResult{
			AccessToken: tokens.AccessToken,
			SessionID:   existing.SessionID,
			UserID:      userID,
			DeviceID:    deviceID,
			Reused:      true,
		}
	}

	deviceSecret, err := deps.CreateDeviceSecret(ctx, deviceID)
	if err != nil {
		return LoginResult{Failure: LoginFailureSecretIssue, Err: err, UserID: userID}
	}

	sess := &session.Session{
		SessionID:    deps.NewSessionID(),
		UserID:       userID,
		DeviceID:     deviceID,
		RefreshToken: tokens.RefreshToken,
		CreatedAt:    deps.Now().Unix(),
	}
	if err := deps.SaveSession(ctx, sess, deps.SessionTTL); err != nil {
		return LoginResult{Failure: LoginFailureStore, Err: err, UserID: userID}
	}

	return LoginResult{
		AccessToken:  tokens.AccessToken,
		SessionID:    sess.SessionID,
		UserID:       userID,
		DeviceID:     deviceID,
		DeviceSecret: deviceSecret,
	}
}
