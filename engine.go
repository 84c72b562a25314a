package goSession

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/MrEthical07/goSession/device"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/session"
)

// Engine is the session lifecycle coordinator. It owns every write to the
// session store, delegates token grants to the identity provider, and emits
// lifecycle events. Engine instances are built once via [Builder.Build] and
// are safe for concurrent use.
type Engine struct {
	config       Config
	sessionStore *session.Store
	secrets      *device.SecretService
	verifier     *device.Verifier
	provider     IdentityProvider
	events       *eventDispatcher
	metrics      *Metrics
	flows        flows.Service
	now          func() time.Time
}

// Close drains the event dispatcher. The engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.events != nil {
		e.events.Close()
	}
}

// Register creates a principal at the identity provider and emits a
// user.created event. Session state is untouched; a registered user still
// logs in to establish one.
func (e *Engine) Register(ctx context.Context, input CreateUserInput) (*RegisterResponse, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	result := e.flows.Register(ctx, input.Username, input.Email, input.Password)
	if result.Failure != flows.RegisterFailureNone {
		e.metricInc(MetricRegisterFailure)
		switch result.Failure {
		case flows.RegisterFailureInvalidInput:
			return nil, errors.Join(ErrInvalidRequest, result.Err)
		case flows.RegisterFailureDuplicate:
			return nil, errors.Join(ErrUserExists, result.Err)
		default:
			return nil, errors.Join(ErrUpstream, result.Err)
		}
	}

	e.metricInc(MetricRegisterSuccess)
	e.emit(ctx, Event{
		EventType: EventUserCreated,
		UserID:    result.UserID,
		Success:   true,
		Metadata: map[string]string{
			"username": result.Username,
			"email":    result.Email,
		},
	})

	return &RegisterResponse{UserID: result.UserID}, nil
}

// Login exchanges credentials for tokens at the identity provider and binds
// them to a device-scoped session. A repeat login from the same (user,
// device) pair returns the existing session id and no device secret; only
// the first login from a device carries DeviceSecret.
func (e *Engine) Login(ctx context.Context, username, password, deviceID string) (*LoginResponse, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	result := e.flows.Login(ctx, username, password, deviceID)
	if result.Failure != flows.LoginFailureNone {
		e.metricInc(MetricLoginFailure)
		switch result.Failure {
		case flows.LoginFailureInvalidInput:
			return nil, errors.Join(ErrInvalidRequest, result.Err)
		case flows.LoginFailureCredentials:
			return nil, errors.Join(ErrInvalidCredentials, result.Err)
		case flows.LoginFailureUpstream:
			return nil, errors.Join(ErrUpstream, result.Err)
		default:
			return nil, errors.Join(ErrInternal, result.Err)
		}
	}

	e.metricInc(MetricLoginSuccess)
	if result.Reused {
		e.metricInc(MetricSessionReused)
		e.emit(ctx, Event{
			EventType: EventSessionReused,
			UserID:    result.UserID,
			DeviceID:  result.DeviceID,
			SessionID: result.SessionID,
			Success:   true,
		})
	} else {
		e.metricInc(MetricSessionCreated)
		e.emit(ctx, Event{
			EventType: EventSessionCreated,
			UserID:    result.UserID,
			DeviceID:  result.DeviceID,
			SessionID: result.SessionID,
			Success:   true,
		})
	}

	return &LoginResponse{
		AccessToken:  result.AccessToken,
		SessionID:    result.SessionID,
		UserID:       result.UserID,
		DeviceID:     result.DeviceID,
		DeviceSecret: result.DeviceSecret,
	}, nil
}

// Refresh rotates a session's refresh credential after validating the
// device proof, the timestamp freshness window, and the session's device
// binding. The session id survives rotation unchanged.
func (e *Engine) Refresh(ctx context.Context, sessionID, deviceID, timestamp, signature string) (*RefreshResponse, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	result := e.flows.Refresh(ctx, sessionID, deviceID, timestamp, signature)
	if result.Failure != flows.RefreshFailureNone {
		e.metricInc(MetricRefreshFailure)
		switch result.Failure {
		case flows.RefreshFailureSignature:
			e.metricInc(MetricReplayRejected)
			e.emitRefreshRejected(ctx, result, "signature")
			return nil, errors.Join(ErrDeviceSignatureInvalid, result.Err)
		case flows.RefreshFailureStaleTimestamp:
			e.metricInc(MetricReplayRejected)
			e.emitRefreshRejected(ctx, result, "timestamp")
			return nil, errors.Join(ErrTimestampStale, result.Err)
		case flows.RefreshFailureSessionNotFound:
			return nil, errors.Join(ErrSessionNotFound, result.Err)
		case flows.RefreshFailureDeviceMismatch:
			e.emitRefreshRejected(ctx, result, "device_mismatch")
			return nil, errors.Join(ErrDeviceMismatch, result.Err)
		case flows.RefreshFailureUpstream:
			return nil, errors.Join(ErrUpstream, result.Err)
		case flows.RefreshFailureConflict:
			e.metricInc(MetricRefreshConflict)
			return nil, errors.Join(ErrRotationConflict, result.Err)
		default:
			return nil, errors.Join(ErrInternal, result.Err)
		}
	}

	e.metricInc(MetricRefreshSuccess)
	e.emit(ctx, Event{
		EventType: EventSessionRotated,
		UserID:    result.UserID,
		DeviceID:  result.DeviceID,
		SessionID: result.SessionID,
		Success:   true,
	})

	return &RefreshResponse{
		AccessToken: result.AccessToken,
		SessionID:   result.SessionID,
		DeviceID:    result.DeviceID,
	}, nil
}

// Logout revokes a single session: best-effort upstream revocation, then
// removal from the store and both indexes.
func (e *Engine) Logout(ctx context.Context, sessionID string) error {
	if e == nil || !e.flows.Initialized() {
		return ErrEngineNotReady
	}
	if sessionID == "" {
		return ErrInvalidRequest
	}

	result := e.flows.Logout(ctx, sessionID)
	switch result.Failure {
	case flows.LogoutFailureNone:
	case flows.LogoutFailureSessionNotFound:
		return errors.Join(ErrSessionNotFound, result.Err)
	default:
		return errors.Join(ErrInternal, result.Err)
	}

	e.metricInc(MetricLogout)
	e.emit(ctx, Event{
		EventType: EventSessionRevoked,
		UserID:    result.UserID,
		DeviceID:  result.DeviceID,
		SessionID: result.SessionID,
		Success:   true,
	})
	return nil
}

// LogoutAll revokes every session tracked for a user. A user with no
// sessions is a successful no-op.
func (e *Engine) LogoutAll(ctx context.Context, userID string) error {
	if e == nil || !e.flows.Initialized() {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrInvalidRequest
	}

	result := e.flows.LogoutAll(ctx, userID)
	if result.Failure != flows.LogoutFailureNone {
		return errors.Join(ErrInternal, result.Err)
	}

	e.metricInc(MetricLogoutAll)
	e.emit(ctx, Event{
		EventType: EventSessionsCleared,
		UserID:    result.UserID,
		Success:   true,
		Metadata: map[string]string{
			"revoked": strconv.Itoa(result.Revoked),
		},
	})
	return nil
}

// ActiveSessionIDs lists the session ids tracked for a user. The set may
// contain ids whose record already expired.
func (e *Engine) ActiveSessionIDs(ctx context.Context, userID string) ([]string, error) {
	if e == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}
	ids, err := e.sessionStore.ActiveSessionIDs(ctx, userID)
	if err != nil {
		return nil, errors.Join(ErrInternal, err)
	}
	return ids, nil
}

// Ping checks store availability and reports round-trip latency.
func (e *Engine) Ping(ctx context.Context) (time.Duration, error) {
	if e == nil || e.sessionStore == nil {
		return 0, ErrEngineNotReady
	}
	return e.sessionStore.Ping(ctx)
}

// EventsDropped reports lifecycle events shed under sink backpressure.
func (e *Engine) EventsDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.events.Dropped()
}

// MetricsSnapshot copies the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emit(ctx context.Context, event Event) {
	if e == nil || e.events == nil {
		return
	}
	event.Timestamp = e.now()
	e.events.Emit(ctx, event)
}

func (e *Engine) emitRefreshRejected(ctx context.Context, result flows.RefreshResult, reason string) {
	msg := ""
	if result.Err != nil {
		msg = result.Err.Error()
	}
	e.emit(ctx, Event{
		EventType: EventRefreshRejected,
		UserID:    result.UserID,
		DeviceID:  result.DeviceID,
		SessionID: result.SessionID,
		Success:   false,
		Error:     msg,
		Metadata:  map[string]string{"reason": reason},
	})
}
