package goSession

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goSession/device"
	"github.com/MrEthical07/goSession/internal"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/session"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the first Engine method call.
type Builder struct {
	config   Config
	redis    redis.UniversalClient
	provider IdentityProvider
	sink     EventSink
	now      func() time.Time

	built bool
}

// New returns a builder preloaded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the default configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the shared Redis client. The client is injected, never
// pulled from global state, so tests substitute an in-memory server.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithIdentityProvider sets the token-issuing collaborator.
func (b *Builder) WithIdentityProvider(provider IdentityProvider) *Builder {
	b.provider = provider
	return b
}

// WithEventSink sets the lifecycle event destination. Without a sink the
// dispatcher drops events.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.sink = sink
	return b
}

// WithClock overrides the time source used for session timestamps and the
// proof freshness window. Tests use this to pin boundary timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and wires the engine. A builder can be
// used once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client is required")
	}
	if b.provider == nil {
		return nil, errors.New("identity provider is required")
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}
	b.built = true

	cfg := b.config
	now := b.now
	if now == nil {
		now = time.Now
	}

	store := session.NewStore(b.redis, cfg.Session.RedisPrefix)
	secrets := device.NewSecretService(b.redis, cfg.Session.RedisPrefix, cfg.Device.SecretTTL)
	verifier := device.NewVerifier(secrets)
	provider := b.provider
	metrics := NewMetrics(cfg.Metrics)

	deps := flows.Deps{
		Register: flows.RegisterDeps{
			CreateUser: func(ctx context.Context, username, email, password string) (string, error) {
				return provider.CreateUser(ctx, CreateUserInput{
					Username: username,
					Email:    email,
					Password: password,
				})
			},
			UserExists: ErrUserExists,
		},
		Login: flows.LoginDeps{
			SessionTTL: cfg.Session.RefreshTTL,
			Now:        now,
			PasswordGrant: func(ctx context.Context, username, password string) (flows.TokenPair, error) {
				tokens, err := provider.PasswordGrant(ctx, username, password)
				return flows.TokenPair(tokens), err
			},
			ExtractSubject:      internal.ExtractSubject,
			FindByUserAndDevice: store.FindByUserAndDevice,
			SaveSession:         store.Save,
			CreateDeviceSecret:  secrets.CreateSecret,
			NewSessionID:        internal.NewSessionID,
			InvalidCredentials:  ErrInvalidCredentials,
			SessionAbsent:       redis.Nil,
		},
		Refresh: flows.RefreshDeps{
			SessionTTL:      cfg.Session.RefreshTTL,
			FreshnessWindow: cfg.Device.FreshnessWindow,
			Now:             now,
			VerifySignature: verifier.Verify,
			GetSession:      store.Get,
			RefreshGrant: func(ctx context.Context, refreshToken string) (flows.TokenPair, error) {
				tokens, err := provider.RefreshGrant(ctx, refreshToken)
				return flows.TokenPair(tokens), err
			},
			ReplaceRefreshToken: store.ReplaceRefreshToken,
			SessionAbsent:       redis.Nil,
			RotateConflict:      session.ErrRotateConflict,
		},
		Logout: flows.LogoutDeps{
			GetSession:         store.Get,
			DeleteSession:      store.Delete,
			ActiveSessionIDs:   store.ActiveSessionIDs,
			DeleteAllForUser:   store.DeleteAllForUser,
			RevokeRefreshToken: provider.Revoke,
			Warn:               log.Printf,
			OnRevokeFailure:    func() { metrics.Inc(MetricRevokeFailure) },
			SessionAbsent:      redis.Nil,
		},
	}

	return &Engine{
		config:       cfg,
		sessionStore: store,
		secrets:      secrets,
		verifier:     verifier,
		provider:     provider,
		events:       newEventDispatcher(cfg.Events, b.sink),
		metrics:      metrics,
		flows:        flows.New(deps),
		now:          now,
	}, nil
}
