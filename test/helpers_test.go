//go:build integration
// +build integration

package test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/session"
)

// memoryProvider is a self-contained identity provider for full-lifecycle
// tests. It mints real JWTs and tracks refresh token validity the way a
// rotating provider does: a granted token is single-use.
type memoryProvider struct {
	mu      sync.Mutex
	users   map[string]string
	grants  int
	live    map[string]string
	revoked []string
}

func newMemoryProvider() *memoryProvider {
	return &memoryProvider{
		users: map[string]string{},
		live:  map[string]string{},
	}
}

func (p *memoryProvider) mint(subject string) (goSession.TokenPair, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: subject,
	}).SignedString([]byte("lifecycle-test-key"))
	if err != nil {
		return goSession.TokenPair{}, err
	}
	p.grants++
	refresh := fmt.Sprintf("rt-%d", p.grants)
	p.live[refresh] = subject
	return goSession.TokenPair{
		AccessToken:  token,
		RefreshToken: refresh,
		ExpiresIn:    300,
	}, nil
}

func (p *memoryProvider) PasswordGrant(_ context.Context, username, password string) (goSession.TokenPair, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if stored, ok := p.users[username]; !ok || stored != password {
		return goSession.TokenPair{}, fmt.Errorf("%w: unknown user or bad password", goSession.ErrInvalidCredentials)
	}
	return p.mint("uid-" + username)
}

func (p *memoryProvider) RefreshGrant(_ context.Context, refreshToken string) (goSession.TokenPair, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	subject, ok := p.live[refreshToken]
	if !ok {
		return goSession.TokenPair{}, fmt.Errorf("refresh token not recognized")
	}
	delete(p.live, refreshToken)
	return p.mint(subject)
}

func (p *memoryProvider) Revoke(_ context.Context, refreshToken string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.live, refreshToken)
	p.revoked = append(p.revoked, refreshToken)
	return nil
}

func (p *memoryProvider) CreateUser(_ context.Context, input goSession.CreateUserInput) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.users[input.Username]; ok {
		return "", fmt.Errorf("%w: %s", goSession.ErrUserExists, input.Username)
	}
	p.users[input.Username] = input.Password
	return "uid-" + input.Username, nil
}

var lifecycleNow = time.UnixMilli(1700000000000)

func newLifecycleEngine(t *testing.T) (*goSession.Engine, *memoryProvider, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	provider := newMemoryProvider()
	engine, err := goSession.New().
		WithConfig(goSession.Config{
			Session: goSession.SessionConfig{RedisPrefix: "gs", RefreshTTL: time.Hour},
			Device:  goSession.DeviceConfig{FreshnessWindow: time.Minute},
			Events:  goSession.EventConfig{Enabled: true, BufferSize: 64, DropIfFull: true},
			Metrics: goSession.MetricsConfig{Enabled: true},
		}).
		WithRedis(rdb).
		WithIdentityProvider(provider).
		WithClock(func() time.Time { return lifecycleNow }).
		Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}

	return engine, provider, func() {
		engine.Close()
		rdb.Close()
		mr.Close()
	}
}

func newIntegrationStore(t *testing.T) (*session.Store, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return session.NewStore(rdb, "gs"), func() {
		rdb.Close()
		mr.Close()
	}
}
