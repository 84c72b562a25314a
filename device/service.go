package device

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps any Redis failure observed by the secret store.
var ErrRedisUnavailable = errors.New("redis unavailable")

const secretSize = 32

// SecretService issues and retrieves the per-device signing key used as the
// HMAC key for device proofs.
type SecretService struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewSecretService creates a [SecretService] backed by the given Redis
// client. prefix sets the key namespace; ttl bounds secret lifetime, with
// zero meaning no expiry (the default deployment shape).
func NewSecretService(redis redis.UniversalClient, prefix string, ttl time.Duration) *SecretService {
	return &SecretService{
		redis:  redis,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *SecretService) key(deviceID string) string {
	return s.prefix + ":device-secret:" + deviceID
}

// CreateSecret generates 32 bytes of cryptographically secure random data,
// base64url-encodes it without padding, and persists it keyed by deviceID.
// A repeat call for the same device overwrites the prior secret: last secret
// wins, invalidating proofs signed with the old one.
func (s *SecretService) CreateSecret(ctx context.Context, deviceID string) (string, error) {
	var raw [secretSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	secret := base64.RawURLEncoding.EncodeToString(raw[:])

	if err := s.redis.Set(ctx, s.key(deviceID), secret, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return secret, nil
}

// GetSecret retrieves the device secret. ok is false when the device never
// registered one or the secret expired per the configured TTL.
func (s *SecretService) GetSecret(ctx context.Context, deviceID string) (secret string, ok bool, err error) {
	secret, err = s.redis.Get(ctx, s.key(deviceID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return secret, true, nil
}
