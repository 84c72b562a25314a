package goSession

import (
	"errors"
	"time"
)

// Config carries all engine tuning. Instances are intended to be configured
// during initialization and then treated as immutable.
type Config struct {
	Session SessionConfig
	Device  DeviceConfig
	Events  EventConfig
	Metrics MetricsConfig
}

// SessionConfig controls session persistence.
type SessionConfig struct {
	// RedisPrefix namespaces every session and index key.
	RedisPrefix string
	// RefreshTTL is the uniform TTL applied to the session record and its
	// indexes on every save and rotation. TTL expiry is a safety net; the
	// primary removal path is explicit logout.
	RefreshTTL time.Duration
}

// DeviceConfig controls device secrets and the proof protocol.
type DeviceConfig struct {
	// SecretTTL bounds device secret lifetime. Zero means no expiry, which
	// is the default: secrets are created once per device and never rotated
	// automatically.
	SecretTTL time.Duration
	// FreshnessWindow is the maximum tolerated distance between a proof
	// timestamp and server time, in either direction.
	FreshnessWindow time.Duration
}

// EventConfig controls the async lifecycle event dispatcher.
type EventConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull sheds events under sink backpressure instead of blocking
	// request flows.
	DropIfFull bool
}

// MetricsConfig controls the in-process counter set.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			RedisPrefix: "gs",
			RefreshTTL:  30 * 24 * time.Hour,
		},
		Device: DeviceConfig{
			SecretTTL:       0,
			FreshnessWindow: 60 * time.Second,
		},
		Events: EventConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types today; the indirection stays so future
	// reference-typed fields keep Build-time isolation.
	return cfg
}

func validateConfig(cfg Config) error {
	if cfg.Session.RedisPrefix == "" {
		return errors.New("session redis prefix must not be empty")
	}
	if cfg.Session.RefreshTTL <= 0 {
		return errors.New("session refresh TTL must be positive")
	}
	if cfg.Device.SecretTTL < 0 {
		return errors.New("device secret TTL must not be negative")
	}
	if cfg.Device.FreshnessWindow <= 0 || cfg.Device.FreshnessWindow > 15*time.Minute {
		return errors.New("device freshness window out of range")
	}
	if cfg.Events.Enabled && cfg.Events.BufferSize < 0 {
		return errors.New("event buffer size must not be negative")
	}
	return nil
}
