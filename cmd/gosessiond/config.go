package main

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// serverConfig holds daemon configuration loaded from the environment.
type serverConfig struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8084).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// RedisAddr is the Redis host:port backing sessions and device secrets.
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	// RedisPassword is optional.
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	// RedisPrefix namespaces every key written by this deployment.
	RedisPrefix string `mapstructure:"REDIS_PREFIX"`

	// KeycloakBaseURL is the provider root, e.g. http://localhost:8080.
	KeycloakBaseURL string `mapstructure:"KEYCLOAK_BASE_URL"`
	// KeycloakRealm is the realm used for both token and admin calls.
	KeycloakRealm string `mapstructure:"KEYCLOAK_REALM"`
	// KeycloakClientID / KeycloakClientSecret identify the public-facing client.
	KeycloakClientID     string `mapstructure:"KEYCLOAK_CLIENT_ID"`
	KeycloakClientSecret string `mapstructure:"KEYCLOAK_CLIENT_SECRET"`
	// KeycloakAdminClientID / secret identify the service account used for
	// user creation; falls back to the main client when empty.
	KeycloakAdminClientID     string `mapstructure:"KEYCLOAK_ADMIN_CLIENT_ID"`
	KeycloakAdminClientSecret string `mapstructure:"KEYCLOAK_ADMIN_CLIENT_SECRET"`

	// RefreshTTL is the session record lifetime (e.g. "720h").
	RefreshTTL string `mapstructure:"REFRESH_TTL"`
	// DeviceSecretTTL bounds device secret lifetime; "0" means no expiry.
	DeviceSecretTTL string `mapstructure:"DEVICE_SECRET_TTL"`
	// FreshnessWindow is the accepted clock skew for signed refresh
	// timestamps (e.g. "60s").
	FreshnessWindow string `mapstructure:"FRESHNESS_WINDOW"`
}

// loadConfig reads .env (if present), then builds serverConfig from the
// environment. Env vars override .env.
func loadConfig() (*serverConfig, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8084")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_PREFIX", "gs")
	v.SetDefault("KEYCLOAK_BASE_URL", "http://localhost:8080")
	v.SetDefault("KEYCLOAK_REALM", "master")
	v.SetDefault("KEYCLOAK_CLIENT_ID", "")
	v.SetDefault("KEYCLOAK_CLIENT_SECRET", "")
	v.SetDefault("KEYCLOAK_ADMIN_CLIENT_ID", "")
	v.SetDefault("KEYCLOAK_ADMIN_CLIENT_SECRET", "")
	v.SetDefault("REFRESH_TTL", "720h")
	v.SetDefault("DEVICE_SECRET_TTL", "0")
	v.SetDefault("FRESHNESS_WINDOW", "60s")

	var cfg serverConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.KeycloakClientID == "" {
		return nil, errors.New("config: KEYCLOAK_CLIENT_ID must be set")
	}

	return &cfg, nil
}

func (c *serverConfig) refreshTTL() time.Duration {
	return durationOr(c.RefreshTTL, 720*time.Hour)
}

func (c *serverConfig) deviceSecretTTL() time.Duration {
	return durationOr(c.DeviceSecretTTL, 0)
}

func (c *serverConfig) freshnessWindow() time.Duration {
	return durationOr(c.FreshnessWindow, 60*time.Second)
}

func durationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if raw == "0" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
