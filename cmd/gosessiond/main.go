// Command gosessiond runs the device-bound session service over HTTP,
// backed by Redis and a Keycloak identity provider.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/httpapi"
	"github.com/MrEthical07/goSession/idp"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()

	provider, err := idp.NewKeycloak(idp.Config{
		BaseURL:           cfg.KeycloakBaseURL,
		Realm:             cfg.KeycloakRealm,
		ClientID:          cfg.KeycloakClientID,
		ClientSecret:      cfg.KeycloakClientSecret,
		AdminClientID:     cfg.KeycloakAdminClientID,
		AdminClientSecret: cfg.KeycloakAdminClientSecret,
	})
	if err != nil {
		log.Fatalf("keycloak: %v", err)
	}

	engine, err := goSession.New().
		WithConfig(goSession.Config{
			Session: goSession.SessionConfig{
				RedisPrefix: cfg.RedisPrefix,
				RefreshTTL:  cfg.refreshTTL(),
			},
			Device: goSession.DeviceConfig{
				SecretTTL:       cfg.deviceSecretTTL(),
				FreshnessWindow: cfg.freshnessWindow(),
			},
			Events: goSession.EventConfig{
				Enabled:    true,
				BufferSize: 256,
				DropIfFull: true,
			},
			Metrics: goSession.MetricsConfig{Enabled: true},
		}).
		WithRedis(rdb).
		WithIdentityProvider(provider).
		WithEventSink(goSession.NewJSONWriterSink(os.Stdout)).
		Build()
	if err != nil {
		log.Fatalf("engine: %v", err)
	}
	defer engine.Close()

	if _, err := engine.Ping(context.Background()); err != nil {
		log.Fatalf("redis ping: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewHandler(engine).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("gosessiond listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("stopped")
}
