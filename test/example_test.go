package test

import (
	"context"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/idp"
	"github.com/redis/go-redis/v9"
)

// ExampleNew demonstrates engine construction with production-style
// dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	provider, _ := idp.NewKeycloak(idp.Config{
		BaseURL:      "http://127.0.0.1:8080",
		Realm:        "master",
		ClientID:     "session-service",
		ClientSecret: "secret",
	})

	engine, _ := goSession.New().
		WithRedis(rdb).
		WithIdentityProvider(provider).
		Build()
	_ = engine
}

// ExampleEngine_Login shows a typical login call and structured error
// handling.
func ExampleEngine_Login() {
	var engine *goSession.Engine
	_, err := engine.Login(context.Background(), "alice", "password", "device-1")
	if err != nil {
		_ = err
	}
}

// ExampleEngine_MetricsSnapshot shows how to read in-process counters.
func ExampleEngine_MetricsSnapshot() {
	var engine *goSession.Engine
	snapshot := engine.MetricsSnapshot()
	_ = snapshot
}
