package idp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	goSession "github.com/MrEthical07/goSession"
)

func newTestKeycloak(t *testing.T, handler http.Handler) (*Keycloak, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	kc, err := NewKeycloak(Config{
		BaseURL:      srv.URL,
		Realm:        "test-realm",
		ClientID:     "session-service",
		ClientSecret: "client-secret",
		HTTPClient:   srv.Client(),
	})
	if err != nil {
		t.Fatalf("new keycloak: %v", err)
	}
	return kc, srv.Close
}

func writeTokens(w http.ResponseWriter) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token":  "at-1",
		"refresh_token": "rt-1",
		"expires_in":    300,
	})
}

func TestPasswordGrantFormEncoding(t *testing.T) {
	var seen map[string]string
	kc, done := newTestKeycloak(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/realms/test-realm/protocol/openid-connect/token" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Fatalf("unexpected content type %s", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		seen = map[string]string{
			"grant_type": r.PostFormValue("grant_type"),
			"username":   r.PostFormValue("username"),
			"password":   r.PostFormValue("password"),
			"client_id":  r.PostFormValue("client_id"),
		}
		writeTokens(w)
	}))
	defer done()

	tokens, err := kc.PasswordGrant(context.Background(), "alice", "pw-1")
	if err != nil {
		t.Fatalf("password grant: %v", err)
	}
	if tokens.AccessToken != "at-1" || tokens.RefreshToken != "rt-1" || tokens.ExpiresIn != 300 {
		t.Fatalf("unexpected token pair: %+v", tokens)
	}
	want := map[string]string{
		"grant_type": "password",
		"username":   "alice",
		"password":   "pw-1",
		"client_id":  "session-service",
	}
	for k, v := range want {
		if seen[k] != v {
			t.Fatalf("form field %s: got %q want %q", k, seen[k], v)
		}
	}
}

func TestPasswordGrantRejectionMapsToInvalidCredentials(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized} {
		kc, done := newTestKeycloak(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))

		_, err := kc.PasswordGrant(context.Background(), "alice", "wrong")
		done()
		if !errors.Is(err, goSession.ErrInvalidCredentials) {
			t.Fatalf("status %d: expected ErrInvalidCredentials, got %v", status, err)
		}
	}
}

func TestTokenEndpointServerErrorIsNotCredentials(t *testing.T) {
	kc, done := newTestKeycloak(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer done()

	_, err := kc.RefreshGrant(context.Background(), "rt-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, goSession.ErrInvalidCredentials) {
		t.Fatal("server failure must not be classified as bad credentials")
	}
}

func TestRefreshGrantSendsRefreshToken(t *testing.T) {
	kc, done := newTestKeycloak(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.PostFormValue("grant_type"); got != "refresh_token" {
			t.Fatalf("expected refresh_token grant, got %s", got)
		}
		if got := r.PostFormValue("refresh_token"); got != "rt-old" {
			t.Fatalf("expected rt-old, got %s", got)
		}
		writeTokens(w)
	}))
	defer done()

	if _, err := kc.RefreshGrant(context.Background(), "rt-old"); err != nil {
		t.Fatalf("refresh grant: %v", err)
	}
}

func TestRevokePostsToLogout(t *testing.T) {
	called := false
	kc, done := newTestKeycloak(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/realms/test-realm/protocol/openid-connect/logout" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.PostFormValue("refresh_token"); got != "rt-1" {
			t.Fatalf("expected rt-1, got %s", got)
		}
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))
	defer done()

	if err := kc.Revoke(context.Background(), "rt-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if !called {
		t.Fatal("logout endpoint not called")
	}
}

func TestCreateUserParsesLocation(t *testing.T) {
	kc, done := newTestKeycloak(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/realms/test-realm/protocol/openid-connect/token":
			if got := r.PostFormValue("grant_type"); got != "client_credentials" {
				t.Fatalf("expected client_credentials, got %s", got)
			}
			writeTokens(w)
		case "/admin/realms/test-realm/users":
			if got := r.Header.Get("Authorization"); got != "Bearer at-1" {
				t.Fatalf("expected admin bearer token, got %q", got)
			}
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["username"] != "alice" || body["enabled"] != true {
				t.Fatalf("unexpected payload: %v", body)
			}
			w.Header().Set("Location", "http://keycloak/admin/realms/test-realm/users/kc-user-1")
			w.WriteHeader(http.StatusCreated)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer done()

	userID, err := kc.CreateUser(context.Background(), goSession.CreateUserInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw-123456",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if userID != "kc-user-1" {
		t.Fatalf("expected kc-user-1, got %s", userID)
	}
}

func TestCreateUserConflictMapsToUserExists(t *testing.T) {
	kc, done := newTestKeycloak(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/realms/test-realm/protocol/openid-connect/token" {
			writeTokens(w)
			return
		}
		w.WriteHeader(http.StatusConflict)
	}))
	defer done()

	_, err := kc.CreateUser(context.Background(), goSession.CreateUserInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw-123456",
	})
	if !errors.Is(err, goSession.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestNewKeycloakValidation(t *testing.T) {
	if _, err := NewKeycloak(Config{Realm: "r", ClientID: "c"}); err == nil {
		t.Fatal("expected error for missing base URL")
	}
	if _, err := NewKeycloak(Config{BaseURL: "http://kc", ClientID: "c"}); err == nil {
		t.Fatal("expected error for missing realm")
	}
	if _, err := NewKeycloak(Config{BaseURL: "http://kc", Realm: "r"}); err == nil {
		t.Fatal("expected error for missing client id")
	}
}
