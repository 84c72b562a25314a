package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goSession "github.com/MrEthical07/goSession"
)

// Config carries Keycloak connection settings. ClientID/ClientSecret drive
// the user-facing grants; AdminClientID/AdminClientSecret authenticate the
// admin API via client credentials for user creation.
type Config struct {
	BaseURL           string
	Realm             string
	ClientID          string
	ClientSecret      string
	AdminClientID     string
	AdminClientSecret string
	Timeout           time.Duration
	// HTTPClient overrides the default client; tests point it at httptest.
	HTTPClient *http.Client
}

// Keycloak is an [goSession.IdentityProvider] backed by a Keycloak realm.
type Keycloak struct {
	cfg  Config
	http *http.Client
}

var _ goSession.IdentityProvider = (*Keycloak)(nil)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// NewKeycloak validates the configuration and returns a provider client.
func NewKeycloak(cfg Config) (*Keycloak, error) {
	if cfg.BaseURL == "" || cfg.Realm == "" || cfg.ClientID == "" {
		return nil, errors.New("keycloak base URL, realm, and client id are required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Keycloak{cfg: cfg, http: client}, nil
}

// PasswordGrant exchanges user credentials for a token pair.
func (k *Keycloak) PasswordGrant(ctx context.Context, username, password string) (goSession.TokenPair, error) {
	return k.tokenRequest(ctx, k.cfg.Realm, url.Values{
		"grant_type":    {"password"},
		"username":      {username},
		"password":      {password},
		"client_id":     {k.cfg.ClientID},
		"client_secret": {k.cfg.ClientSecret},
	})
}

// RefreshGrant rotates a refresh token. Keycloak invalidates the presented
// token on success, which is what bounds the blast radius of a stale
// session record.
func (k *Keycloak) RefreshGrant(ctx context.Context, refreshToken string) (goSession.TokenPair, error) {
	return k.tokenRequest(ctx, k.cfg.Realm, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {k.cfg.ClientID},
		"client_secret": {k.cfg.ClientSecret},
	})
}

// Revoke invalidates a refresh token via the logout endpoint.
func (k *Keycloak) Revoke(ctx context.Context, refreshToken string) error {
	endpoint := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/logout", k.cfg.BaseURL, k.cfg.Realm)
	form := url.Values{
		"client_id":     {k.cfg.ClientID},
		"client_secret": {k.cfg.ClientSecret},
		"refresh_token": {refreshToken},
	}

	resp, err := k.postForm(ctx, endpoint, form)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("keycloak logout: status %d", resp.StatusCode)
	}
	return nil
}

// CreateUser creates an enabled principal with a permanent password through
// the admin API and returns the Keycloak-assigned user id.
func (k *Keycloak) CreateUser(ctx context.Context, input goSession.CreateUserInput) (string, error) {
	adminToken, err := k.adminToken(ctx)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]any{
		"username":      input.Username,
		"email":         input.Email,
		"enabled":       true,
		"emailVerified": true,
		"credentials": []map[string]any{{
			"type":      "password",
			"value":     input.Password,
			"temporary": false,
		}},
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/admin/realms/%s/users", k.cfg.BaseURL, k.cfg.Realm)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminToken)

	resp, err := k.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("keycloak create user: %w", err)
	}
	defer drain(resp)

	switch {
	case resp.StatusCode == http.StatusConflict:
		return "", fmt.Errorf("%w: %s", goSession.ErrUserExists, input.Username)
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("keycloak create user: status %d: %s", resp.StatusCode, body)
	}

	location := resp.Header.Get("Location")
	if idx := strings.LastIndex(location, "/"); idx >= 0 && idx+1 < len(location) {
		return location[idx+1:], nil
	}
	return "", errors.New("keycloak create user: missing Location header")
}

func (k *Keycloak) adminToken(ctx context.Context) (string, error) {
	clientID := k.cfg.AdminClientID
	clientSecret := k.cfg.AdminClientSecret
	if clientID == "" {
		clientID = k.cfg.ClientID
		clientSecret = k.cfg.ClientSecret
	}

	tokens, err := k.tokenRequest(ctx, k.cfg.Realm, url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
	})
	if err != nil {
		return "", err
	}
	return tokens.AccessToken, nil
}

func (k *Keycloak) tokenRequest(ctx context.Context, realm string, form url.Values) (goSession.TokenPair, error) {
	endpoint := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", k.cfg.BaseURL, realm)

	resp, err := k.postForm(ctx, endpoint, form)
	if err != nil {
		return goSession.TokenPair{}, err
	}
	defer drain(resp)

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
			return goSession.TokenPair{}, fmt.Errorf("%w: keycloak status %d", goSession.ErrInvalidCredentials, resp.StatusCode)
		}
		return goSession.TokenPair{}, fmt.Errorf("keycloak token endpoint: status %d: %s", resp.StatusCode, body)
	}

	var decoded tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return goSession.TokenPair{}, fmt.Errorf("keycloak token endpoint: decode: %w", err)
	}

	return goSession.TokenPair{
		AccessToken:  decoded.AccessToken,
		RefreshToken: decoded.RefreshToken,
		ExpiresIn:    decoded.ExpiresIn,
	}, nil
}

func (k *Keycloak) postForm(ctx context.Context, endpoint string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("keycloak request: %w", err)
	}
	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
