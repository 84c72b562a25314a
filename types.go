package goSession

import "context"

// TokenPair is the subset of an identity provider token response that the
// session core consumes. The provider's response is otherwise opaque here.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// CreateUserInput carries the fields needed to create a principal at the
// identity provider.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
}

// IdentityProvider is the collaborator that owns credentials and token
// grants. goSession never implements grant flows; it only consumes the
// fields the provider returns. Implementations must surface
// [ErrInvalidCredentials] and [ErrUserExists] (via errors.Is) so flows can
// classify outcomes; any other failure is treated as upstream.
type IdentityProvider interface {
	PasswordGrant(ctx context.Context, username, password string) (TokenPair, error)
	RefreshGrant(ctx context.Context, refreshToken string) (TokenPair, error)
	Revoke(ctx context.Context, refreshToken string) error
	CreateUser(ctx context.Context, input CreateUserInput) (string, error)
}

// RegisterResponse is returned by [Engine.Register].
type RegisterResponse struct {
	UserID string `json:"userId"`
}

// LoginResponse is returned by [Engine.Login]. DeviceSecret is present only
// on the first registration of a device; callers must cache it to construct
// future device proofs, because it is never returned again.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	SessionID    string `json:"sid"`
	UserID       string `json:"userId"`
	DeviceID     string `json:"deviceId"`
	DeviceSecret string `json:"deviceSecret,omitempty"`
}

// RefreshResponse is returned by [Engine.Refresh]. The session id never
// changes across rotations.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
	SessionID   string `json:"sid"`
	DeviceID    string `json:"deviceId"`
}
