package flows

import "context"

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Login.PasswordGrant != nil
}

func (s Service) Register(ctx context.Context, username, email, password string) RegisterResult {
	return RunRegister(ctx, username, email, password, s.deps.Register)
}

func (s Service) Login(ctx context.Context, username, password, deviceID string) LoginResult {
	return RunLogin(ctx, username, password, deviceID, s.deps.Login)
}

func (s Service) Refresh(ctx context.Context, sessionID, deviceID, timestamp, signature string) RefreshResult {
	return RunRefresh(ctx, sessionID, deviceID, timestamp, signature, s.deps.Refresh)
}

func (s Service) Logout(ctx context.Context, sessionID string) LogoutResult {
	return RunLogout(ctx, sessionID, s.deps.Logout)
}

func (s Service) LogoutAll(ctx context.Context, userID string) LogoutAllResult {
	return RunLogoutAll(ctx, userID, s.deps.Logout)
}
