package flows

// TokenPair is the flow-local shape of an identity provider token response.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Deps groups flow dependency sets. Root engine builds this once and
// delegates request methods to the matching flow implementation.
type Deps struct {
	Register RegisterDeps
	Login    LoginDeps
	Refresh  RefreshDeps
	Logout   LogoutDeps
}
