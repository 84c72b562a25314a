package flows

import (
	"context"
	"errors"
)

// RegisterFailureKind classifies registration failures for root-level mapping.
type RegisterFailureKind int

const (
	RegisterFailureNone RegisterFailureKind = iota
	RegisterFailureInvalidInput
	RegisterFailureDuplicate
	RegisterFailureUpstream
)

// RegisterResult carries the created principal ID or failure metadata.
type RegisterResult struct {
	Failure RegisterFailureKind
	Err     error

	UserID   string
	Username string
	Email    string
}

// RegisterDeps captures registration flow dependencies.
type RegisterDeps struct {
	CreateUser func(ctx context.Context, username, email, password string) (string, error)

	UserExists error
}

// RunRegister creates the principal at the identity provider. Account state
// (credentials, verification) is entirely the provider's concern; this flow
// is thin glue that classifies the outcome.
func RunRegister(ctx context.Context, username, email, password string, deps RegisterDeps) RegisterResult {
	if username == "" || email == "" || password == "" {
		return RegisterResult{
			Failure: RegisterFailureInvalidInput,
			Err:     errors.New("username, email, and password are required"),
		}
	}

	userID, err := deps.CreateUser(ctx, username, email, password)
	if err != nil {
		failure := RegisterFailureUpstream
		if deps.UserExists != nil && errors.Is(err, deps.UserExists) {
			failure = RegisterFailureDuplicate
		}
		return RegisterResult{Failure: failure, Err: err, Username: username, Email: email}
	}

	return RegisterResult{UserID: userID, Username: username, Email: email}
}
