package auth

import (
	"context"
	"errors"
)

var errMockSignIn = errors.New("sign-in is not available in mock mode")

// Static is an always-signed-in session for mock mode, where the
// fixture backend never checks credentials.
type Static struct{}

func (Static) Resolve(ctx context.Context) bool { return true }

func (Static) Resolved() *bool {
	ok := true
	return &ok
}

func (Static) Subscribe(fn func(bool)) int { return 0 }

func (Static) Unsubscribe(id int) {}

func (Static) IDToken(ctx context.Context) (string, error) { return "", nil }

func (Static) BeginSignIn() (*SignInFlow, error) {
	return nil, errMockSignIn
}

func (Static) SignOut() error { return nil }
