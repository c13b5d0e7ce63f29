package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"

	"github.com/iraklijanashvili/Ecommerce-sub000/docstore"
)

// TokenVerifier resolves Firebase ID tokens to principal ids.
type TokenVerifier struct {
	client *auth.Client
}

// NewTokenVerifier builds a verifier from an initialized Firebase app.
func NewTokenVerifier(ctx context.Context, app *firebase.App) (*TokenVerifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("identity: init auth client: %w", err)
	}
	return &TokenVerifier{client: client}, nil
}

// Verify checks idToken and returns the principal id it carries. An
// invalid, expired, or revoked token resolves to ErrNotAuthenticated.
func (v *TokenVerifier) Verify(ctx context.Context, idToken string) (string, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", docstore.ErrNotAuthenticated, err)
	}
	return token.UID, nil
}

// Session verifies idToken and returns a Provider bound to its principal.
func (v *TokenVerifier) Session(ctx context.Context, idToken string) (*Static, error) {
	uid, err := v.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return NewStatic(uid), nil
}
