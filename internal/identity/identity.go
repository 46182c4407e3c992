// Package identity models the hosted authentication service the storefront
// depends on. The rest of the code talks to it through Service and treats it
// as a black box; Local is the default implementation backing identities with
// their own table and HS256 session tokens.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDuplicateEmail     = errors.New("identity: email already registered")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrNotFound           = errors.New("identity: not found")
	ErrWeakPassword       = errors.New("identity: password must be at least 8 characters")
)

type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Service interface {
	// SignUp registers a new identity. Returns ErrDuplicateEmail when the
	// email is already taken.
	SignUp(ctx context.Context, email, password string) (*Identity, error)

	// SignIn verifies credentials and returns a signed session token.
	SignIn(ctx context.Context, email, password string) (string, error)

	// Verify validates a session token and returns the identity id.
	Verify(ctx context.Context, token string) (string, error)

	// GetByEmail returns ErrNotFound when no identity matches.
	GetByEmail(ctx context.Context, email string) (*Identity, error)

	// Delete removes an identity record.
	Delete(ctx context.Context, id string) error
}
