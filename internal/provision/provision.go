// Package provision creates an auth identity and its matching profile row as
// a pair. The backend has no multi-table transaction spanning both records,
// so sign-up is retried on transient failures and a profile failure triggers
// best-effort deletion of the freshly created identity.
package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"drinkdrop-go/internal/db"
	"drinkdrop-go/internal/identity"
)

var (
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("provision: email already registered")

	// ErrConflict is returned when a duplicate shows up mid-flight, after
	// the initial existence check passed.
	ErrConflict = errors.New("provision: concurrent registration detected")

	// ErrInvalidParams marks caller input that can never succeed; it must be
	// rejected before the retry loop, never retried.
	ErrInvalidParams = errors.New("provision: invalid params")
)

const maxAttempts = 3

type Profiles interface {
	GetUserByEmail(email string) (*db.User, error)
	CreateUser(p db.CreateUserParams) (int64, error)
	GetUserByID(id int64) (*db.User, error)
}

type Params struct {
	Email       string
	Password    string
	DisplayName string
	Phone       string
	Address     string
	Role        string
}

type Service struct {
	ids      identity.Service
	profiles Profiles
	log      *slog.Logger

	// backoff is replaced in tests; defaults to 200ms, 400ms, 800ms.
	backoff func(attempt int) time.Duration
}

func New(ids identity.Service, profiles Profiles, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		ids:      ids,
		profiles: profiles,
		log:      logger,
		backoff: func(attempt int) time.Duration {
			return time.Duration(100*(1<<attempt)) * time.Millisecond
		},
	}
}

// CreateAccount provisions the identity + profile pair. On the happy path a
// profile row never exists without its identity; on conflict neither record
// is created.
func (s *Service) CreateAccount(ctx context.Context, p Params) (*db.User, error) {
	email := identity.NormalizeEmail(p.Email)
	if email == "" || p.DisplayName == "" {
		return nil, fmt.Errorf("%w: email and display name are required", ErrInvalidParams)
	}
	if err := identity.ValidatePassword(p.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if p.Role == "" {
		p.Role = "USER"
	}

	if existing, err := s.profiles.GetUserByEmail(email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}
	// A lookup error is treated as "does not exist" and we proceed; the
	// unique constraints below still catch real duplicates.

	id, err := s.signUpWithRetry(ctx, email, p.Password)
	if err != nil {
		return nil, err
	}

	uid, err := s.profiles.CreateUser(db.CreateUserParams{
		IdentityID:  id.ID,
		Email:       email,
		DisplayName: p.DisplayName,
		Phone:       p.Phone,
		Address:     p.Address,
		Role:        p.Role,
		IsActive:    true,
	})
	if err != nil {
		// The identity exists but the profile does not: clean up so we
		// do not strand an orphaned identity.
		if delErr := s.ids.Delete(ctx, id.ID); delErr != nil {
			s.log.Warn("orphaned identity cleanup failed",
				"identity_id", id.ID, "email", email, "err", delErr)
		}
		return nil, fmt.Errorf("provision: profile create failed after identity %s was provisioned (identity rolled back): %w", id.ID, err)
	}

	u, err := s.profiles.GetUserByID(uid)
	if err != nil || u == nil {
		return nil, fmt.Errorf("provision: load created profile: %w", err)
	}
	return u, nil
}

func (s *Service) signUpWithRetry(ctx context.Context, email, password string) (*identity.Identity, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		id, err := s.ids.SignUp(ctx, email, password)
		if err == nil {
			return id, nil
		}
		if errors.Is(err, identity.ErrDuplicateEmail) {
			// The existence check said the email was free, so another
			// request won the race. Abort, do not retry.
			return nil, ErrConflict
		}
		lastErr = err
		s.log.Warn("identity sign-up failed", "email", email, "attempt", attempt, "err", err)
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.backoff(attempt)):
			}
		}
	}
	return nil, fmt.Errorf("provision: identity sign-up failed after %d attempts: %w", maxAttempts, lastErr)
}

// SetBackoff overrides the retry delay schedule.
func (s *Service) SetBackoff(f func(attempt int) time.Duration) {
	if f != nil {
		s.backoff = f
	}
}
