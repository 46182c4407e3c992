package provision

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"drinkdrop-go/internal/db"
	"drinkdrop-go/internal/identity"
)

type fakeIdentity struct {
	signUpErrs []error // consumed one per SignUp call; nil means success
	signUps    int
	created    []string
	deleted    []string
}

func (f *fakeIdentity) SignUp(_ context.Context, email, _ string) (*identity.Identity, error) {
	f.signUps++
	if len(f.signUpErrs) > 0 {
		err := f.signUpErrs[0]
		f.signUpErrs = f.signUpErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	id := fmt.Sprintf("id-%d", f.signUps)
	f.created = append(f.created, id)
	return &identity.Identity{ID: id, Email: email, CreatedAt: time.Now()}, nil
}

func (f *fakeIdentity) SignIn(context.Context, string, string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeIdentity) Verify(context.Context, string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeIdentity) GetByEmail(context.Context, string) (*identity.Identity, error) {
	return nil, identity.ErrNotFound
}

func (f *fakeIdentity) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeProfiles struct {
	byEmail   map[string]*db.User
	byID      map[int64]*db.User
	nextID    int64
	createErr error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{byEmail: map[string]*db.User{}, byID: map[int64]*db.User{}}
}

func (f *fakeProfiles) GetUserByEmail(email string) (*db.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, errors.New("no rows")
}

func (f *fakeProfiles) CreateUser(p db.CreateUserParams) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	u := &db.User{
		ID:          f.nextID,
		IdentityID:  p.IdentityID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Role:        p.Role,
		IsActive:    p.IsActive,
	}
	f.byEmail[p.Email] = u
	f.byID[u.ID] = u
	return u.ID, nil
}

func (f *fakeProfiles) GetUserByID(id int64) (*db.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, errors.New("no rows")
}

func newService(ids identity.Service, profiles Profiles) *Service {
	s := New(ids, profiles, nil)
	s.SetBackoff(func(int) time.Duration { return 0 })
	return s
}

func TestCreateAccountHappyPath(t *testing.T) {
	ids := &fakeIdentity{}
	profiles := newFakeProfiles()
	s := newService(ids, profiles)

	u, err := s.CreateAccount(context.Background(), Params{
		Email:       " Alice@Example.COM ",
		Password:    "correct-horse",
		DisplayName: "Alice",
	})
	if err != nil {
		t.Fatal(err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	if u.Role != "USER" {
		t.Errorf("role = %q, want default USER", u.Role)
	}
	if len(ids.created) != 1 || u.IdentityID != ids.created[0] {
		t.Errorf("profile identity_id %q does not match created identity %v", u.IdentityID, ids.created)
	}
	if len(ids.deleted) != 0 {
		t.Errorf("no cleanup expected on the happy path, deleted %v", ids.deleted)
	}
}

func TestCreateAccountEmailTaken(t *testing.T) {
	ids := &fakeIdentity{}
	profiles := newFakeProfiles()
	profiles.byEmail["bob@example.com"] = &db.User{ID: 1, Email: "bob@example.com"}
	s := newService(ids, profiles)

	_, err := s.CreateAccount(context.Background(), Params{
		Email: "bob@example.com", Password: "pw-longer", DisplayName: "Bob",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
	if ids.signUps != 0 {
		t.Errorf("sign-up should not be attempted for a known email, got %d calls", ids.signUps)
	}
}

func TestCreateAccountRetriesTransientFailures(t *testing.T) {
	ids := &fakeIdentity{signUpErrs: []error{
		errors.New("connection reset"),
		errors.New("503"),
		nil,
	}}
	profiles := newFakeProfiles()
	s := newService(ids, profiles)

	u, err := s.CreateAccount(context.Background(), Params{
		Email: "carol@example.com", Password: "pw-longer", DisplayName: "Carol",
	})
	if err != nil {
		t.Fatal(err)
	}
	if ids.signUps != 3 {
		t.Errorf("sign-up attempts = %d, want 3", ids.signUps)
	}
	if u == nil || profiles.byEmail["carol@example.com"] == nil {
		t.Fatal("profile missing after eventual success")
	}
}

func TestCreateAccountGivesUpAfterMaxAttempts(t *testing.T) {
	boom := errors.New("gateway down")
	ids := &fakeIdentity{signUpErrs: []error{boom, boom, boom}}
	profiles := newFakeProfiles()
	s := newService(ids, profiles)

	_, err := s.CreateAccount(context.Background(), Params{
		Email: "dave@example.com", Password: "pw-longer", DisplayName: "Dave",
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if ids.signUps != 3 {
		t.Errorf("sign-up attempts = %d, want 3", ids.signUps)
	}
	if len(profiles.byEmail) != 0 {
		t.Error("no profile should exist after sign-up failure")
	}
}

func TestCreateAccountConflictMidFlight(t *testing.T) {
	ids := &fakeIdentity{signUpErrs: []error{identity.ErrDuplicateEmail}}
	profiles := newFakeProfiles()
	s := newService(ids, profiles)

	_, err := s.CreateAccount(context.Background(), Params{
		Email: "eve@example.com", Password: "pw-longer", DisplayName: "Eve",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if ids.signUps != 1 {
		t.Errorf("duplicate must not be retried, got %d attempts", ids.signUps)
	}
	if len(profiles.byEmail) != 0 || len(ids.deleted) != 0 {
		t.Error("conflict should leave neither record and delete nothing")
	}
}

func TestCreateAccountCleansUpOrphanedIdentity(t *testing.T) {
	ids := &fakeIdentity{}
	profiles := newFakeProfiles()
	profiles.createErr = errors.New("disk full")
	s := newService(ids, profiles)

	_, err := s.CreateAccount(context.Background(), Params{
		Email: "frank@example.com", Password: "pw-longer", DisplayName: "Frank",
	})
	if err == nil {
		t.Fatal("expected error when profile create fails")
	}
	if len(ids.created) != 1 {
		t.Fatalf("expected one identity created, got %v", ids.created)
	}
	if len(ids.deleted) != 1 || ids.deleted[0] != ids.created[0] {
		t.Fatalf("created identity should be deleted, created %v deleted %v", ids.created, ids.deleted)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	ids := &fakeIdentity{}
	s := newService(ids, newFakeProfiles())

	cases := []struct {
		name string
		p    Params
	}{
		{"missing email", Params{Password: "pw-longer", DisplayName: "X"}},
		{"missing display name", Params{Email: "x@example.com", Password: "pw-longer"}},
		{"short password", Params{Email: "x@example.com", Password: "short", DisplayName: "X"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.CreateAccount(context.Background(), tc.p)
			if !errors.Is(err, ErrInvalidParams) {
				t.Fatalf("err = %v, want ErrInvalidParams", err)
			}
		})
	}
	// Input problems are rejected up front, never handed to the identity
	// service or its retry loop.
	if ids.signUps != 0 {
		t.Fatalf("sign-up attempted %d times for invalid input", ids.signUps)
	}
}
