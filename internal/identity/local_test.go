package identity

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	sqlDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	sqlDB.SetMaxOpenConns(1)

	l, err := NewLocal(sqlDB, testKey)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestNewLocalRejectsShortKey(t *testing.T) {
	sqlDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer sqlDB.Close()
	if _, err := NewLocal(sqlDB, []byte("short")); err == nil {
		t.Fatal("expected error for short signing key")
	}
}

func TestSignUpSignInVerify(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	id, err := l.SignUp(ctx, "Alice@Example.com", "hunter2-long")
	if err != nil {
		t.Fatal(err)
	}
	if id.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", id.Email)
	}
	if id.ID == "" {
		t.Fatal("identity id missing")
	}

	tok, err := l.SignIn(ctx, "alice@example.com", "hunter2-long")
	if err != nil {
		t.Fatal(err)
	}
	got, err := l.Verify(ctx, tok)
	if err != nil {
		t.Fatal(err)
	}
	if got != id.ID {
		t.Fatalf("Verify returned %q, want %q", got, id.ID)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	if _, err := l.SignUp(ctx, "bob@example.com", "hunter2-long"); err != nil {
		t.Fatal(err)
	}
	_, err := l.SignUp(ctx, "Bob@Example.com", "another-pass")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestSignUpRejectsShortPassword(t *testing.T) {
	l := newTestLocal(t)
	if _, err := l.SignUp(context.Background(), "carol@example.com", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("err = %v, want ErrWeakPassword", err)
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("long-enough"); err != nil {
		t.Fatal(err)
	}
	for _, pw := range []string{"", "short", "       1"} {
		if !errors.Is(ValidatePassword(pw), ErrWeakPassword) {
			t.Errorf("password %q should be rejected", pw)
		}
	}
}

func TestSignInBadCredentials(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	if _, err := l.SignIn(ctx, "nobody@example.com", "whatever1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}

	if _, err := l.SignUp(ctx, "dave@example.com", "hunter2-long"); err != nil {
		t.Fatal(err)
	}
	if _, err := l.SignIn(ctx, "dave@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()
	for _, tok := range []string{"", "not-a-token", "aaa.bbb.ccc"} {
		if _, err := l.Verify(ctx, tok); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("token %q: err = %v, want ErrInvalidCredentials", tok, err)
		}
	}
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()
	if _, err := l.SignUp(ctx, "eve@example.com", "hunter2-long"); err != nil {
		t.Fatal(err)
	}
	tok, err := l.SignIn(ctx, "eve@example.com", "hunter2-long")
	if err != nil {
		t.Fatal(err)
	}

	otherDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { otherDB.Close() })
	otherDB.SetMaxOpenConns(1)
	other, err := NewLocal(otherDB, []byte("ffffffffffffffffffffffffffffffff"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.Verify(ctx, tok); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("token signed with a different key: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestGetByEmailAndDelete(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	id, err := l.SignUp(ctx, "frank@example.com", "hunter2-long")
	if err != nil {
		t.Fatal(err)
	}
	got, err := l.GetByEmail(ctx, "Frank@Example.com")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != id.ID {
		t.Fatalf("GetByEmail returned %q, want %q", got.ID, id.ID)
	}

	if err := l.Delete(ctx, id.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := l.GetByEmail(ctx, "frank@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after delete: err = %v, want ErrNotFound", err)
	}
	if err := l.Delete(ctx, id.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: err = %v, want ErrNotFound", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Grace@Example.COM "); got != "grace@example.com" {
		t.Fatalf("got %q", got)
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2-long")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "hunter2-long") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hash, "wrong-pass") {
		t.Fatal("wrong password accepted")
	}
	if CheckPassword("", "hunter2-long") || CheckPassword(hash, "") {
		t.Fatal("empty hash or password must be rejected")
	}
}
