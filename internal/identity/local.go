package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 14 * 24 * time.Hour

// Local implements Service against a sqlite handle. It owns the identities
// table and never reads application tables.
type Local struct {
	db         *sql.DB
	signingKey []byte
}

func NewLocal(db *sql.DB, signingKey []byte) (*Local, error) {
	if len(signingKey) < 32 {
		return nil, errors.New("identity: signing key too short")
	}
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS identities (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
	);`)
	if err != nil {
		return nil, fmt.Errorf("identity: init: %w", err)
	}
	return &Local{db: db, signingKey: signingKey}, nil
}

func NormalizeEmail(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// ValidatePassword applies the sign-up password policy without touching the
// store, so callers can reject bad input before any identity work starts.
func ValidatePassword(pw string) error {
	if len(strings.TrimSpace(pw)) < 8 {
		return ErrWeakPassword
	}
	return nil
}

func HashPassword(pw string) (string, error) {
	pw = strings.TrimSpace(pw)
	if err := ValidatePassword(pw); err != nil {
		return "", err
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash string, pw string) bool {
	if hash == "" || pw == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func (l *Local) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, errors.New("identity: email is required")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now()
	_, err = l.db.ExecContext(ctx, `
		INSERT INTO identities(id,email,password_hash,created_at) VALUES(?,?,?,?)`,
		id, email, hash, now.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("identity: sign up: %w", err)
	}
	return &Identity{ID: id, Email: email, CreatedAt: now}, nil
}

func (l *Local) SignIn(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	row := l.db.QueryRowContext(ctx, `SELECT id,password_hash FROM identities WHERE email=?`, email)
	var id, hash string
	if err := row.Scan(&id, &hash); err != nil {
		if err == sql.ErrNoRows {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("identity: sign in: %w", err)
	}
	if !CheckPassword(hash, password) {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   id,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	})
	signed, err := tok.SignedString(l.signingKey)
	if err != nil {
		return "", fmt.Errorf("identity: sign token: %w", err)
	}
	return signed, nil
}

func (l *Local) Verify(ctx context.Context, token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return l.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidCredentials
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidCredentials
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidCredentials
	}
	return sub, nil
}

func (l *Local) GetByEmail(ctx context.Context, email string) (*Identity, error) {
	email = NormalizeEmail(email)
	row := l.db.QueryRowContext(ctx, `SELECT id,email,created_at FROM identities WHERE email=?`, email)
	var id Identity
	var ca int64
	if err := row.Scan(&id.ID, &id.Email, &ca); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	id.CreatedAt = time.Unix(ca, 0)
	return &id, nil
}

func (l *Local) Delete(ctx context.Context, id string) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM identities WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	// matches the constraint error text produced by mattn/go-sqlite3
	s := err.Error()
	return strings.Contains(s, "UNIQUE constraint failed")
}
