package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"drinkdrop-go/internal/db"
)

const sessionCookieName = "dd_session"

type ctxKey string

const ctxKeyUser ctxKey = "user"

// SetSession stores the identity service's session token in a cookie.
func (a *App) SetSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   strings.HasPrefix(strings.ToLower(a.cfg.BaseURL), "https://"),
		Expires:  time.Now().Add(14 * 24 * time.Hour),
	})
}

func (a *App) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   strings.HasPrefix(strings.ToLower(a.cfg.BaseURL), "https://"),
	})
}

// sessionToken pulls the token from the Authorization header or the session
// cookie.
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// MiddlewareLoadCurrentUser verifies the session token against the identity
// service and attaches the matching active profile to the request context.
func (a *App) MiddlewareLoadCurrentUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := sessionToken(r); tok != "" {
			identityID, err := a.ids.Verify(r.Context(), tok)
			if err == nil {
				u, err := a.store.Q.GetUserByIdentityID(identityID)
				if err == nil && u != nil && u.IsActive {
					ctx := context.WithValue(r.Context(), ctxKeyUser, u)
					r = r.WithContext(ctx)
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) CurrentUser(r *http.Request) *db.User {
	u, _ := r.Context().Value(ctxKeyUser).(*db.User)
	return u
}
