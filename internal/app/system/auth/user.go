// Package auth identifies API callers. A caller is known either by a bearer
// token signed by the identity provider or by the session cookie issued in
// exchange for one.
//
// User.ID is the provider's stable subject ("sub") and is what invitations
// record as their owner. User.Email is only used for the admin allowlist and
// display.
package auth

import (
	"context"
	"net/http"

	"github.com/dalemusser/gatherly/internal/app/system/jsonutil"
	"go.uber.org/zap"
)

// Identity sources recorded on User.
const (
	SourceBearer  = "bearer"
	SourceSession = "session"
)

// User is the authenticated caller.
type User struct {
	ID        string
	Email     string
	IsAdmin   bool
	Source    string // SourceBearer or SourceSession
	SessionID string // set when Source is SourceSession
}

type userKey struct{}

func withUser(r *http.Request, u *User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userKey{}, u))
}

// WithTestUser puts u in the request context, skipping LoadUser.
func WithTestUser(r *http.Request, u *User) *http.Request {
	return withUser(r, u)
}

// CurrentUser returns the caller, if any.
func CurrentUser(r *http.Request) (*User, bool) {
	u, ok := r.Context().Value(userKey{}).(*User)
	return u, ok && u != nil
}

// UserID returns the caller's id, or "" for anonymous requests.
func UserID(r *http.Request) string {
	if u, ok := CurrentUser(r); ok {
		return u.ID
	}
	return ""
}

// LoadUser identifies the caller and stores it in the request context. A
// bearer header wins over the cookie even when the token is bad, in which
// case the request proceeds anonymously.
func (sm *SessionManager) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var u *User
		if raw, ok := BearerToken(r); ok {
			u = sm.userFromToken(r, raw)
		} else {
			u = sm.userFromSession(r)
		}
		if u != nil {
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

func (sm *SessionManager) userFromToken(r *http.Request, raw string) *User {
	if sm.verifier == nil {
		sm.logger.Debug("bearer token ignored; no verifier configured", zap.String("path", r.URL.Path))
		return nil
	}
	u, err := sm.verifier.Verify(raw)
	if err != nil {
		sm.logger.Debug("bearer token rejected", zap.String("path", r.URL.Path), zap.Error(err))
		return nil
	}
	u.IsAdmin = sm.admins.Contains(u.Email)
	return u
}

// RequireSignedIn answers anonymous requests with 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			jsonutil.Unauthorized(w, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin answers anonymous requests with 401 and non-admins with 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		switch {
		case !ok:
			jsonutil.Unauthorized(w, "Unauthorized")
		case !u.IsAdmin:
			jsonutil.Forbidden(w, "Forbidden")
		default:
			next.ServeHTTP(w, r)
		}
	})
}
