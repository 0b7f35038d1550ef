// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/gatherly/internal/app/system/auth"
)

// UserCtx returns the caller's id, email, and a found flag.
// A user with a blank id is treated as anonymous, so ok=true always means
// an identified caller.
func UserCtx(r *http.Request) (userID string, email string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok || strings.TrimSpace(user.ID) == "" {
		return "", "", false
	}
	return user.ID, user.Email, true
}

// Actor returns the caller's id for ownership checks, or "" when anonymous.
func Actor(r *http.Request) string {
	id, _, _ := UserCtx(r)
	return id
}

// IsAdmin reports whether the current request's user is on the admin allowlist.
func IsAdmin(r *http.Request) bool {
	user, ok := auth.CurrentUser(r)
	return ok && user.ID != "" && user.IsAdmin
}

// IsLoggedIn reports whether there is a user in the request context.
func IsLoggedIn(r *http.Request) bool {
	_, _, ok := UserCtx(r)
	return ok
}

// Owns reports whether the caller owns a resource recorded under ownerID.
func Owns(r *http.Request, ownerID string) bool {
	id, _, ok := UserCtx(r)
	return ok && ownerID != "" && id == ownerID
}
