package auth

import (
	"strings"

	"github.com/dalemusser/gatherly/internal/app/system/normalize"
	"github.com/dalemusser/waffle/pantry/text"
)

// AdminList is the set of email addresses allowed to use admin endpoints.
// Matching is case-insensitive.
type AdminList map[string]struct{}

// ParseAdminList reads a comma-separated list of emails. Blank entries are skipped.
func ParseAdminList(csv string) AdminList {
	list := AdminList{}
	for _, e := range strings.Split(csv, ",") {
		if e = normalize.Email(e); e != "" {
			list[text.Fold(e)] = struct{}{}
		}
	}
	return list
}

// Contains reports whether email is allowlisted. An empty email never is.
func (a AdminList) Contains(email string) bool {
	email = normalize.Email(email)
	if email == "" || len(a) == 0 {
		return false
	}
	_, ok := a[text.Fold(email)]
	return ok
}

// Len returns the number of allowlisted emails.
func (a AdminList) Len() int {
	return len(a)
}
