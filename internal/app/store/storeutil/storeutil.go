// internal/app/store/storeutil/storeutil.go
package storeutil

import (
	"errors"
	"time"

	"github.com/dalemusser/gatherly/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// Errors shared by every invitation repository implementation so callers can
// classify failures without knowing the backend.
var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrStateMismatch is returned by conditional updates when the record
	// exists but is no longer in the expected state.
	ErrStateMismatch = errors.New("record is not in the expected state")
	// ErrDuplicateSlug is returned when a write would violate slug uniqueness.
	ErrDuplicateSlug = errors.New("slug already in use")
)

// IsDuplicateKey reports whether err is a unique-index violation from either
// backend: a Mongo E11000 error or gorm's translated ErrDuplicatedKey.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return wafflemongo.IsDup(err) || errors.Is(err, gorm.ErrDuplicatedKey)
}

// Pagination defaults.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// InvitationPatch lists the fields a conditional update may change. Nil
// fields are left untouched. UpdatedAt is always written.
type InvitationPatch struct {
	TemplateID *string
	Content    *models.Content
	Status     *string
	Slug       *string
	UpdatedAt  time.Time
}

// InvitationFilter narrows an owner's invitation list.
type InvitationFilter struct {
	Status string // "" for all
	Limit  int64
	Page   int64 // 1-based
}

// PageBounds normalizes a limit and 1-based page into limit and skip.
func PageBounds(limit, page int64) (int64, int64) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}

// Paginate returns *options.FindOptions with skip/limit given a 1-based page.
func Paginate(limit, page int64) *options.FindOptions {
	l, sk := PageBounds(limit, page)
	return options.Find().SetLimit(l).SetSkip(sk)
}
