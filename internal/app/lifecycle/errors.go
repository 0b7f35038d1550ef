package lifecycle

import (
	"errors"
	"sort"
	"strings"
)

// Errors returned by Controller. Each maps to one stable client-facing reason.
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("invitation not found")
	ErrPublishedImmutable = errors.New("cannot edit published invitation")
	ErrSlugConflict       = errors.New("slug conflict, please retry")
	ErrSlugRequired       = errors.New("slug required")
	ErrInvalidContent     = errors.New("invalid content")
)

// ValidationError carries the per-field problems found in submitted content.
// It unwraps to ErrInvalidContent.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return ErrInvalidContent.Error() + ": " + strings.Join(keys, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidContent }
