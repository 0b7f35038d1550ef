// internal/domain/models/invitation.go
package models

import "time"

// Invitation statuses. The only transition is draft -> published.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// DefaultTemplateID is used when a draft is created without a template reference.
const DefaultTemplateID = "elegant-rose"

// Invitation is the persisted invitation record.
//
// ID is an opaque string. The Mongo repository stores ObjectID hex strings and
// the Postgres repository stores UUIDs; callers never parse it.
type Invitation struct {
	ID         string  `bson:"_id" json:"id"`
	UserID     string  `bson:"user_id" json:"user_id"`         // owner, immutable
	TemplateID string  `bson:"template_id" json:"template_id"` // stored verbatim, not checked against the catalog
	Content    Content `bson:"content" json:"content"`
	Status     string  `bson:"status" json:"status"`
	Slug       *string `bson:"slug,omitempty" json:"slug"` // nil until first publish

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsPublished reports whether the invitation has been published.
func (i *Invitation) IsPublished() bool {
	return i.Status == StatusPublished
}

// IsOwnedBy reports whether userID owns the invitation. An empty userID never owns anything.
func (i *Invitation) IsOwnedBy(userID string) bool {
	return userID != "" && i.UserID == userID
}

// SlugValue returns the slug or "" when unassigned.
func (i *Invitation) SlugValue() string {
	if i.Slug == nil {
		return ""
	}
	return *i.Slug
}

// IsValidStatus checks if s is a known invitation status.
func IsValidStatus(s string) bool {
	return s == StatusDraft || s == StatusPublished
}
