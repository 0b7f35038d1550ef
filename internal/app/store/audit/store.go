// Package audit persists audit events to the audit_events collection and
// serves the admin history queries over them.
package audit

import (
	"context"
	"time"

	"github.com/dalemusser/gatherly/internal/app/store/storeutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection holds audit events. Its indexes live in system/indexes.
const Collection = "audit_events"

// Categories.
const (
	CategoryInvitation = "invitation"
	CategoryAuth       = "auth"
	CategoryAdmin      = "admin"
)

// Event types, grouped by category.
const (
	EventInvitationCreated   = "invitation_created"
	EventInvitationUpdated   = "invitation_updated"
	EventInvitationPublished = "invitation_published"

	EventSessionCreated = "session_created"
	EventSessionEnded   = "session_ended"

	EventConfigUpdated = "config_updated"
)

// Event is one audit record. UserID is the invitation owner or session user;
// ActorID is set when someone else acted on their behalf.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	Category  string             `bson:"category" json:"category"`
	EventType string             `bson:"event_type" json:"event_type"`

	UserID       string `bson:"user_id,omitempty" json:"user_id,omitempty"`
	ActorID      string `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	InvitationID string `bson:"invitation_id,omitempty" json:"invitation_id,omitempty"`

	IP        string `bson:"ip" json:"ip"`
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`

	Success       bool              `bson:"success" json:"success"`
	FailureReason string            `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	Details       map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// Filter narrows a history query. Empty fields match everything; Since and
// Until bound created_at inclusively.
type Filter struct {
	UserID       string
	InvitationID string
	Category     string
	EventType    string
	Since        time.Time
	Until        time.Time
}

func (f Filter) query() bson.M {
	q := bson.M{}
	for field, v := range map[string]string{
		"user_id":       f.UserID,
		"invitation_id": f.InvitationID,
		"category":      f.Category,
		"event_type":    f.EventType,
	} {
		if v != "" {
			q[field] = v
		}
	}

	created := bson.M{}
	if !f.Since.IsZero() {
		created["$gte"] = f.Since
	}
	if !f.Until.IsZero() {
		created["$lte"] = f.Until
	}
	if len(created) > 0 {
		q["created_at"] = created
	}
	return q
}

// Store reads and writes audit events.
type Store struct {
	c *mongo.Collection
}

// New returns a Store over db's audit collection.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Log inserts e, filling ID and CreatedAt when unset.
func (s *Store) Log(ctx context.Context, e Event) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, e)
	return err
}

// Find returns one page of events matching f, newest first. limit and page
// follow storeutil.PageBounds.
func (s *Store) Find(ctx context.Context, f Filter, limit, page int64) ([]Event, error) {
	opts := storeutil.Paginate(limit, page).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cur, err := s.c.Find(ctx, f.query(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Count returns how many events match f.
func (s *Store) Count(ctx context.Context, f Filter) (int64, error) {
	return s.c.CountDocuments(ctx, f.query())
}
