// internal/app/store/invitation/invitationstore.go
package invitation

import (
	"context"
	"errors"

	"github.com/dalemusser/gatherly/internal/app/store/storeutil"
	"github.com/dalemusser/gatherly/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the MongoDB collection holding invitations.
const Collection = "invitations"

// Store provides access to the invitations collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new invitation store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Insert stores a new invitation. An empty ID is replaced by a fresh ObjectID hex.
func (s *Store) Insert(ctx context.Context, inv models.Invitation) (*models.Invitation, error) {
	if inv.ID == "" {
		inv.ID = primitive.NewObjectID().Hex()
	}
	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		if storeutil.IsDuplicateKey(err) {
			return nil, storeutil.ErrDuplicateSlug
		}
		return nil, err
	}
	return &inv, nil
}

// GetByID returns an invitation by ID.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Invitation, error) {
	var inv models.Invitation
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&inv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storeutil.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// GetPublishedBySlug returns the published invitation carrying slug.
func (s *Store) GetPublishedBySlug(ctx context.Context, slug string) (*models.Invitation, error) {
	var inv models.Invitation
	filter := bson.M{"slug": slug, "status": models.StatusPublished}
	if err := s.c.FindOne(ctx, filter).Decode(&inv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storeutil.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// ListByOwner returns owner's invitations, most recently updated first.
func (s *Store) ListByOwner(ctx context.Context, owner string, f storeutil.InvitationFilter) ([]models.Invitation, error) {
	filter := bson.M{"user_id": owner}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	opts := storeutil.Paginate(f.Limit, f.Page).
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	invitations := []models.Invitation{}
	if err := cursor.All(ctx, &invitations); err != nil {
		return nil, err
	}
	return invitations, nil
}

// UpdateWhere applies patch only while the stored status equals
// expectedStatus. The filter and the write are a single FindOneAndUpdate,
// so two concurrent publishes cannot both succeed.
func (s *Store) UpdateWhere(ctx context.Context, id, expectedStatus string, patch storeutil.InvitationPatch) (*models.Invitation, error) {
	set := bson.M{"updated_at": patch.UpdatedAt}
	if patch.TemplateID != nil {
		set["template_id"] = *patch.TemplateID
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Slug != nil {
		set["slug"] = *patch.Slug
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var inv models.Invitation
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": expectedStatus},
		bson.M{"$set": set},
		opts,
	).Decode(&inv)
	switch {
	case err == nil:
		return &inv, nil
	case storeutil.IsDuplicateKey(err):
		return nil, storeutil.ErrDuplicateSlug
	case errors.Is(err, mongo.ErrNoDocuments):
		// Distinguish a missing record from one in another state.
		n, cerr := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
		if cerr != nil {
			return nil, cerr
		}
		if n == 0 {
			return nil, storeutil.ErrNotFound
		}
		return nil, storeutil.ErrStateMismatch
	default:
		return nil, err
	}
}
