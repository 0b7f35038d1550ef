// internal/app/store/templates/templatestore.go
package templatestore

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/gatherly/internal/app/store/storeutil"
	"github.com/dalemusser/gatherly/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the MongoDB collection holding the template catalog.
const Collection = "templates"

// Store provides access to the templates collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new template store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// ListActive returns active templates ordered by sort_order, then name.
func (s *Store) ListActive(ctx context.Context) ([]models.Template, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "sort_order", Value: 1},
		{Key: "name", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Template{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		fillColors(&out[i])
	}
	return out, nil
}

// GetActive returns one active template. Inactive and missing templates both
// report storeutil.ErrNotFound.
func (s *Store) GetActive(ctx context.Context, id string) (*models.Template, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, storeutil.ErrNotFound
	}
	var t models.Template
	err := s.c.FindOne(ctx, bson.M{"_id": id, "active": true}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storeutil.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	fillColors(&t)
	return &t, nil
}

// Upsert creates or replaces a template by id.
func (s *Store) Upsert(ctx context.Context, t models.Template) error {
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": t.ID}, t, options.Replace().SetUpsert(true))
	return err
}

// Exists checks if a template with the given id exists, active or not.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	count, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// fillColors substitutes the default palette for a template stored without one
// and keeps list fields non-nil for JSON clients.
func fillColors(t *models.Template) {
	if t.Colors == (models.TemplateColors{}) {
		t.Colors = models.DefaultTemplateColors
	}
	if t.Themes == nil {
		t.Themes = []string{}
	}
	if t.Styles == nil {
		t.Styles = []string{}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Design == nil {
		t.Design = map[string]any{}
	}
}
