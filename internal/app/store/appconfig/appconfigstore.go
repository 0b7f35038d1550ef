// internal/app/store/appconfig/appconfigstore.go
package appconfigstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/gatherly/internal/app/system/txn"
	"github.com/dalemusser/gatherly/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection is the MongoDB collection holding app configuration.
const Collection = "app_config"

// Store provides access to the app_config collection.
// Each document is keyed by its config key (_id) and carries one value.
type Store struct {
	c      *mongo.Collection
	logger *zap.Logger
}

// New creates a new app config store.
func New(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{c: db.Collection(Collection), logger: logger}
}

// Public returns the public configuration. Each key falls back to its
// built-in default when it is missing, empty, or cannot be decoded, so a bad
// stored value never breaks the studio.
func (s *Store) Public(ctx context.Context) (models.PublicConfig, error) {
	cfg := models.PublicConfig{
		CardLanguages:     models.DefaultCardLanguages(),
		Packages:          models.DefaultPackages(),
		LabelTranslations: models.DefaultLabelTranslations(),
	}

	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": bson.A{
		models.ConfigKeyCardLanguages,
		models.ConfigKeyPackages,
		models.ConfigKeyLabelTranslations,
	}}})
	if err != nil {
		return cfg, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc struct {
			Key   string        `bson:"_id"`
			Value bson.RawValue `bson:"value"`
		}
		if err := cur.Decode(&doc); err != nil {
			s.logger.Warn("app config entry unreadable", zap.Error(err))
			continue
		}
		switch doc.Key {
		case models.ConfigKeyCardLanguages:
			var v []models.CardLanguage
			if s.decode(doc.Key, doc.Value, &v) && len(v) > 0 {
				cfg.CardLanguages = v
			}
		case models.ConfigKeyPackages:
			var v []models.Package
			if s.decode(doc.Key, doc.Value, &v) && len(v) > 0 {
				cfg.Packages = v
			}
		case models.ConfigKeyLabelTranslations:
			var v models.LabelTranslations
			if s.decode(doc.Key, doc.Value, &v) && len(v) > 0 {
				cfg.LabelTranslations = v
			}
		}
	}
	return cfg, cur.Err()
}

func (s *Store) decode(key string, raw bson.RawValue, out any) bool {
	if raw.Type == 0 {
		return false
	}
	if err := raw.Unmarshal(out); err != nil {
		s.logger.Warn("app config value has unexpected shape",
			zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set upserts one config key.
func (s *Store) Set(ctx context.Context, key string, value any, updatedBy string) error {
	if key == "" {
		return errors.New("config key is required")
	}
	update := bson.M{
		"$set": bson.M{
			"value":      value,
			"updated_at": time.Now().UTC(),
			"updated_by": updatedBy,
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": key}, update, opts)
	return err
}

// Update is one key/value pair for SetMany.
type Update struct {
	Key   string
	Value any
}

// SetMany upserts several keys together. On a replica set the writes share
// one transaction; on a standalone server they run in order.
func (s *Store) SetMany(ctx context.Context, updates []Update, updatedBy string) error {
	for _, u := range updates {
		if u.Key == "" {
			return errors.New("config key is required")
		}
	}
	return txn.Run(ctx, s.c.Database(), s.logger, func(ctx context.Context) error {
		for _, u := range updates {
			if err := s.Set(ctx, u.Key, u.Value, updatedBy); err != nil {
				return fmt.Errorf("set %s: %w", u.Key, err)
			}
		}
		return nil
	})
}

// Get returns the raw stored entry for key.
func (s *Store) Get(ctx context.Context, key string) (*models.AppConfigEntry, error) {
	var e models.AppConfigEntry
	if err := s.c.FindOne(ctx, bson.M{"_id": key}).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}
