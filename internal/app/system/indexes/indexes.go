// Package indexes reconciles the Mongo indexes every gatherly collection
// needs. EnsureAll runs at startup and in test database setup.
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// collectionIndexes is the desired index set for one collection.
type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func byRecent(field, name string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName(name),
	}
}

func desired() []collectionIndexes {
	return []collectionIndexes{
		{"invitations", []mongo.IndexModel{
			// Drafts have no slug field, so the partial filter keeps them
			// out of the uniqueness check.
			{
				Keys: bson.D{{Key: "slug", Value: 1}},
				Options: options.Index().
					SetName("uniq_invitations_slug").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"slug": bson.M{"$type": "string"}}),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}},
				Options: options.Index().SetName("idx_invitations_user_updated"),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}, {Key: "updated_at", Value: -1}},
				Options: options.Index().SetName("idx_invitations_user_status_updated"),
			},
		}},
		{"templates", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "active", Value: 1}, {Key: "sort_order", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetName("idx_templates_active_sort_name"),
			},
		}},
		{"audit_events", []mongo.IndexModel{
			byRecent("user_id", "idx_audit_user"),
			byRecent("actor_id", "idx_audit_actor"),
			byRecent("invitation_id", "idx_audit_invitation"),
			byRecent("category", "idx_audit_category"),
			byRecent("event_type", "idx_audit_event_type"),
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_audit_created"),
			},
		}},
	}
}

// EnsureAll reconciles every collection and reports all failures together.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string
	for _, ci := range desired() {
		if err := reconcile(ctx, db.Collection(ci.collection), ci.models); err != nil {
			problems = append(problems, ci.collection+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique bool   `bson:"unique"`
}

// signature identifies an index by its key pattern, e.g. "user_id:1,created_at:-1".
func signature(keys bson.D) string {
	parts := make([]string, len(keys))
	for i, kv := range keys {
		parts[i] = fmt.Sprintf("%s:%v", kv.Key, kv.Value)
	}
	return strings.Join(parts, ",")
}

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			return nil, err
		}
		out[signature(idx.Key)] = idx
	}
	return out, cur.Err()
}

// reconcile creates missing indexes. An index whose keys match but whose
// uniqueness differs is dropped and rebuilt; a matching one is left alone
// whatever its name.
func reconcile(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// A collection that does not exist yet lists as an error on some
		// servers; treat it as having no indexes.
		zap.L().Debug("list indexes failed", zap.String("collection", coll.Name()), zap.Error(err))
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		name := *m.Options.Name
		unique := m.Options.Unique != nil && *m.Options.Unique
		sig := signature(m.Keys.(bson.D))
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("index", name),
			zap.String("keys", sig))

		if ex, ok := existing[sig]; ok {
			if ex.Unique == unique {
				log.Debug("index present", zap.String("existing_name", ex.Name))
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop %s: %v", name, ex.Name, err))
				continue
			}
			log.Info("dropped index with stale options", zap.String("existing_name", ex.Name))
		}

		start := time.Now()
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if unique && wafflemongo.IsDup(err) {
				errs = append(errs, fmt.Sprintf("%s: duplicate values block unique index", name))
			} else {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			}
			log.Warn("index create failed", zap.Error(err))
			continue
		}
		log.Info("index created", zap.Bool("unique", unique), zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
