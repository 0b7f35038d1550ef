// Package validators creates gatherly's collections and attaches server-side
// JSON Schema validators that back up the application's own checks.
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/gatherly/internal/app/system/slug"
	"github.com/dalemusser/gatherly/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes.
const (
	codeNamespaceExists = 48
	codeCommandNotFound = 59
	codeNotImplemented  = 115
)

// collection is one collection and its validator; a nil schema means the
// collection is only created.
type collection struct {
	name   string
	schema bson.M
}

func collections() []collection {
	return []collection{
		{"invitations", invitationsSchema()},
		{"templates", templatesSchema()},
		{"app_config", nil},
		{"audit_events", nil},
	}
}

// EnsureAll creates missing collections and applies validators. Deployments
// without collMod support (some DocumentDB versions) skip validators.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string
	for _, c := range collections() {
		if err := ensureCollection(ctx, db, c.name); err != nil {
			problems = append(problems, c.name+": "+err.Error())
			continue
		}
		if c.schema == nil {
			continue
		}
		err := applyValidator(ctx, db, c.name, c.schema)
		switch {
		case err == nil:
			zap.L().Info("validator applied", zap.String("collection", c.name))
		case unsupported(err):
			zap.L().Info("validator skipped; server does not support collMod", zap.String("collection", c.name))
		default:
			problems = append(problems, c.name+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection creates name unless it exists. A concurrent create that
// wins the race is not an error.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) error {
	if ok, err := collectionExists(ctx, db, name); err == nil && ok {
		return nil
	}
	err := db.CreateCollection(ctx, name)
	if err == nil {
		zap.L().Info("created collection", zap.String("collection", name))
		return nil
	}
	if matches(err, []int32{codeNamespaceExists}, "already exists", "namespace exists") {
		return nil
	}
	return err
}

// applyValidator uses moderate validation so documents written before the
// validator existed can still be updated.
func applyValidator(ctx context.Context, db *mongo.Database, name string, schema bson.M) error {
	return db.RunCommand(ctx, bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: schema},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}).Err()
}

func unsupported(err error) bool {
	return matches(err,
		[]int32{codeCommandNotFound, codeNotImplemented},
		"no such command", "not implemented", "not supported")
}

// matches reports whether err is a command error with one of codes or its
// text contains one of phrases, case-insensitively.
func matches(err error, codes []int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		for _, c := range codes {
			if ce.Code == c {
				return true
			}
		}
	}
	msg := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// invitationsSchema requires a slug exactly when the invitation is published.
func invitationsSchema() bson.M {
	published := bson.M{
		"properties": bson.M{"status": bson.M{"enum": bson.A{models.StatusPublished}}},
		"required":   bson.A{"slug"},
	}
	draft := bson.M{
		"properties": bson.M{"status": bson.M{"enum": bson.A{models.StatusDraft}}},
	}
	return bson.M{"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": bson.A{"user_id", "template_id", "content", "status", "created_at", "updated_at"},
		"properties": bson.M{
			"user_id":     bson.M{"bsonType": "string", "minLength": 1},
			"template_id": bson.M{"bsonType": "string"},
			"status":      bson.M{"enum": bson.A{models.StatusDraft, models.StatusPublished}},
			"slug":        bson.M{"bsonType": "string", "pattern": "^" + slug.Prefix + "[a-z0-9]+$"},
			"created_at":  bson.M{"bsonType": "date"},
			"updated_at":  bson.M{"bsonType": "date"},
			"content": bson.M{
				"bsonType": "object",
				"required": bson.A{"invitationTitle"},
				"properties": bson.M{
					"invitationTitle": bson.M{"bsonType": "string", "minLength": models.MinTitleLength},
					"galleryPhotos":   bson.M{"bsonType": "array", "maxItems": models.MaxGalleryPhotos},
					"rsvpMode":        bson.M{"enum": bson.A{models.RSVPModeGuestList, models.RSVPModeOpen}},
				},
			},
		},
		"oneOf": bson.A{draft, published},
	}}
}

func templatesSchema() bson.M {
	return bson.M{"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": bson.A{"name", "tier", "active"},
		"properties": bson.M{
			"name":       bson.M{"bsonType": "string", "minLength": 1},
			"tier":       bson.M{"enum": bson.A{models.TierFree, models.TierPremium}},
			"active":     bson.M{"bsonType": "bool"},
			"sort_order": bson.M{"bsonType": bson.A{"int", "long"}},
		},
	}}
}
