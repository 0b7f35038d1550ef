package indexes_test

import (
	"testing"

	"github.com/dalemusser/gatherly/internal/app/system/indexes"
	"github.com/dalemusser/gatherly/internal/testutil"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// SetupTestDB ran it once already.
	require.NoError(t, indexes.EnsureAll(ctx, db))

	names, err := db.Collection("invitations").Indexes().ListSpecifications(ctx)
	require.NoError(t, err)
	var got []string
	for _, s := range names {
		got = append(got, s.Name)
	}
	assert.Contains(t, got, "uniq_invitations_slug")
	assert.Contains(t, got, "idx_invitations_user_status_updated")
}

func TestEnsureAll_SlugUniqueOnlyWhenSet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := db.Collection("invitations")

	// Drafts carry no slug and never collide.
	_, err := c.InsertOne(ctx, bson.M{"user_id": "u1", "status": "draft"})
	require.NoError(t, err)
	_, err = c.InsertOne(ctx, bson.M{"user_id": "u1", "status": "draft"})
	require.NoError(t, err)

	_, err = c.InsertOne(ctx, bson.M{"user_id": "u1", "status": "published", "slug": "inv-ab12cdlx2k9a0f"})
	require.NoError(t, err)
	_, err = c.InsertOne(ctx, bson.M{"user_id": "u2", "status": "published", "slug": "inv-ab12cdlx2k9a0f"})
	require.Error(t, err)
	assert.True(t, wafflemongo.IsDup(err))
}

func TestEnsureAll_RebuildsWhenUniquenessDiffers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := db.Collection("invitations")
	_, err := c.Indexes().DropOne(ctx, "uniq_invitations_slug")
	require.NoError(t, err)
	_, err = c.Indexes().CreateOne(ctx, mongoIndex("slug", "legacy_slug"))
	require.NoError(t, err)

	require.NoError(t, indexes.EnsureAll(ctx, db))

	specs, err := c.Indexes().ListSpecifications(ctx)
	require.NoError(t, err)
	for _, s := range specs {
		if s.Name == "legacy_slug" {
			t.Fatalf("non-unique slug index was not replaced")
		}
	}
}

func mongoIndex(field, name string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetName(name),
	}
}
