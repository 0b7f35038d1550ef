// Package testutil holds shared fixtures for handler and store tests: a
// throwaway Mongo database per test, signed-in users, and request helpers.
package testutil

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/gatherly/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultMongoURI is used when GATHERLY_TEST_MONGO_URI is unset.
const DefaultMongoURI = "mongodb://localhost:27017"

// dbPrefix starts every per-test database name.
const dbPrefix = "gatherly_test_"

// maxDBName is Mongo's limit on database name length.
const maxDBName = 63

var shared struct {
	once   sync.Once
	client *mongo.Client
	err    error
}

func mongoURI() string {
	if uri := os.Getenv("GATHERLY_TEST_MONGO_URI"); uri != "" {
		return uri
	}
	return DefaultMongoURI
}

func sharedClient() (*mongo.Client, error) {
	shared.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		opts := options.Client().
			ApplyURI(mongoURI()).
			SetMaxPoolSize(100).
			SetServerSelectionTimeout(2 * time.Second)

		c, err := mongo.Connect(ctx, opts)
		if err != nil {
			shared.err = err
			return
		}
		if err := c.Ping(ctx, nil); err != nil {
			_ = c.Disconnect(context.Background())
			shared.err = err
			return
		}
		shared.client = c
	})
	return shared.client, shared.err
}

// SetupTestDB returns an empty database named after the test, with the
// production indexes in place. The database is dropped on cleanup. Tests are
// skipped when Mongo is unreachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	c, err := sharedClient()
	if err != nil {
		t.Skipf("mongo unavailable at %s: %v", mongoURI(), err)
	}

	db := c.Database(DBName(t.Name()))

	ctx, cancel := TestContext()
	defer cancel()

	if err := db.Drop(ctx); err != nil {
		t.Fatalf("drop %s: %v", db.Name(), err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("drop %s on cleanup: %v", db.Name(), err)
		}
	})

	return db
}

// DBName maps a test name to a valid, bounded database name.
func DBName(testName string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, testName)

	name = dbPrefix + name
	if len(name) > maxDBName {
		name = name[:maxDBName]
	}
	return name
}

// TestContext returns a context bounded for a single test's database work.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
