// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// This struct is created in ConnectDB and passed to subsequent lifecycle
// hooks: EnsureSchema, Startup, BuildHandler, and Shutdown. Optional
// backends are nil when not configured.
type DBDeps struct {
	// MongoDB client and database. Always connected: templates, app config
	// and audit events live here regardless of the invitation backend.
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Postgres holds invitations when invitation_backend is "postgres".
	Postgres *gorm.DB

	// Redis backs the published-invitation cache when redis_addr is set.
	Redis *redis.Client

	// FileStorage for gallery uploads
	FileStorage storage.Store
}
