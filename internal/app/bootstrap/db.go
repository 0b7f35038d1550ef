// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/gatherly/internal/app/store/invitationpg"
	"github.com/dalemusser/gatherly/internal/app/system/indexes"
	"github.com/dalemusser/gatherly/internal/app/system/seeding"
	"github.com/dalemusser/gatherly/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB and to whichever optional backends are
// configured (Postgres for invitations, Redis for the published cache), and
// initializes upload storage.
//
// WAFFLE calls this after configuration is loaded but before EnsureSchema and
// Startup. A configured backend that cannot be reached fails startup.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	// Configure MongoDB connection pool
	poolCfg := wafflemongo.DefaultPoolConfig()
	if appCfg.MongoMaxPoolSize > 0 {
		poolCfg.MaxPoolSize = appCfg.MongoMaxPoolSize
	}
	if appCfg.MongoMinPoolSize > 0 {
		poolCfg.MinPoolSize = appCfg.MongoMinPoolSize
	}

	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, poolCfg)
	if err != nil {
		return DBDeps{}, err
	}

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", poolCfg.MaxPoolSize),
		zap.Uint64("min_pool_size", poolCfg.MinPoolSize),
	)

	if appCfg.InvitationBackend == BackendPostgres {
		pg, err := invitationpg.Open(appCfg.PostgresDSN)
		if err != nil {
			return deps, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		sqlDB, err := pg.DB()
		if err != nil {
			return deps, err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return deps, fmt.Errorf("failed to ping Postgres: %w", err)
		}
		deps.Postgres = pg
		logger.Info("connected to Postgres for invitations")
	}

	if appCfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appCfg.RedisAddr,
			Password: appCfg.RedisPassword,
			DB:       appCfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return deps, fmt.Errorf("failed to connect to Redis at %s: %w", appCfg.RedisAddr, err)
		}
		deps.Redis = rdb
		logger.Info("connected to Redis",
			zap.String("addr", appCfg.RedisAddr),
			zap.Int("db", appCfg.RedisDB),
		)
	}

	// Initialize file storage
	var store storage.Store
	switch appCfg.StorageType {
	case "s3":
		store, err = storage.NewS3(ctx, storage.S3Config{
			Region:                   appCfg.StorageS3Region,
			Bucket:                   appCfg.StorageS3Bucket,
			Prefix:                   appCfg.StorageS3Prefix,
			CloudFrontURL:            appCfg.StorageCFURL,
			CloudFrontKeyPairID:      appCfg.StorageCFKeyPairID,
			CloudFrontPrivateKeyPath: appCfg.StorageCFKeyPath,
		})
		if err != nil {
			return deps, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		logger.Info("initialized S3/CloudFront file storage",
			zap.String("bucket", appCfg.StorageS3Bucket),
			zap.String("prefix", appCfg.StorageS3Prefix),
		)
	case "local", "":
		store, err = storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  appCfg.StorageLocalURL,
		})
		if err != nil {
			return deps, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		logger.Info("initialized local file storage",
			zap.String("path", appCfg.StorageLocalPath),
			zap.String("url", appCfg.StorageLocalURL),
		)
	default:
		return deps, fmt.Errorf("unknown storage type: %s", appCfg.StorageType)
	}
	deps.FileStorage = store

	return deps, nil
}

// EnsureSchema sets up collections, validators, indexes and, for the
// Postgres backend, the invitations table. It then seeds the template
// catalog when seed_templates is on.
//
// The context has a timeout based on coreCfg.IndexBootTimeout, so long-running
// migrations should respect context cancellation.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	// Ensure collections exist and attach JSON-Schema validators.
	// This runs first so indexes can be created on existing collections.
	logger.Info("ensuring collections and validators")
	if err := validators.EnsureAll(ctx, db); err != nil {
		logger.Error("failed to ensure validators", zap.Error(err))
		return err
	}

	logger.Info("ensuring database indexes")
	if err := indexes.EnsureAll(ctx, db); err != nil {
		logger.Error("failed to ensure indexes", zap.Error(err))
		return err
	}

	if deps.Postgres != nil {
		logger.Info("ensuring Postgres invitations schema")
		if err := invitationpg.New(deps.Postgres).EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure Postgres schema", zap.Error(err))
			return err
		}
	}

	if appCfg.SeedTemplates {
		logger.Info("seeding template catalog")
		if err := seeding.SeedAll(ctx, db, logger); err != nil {
			logger.Error("failed to seed default data", zap.Error(err))
			return err
		}
	}

	logger.Info("database schema ensured successfully")
	return nil
}
