// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/gatherly/internal/app/features/uploads"
	"github.com/dalemusser/gatherly/internal/app/store/slugcache"
	"github.com/dalemusser/gatherly/internal/app/system/auditlog"
	"github.com/dalemusser/gatherly/internal/app/system/normalize"
	"github.com/dalemusser/gatherly/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "GATHERLY"

// Invitation repository backends.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: GATHERLY_MONGO_URI, GATHERLY_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "gatherly", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Invitation repository
	{Name: "invitation_backend", Default: BackendMongo, Desc: "Invitation repository: 'mongo', 'postgres', or 'memory'"},
	{Name: "postgres_dsn", Default: "", Desc: "PostgreSQL DSN (required for invitation_backend=postgres)"},

	// Redis published-invitation cache
	{Name: "redis_addr", Default: "", Desc: "Redis address host:port (blank disables the published cache)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "published_cache_ttl", Default: "1h", Desc: "Lifetime of a cached published invitation"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "gatherly-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie max age (e.g., 24h, 720h, 30m)"},

	// Bearer tokens issued by the identity provider
	{Name: "jwt_secret", Default: "", Desc: "HS256 secret for bearer tokens (blank disables bearer auth)"},
	{Name: "jwt_issuer", Default: "", Desc: "Required token issuer (blank skips the check)"},
	{Name: "jwt_audience", Default: "", Desc: "Required token audience (blank skips the check)"},

	{Name: "admin_emails", Default: "", Desc: "Comma-separated admin email allowlist"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},

	// S3/CloudFront configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "uploads/", Desc: "S3 key prefix"},
	{Name: "storage_cf_url", Default: "", Desc: "CloudFront distribution URL"},
	{Name: "storage_cf_keypair_id", Default: "", Desc: "CloudFront key pair ID"},
	{Name: "storage_cf_key_path", Default: "", Desc: "Path to CloudFront private key file"},

	{Name: "upload_max_bytes", Default: int(uploads.DefaultMaxBytes), Desc: "Largest accepted gallery upload request in bytes"},

	// Audit logging settings
	{Name: "audit_log_invitation", Default: "all", Desc: "Invitation event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_auth", Default: "all", Desc: "Session event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "seed_templates", Default: true, Desc: "Seed the default template catalog on startup"},

	// Handler timeouts
	{Name: "timeout_ping", Default: "2s", Desc: "Deadline for each dependency health check"},
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-record reads and writes"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for list queries and multi-key writes"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, GATHERLY_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		InvitationBackend: normalize.Option(appValues.String("invitation_backend")),
		PostgresDSN:       appValues.String("postgres_dsn"),

		RedisAddr:         appValues.String("redis_addr"),
		RedisPassword:     appValues.String("redis_password"),
		RedisDB:           appValues.Int("redis_db"),
		PublishedCacheTTL: appValues.Duration("published_cache_ttl", slugcache.DefaultTTL),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		JWTSecret:   appValues.String("jwt_secret"),
		JWTIssuer:   appValues.String("jwt_issuer"),
		JWTAudience: appValues.String("jwt_audience"),

		AdminEmails: appValues.String("admin_emails"),

		// File storage
		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		// S3/CloudFront
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageCFURL:       appValues.String("storage_cf_url"),
		StorageCFKeyPairID: appValues.String("storage_cf_keypair_id"),
		StorageCFKeyPath:   appValues.String("storage_cf_key_path"),

		UploadMaxBytes: int64(appValues.Int("upload_max_bytes")),

		// Audit logging
		AuditLogInvitation: normalize.Option(appValues.String("audit_log_invitation")),
		AuditLogAuth:       normalize.Option(appValues.String("audit_log_auth")),
		AuditLogAdmin:      normalize.Option(appValues.String("audit_log_admin")),

		SeedTemplates: appValues.Bool("seed_templates"),

		TimeoutPing:   appValues.Duration("timeout_ping", timeouts.DefaultPing),
		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
	}
	if appCfg.InvitationBackend == "" {
		appCfg.InvitationBackend = BackendMongo
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.InvitationBackend {
	case BackendMongo, BackendMemory:
	case BackendPostgres:
		if strings.TrimSpace(appCfg.PostgresDSN) == "" {
			return fmt.Errorf("postgres_dsn is required when invitation_backend is %q", BackendPostgres)
		}
	default:
		return fmt.Errorf("unknown invitation_backend: %q", appCfg.InvitationBackend)
	}

	if appCfg.InvitationBackend == BackendMemory && coreCfg.Env == "prod" {
		logger.Warn("memory invitation backend in production; invitations are lost on restart")
	}

	for key, v := range map[string]string{
		"audit_log_invitation": appCfg.AuditLogInvitation,
		"audit_log_auth":       appCfg.AuditLogAuth,
		"audit_log_admin":      appCfg.AuditLogAdmin,
	} {
		switch v {
		case "", auditlog.DestAll, auditlog.DestDB, auditlog.DestLog, auditlog.DestOff:
		default:
			return fmt.Errorf("%s: unknown destination %q", key, v)
		}
	}

	if appCfg.JWTSecret == "" {
		logger.Warn("jwt_secret is empty; bearer tokens will be ignored and no one can sign in")
	}

	return nil
}
