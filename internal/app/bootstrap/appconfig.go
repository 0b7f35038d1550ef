// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig carries everything specific to gatherly: backends, identity,
// upload storage, and audit destinations.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Invitation repository selection
	InvitationBackend string // "mongo" (default), "postgres", or "memory"
	PostgresDSN       string // Required when InvitationBackend is "postgres"

	// Redis (optional). When RedisAddr is empty the published cache is off.
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	PublishedCacheTTL time.Duration // Lifetime of a cached published invitation (default: 1h)

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: gatherly-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Maximum session cookie lifetime (default: 24h)

	// Bearer token verification (HS256). Blank JWTSecret disables bearer auth.
	JWTSecret   string
	JWTIssuer   string // Checked when set
	JWTAudience string // Checked when set

	// Comma-separated emails allowed to edit app configuration
	AdminEmails string

	// File storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files")

	// S3/CloudFront configuration (only used if StorageType is "s3")
	StorageS3Region    string // AWS region
	StorageS3Bucket    string // S3 bucket name
	StorageS3Prefix    string // Key prefix (e.g., "uploads/")
	StorageCFURL       string // CloudFront distribution URL
	StorageCFKeyPairID string // CloudFront key pair ID
	StorageCFKeyPath   string // Path to CloudFront private key file

	// Largest accepted gallery upload request, in bytes
	UploadMaxBytes int64

	// Audit logging configuration
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	AuditLogInvitation string // Invitation create/update/publish
	AuditLogAuth       string // Session create/end
	AuditLogAdmin      string // App configuration changes

	// Seed the template catalog on startup
	SeedTemplates bool

	// Per-operation deadlines for handler work
	TimeoutPing   time.Duration // Dependency health check (default: 2s)
	TimeoutShort  time.Duration // Single-record reads and writes (default: 5s)
	TimeoutMedium time.Duration // Lists and multi-key writes (default: 10s)
}
