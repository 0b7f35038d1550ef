// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	appconfigfeature "github.com/dalemusser/gatherly/internal/app/features/appconfig"
	healthfeature "github.com/dalemusser/gatherly/internal/app/features/health"
	historyfeature "github.com/dalemusser/gatherly/internal/app/features/history"
	invitationsfeature "github.com/dalemusser/gatherly/internal/app/features/invitations"
	sessionfeature "github.com/dalemusser/gatherly/internal/app/features/session"
	templatesfeature "github.com/dalemusser/gatherly/internal/app/features/templates"
	uploadsfeature "github.com/dalemusser/gatherly/internal/app/features/uploads"
	"github.com/dalemusser/gatherly/internal/app/lifecycle"
	appconfigstore "github.com/dalemusser/gatherly/internal/app/store/appconfig"
	"github.com/dalemusser/gatherly/internal/app/store/audit"
	invitationstore "github.com/dalemusser/gatherly/internal/app/store/invitation"
	"github.com/dalemusser/gatherly/internal/app/store/invitationmem"
	"github.com/dalemusser/gatherly/internal/app/store/invitationpg"
	"github.com/dalemusser/gatherly/internal/app/store/slugcache"
	templatestore "github.com/dalemusser/gatherly/internal/app/store/templates"
	"github.com/dalemusser/gatherly/internal/app/system/auditlog"
	"github.com/dalemusser/gatherly/internal/app/system/auth"
	"github.com/dalemusser/gatherly/internal/app/system/jsonutil"
	"github.com/dalemusser/gatherly/internal/app/system/metrics"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// Every API route is JSON under /api/v1. Callers identify themselves with a
// bearer token or with the session cookie POST /api/v1/session issues; the
// router never serves HTML forms, so there is no CSRF layer.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	if appCfg.JWTSecret != "" {
		verifier, err := auth.NewTokenVerifier(appCfg.JWTSecret, appCfg.JWTIssuer, appCfg.JWTAudience)
		if err != nil {
			logger.Error("token verifier init failed", zap.Error(err))
			return nil, err
		}
		sessionMgr.SetTokenVerifier(verifier)
	}
	admins := auth.ParseAdminList(appCfg.AdminEmails)
	sessionMgr.SetAdmins(admins)
	logger.Info("admin allowlist loaded", zap.Int("admins", admins.Len()))

	m := metrics.New()

	// Create audit store and logger for security event tracking.
	auditStore := audit.New(deps.MongoDatabase)
	auditLogger := auditlog.New(auditStore, logger, auditlog.Config{
		Invitation: appCfg.AuditLogInvitation,
		Auth:       appCfg.AuditLogAuth,
		Admin:      appCfg.AuditLogAdmin,
	})

	repo := invitationRepository(appCfg, deps)
	var opts []lifecycle.Option
	if deps.Redis != nil {
		opts = append(opts, lifecycle.WithCache(slugcache.New(deps.Redis, appCfg.PublishedCacheTTL, logger, m)))
	}
	controller := lifecycle.New(repo, opts...)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	r.Use(chimw.RequestID)

	// Request metrics wrap everything below so recovered panics count as 500s.
	r.Use(m.Middleware())
	r.Use(chimw.Recoverer)

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Identity: bearer token first, then the session cookie.
	r.Use(sessionMgr.LoadUser)

	// ─────────────────────────────────────────────────────────────────────────────
	// Operational endpoints
	// ─────────────────────────────────────────────────────────────────────────────

	checks := []healthfeature.Dependency{healthfeature.Mongo(deps.MongoClient)}
	if deps.Postgres != nil {
		checks = append(checks, healthfeature.Postgres(deps.Postgres))
	}
	if deps.Redis != nil {
		checks = append(checks, healthfeature.Redis(deps.Redis))
	}
	healthHandler := healthfeature.NewHandler(logger, checks...)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	r.Handle("/metrics", m.Handler())

	// Uploaded files (local storage only)
	if appCfg.StorageType == "local" || appCfg.StorageType == "" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	// ─────────────────────────────────────────────────────────────────────────────
	// API v1
	// ─────────────────────────────────────────────────────────────────────────────

	invitationsHandler := invitationsfeature.NewHandler(controller, auditLogger, m, logger)
	templatesHandler := templatesfeature.NewHandler(templatestore.New(deps.MongoDatabase), logger)
	configHandler := appconfigfeature.NewHandler(appconfigstore.New(deps.MongoDatabase, logger), auditLogger, logger)
	sessionHandler := sessionfeature.NewHandler(sessionMgr, auditLogger, logger)
	uploadsHandler := uploadsfeature.NewHandler(deps.FileStorage, appCfg.UploadMaxBytes, m, logger)
	historyHandler := historyfeature.NewHandler(auditStore, logger)

	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/invitations", invitationsfeature.Routes(invitationsHandler))
		api.Mount("/templates", templatesfeature.Routes(templatesHandler))
		api.Mount("/config", appconfigfeature.PublicRoutes(configHandler))
		api.Mount("/admin/config", appconfigfeature.AdminRoutes(configHandler))
		api.Mount("/admin/audit", historyfeature.Routes(historyHandler))
		api.Mount("/me", sessionfeature.MeRoutes(sessionHandler))
		api.Mount("/session", sessionfeature.Routes(sessionHandler))
		api.Mount("/uploads", uploadsfeature.Routes(uploadsHandler))
	})

	// 404 catch-all for unmatched routes
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		jsonutil.NotFound(w, "Not found")
	})

	return r, nil
}

// invitationRepository picks the lifecycle repository for the configured
// backend. ConnectDB has already opened whatever the backend needs.
func invitationRepository(appCfg AppConfig, deps DBDeps) lifecycle.Repository {
	switch appCfg.InvitationBackend {
	case BackendPostgres:
		return invitationpg.New(deps.Postgres)
	case BackendMemory:
		return invitationmem.New()
	default:
		return invitationstore.New(deps.MongoDatabase)
	}
}
