// internal/app/features/health/health.go
package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/gatherly/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependency is a backing service the process needs to serve requests.
type Dependency struct {
	Name string
	Ping func(ctx context.Context) error
}

// Mongo checks a MongoDB client against the primary.
func Mongo(client *mongo.Client) Dependency {
	return Dependency{Name: "mongodb", Ping: func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}}
}

// Postgres checks the connection pool behind a gorm handle.
func Postgres(db *gorm.DB) Dependency {
	return Dependency{Name: "postgres", Ping: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

// Redis checks a Redis client.
func Redis(client redis.Cmdable) Dependency {
	return Dependency{Name: "redis", Ping: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}

// Handler provides health check endpoints.
type Handler struct {
	deps   []Dependency
	logger *zap.Logger
}

// NewHandler creates a new health check Handler over deps.
func NewHandler(logger *zap.Logger, deps ...Dependency) *Handler {
	return &Handler{
		deps:   deps,
		logger: logger,
	}
}

// Response represents the health check response.
type Response struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}

// Routes returns a chi.Router with health check routes mounted.
// Provides /health (full check), /health/ready, and /health/live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds probe endpoints directly on the root router:
//   - /ready (or /readyz) - readiness probe
//   - /live (or /livez) - liveness probe
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/live", h.Live)
	r.Get("/livez", h.Live)
}

// ping runs every dependency check and reports each one's state.
func (h *Handler) ping(ctx context.Context) (map[string]string, bool) {
	services := make(map[string]string, len(h.deps))
	healthy := true
	for _, d := range h.deps {
		pctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
		err := d.Ping(pctx)
		cancel()
		if err != nil {
			healthy = false
			services[d.Name] = "unavailable"
			h.logger.Warn("health check: ping failed", zap.String("service", d.Name), zap.Error(err))
			continue
		}
		services[d.Name] = "ok"
	}
	return services, healthy
}

// Check performs a full health check of every dependency.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	services, healthy := h.ping(r.Context())
	resp := Response{Status: "ok", Services: services}

	w.Header().Set("Content-Type", "application/json")
	if !healthy {
		resp.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// Ready checks if the service is ready to accept requests.
// Used by Kubernetes readiness probes.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, healthy := h.ping(r.Context()); !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}

// Live checks if the service is alive.
// Used by Kubernetes liveness probes.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"alive"}`))
}
