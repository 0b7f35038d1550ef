// Package session exchanges a verified bearer token for a session cookie and
// reports who the caller is.
//
// Endpoints:
//   - GET    /api/v1/me       - current user (401 when anonymous)
//   - POST   /api/v1/session  - issue a session cookie for a bearer-token caller
//   - DELETE /api/v1/session  - clear the session cookie
package session

import (
	"net/http"

	"github.com/dalemusser/gatherly/internal/app/system/auditlog"
	"github.com/dalemusser/gatherly/internal/app/system/auth"
	"github.com/dalemusser/gatherly/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves session and identity endpoints.
type Handler struct {
	sessions *auth.SessionManager
	audit    *auditlog.Logger
	logger   *zap.Logger
}

// NewHandler creates a session Handler. audit may be nil.
func NewHandler(sm *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{sessions: sm, audit: audit, logger: logger}
}

// Routes returns the router mounted at /api/v1/session.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Delete("/", h.Destroy)
	return r
}

// MeRoutes returns the router mounted at /api/v1/me.
func MeRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.With(auth.RequireSignedIn).Get("/", h.Me)
	return r
}

type meResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email,omitempty"`
	IsAdmin bool   `json:"isAdmin"`
}

// Me handles GET /api/v1/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	jsonutil.OK(w, meResponse{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin})
}

// Create handles POST /api/v1/session. Only a caller identified by a bearer
// token can open a session; an existing cookie cannot renew itself.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok || u.Source != auth.SourceBearer {
		jsonutil.Unauthorized(w, "Unauthorized")
		return
	}

	sid, err := h.sessions.CreateSession(w, r, u)
	if err != nil {
		h.logger.Error("session create failed", zap.String("user_id", u.ID), zap.Error(err))
		jsonutil.InternalError(w, "Failed to create session")
		return
	}

	h.audit.SessionCreated(r.Context(), r, u.ID, sid)
	jsonutil.OK(w, meResponse{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin})
}

// Destroy handles DELETE /api/v1/session. It always succeeds.
func (h *Handler) Destroy(w http.ResponseWriter, r *http.Request) {
	u, signedIn := auth.CurrentUser(r)
	h.sessions.DestroySession(w, r)
	if signedIn {
		h.audit.SessionEnded(r.Context(), r, u.ID, u.SessionID)
	}
	jsonutil.NoContent(w)
}
