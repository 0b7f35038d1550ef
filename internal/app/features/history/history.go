// Package history lets admins page through audit events.
//
// Endpoint (mounted at /api/v1/admin/audit, admin only):
//   - GET / ?invitation_id=&user_id=&category=&event_type=&since=&until=&page=&limit=
//
// since and until are RFC 3339 timestamps.
package history

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/gatherly/internal/app/store/audit"
	"github.com/dalemusser/gatherly/internal/app/store/storeutil"
	"github.com/dalemusser/gatherly/internal/app/system/auth"
	"github.com/dalemusser/gatherly/internal/app/system/jsonutil"
	"github.com/dalemusser/gatherly/internal/app/system/normalize"
	"github.com/dalemusser/gatherly/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Store is the read side of the audit store.
type Store interface {
	Find(ctx context.Context, f audit.Filter, limit, page int64) ([]audit.Event, error)
	Count(ctx context.Context, f audit.Filter) (int64, error)
}

// Handler serves audit history.
type Handler struct {
	store  Store
	logger *zap.Logger
}

func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Routes returns the admin-only router.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.RequireAdmin)
	r.Get("/", h.List)
	return r
}

type listResponse struct {
	Events []audit.Event `json:"events"`
	Total  int64         `json:"total"`
	Page   int64         `json:"page"`
	Limit  int64         `json:"limit"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := audit.Filter{
		UserID:       q.Get("user_id"),
		InvitationID: q.Get("invitation_id"),
		Category:     normalize.Option(q.Get("category")),
		EventType:    normalize.Option(q.Get("event_type")),
	}

	var ok bool
	if f.Since, ok = parseTime(q.Get("since")); !ok {
		jsonutil.BadRequest(w, "since must be an RFC 3339 timestamp")
		return
	}
	if f.Until, ok = parseTime(q.Get("until")); !ok {
		jsonutil.BadRequest(w, "until must be an RFC 3339 timestamp")
		return
	}

	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)
	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	limit, skip := storeutil.PageBounds(limit, page)
	page = skip/limit + 1

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "audit.list")
	defer cancel()

	events, err := h.store.Find(ctx, f, limit, page)
	if err != nil {
		h.logger.Error("audit list failed", zap.Error(err))
		jsonutil.InternalError(w, "Internal server error")
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	total, err := h.store.Count(ctx, f)
	if err != nil {
		h.logger.Error("audit count failed", zap.Error(err))
		jsonutil.InternalError(w, "Internal server error")
		return
	}

	jsonutil.OK(w, listResponse{Events: events, Total: total, Page: page, Limit: limit})
}

// parseTime accepts an empty string as the zero time.
func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
