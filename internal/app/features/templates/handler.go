// Package templates serves the public template catalog.
//
// Endpoints (mounted at /api/v1/templates):
//   - GET /     - active templates ordered by sort order, then name
//   - GET /{id} - one active template
package templates

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/gatherly/internal/app/store/storeutil"
	"github.com/dalemusser/gatherly/internal/app/system/apicors"
	"github.com/dalemusser/gatherly/internal/app/system/jsonutil"
	"github.com/dalemusser/gatherly/internal/app/system/timeouts"
	"github.com/dalemusser/gatherly/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Catalog is the read side of the template store.
type Catalog interface {
	ListActive(ctx context.Context) ([]models.Template, error)
	GetActive(ctx context.Context, id string) (*models.Template, error)
}

// Handler serves template endpoints.
type Handler struct {
	catalog Catalog
	logger  *zap.Logger
}

// NewHandler creates a new templates Handler.
func NewHandler(catalog Catalog, logger *zap.Logger) *Handler {
	return &Handler{catalog: catalog, logger: logger}
}

// Routes returns a router with the template endpoints. The catalog is public.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(apicors.Public())
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	return r
}

// List handles GET /.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "templates.list")
	defer cancel()
	list, err := h.catalog.ListActive(ctx)
	if err != nil {
		h.logger.Error("failed to list templates", zap.Error(err))
		jsonutil.InternalError(w, "Failed to load templates")
		return
	}
	jsonutil.OK(w, list)
}

// Get handles GET /{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "templates.get")
	defer cancel()
	tpl, err := h.catalog.GetActive(ctx, id)
	if errors.Is(err, storeutil.ErrNotFound) {
		jsonutil.NotFound(w, "Template not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load template", zap.String("template_id", id), zap.Error(err))
		jsonutil.InternalError(w, "Failed to load template")
		return
	}
	jsonutil.OK(w, tpl)
}
