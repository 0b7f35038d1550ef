// Package appconfig serves the studio's public configuration and the admin
// endpoint that edits it.
//
// Endpoints:
//   - GET /api/v1/config        - card languages, packages, label translations
//   - PUT /api/v1/admin/config  - update any subset of the three (admin only)
package appconfig

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	appconfigstore "github.com/dalemusser/gatherly/internal/app/store/appconfig"
	"github.com/dalemusser/gatherly/internal/app/system/auditlog"
	"github.com/dalemusser/gatherly/internal/app/system/auth"
	"github.com/dalemusser/gatherly/internal/app/system/authz"
	"github.com/dalemusser/gatherly/internal/app/system/inputval"
	"github.com/dalemusser/gatherly/internal/app/system/jsonutil"
	"github.com/dalemusser/gatherly/internal/app/system/timeouts"
	"github.com/dalemusser/gatherly/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodyBytes caps admin config payloads.
const maxBodyBytes = 256 << 10

// Store is the slice of the app config store the handlers need.
type Store interface {
	Public(ctx context.Context) (models.PublicConfig, error)
	SetMany(ctx context.Context, updates []appconfigstore.Update, updatedBy string) error
}

// Handler serves app config endpoints.
type Handler struct {
	store  Store
	audit  *auditlog.Logger
	logger *zap.Logger
}

// NewHandler creates a new appconfig Handler. audit may be nil.
func NewHandler(store Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{store: store, audit: audit, logger: logger}
}

// PublicRoutes returns the router mounted at /api/v1/config.
func PublicRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	return r
}

// AdminRoutes returns the router mounted at /api/v1/admin/config.
func AdminRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.RequireAdmin)
	r.Put("/", h.Update)
	return r
}

// Get handles GET /api/v1/config. A store failure still answers with the
// built-in defaults so the studio can render.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "config.get")
	defer cancel()
	cfg, err := h.store.Public(ctx)
	if err != nil {
		h.logger.Warn("app config read failed, serving defaults", zap.Error(err))
	}
	jsonutil.OK(w, cfg)
}

// updateInput is the admin payload. Each key is applied only if present and
// well-formed; malformed keys are skipped rather than failing the request.
type updateInput struct {
	CardLanguages     json.RawMessage `json:"cardLanguages"`
	Packages          json.RawMessage `json:"packages"`
	LabelTranslations json.RawMessage `json:"labelTranslations"`
}

// Update handles PUT /api/v1/admin/config.
//
// Request body (any subset):
//
//	{
//	    "cardLanguages": [{"value": "english", "label": "English"}],
//	    "packages": [{"value": "gold", "label": "Gold", "isPopular": true}],
//	    "labelTranslations": {"english": {"date": "Date"}}
//	}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in updateInput
	if err := jsonutil.Decode(w, r, maxBodyBytes, &in); err != nil {
		if errors.Is(err, jsonutil.ErrTooLarge) {
			jsonutil.TooLarge(w, "Request body too large")
			return
		}
		jsonutil.BadRequest(w, "Invalid JSON")
		return
	}

	var updates []appconfigstore.Update
	if v, ok := decodeList[models.CardLanguage](in.CardLanguages); ok {
		updates = append(updates, appconfigstore.Update{Key: models.ConfigKeyCardLanguages, Value: v})
	}
	if v, ok := decodeList[models.Package](in.Packages); ok {
		updates = append(updates, appconfigstore.Update{Key: models.ConfigKeyPackages, Value: v})
	}
	if v, ok := decodeTranslations(in.LabelTranslations); ok {
		updates = append(updates, appconfigstore.Update{Key: models.ConfigKeyLabelTranslations, Value: v})
	}
	if len(updates) == 0 {
		jsonutil.BadRequest(w, "No valid updates")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "config.update")
	defer cancel()

	actor := authz.Actor(r)
	keys := make([]string, 0, len(updates))
	for _, u := range updates {
		keys = append(keys, u.Key)
	}
	if err := h.store.SetMany(ctx, updates, actor); err != nil {
		h.logger.Error("app config update failed", zap.Strings("keys", keys), zap.Error(err))
		jsonutil.InternalError(w, "Failed to save configuration")
		return
	}
	h.audit.ConfigUpdated(r.Context(), r, actor, keys)
	jsonutil.OK(w, map[string]bool{"ok": true})
}

// decodeList accepts a non-empty JSON array whose every element passes its
// validate tags.
func decodeList[T any](raw json.RawMessage) ([]T, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
		return nil, false
	}
	for i := range list {
		if inputval.Validate(&list[i]).HasErrors() {
			return nil, false
		}
	}
	return list, true
}

// decodeTranslations accepts a non-empty JSON object of language -> label -> text.
func decodeTranslations(raw json.RawMessage) (models.LabelTranslations, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var t models.LabelTranslations
	if err := json.Unmarshal(raw, &t); err != nil || len(t) == 0 {
		return nil, false
	}
	return t, true
}
