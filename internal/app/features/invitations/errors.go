package invitations

import (
	"errors"
	"net/http"

	"github.com/dalemusser/gatherly/internal/app/lifecycle"
	"github.com/dalemusser/gatherly/internal/app/system/jsonutil"
	"github.com/dalemusser/gatherly/internal/app/system/metrics"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Stable error reasons returned to clients.
const (
	reasonUnauthorized = "Unauthorized"
	reasonForbidden    = "Forbidden"
	reasonNotFound     = "Invitation not found"
	reasonPublished    = "Cannot edit published invitation"
	reasonSlugConflict = "Slug conflict, please retry"
	reasonSlugRequired = "Slug required"
	reasonInternal     = "Internal server error"
)

// writeError maps a lifecycle error to its HTTP status and stable reason.
// Storage failures are logged and answered with a generic 500; their text
// never reaches the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *lifecycle.ValidationError
	switch {
	case errors.As(err, &verr):
		h.metrics.ObserveLifecycle(op, metrics.OutcomeInvalid)
		jsonutil.ValidationError(w, verr.Fields)
	case errors.Is(err, lifecycle.ErrUnauthenticated):
		h.metrics.ObserveLifecycle(op, metrics.OutcomeDenied)
		jsonutil.Unauthorized(w, reasonUnauthorized)
	case errors.Is(err, lifecycle.ErrForbidden):
		h.metrics.ObserveLifecycle(op, metrics.OutcomeDenied)
		jsonutil.Forbidden(w, reasonForbidden)
	case errors.Is(err, lifecycle.ErrNotFound):
		h.metrics.ObserveLifecycle(op, metrics.OutcomeNotFound)
		jsonutil.NotFound(w, reasonNotFound)
	case errors.Is(err, lifecycle.ErrPublishedImmutable):
		h.metrics.ObserveLifecycle(op, metrics.OutcomeImmutable)
		jsonutil.BadRequest(w, reasonPublished)
	case errors.Is(err, lifecycle.ErrSlugConflict):
		h.metrics.ObserveLifecycle(op, metrics.OutcomeConflict)
		h.logger.Warn("slug conflict on publish",
			zap.String("request_id", middleware.GetReqID(r.Context())))
		jsonutil.Conflict(w, reasonSlugConflict)
	case errors.Is(err, lifecycle.ErrSlugRequired):
		h.metrics.ObserveLifecycle(op, metrics.OutcomeInvalid)
		jsonutil.BadRequest(w, reasonSlugRequired)
	default:
		h.metrics.ObserveLifecycle(op, metrics.OutcomeError)
		h.logger.Error("invitation operation failed",
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		jsonutil.InternalError(w, reasonInternal)
	}
}
