// Package uploads accepts gallery photos for invitations. Every photo is
// normalized to a bounded JPEG before it is stored.
package uploads

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/gatherly/internal/app/system/auth"
	"github.com/dalemusser/gatherly/internal/app/system/imageproc"
	"github.com/dalemusser/gatherly/internal/app/system/jsonutil"
	"github.com/dalemusser/gatherly/internal/app/system/metrics"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxBytes caps an upload request when no limit is configured.
const DefaultMaxBytes int64 = 10 << 20

// Handler serves the gallery upload endpoint.
type Handler struct {
	storage  storage.Store
	maxBytes int64
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewHandler creates an uploads Handler. maxBytes <= 0 uses DefaultMaxBytes.
func NewHandler(store storage.Store, maxBytes int64, m *metrics.Metrics, logger *zap.Logger) *Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Handler{storage: store, maxBytes: maxBytes, metrics: m, logger: logger}
}

// Routes returns the router mounted at /api/v1/uploads.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Post("/gallery", h.Gallery)
	return r
}

type uploadResponse struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Gallery handles POST /api/v1/uploads/gallery with a multipart "file" field.
func (h *Handler) Gallery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(r)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		h.metrics.ObserveUpload(metrics.OutcomeInvalid)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonutil.TooLarge(w, "File too large")
			return
		}
		jsonutil.BadRequest(w, "Expected multipart form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		h.metrics.ObserveUpload(metrics.OutcomeInvalid)
		jsonutil.BadRequest(w, "No file provided")
		return
	}
	defer file.Close()

	img, err := imageproc.Process(file)
	if err != nil {
		h.metrics.ObserveUpload(metrics.OutcomeInvalid)
		h.logger.Info("gallery upload rejected", zap.String("user_id", userID), zap.Error(err))
		jsonutil.BadRequest(w, "Unsupported image")
		return
	}

	path := fmt.Sprintf("gallery/%s/%s.jpg", userID, uuid.NewString())
	opts := &storage.PutOptions{
		ContentType: imageproc.ContentType,
	}
	if err := h.storage.Put(ctx, path, bytes.NewReader(img.Data), opts); err != nil {
		h.metrics.ObserveUpload(metrics.OutcomeError)
		h.logger.Error("gallery upload store failed", zap.String("path", path), zap.Error(err))
		jsonutil.InternalError(w, "Failed to store image")
		return
	}

	h.metrics.ObserveUpload(metrics.OutcomeOK)
	h.logger.Debug("gallery photo stored",
		zap.String("path", path),
		zap.Int("bytes", len(img.Data)))
	jsonutil.OK(w, uploadResponse{URL: h.storage.URL(path), Width: img.Width, Height: img.Height})
}
