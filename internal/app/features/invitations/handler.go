// Package invitations provides the invitation JSON API: draft upsert, owner
// listing, publish, and the public slug endpoints guests load.
//
// Endpoints (mounted at /api/v1/invitations):
//   - GET  /                        - caller's invitations (?status=&page=&limit=)
//   - POST /                        - create a draft, or update one when "id" is sent
//   - GET  /{id}                    - owner in any state, anyone once published
//   - PUT  /{id}                    - update a draft
//   - POST /{id}/publish            - publish (idempotent)
//   - GET  /slug/{slug}             - public read of a published invitation
//   - GET  /slug/{slug}/calendar.ics - calendar file for a published invitation
package invitations

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dalemusser/gatherly/internal/app/lifecycle"
	"github.com/dalemusser/gatherly/internal/app/system/auditlog"
	"github.com/dalemusser/gatherly/internal/app/system/authz"
	"github.com/dalemusser/gatherly/internal/app/system/hijri"
	"github.com/dalemusser/gatherly/internal/app/system/ics"
	"github.com/dalemusser/gatherly/internal/app/system/jsonutil"
	"github.com/dalemusser/gatherly/internal/app/system/metrics"
	"github.com/dalemusser/gatherly/internal/app/system/normalize"
	"github.com/dalemusser/gatherly/internal/app/system/timeouts"
	"github.com/dalemusser/gatherly/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies. Gallery photos are uploaded separately,
// so content documents stay small.
const maxBodyBytes = 1 << 20

// Handler serves invitation endpoints.
type Handler struct {
	ctl     *lifecycle.Controller
	audit   *auditlog.Logger
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewHandler creates a new invitations Handler. audit and m may be nil.
func NewHandler(ctl *lifecycle.Controller, audit *auditlog.Logger, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{ctl: ctl, audit: audit, metrics: m, logger: logger}
}

// publishResponse is the published record, plus a message on a no-op publish.
type publishResponse struct {
	*models.Invitation
	Message string `json:"message,omitempty"`
}

// slugResponse is a published record as guests receive it.
type slugResponse struct {
	*models.Invitation
	HijriDate string `json:"hijri_date,omitempty"`
}

// List handles GET /.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)
	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "invitations.list")
	defer cancel()
	list, err := h.ctl.List(ctx, authz.Actor(r), normalize.Option(q.Get("status")), limit, page)
	if err != nil {
		h.writeError(w, r, "list", err)
		return
	}
	h.metrics.ObserveLifecycle("list", metrics.OutcomeOK)
	jsonutil.OK(w, list)
}

// Upsert handles POST /.
//
// Request body:
//
//	{
//	    "id": "...",              // optional; present means update
//	    "template_id": "...",     // optional
//	    "content": { ... }        // the content document
//	}
//
// When "content" is absent the whole body is validated as the content document.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	in, ok := readUpsert(w, r)
	if !ok {
		return
	}
	if in.id == "" {
		h.create(w, r, in)
		return
	}
	h.update(w, r, in.id, in)
}

// Update handles PUT /{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	in, ok := readUpsert(w, r)
	if !ok {
		return
	}
	h.update(w, r, chi.URLParam(r, "id"), in)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, in upsertInput) {
	tpl := ""
	if in.templateID != nil {
		tpl = *in.templateID
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "invitations.create")
	defer cancel()
	inv, err := h.ctl.Create(ctx, authz.Actor(r), lifecycle.CreateInput{
		TemplateID: tpl,
		Content:    in.content,
	})
	if err != nil {
		h.writeError(w, r, "create", err)
		return
	}
	h.metrics.ObserveLifecycle("create", metrics.OutcomeOK)
	h.audit.InvitationCreated(r.Context(), r, inv)
	jsonutil.OK(w, inv)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, id string, in upsertInput) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "invitations.update")
	defer cancel()
	inv, err := h.ctl.Update(ctx, authz.Actor(r), id, lifecycle.UpdateInput{
		TemplateID: in.templateID,
		Content:    in.content,
	})
	if err != nil {
		h.writeError(w, r, "update", err)
		return
	}
	h.metrics.ObserveLifecycle("update", metrics.OutcomeOK)
	h.audit.InvitationUpdated(r.Context(), r, inv)
	jsonutil.OK(w, inv)
}

// Get handles GET /{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "invitations.get")
	defer cancel()
	inv, err := h.ctl.Get(ctx, authz.Actor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "get", err)
		return
	}
	h.metrics.ObserveLifecycle("get", metrics.OutcomeOK)
	jsonutil.OK(w, inv)
}

// Publish handles POST /{id}/publish.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "invitations.publish")
	defer cancel()
	res, err := h.ctl.Publish(ctx, authz.Actor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "publish", err)
		return
	}
	if res.AlreadyPublished {
		h.metrics.ObserveLifecycle("publish", metrics.OutcomeNoop)
		jsonutil.OK(w, publishResponse{Invitation: res.Invitation, Message: "Already published"})
		return
	}
	h.metrics.ObserveLifecycle("publish", metrics.OutcomeOK)
	h.audit.InvitationPublished(r.Context(), r, res.Invitation)
	jsonutil.OK(w, publishResponse{Invitation: res.Invitation})
}

// GetBySlug handles GET /slug/{slug}.
func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "invitations.get_by_slug")
	defer cancel()
	inv, err := h.ctl.GetBySlug(ctx, normalize.Slug(chi.URLParam(r, "slug")))
	if err != nil {
		h.writeError(w, r, "get_by_slug", err)
		return
	}
	h.metrics.ObserveLifecycle("get_by_slug", metrics.OutcomeOK)

	resp := slugResponse{Invitation: inv}
	if inv.Content.IncludeHijriDate {
		resp.HijriDate = hijri.Format(inv.Content.EventDate)
	}
	jsonutil.OK(w, resp)
}

// Calendar handles GET /slug/{slug}/calendar.ics.
//
// Query parameters start and end (HH:mm) override the default event hours;
// filename names the download (default event.ics).
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "invitations.calendar")
	defer cancel()
	inv, err := h.ctl.GetBySlug(ctx, normalize.Slug(chi.URLParam(r, "slug")))
	if err != nil {
		h.writeError(w, r, "calendar", err)
		return
	}

	q := r.URL.Query()
	c := inv.Content
	doc, err := ics.Generate(ics.Event{
		Title:       c.InvitationTitle,
		Date:        c.EventDate,
		StartTime:   q.Get("start"),
		EndTime:     q.Get("end"),
		Location:    c.VenueName,
		Address:     c.Address,
		Description: c.ShortGreeting,
	})
	if err != nil {
		jsonutil.Unprocessable(w, "Event date missing or invalid")
		return
	}

	w.Header().Set("Content-Type", ics.ContentType)
	w.Header().Set("Content-Disposition", ics.ContentDisposition(q.Get("filename")))
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, doc); err != nil {
		h.logger.Debug("calendar write failed", zap.Error(err))
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request decoding                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

type upsertInput struct {
	id         string
	templateID *string
	content    json.RawMessage
}

// readUpsert decodes an upsert body. Non-string id and template_id values are
// ignored. It writes the 400 itself and reports false when the body is not a
// JSON object.
func readUpsert(w http.ResponseWriter, r *http.Request) (upsertInput, bool) {
	body, err := jsonutil.ReadBody(w, r, maxBodyBytes)
	if err != nil {
		if errors.Is(err, jsonutil.ErrTooLarge) {
			jsonutil.TooLarge(w, "Request body too large")
			return upsertInput{}, false
		}
		jsonutil.BadRequest(w, "Invalid JSON")
		return upsertInput{}, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		jsonutil.BadRequest(w, "Invalid JSON")
		return upsertInput{}, false
	}

	var in upsertInput
	if s, ok := stringField(fields, "id"); ok {
		in.id = s
	}
	if s, ok := stringField(fields, "template_id"); ok {
		in.templateID = &s
	}
	if c, ok := fields["content"]; ok && string(c) != "null" {
		in.content = c
	} else {
		in.content = body
	}
	return in, true
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
