package invitations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/dalemusser/gatherly/internal/app/lifecycle"
	"github.com/dalemusser/gatherly/internal/app/store/invitationmem"
	"github.com/dalemusser/gatherly/internal/app/system/metrics"
	"github.com/dalemusser/gatherly/internal/domain/models"
	"github.com/dalemusser/gatherly/internal/testutil"
	"go.uber.org/zap"
)

const draftBody = `{"content":{"invitationTitle":"Ahmad & Siti","eventDate":"2026-03-15","venueName":"Grand Ballroom"}}`

type harness struct {
	router http.Handler
	repo   *invitationmem.Store
	host   testutil.TestUser
	guest  testutil.TestUser
}

func newHarness(t *testing.T, repo lifecycle.Repository) *harness {
	t.Helper()
	mem := invitationmem.New()
	if repo == nil {
		repo = mem
	}
	h := NewHandler(lifecycle.New(repo), nil, metrics.New(), zap.NewNop())
	return &harness{
		router: Routes(h),
		repo:   mem,
		host:   testutil.HostUser(),
		guest:  testutil.HostUser(),
	}
}

// serve runs req through the router as user (nil for anonymous).
func (hs *harness) serve(req *http.Request, user *testutil.TestUser) *testutil.ResponseRecorder {
	if user != nil {
		req = testutil.WithUser(req, *user)
	}
	rec := testutil.NewRecorder()
	hs.router.ServeHTTP(rec, req)
	return rec
}

func (hs *harness) createDraft(t *testing.T, body string) models.Invitation {
	t.Helper()
	rec := hs.serve(testutil.NewJSONRequest(http.MethodPost, "/", body), &hs.host)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var inv models.Invitation
	if err := json.Unmarshal(rec.Body.Bytes(), &inv); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return inv
}

func (hs *harness) publish(t *testing.T, id string) map[string]any {
	t.Helper()
	rec := hs.serve(testutil.NewRequest(http.MethodPost, "/"+id+"/publish"), &hs.host)
	if rec.Code != http.StatusOK {
		t.Fatalf("publish status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode publish response: %v", err)
	}
	return out
}

func errorOf(t *testing.T, rec *testutil.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	s, _ := body["error"].(string)
	return s
}

func TestUpsert_CreatesDraft(t *testing.T) {
	hs := newHarness(t, nil)
	inv := hs.createDraft(t, draftBody)

	if inv.ID == "" {
		t.Error("id should be assigned")
	}
	if inv.Status != models.StatusDraft {
		t.Errorf("status = %q, want draft", inv.Status)
	}
	if inv.Slug != nil {
		t.Errorf("slug = %q, want null", *inv.Slug)
	}
	if inv.UserID != hs.host.ID {
		t.Errorf("user_id = %q, want %q", inv.UserID, hs.host.ID)
	}
	if inv.TemplateID != models.DefaultTemplateID {
		t.Errorf("template_id = %q, want %q", inv.TemplateID, models.DefaultTemplateID)
	}
	if inv.Content.Language != models.DefaultLanguage {
		t.Errorf("content defaults not applied: language = %q", inv.Content.Language)
	}
}

func TestUpsert_WholeBodyIsContent(t *testing.T) {
	hs := newHarness(t, nil)
	inv := hs.createDraft(t, `{"template_id":"golden-arch","invitationTitle":"Majlis Aqiqah"}`)

	if inv.Content.InvitationTitle != "Majlis Aqiqah" {
		t.Errorf("title = %q", inv.Content.InvitationTitle)
	}
	if inv.TemplateID != "golden-arch" {
		t.Errorf("template_id = %q, want golden-arch", inv.TemplateID)
	}
}

func TestUpsert_RequestErrors(t *testing.T) {
	hs := newHarness(t, nil)

	tests := []struct {
		name      string
		body      string
		user      *testutil.TestUser
		wantCode  int
		wantError string
	}{
		{"anonymous", draftBody, nil, http.StatusUnauthorized, "Unauthorized"},
		{"malformed json", `{"content":`, &hs.host, http.StatusBadRequest, "Invalid JSON"},
		{"array body", `[]`, &hs.host, http.StatusBadRequest, "Invalid JSON"},
		{"null body", `null`, &hs.host, http.StatusBadRequest, "Invalid JSON"},
		{"short title", `{"content":{"invitationTitle":"ab"}}`, &hs.host, http.StatusBadRequest, "validation failed"},
		{"unknown id", `{"id":"does-not-exist","content":{"invitationTitle":"Kenduri"}}`, &hs.host, http.StatusNotFound, "Invitation not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := hs.serve(testutil.NewJSONRequest(http.MethodPost, "/", tt.body), tt.user)
			rec.AssertStatus(t, tt.wantCode)
			if got := errorOf(t, rec); got != tt.wantError {
				t.Errorf("error = %q, want %q", got, tt.wantError)
			}
		})
	}
}

func TestUpsert_ValidationFields(t *testing.T) {
	hs := newHarness(t, nil)
	photos := `"a"` + strings.Repeat(`,"a"`, 20)
	body := `{"content":{"invitationTitle":"ok title","galleryPhotos":[` + photos + `]}}`

	rec := hs.serve(testutil.NewJSONRequest(http.MethodPost, "/", body), &hs.host)
	rec.AssertStatus(t, http.StatusBadRequest)

	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := resp.Fields["galleryPhotos"]; !ok {
		t.Errorf("fields = %v, want galleryPhotos", resp.Fields)
	}
	if hs.repo.Len() != 0 {
		t.Error("invalid content must not be stored")
	}
}

func TestUpsert_UpdatesDraft(t *testing.T) {
	hs := newHarness(t, nil)
	inv := hs.createDraft(t, draftBody)

	t.Run("owner via POST id", func(t *testing.T) {
		body := `{"id":"` + inv.ID + `","content":{"invitationTitle":"Ahmad & Siti (updated)"}}`
		rec := hs.serve(testutil.NewJSONRequest(http.MethodPost, "/", body), &hs.host)
		rec.AssertStatus(t, http.StatusOK)
		rec.AssertContains(t, "Ahmad \\u0026 Siti (updated)")
	})

	t.Run("owner via PUT", func(t *testing.T) {
		body := `{"template_id":"sakura-bloom","content":{"invitationTitle":"Majlis Resepsi"}}`
		rec := hs.serve(testutil.NewJSONRequest(http.MethodPut, "/"+inv.ID, body), &hs.host)
		rec.AssertStatus(t, http.StatusOK)

		var got models.Invitation
		_ = json.Unmarshal(rec.Body.Bytes(), &got)
		if got.TemplateID != "sakura-bloom" || got.Content.InvitationTitle != "Majlis Resepsi" {
			t.Errorf("updated = %+v", got)
		}
	})

	t.Run("non-owner", func(t *testing.T) {
		rec := hs.serve(testutil.NewJSONRequest(http.MethodPut, "/"+inv.ID, draftBody), &hs.guest)
		rec.AssertStatus(t, http.StatusForbidden)
		if got := errorOf(t, rec); got != "Forbidden" {
			t.Errorf("error = %q", got)
		}
	})

	t.Run("published is immutable", func(t *testing.T) {
		hs.publish(t, inv.ID)
		rec := hs.serve(testutil.NewJSONRequest(http.MethodPut, "/"+inv.ID, draftBody), &hs.host)
		rec.AssertStatus(t, http.StatusBadRequest)
		if got := errorOf(t, rec); got != "Cannot edit published invitation" {
			t.Errorf("error = %q", got)
		}
	})
}

func TestPublish_Idempotent(t *testing.T) {
	hs := newHarness(t, nil)
	inv := hs.createDraft(t, draftBody)

	first := hs.publish(t, inv.ID)
	slug, _ := first["slug"].(string)
	if !strings.HasPrefix(slug, "inv-") {
		t.Fatalf("slug = %q, want inv- prefix", slug)
	}
	if first["status"] != models.StatusPublished {
		t.Errorf("status = %v", first["status"])
	}
	if _, ok := first["message"]; ok {
		t.Error("first publish should not carry a message")
	}

	second := hs.publish(t, inv.ID)
	if second["slug"] != slug {
		t.Errorf("second slug = %v, want %q", second["slug"], slug)
	}
	if second["message"] != "Already published" {
		t.Errorf("message = %v, want Already published", second["message"])
	}
}

func TestPublish_Errors(t *testing.T) {
	hs := newHarness(t, nil)
	inv := hs.createDraft(t, draftBody)

	tests := []struct {
		name     string
		id       string
		user     *testutil.TestUser
		wantCode int
	}{
		{"anonymous", inv.ID, nil, http.StatusUnauthorized},
		{"non-owner", inv.ID, &hs.guest, http.StatusForbidden},
		{"missing", "nope", &hs.host, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := hs.serve(testutil.NewRequest(http.MethodPost, "/"+tt.id+"/publish"), tt.user)
			rec.AssertStatus(t, tt.wantCode)
		})
	}
}

func TestGet_Visibility(t *testing.T) {
	hs := newHarness(t, nil)
	inv := hs.createDraft(t, draftBody)

	hs.serve(testutil.NewRequest(http.MethodGet, "/"+inv.ID), &hs.host).AssertStatus(t, http.StatusOK)

	rec := hs.serve(testutil.NewRequest(http.MethodGet, "/"+inv.ID), &hs.guest)
	rec.AssertStatus(t, http.StatusForbidden)
	if strings.Contains(rec.Body.String(), "Grand Ballroom") {
		t.Error("forbidden response leaked content")
	}
	hs.serve(testutil.NewRequest(http.MethodGet, "/"+inv.ID), nil).AssertStatus(t, http.StatusForbidden)
	hs.serve(testutil.NewRequest(http.MethodGet, "/missing"), nil).AssertStatus(t, http.StatusNotFound)

	hs.publish(t, inv.ID)
	hs.serve(testutil.NewRequest(http.MethodGet, "/"+inv.ID), nil).AssertStatus(t, http.StatusOK)
}

func TestGetBySlug(t *testing.T) {
	hs := newHarness(t, nil)
	inv := hs.createDraft(t, `{"content":{"invitationTitle":"Majlis Berbuka","eventDate":"2024-03-11","includeHijriDate":true}}`)
	slug := hs.publish(t, inv.ID)["slug"].(string)

	t.Run("published", func(t *testing.T) {
		rec := hs.serve(testutil.NewRequest(http.MethodGet, "/slug/"+slug), nil)
		rec.AssertStatus(t, http.StatusOK)

		var body map[string]any
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if body["id"] != inv.ID {
			t.Errorf("id = %v, want %s", body["id"], inv.ID)
		}
		if body["hijri_date"] != "1 Ramadan 1445" {
			t.Errorf("hijri_date = %v", body["hijri_date"])
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin = %q, want *", got)
		}
	})

	t.Run("blank slug", func(t *testing.T) {
		for _, target := range []string{"/slug/", "/slug/%20%20"} {
			rec := hs.serve(testutil.NewRequest(http.MethodGet, target), nil)
			rec.AssertStatus(t, http.StatusBadRequest)
			if got := errorOf(t, rec); got != "Slug required" {
				t.Errorf("%s: error = %q", target, got)
			}
		}
	})

	t.Run("unknown slug", func(t *testing.T) {
		hs.serve(testutil.NewRequest(http.MethodGet, "/slug/inv-unknown"), nil).AssertStatus(t, http.StatusNotFound)
	})
}

func TestGetBySlug_NoHijriUnlessRequested(t *testing.T) {
	hs := newHarness(t, nil)
	inv := hs.createDraft(t, draftBody)
	slug := hs.publish(t, inv.ID)["slug"].(string)

	rec := hs.serve(testutil.NewRequest(http.MethodGet, "/slug/"+slug), nil)
	if strings.Contains(rec.Body.String(), "hijri_date") {
		t.Errorf("unexpected hijri_date in %s", rec.Body.String())
	}
}

func TestCalendar(t *testing.T) {
	hs := newHarness(t, nil)
	inv := hs.createDraft(t, `{"content":{"invitationTitle":"Party; at John's, Inc.","eventDate":"2026-03-15","venueName":"Grand Ballroom","address":"Jalan Ampang"}}`)
	slug := hs.publish(t, inv.ID)["slug"].(string)

	rec := hs.serve(testutil.NewRequest(http.MethodGet, "/slug/"+slug+"/calendar.ics?start=14:00&end=14:00&filename=majlis"), nil)
	rec.AssertStatus(t, http.StatusOK)

	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/calendar") {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="majlis.ics"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		`SUMMARY:Party\; at John's\, Inc.`,
		"DTSTART:20260315T140000",
		"DTEND:20260315T150000",
		`LOCATION:Grand Ballroom\, Jalan Ampang`,
		"END:VCALENDAR",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("calendar missing %q:\n%s", want, body)
		}
	}
}

func TestCalendar_InvalidDate(t *testing.T) {
	hs := newHarness(t, nil)
	inv := hs.createDraft(t, `{"content":{"invitationTitle":"Someday party","eventDate":"sometime in March"}}`)
	slug := hs.publish(t, inv.ID)["slug"].(string)

	rec := hs.serve(testutil.NewRequest(http.MethodGet, "/slug/"+slug+"/calendar.ics"), nil)
	rec.AssertStatus(t, http.StatusUnprocessableEntity)
	if got := errorOf(t, rec); got != "Event date missing or invalid" {
		t.Errorf("error = %q", got)
	}
}

func TestList(t *testing.T) {
	hs := newHarness(t, nil)
	a := hs.createDraft(t, draftBody)
	hs.createDraft(t, draftBody)
	hs.publish(t, a.ID)

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"?status=draft", 1},
		{"?status=published", 1},
		{"?status=archived", 2},
		{"?limit=1", 1},
	}
	for _, tt := range tests {
		t.Run("query"+tt.query, func(t *testing.T) {
			rec := hs.serve(testutil.NewRequest(http.MethodGet, "/"+tt.query), &hs.host)
			rec.AssertStatus(t, http.StatusOK)
			var list []models.Invitation
			if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(list) != tt.want {
				t.Errorf("len = %d, want %d", len(list), tt.want)
			}
		})
	}

	t.Run("other user sees nothing", func(t *testing.T) {
		rec := hs.serve(testutil.NewRequest(http.MethodGet, "/"), &hs.guest)
		rec.AssertStatus(t, http.StatusOK)
		if strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Errorf("body = %s, want []", rec.Body.String())
		}
	})
}

// brokenRepo fails every write with an error whose text must not reach clients.
type brokenRepo struct {
	lifecycle.Repository
}

func (brokenRepo) Insert(context.Context, models.Invitation) (*models.Invitation, error) {
	return nil, errors.New("connection refused to db-internal-7:27017")
}

func TestStorageErrorIsGeneric(t *testing.T) {
	hs := newHarness(t, brokenRepo{Repository: invitationmem.New()})

	rec := hs.serve(testutil.NewJSONRequest(http.MethodPost, "/", draftBody), &hs.host)
	rec.AssertStatus(t, http.StatusInternalServerError)
	if strings.Contains(rec.Body.String(), "db-internal") {
		t.Errorf("storage error leaked: %s", rec.Body.String())
	}
}
