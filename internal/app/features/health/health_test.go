package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/gatherly/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func staticDep(name string, err error) Dependency {
	return Dependency{Name: name, Ping: func(context.Context) error { return err }}
}

func TestHandler_Check_Mongo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(zap.NewNop(), Mongo(db.Client()))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.Check(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Check() status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("response status = %q, want %q", resp.Status, "ok")
	}
	if resp.Services["mongodb"] != "ok" {
		t.Errorf("mongodb status = %q, want %q", resp.Services["mongodb"], "ok")
	}
}

func TestHandler_Check_Degraded(t *testing.T) {
	h := NewHandler(zap.NewNop(),
		staticDep("mongodb", nil),
		staticDep("redis", errors.New("dial tcp: connection refused")),
	)

	rec := httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Check() status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("status = %q, want degraded", resp.Status)
	}
	if resp.Services["mongodb"] != "ok" || resp.Services["redis"] != "unavailable" {
		t.Errorf("services = %v", resp.Services)
	}
}

func TestHandler_Ready(t *testing.T) {
	tests := []struct {
		name     string
		deps     []Dependency
		wantCode int
		wantBody string
	}{
		{"all ok", []Dependency{staticDep("mongodb", nil), staticDep("postgres", nil)}, http.StatusOK, `{"status":"ready"}`},
		{"no deps", nil, http.StatusOK, `{"status":"ready"}`},
		{"one down", []Dependency{staticDep("mongodb", nil), staticDep("postgres", errors.New("down"))}, http.StatusServiceUnavailable, `{"status":"not ready"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(zap.NewNop(), tt.deps...)
			rec := httptest.NewRecorder()
			h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("Ready() status = %d, want %d", rec.Code, tt.wantCode)
			}
			if body := rec.Body.String(); body != tt.wantBody {
				t.Errorf("Ready() body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestHandler_Live(t *testing.T) {
	// Live never pings dependencies.
	h := NewHandler(zap.NewNop(), staticDep("mongodb", errors.New("down")))

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	rec := httptest.NewRecorder()

	h.Live(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Live() status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if body != `{"status":"alive"}` {
		t.Errorf("Live() body = %q, want %q", body, `{"status":"alive"}`)
	}
}

func TestRoutes(t *testing.T) {
	h := NewHandler(zap.NewNop(), staticDep("mongodb", nil))
	router := Routes(h)

	for _, path := range []string{"/", "/ready", "/live"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}

func TestMountRootEndpoints(t *testing.T) {
	h := NewHandler(zap.NewNop(), staticDep("mongodb", nil))
	r := chi.NewRouter()
	MountRootEndpoints(r, h)

	for _, path := range []string{"/ready", "/readyz", "/live", "/livez"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusOK {
				t.Errorf("%s status = %d, want %d", path, rec.Code, http.StatusOK)
			}
		})
	}
}
