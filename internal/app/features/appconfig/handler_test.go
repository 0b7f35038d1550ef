package appconfig

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	appconfigstore "github.com/dalemusser/gatherly/internal/app/store/appconfig"
	"github.com/dalemusser/gatherly/internal/domain/models"
	"github.com/dalemusser/gatherly/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type memStore struct {
	values map[string]any
	setErr error
}

func (m *memStore) Public(context.Context) (models.PublicConfig, error) {
	cfg := models.PublicConfig{
		CardLanguages:     models.DefaultCardLanguages(),
		Packages:          models.DefaultPackages(),
		LabelTranslations: models.DefaultLabelTranslations(),
	}
	if v, ok := m.values[models.ConfigKeyPackages].([]models.Package); ok {
		cfg.Packages = v
	}
	return cfg, nil
}

func (m *memStore) SetMany(_ context.Context, updates []appconfigstore.Update, _ string) error {
	if m.setErr != nil {
		return m.setErr
	}
	for _, u := range updates {
		m.values[u.Key] = u.Value
	}
	return nil
}

func newRouter(store Store) http.Handler {
	h := NewHandler(store, nil, zap.NewNop())
	r := chi.NewRouter()
	r.Mount("/api/v1/config", PublicRoutes(h))
	r.Mount("/api/v1/admin/config", AdminRoutes(h))
	return r
}

func serve(router http.Handler, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGet_Defaults(t *testing.T) {
	router := newRouter(&memStore{values: map[string]any{}})

	rec := serve(router, testutil.NewRequest(http.MethodGet, "/api/v1/config"))
	rec.AssertStatus(t, http.StatusOK)

	var cfg models.PublicConfig
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cfg.CardLanguages) == 0 || len(cfg.Packages) == 0 || len(cfg.LabelTranslations) == 0 {
		t.Errorf("defaults missing: %+v", cfg)
	}
}

func TestUpdate_Access(t *testing.T) {
	router := newRouter(&memStore{values: map[string]any{}})
	body := `{"packages":[{"value":"basic","label":"Basic"}]}`

	rec := serve(router, testutil.NewJSONRequest(http.MethodPut, "/api/v1/admin/config", body))
	rec.AssertStatus(t, http.StatusUnauthorized)

	req := testutil.WithUser(testutil.NewJSONRequest(http.MethodPut, "/api/v1/admin/config", body), testutil.HostUser())
	serve(router, req).AssertStatus(t, http.StatusForbidden)
}

func TestUpdate_Payloads(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantKeys []string
	}{
		{"packages", `{"packages":[{"value":"basic","label":"Basic"}]}`, http.StatusOK, []string{models.ConfigKeyPackages}},
		{"all three", `{"cardLanguages":[{"value":"tamil","label":"Tamil"}],"packages":[{"value":"gold","label":"Gold","isPopular":true}],"labelTranslations":{"english":{"date":"Date"}}}`, http.StatusOK,
			[]string{models.ConfigKeyCardLanguages, models.ConfigKeyPackages, models.ConfigKeyLabelTranslations}},
		{"empty list skipped", `{"packages":[],"labelTranslations":{"english":{}}}`, http.StatusOK, []string{models.ConfigKeyLabelTranslations}},
		{"element missing label", `{"cardLanguages":[{"value":"tamil"}]}`, http.StatusBadRequest, nil},
		{"wrong type", `{"packages":"gold"}`, http.StatusBadRequest, nil},
		{"nothing", `{}`, http.StatusBadRequest, nil},
		{"bad json", `{`, http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{values: map[string]any{}}
			router := newRouter(store)
			req := testutil.WithUser(testutil.NewJSONRequest(http.MethodPut, "/api/v1/admin/config", tt.body), testutil.AdminUser())

			rec := serve(router, req)
			rec.AssertStatus(t, tt.wantCode)
			if len(store.values) != len(tt.wantKeys) {
				t.Errorf("stored keys = %v, want %v", store.values, tt.wantKeys)
			}
			for _, k := range tt.wantKeys {
				if _, ok := store.values[k]; !ok {
					t.Errorf("key %q not stored", k)
				}
			}
		})
	}
}

func TestUpdate_NoValidUpdatesMessage(t *testing.T) {
	router := newRouter(&memStore{values: map[string]any{}})
	req := testutil.WithUser(testutil.NewJSONRequest(http.MethodPut, "/api/v1/admin/config", `{"packages":[]}`), testutil.AdminUser())
	rec := serve(router, req)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "No valid updates")
}

func TestUpdate_StoreError(t *testing.T) {
	router := newRouter(&memStore{values: map[string]any{}, setErr: errors.New("write concern failed")})
	req := testutil.WithUser(testutil.NewJSONRequest(http.MethodPut, "/api/v1/admin/config", `{"packages":[{"value":"a","label":"A"}]}`), testutil.AdminUser())
	rec := serve(router, req)
	rec.AssertStatus(t, http.StatusInternalServerError)
}

func TestRoundTrip_Mongo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newRouter(appconfigstore.New(db, zap.NewNop()))

	req := testutil.WithUser(testutil.NewJSONRequest(http.MethodPut, "/api/v1/admin/config",
		`{"packages":[{"value":"platinum","label":"Platinum","isPopular":true}]}`), testutil.AdminUser())
	serve(router, req).AssertStatus(t, http.StatusOK)

	rec := serve(router, testutil.NewRequest(http.MethodGet, "/api/v1/config"))
	rec.AssertStatus(t, http.StatusOK)
	var cfg models.PublicConfig
	_ = json.Unmarshal(rec.Body.Bytes(), &cfg)
	if len(cfg.Packages) != 1 || cfg.Packages[0].Value != "platinum" || !cfg.Packages[0].IsPopular {
		t.Errorf("packages = %+v", cfg.Packages)
	}
	if len(cfg.CardLanguages) != len(models.DefaultCardLanguages()) {
		t.Errorf("card languages should keep defaults, got %+v", cfg.CardLanguages)
	}
}
