package seeding

import (
	"context"
	"errors"
	"testing"

	templatestore "github.com/dalemusser/gatherly/internal/app/store/templates"
	"github.com/dalemusser/gatherly/internal/domain/models"
	"github.com/dalemusser/gatherly/internal/testutil"
	"go.uber.org/zap"
)

type memSeeder struct {
	items  map[string]models.Template
	failOn string
}

func (m *memSeeder) Exists(_ context.Context, id string) (bool, error) {
	if id == m.failOn {
		return false, errors.New("boom")
	}
	_, ok := m.items[id]
	return ok, nil
}

func (m *memSeeder) Upsert(_ context.Context, t models.Template) error {
	m.items[t.ID] = t
	return nil
}

func TestDefaultTemplates(t *testing.T) {
	tpls := DefaultTemplates()
	if len(tpls) == 0 {
		t.Fatal("DefaultTemplates() is empty")
	}
	if tpls[0].ID != models.DefaultTemplateID {
		t.Errorf("first template = %q, want %q", tpls[0].ID, models.DefaultTemplateID)
	}
	seen := map[string]bool{}
	for _, tpl := range tpls {
		if seen[tpl.ID] {
			t.Errorf("duplicate template id %q", tpl.ID)
		}
		seen[tpl.ID] = true
		if !tpl.Active {
			t.Errorf("template %q should be active", tpl.ID)
		}
		if tpl.Tier != models.TierFree && tpl.Tier != models.TierPremium {
			t.Errorf("template %q tier = %q", tpl.ID, tpl.Tier)
		}
	}
}

func TestSeedTemplates_KeepsExisting(t *testing.T) {
	edited := models.Template{ID: models.DefaultTemplateID, Name: "Renamed by admin"}
	store := &memSeeder{items: map[string]models.Template{edited.ID: edited}}

	if err := seedTemplates(context.Background(), store, zap.NewNop()); err != nil {
		t.Fatalf("seedTemplates() error = %v", err)
	}
	if store.items[models.DefaultTemplateID].Name != "Renamed by admin" {
		t.Error("seeding overwrote an existing template")
	}
	if len(store.items) != len(DefaultTemplates()) {
		t.Errorf("seeded %d templates, want %d", len(store.items), len(DefaultTemplates()))
	}
}

func TestSeedTemplates_Error(t *testing.T) {
	store := &memSeeder{items: map[string]models.Template{}, failOn: "golden-arch"}
	if err := seedTemplates(context.Background(), store, zap.NewNop()); err == nil {
		t.Error("seedTemplates() should return the store error")
	}
}

func TestSeedAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	logger := zap.NewNop()

	if err := SeedAll(ctx, db, logger); err != nil {
		t.Fatalf("SeedAll() error = %v", err)
	}
	if err := SeedAll(ctx, db, logger); err != nil {
		t.Fatalf("second SeedAll() error = %v", err)
	}

	list, err := templatestore.New(db).ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(list) != len(DefaultTemplates()) {
		t.Errorf("ListActive() returned %d templates, want %d", len(list), len(DefaultTemplates()))
	}
	if list[0].ID != models.DefaultTemplateID {
		t.Errorf("first active template = %q, want %q", list[0].ID, models.DefaultTemplateID)
	}
}
