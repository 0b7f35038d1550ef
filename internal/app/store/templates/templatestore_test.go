package templatestore

import (
	"errors"
	"testing"

	"github.com/dalemusser/gatherly/internal/app/store/storeutil"
	"github.com/dalemusser/gatherly/internal/domain/models"
	"github.com/dalemusser/gatherly/internal/testutil"
)

func TestStore_ListActive_Order(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seed := []models.Template{
		{ID: "b", Name: "Beta", Tier: models.TierFree, Active: true, SortOrder: 2},
		{ID: "a", Name: "Alpha", Tier: models.TierFree, Active: true, SortOrder: 2},
		{ID: "z", Name: "Zulu", Tier: models.TierPremium, Active: true, SortOrder: 1},
		{ID: "hidden", Name: "Hidden", Tier: models.TierFree, Active: false, SortOrder: 0},
	}
	for _, tpl := range seed {
		if err := store.Upsert(ctx, tpl); err != nil {
			t.Fatalf("Upsert(%s) error = %v", tpl.ID, err)
		}
	}

	list, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	var ids []string
	for _, tpl := range list {
		ids = append(ids, tpl.ID)
	}
	want := []string{"z", "a", "b"}
	if len(ids) != len(want) {
		t.Fatalf("ListActive() ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ListActive()[%d] = %s, want %s", i, ids[i], want[i])
		}
	}
	if list[0].Colors != models.DefaultTemplateColors {
		t.Errorf("Colors = %+v, want default palette", list[0].Colors)
	}
	if list[0].Tags == nil {
		t.Error("Tags should be non-nil")
	}
}

func TestStore_ListActive_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	list, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("ListActive() = %v, want empty non-nil slice", list)
	}
}

func TestStore_GetActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	colors := models.TemplateColors{Bg: "#fdf6f0", Text: "#4a3b35", Accent: "#c9a96e", Muted: "#a89a8f"}
	_ = store.Upsert(ctx, models.Template{ID: "elegant-rose", Name: "Elegant Rose", Tier: models.TierFree, Active: true, Colors: colors})
	_ = store.Upsert(ctx, models.Template{ID: "retired", Name: "Retired", Tier: models.TierFree, Active: false})

	got, err := store.GetActive(ctx, "elegant-rose")
	if err != nil {
		t.Fatalf("GetActive() error = %v", err)
	}
	if got.Name != "Elegant Rose" || got.Colors != colors {
		t.Errorf("GetActive() = %+v", got)
	}

	for _, id := range []string{"retired", "missing", " "} {
		if _, err := store.GetActive(ctx, id); !errors.Is(err, storeutil.ErrNotFound) {
			t.Errorf("GetActive(%q) error = %v, want ErrNotFound", id, err)
		}
	}
}

func TestStore_Exists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	exists, err := store.Exists(ctx, "garden")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("Exists() = true before insert")
	}

	_ = store.Upsert(ctx, models.Template{ID: "garden", Name: "Garden", Tier: models.TierFree})
	exists, _ = store.Exists(ctx, "garden")
	if !exists {
		t.Error("Exists() = false after insert")
	}
}
