// internal/app/system/seeding/seeding.go
package seeding

import (
	"context"

	templatestore "github.com/dalemusser/gatherly/internal/app/store/templates"
	"github.com/dalemusser/gatherly/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SeedAll seeds default data if not already present.
func SeedAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if err := seedTemplates(ctx, templatestore.New(db), logger); err != nil {
		return err
	}
	return nil
}

// DefaultTemplates is the starter catalog. models.DefaultTemplateID is always first.
func DefaultTemplates() []models.Template {
	return []models.Template{
		{
			ID:        models.DefaultTemplateID,
			Name:      "Elegant Rose",
			Thumbnail: "/templates/elegant-rose.jpg",
			Themes:    []string{"Wedding"},
			Styles:    []string{"Floral", "Elegant"},
			Tier:      models.TierPremium,
			Tags:      []string{"rose", "blush", "romantic", "feminine"},
			Colors:    models.TemplateColors{Bg: "#fdf6f0", Text: "#4a3b35", Accent: "#c9a96e", Muted: "#a89a8f"},
			EnvelopeIntro: &models.EnvelopeIntro{
				Type:    "envelope",
				Variant: "rose",
			},
			Active:    true,
			SortOrder: 10,
		},
		{
			ID:        "golden-arch",
			Name:      "Golden Arch",
			Thumbnail: "/templates/golden-arch.jpg",
			Themes:    []string{"Wedding", "E-Day"},
			Styles:    []string{"Elegant", "Modern"},
			Tier:      models.TierPremium,
			Tags:      []string{"gold", "arch", "art deco", "luxury"},
			Colors:    models.TemplateColors{Bg: "#1c1a17", Text: "#f5ecd7", Accent: "#d4af37", Muted: "#8c8270"},
			Active:    true,
			SortOrder: 20,
		},
		{
			ID:        "sakura-bloom",
			Name:      "Sakura Bloom",
			Thumbnail: "/templates/sakura-bloom.jpg",
			Themes:    []string{"Birthday"},
			Styles:    []string{"Cute", "Floral"},
			Tier:      models.TierFree,
			Tags:      []string{"cherry blossom", "pink", "japanese", "spring"},
			Colors:    models.TemplateColors{Bg: "#fff5f7", Text: "#5a3d45", Accent: "#f08fa8", Muted: "#b8a0a8"},
			Active:    true,
			SortOrder: 30,
		},
		{
			ID:        "corporate-slate",
			Name:      "Corporate Slate",
			Thumbnail: "/templates/corporate-slate.jpg",
			Themes:    []string{"Corporate", "Open House"},
			Styles:    []string{"Minimal", "Modern"},
			Tier:      models.TierFree,
			Tags:      []string{"business", "professional", "clean", "formal"},
			Colors:    models.TemplateColors{Bg: "#f4f5f7", Text: "#1f2933", Accent: "#3e4c59", Muted: "#7b8794"},
			Active:    true,
			SortOrder: 40,
		},
		{
			ID:        "rustic-kraft",
			Name:      "Rustic Kraft",
			Thumbnail: "/templates/rustic-kraft.jpg",
			Themes:    []string{"Wedding"},
			Styles:    []string{"Traditional", "Floral"},
			Tier:      models.TierFree,
			Tags:      []string{"rustic", "kraft", "botanical", "vintage", "wildflower"},
			Colors:    models.TemplateColors{Bg: "#efe4d2", Text: "#4b3a2a", Accent: "#8a6f4d", Muted: "#a39581"},
			Active:    true,
			SortOrder: 50,
		},
		{
			ID:        "baby-clouds",
			Name:      "Baby Clouds",
			Thumbnail: "/templates/baby-clouds.jpg",
			Themes:    []string{"Baby/Aqiqah"},
			Styles:    []string{"Cute", "Minimal"},
			Tier:      models.TierPremium,
			Tags:      []string{"baby", "shower", "aqiqah", "pastel", "dreamy"},
			Colors:    models.TemplateColors{Bg: "#f0f7ff", Text: "#34495e", Accent: "#9ec9f0", Muted: "#a0b4c8"},
			Active:    true,
			SortOrder: 60,
		},
	}
}

// templateSeeder is the slice of the template store seeding needs.
type templateSeeder interface {
	Exists(ctx context.Context, id string) (bool, error)
	Upsert(ctx context.Context, t models.Template) error
}

// seedTemplates inserts default templates that don't exist yet. Existing
// templates are never overwritten, so admin edits survive restarts.
func seedTemplates(ctx context.Context, store templateSeeder, logger *zap.Logger) error {
	for _, tpl := range DefaultTemplates() {
		exists, err := store.Exists(ctx, tpl.ID)
		if err != nil {
			logger.Error("failed to check if template exists",
				zap.String("template_id", tpl.ID),
				zap.Error(err))
			return err
		}
		if exists {
			continue
		}
		if err := store.Upsert(ctx, tpl); err != nil {
			logger.Error("failed to seed template",
				zap.String("template_id", tpl.ID),
				zap.Error(err))
			return err
		}
		logger.Info("seeded default template", zap.String("template_id", tpl.ID))
	}
	return nil
}
