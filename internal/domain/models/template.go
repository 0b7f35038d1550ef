// internal/domain/models/template.go
package models

// Template tiers.
const (
	TierFree    = "free"
	TierPremium = "premium"
)

// Template is a presentation template in the catalog. The lifecycle never
// checks template references against it; only the rendering layer does.
type Template struct {
	ID              string         `bson:"_id" json:"id"`
	Name            string         `bson:"name" json:"name"`
	Thumbnail       string         `bson:"thumbnail_url" json:"thumbnail"`
	Themes          []string       `bson:"themes" json:"themes"`
	Styles          []string       `bson:"styles" json:"styles"`
	Tier            string         `bson:"tier" json:"tier"`
	Tags            []string       `bson:"tags" json:"tags"`
	Colors          TemplateColors `bson:"colors" json:"colors"`
	Design          map[string]any `bson:"design,omitempty" json:"design"`
	EnvelopeIntro   *EnvelopeIntro `bson:"envelope_intro,omitempty" json:"envelopeIntro,omitempty"`
	DefaultAudioURL *string        `bson:"default_audio_url,omitempty" json:"defaultAudioUrl"`
	Active          bool           `bson:"active" json:"-"`
	SortOrder       int            `bson:"sort_order" json:"-"`
}

// TemplateColors is the template's palette.
type TemplateColors struct {
	Bg     string `bson:"bg" json:"bg"`
	Text   string `bson:"text" json:"text"`
	Accent string `bson:"accent" json:"accent"`
	Muted  string `bson:"muted" json:"muted"`
}

// DefaultTemplateColors is used when a stored template has no palette.
var DefaultTemplateColors = TemplateColors{Bg: "#fff", Text: "#000", Accent: "#666", Muted: "#999"}

// EnvelopeIntro describes the opening animation of a template.
type EnvelopeIntro struct {
	Type         string `bson:"type" json:"type"`
	Variant      string `bson:"variant,omitempty" json:"variant,omitempty"`
	SealInitials string `bson:"seal_initials,omitempty" json:"sealInitials,omitempty"`
}
