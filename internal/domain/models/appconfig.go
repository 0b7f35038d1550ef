// internal/domain/models/appconfig.go
package models

import "time"

// app_config keys.
const (
	ConfigKeyCardLanguages     = "card_languages"
	ConfigKeyPackages          = "packages"
	ConfigKeyLabelTranslations = "label_translations"
)

// CardLanguage is a language the card labels can be rendered in.
type CardLanguage struct {
	Value string `bson:"value" json:"value" validate:"required,max=64"`
	Label string `bson:"label" json:"label" validate:"required,max=128"`
}

// Package is a purchasable invitation package.
type Package struct {
	Value     string `bson:"value" json:"value" validate:"required,max=64"`
	Label     string `bson:"label" json:"label" validate:"required,max=128"`
	IsPopular bool   `bson:"isPopular,omitempty" json:"isPopular,omitempty"`
}

// LabelTranslations maps language -> label key -> text.
type LabelTranslations map[string]map[string]string

// PublicConfig is the configuration served to the studio and guest pages.
type PublicConfig struct {
	CardLanguages     []CardLanguage    `json:"cardLanguages"`
	Packages          []Package         `json:"packages"`
	LabelTranslations LabelTranslations `json:"labelTranslations"`
}

// AppConfigEntry is one stored app_config document.
type AppConfigEntry struct {
	Key       string    `bson:"_id"`
	Value     any       `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
	UpdatedBy string    `bson:"updated_by,omitempty"`
}

// DefaultCardLanguages is served when no card languages are stored.
func DefaultCardLanguages() []CardLanguage {
	return []CardLanguage{
		{Value: "bahasa-melayu", Label: "Bahasa Melayu"},
		{Value: "english", Label: "English"},
		{Value: "arabic", Label: "Arabic"},
	}
}

// DefaultPackages is served when no packages are stored.
func DefaultPackages() []Package {
	return []Package{
		{Value: "standard", Label: "Standard"},
		{Value: "premium", Label: "Premium"},
		{Value: "gold", Label: "Gold", IsPopular: true},
	}
}

// DefaultLabelTranslations is served when no label translations are stored.
func DefaultLabelTranslations() LabelTranslations {
	return LabelTranslations{
		"english": {
			"dearPrefix":         "Dear",
			"to":                 "To:",
			"dearGuest":          "Dear Guest",
			"tapSealToOpen":      "Tap the seal to open",
			"saveTheDate":        "Save the Date",
			"venue":              "Venue",
			"gallery":            "Gallery",
			"wishes":             "Wishes",
			"visibleToAllGuests": "Visible to all guests",
			"rsvp":               "RSVP",
			"rsvpDefaultMessage": "Please let us know if you can make it!",
			"pleaseRespondBy":    "Please respond by",
			"attending":          "Attending",
			"notAttending":       "Not Attending",
			"addToCalendar":      "Add to Calendar",
			"refresh":            "Refresh",
			"call":               "Call",
			"music":              "Music",
			"map":                "Map",
			"maps":               "Maps",
			"waze":               "Waze",
		},
		"bahasa-melayu": {
			"dearPrefix":         "Kepada",
			"to":                 "Kepada:",
			"dearGuest":          "Kepada Tetamu",
			"tapSealToOpen":      "Sentuh mohor untuk membuka",
			"saveTheDate":        "Jimat Tarikh",
			"venue":              "Lokasi",
			"gallery":            "Galeri",
			"wishes":             "Ucapan",
			"visibleToAllGuests": "Boleh dilihat oleh semua tetamu",
			"rsvp":               "RSVP",
			"rsvpDefaultMessage": "Sila maklumkan jika anda dapat hadir!",
			"pleaseRespondBy":    "Sila balas sebelum",
			"attending":          "Akan Hadir",
			"notAttending":       "Tidak Dapat Hadir",
			"addToCalendar":      "Tambah ke Kalendar",
			"refresh":            "Muat Semula",
			"call":               "Panggil",
			"music":              "Muzik",
			"map":                "Peta",
			"maps":               "Maps",
			"waze":               "Waze",
		},
	}
}
