// Package contentschema is the only path from untrusted invitation content to
// models.Content. Validate decodes a JSON object, strips markup from text
// fields, checks bounds and applies defaults. It has no side effects.
//
// Rules:
//   - invitationTitle is required and at least 3 characters
//   - galleryPhotos holds at most 20 entries; longer lists are rejected, not truncated
//   - rsvpMode is "guest-list" or "open"
//   - maxGuests and maxGuestsPerInvitee are non-negative integers
//   - missing fields take their defaults and unknown fields are ignored
package contentschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/dalemusser/gatherly/internal/app/system/htmlsanitize"
	"github.com/dalemusser/gatherly/internal/app/system/inputval"
	"github.com/dalemusser/gatherly/internal/domain/models"
)

// Error lists every field that failed validation.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid content: " + strings.Join(parts, "; ")
}

// ErrNotObject is reported under the "content" field when the input is not a JSON object.
var ErrNotObject = errors.New("content must be a JSON object")

// input mirrors models.Content with pointers where a missing value must be
// told apart from a zero value.
type input struct {
	InvitationTitle *string `json:"invitationTitle" validate:"required,min=3,max=200" label:"Title"`
	EventType       *string `json:"eventType" validate:"omitempty,max=100" label:"Event type"`
	HostNames       *string `json:"hostNames" validate:"omitempty,max=300" label:"Host names"`
	ShortGreeting   *string `json:"shortGreeting" validate:"omitempty,max=2000" label:"Greeting"`

	EventDate        *string      `json:"eventDate" validate:"omitempty,max=100" label:"Event date"`
	IncludeHijriDate *bool        `json:"includeHijriDate"`
	EventAgenda      []agendaItem `json:"eventAgenda" validate:"max=50,dive" label:"Agenda"`

	VenueName      *string `json:"venueName" validate:"omitempty,max=300" label:"Venue"`
	Address        *string `json:"address" validate:"omitempty,max=1000" label:"Address"`
	GoogleMapsLink *string `json:"googleMapsLink" validate:"omitempty,max=2000" label:"Google Maps link"`
	WazeLink       *string `json:"wazeLink" validate:"omitempty,max=2000" label:"Waze link"`

	GalleryPhotos []string `json:"galleryPhotos" validate:"max=20" label:"Gallery photos"`

	EnableWishes   *bool  `json:"enableWishes"`
	FeaturedWishes []wish `json:"featuredWishes" validate:"max=50,dive" label:"Featured wishes"`

	RSVPMode            *string `json:"rsvpMode" validate:"omitempty,oneof=guest-list open" label:"RSVP mode"`
	RSVPDeadline        *string `json:"rsvpDeadline" validate:"omitempty,max=100" label:"RSVP deadline"`
	RSVPMessage         *string `json:"rsvpMessage" validate:"omitempty,max=2000" label:"RSVP message"`
	MaxGuests           *int    `json:"maxGuests" validate:"omitempty,gte=0" label:"Max guests"`
	MaxGuestsPerInvitee *int    `json:"maxGuestsPerInvitee" validate:"omitempty,gte=0" label:"Max guests per invitee"`

	Language                  *string `json:"language" validate:"omitempty,max=64"`
	PackageType               *string `json:"packageType" validate:"omitempty,max=64"`
	OpeningStyle              *string `json:"openingStyle" validate:"omitempty,max=64"`
	AnimatedEffect            *string `json:"animatedEffect" validate:"omitempty,max=64"`
	BackgroundMusic           *bool   `json:"backgroundMusic"`
	BackgroundMusicYoutubeURL *string `json:"backgroundMusicYoutubeUrl" validate:"omitempty,max=2000"`
}

type agendaItem struct {
	ID    *string `json:"id" validate:"omitempty,max=64"`
	Time  *string `json:"time" validate:"omitempty,max=50"`
	Title *string `json:"title" validate:"omitempty,max=200"`
}

type wish struct {
	ID      *string `json:"id" validate:"omitempty,max=64"`
	Name    *string `json:"name" validate:"omitempty,max=100"`
	Message *string `json:"message" validate:"omitempty,max=1000"`
}

// Validate turns raw JSON into a defaulted Content document, or returns an
// *Error naming each violated field. Every field is checked, so the error is
// complete rather than stopping at the first problem.
func Validate(raw json.RawMessage) (models.Content, error) {
	var in input
	res := &inputval.Result{}

	if !decodeFields(raw, &in, res) {
		return models.Content{}, &Error{Fields: res.Fields()}
	}
	in.stripMarkup()
	// Decode errors come first so they win over rule errors for the same field.
	res.Errors = append(res.Errors, inputval.Validate(&in).Errors...)
	if res.HasErrors() {
		return models.Content{}, &Error{Fields: res.Fields()}
	}
	return in.toContent(), nil
}

// decodeFields decodes each known key on its own so that a type error in
// one field does not hide problems in the others. A JSON null is treated as
// an absent field. It returns false when raw is not an object at all.
func decodeFields(raw json.RawMessage, in *input, res *inputval.Result) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		res.Add("content", ErrNotObject.Error())
		return false
	}

	v := reflect.ValueOf(in).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		fieldRaw, ok := obj[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(fieldRaw, v.Field(i).Addr().Interface()); err != nil {
			res.Add(name, typeMessage(t.Field(i).Type))
		}
	}
	return true
}

func typeMessage(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "must be a string"
	case reflect.Bool:
		return "must be true or false"
	case reflect.Int:
		return "must be a whole number"
	case reflect.Slice:
		return "must be a list of " + elemDescription(t.Elem())
	default:
		return "has the wrong type"
	}
}

func elemDescription(t reflect.Type) string {
	if t.Kind() == reflect.String {
		return "strings"
	}
	return "objects"
}

// stripMarkup removes HTML from free-text fields. Links, dates and
// presentation options are left alone.
func (in *input) stripMarkup() {
	for _, p := range []*string{
		in.InvitationTitle, in.EventType, in.HostNames, in.ShortGreeting,
		in.VenueName, in.Address, in.RSVPMessage,
	} {
		if p != nil {
			*p = htmlsanitize.StripTags(*p)
		}
	}
	for i := range in.EventAgenda {
		if in.EventAgenda[i].Title != nil {
			*in.EventAgenda[i].Title = htmlsanitize.StripTags(*in.EventAgenda[i].Title)
		}
	}
	for i := range in.FeaturedWishes {
		w := &in.FeaturedWishes[i]
		if w.Name != nil {
			*w.Name = htmlsanitize.StripTags(*w.Name)
		}
		if w.Message != nil {
			*w.Message = htmlsanitize.StripTags(*w.Message)
		}
	}
}

func (in *input) toContent() models.Content {
	c := models.Content{
		InvitationTitle: str(in.InvitationTitle, ""),
		EventType:       str(in.EventType, ""),
		HostNames:       str(in.HostNames, ""),
		ShortGreeting:   str(in.ShortGreeting, ""),

		EventDate:        str(in.EventDate, ""),
		IncludeHijriDate: boolean(in.IncludeHijriDate, false),
		EventAgenda:      make([]models.AgendaItem, 0, len(in.EventAgenda)),

		VenueName:      str(in.VenueName, ""),
		Address:        str(in.Address, ""),
		GoogleMapsLink: str(in.GoogleMapsLink, ""),
		WazeLink:       str(in.WazeLink, ""),

		GalleryPhotos: make([]string, 0, len(in.GalleryPhotos)),

		EnableWishes:   boolean(in.EnableWishes, true),
		FeaturedWishes: make([]models.Wish, 0, len(in.FeaturedWishes)),

		RSVPMode:     str(in.RSVPMode, models.RSVPModeOpen),
		RSVPDeadline: str(in.RSVPDeadline, ""),
		RSVPMessage:  str(in.RSVPMessage, ""),
		MaxGuests:    in.MaxGuests,

		Language:                  str(in.Language, models.DefaultLanguage),
		PackageType:               str(in.PackageType, models.DefaultPackageType),
		OpeningStyle:              str(in.OpeningStyle, models.DefaultOpeningStyle),
		AnimatedEffect:            str(in.AnimatedEffect, models.DefaultAnimatedEffect),
		BackgroundMusic:           boolean(in.BackgroundMusic, false),
		BackgroundMusicYoutubeURL: str(in.BackgroundMusicYoutubeURL, ""),
	}
	if in.MaxGuestsPerInvitee != nil {
		c.MaxGuestsPerInvitee = *in.MaxGuestsPerInvitee
	}
	for _, a := range in.EventAgenda {
		c.EventAgenda = append(c.EventAgenda, models.AgendaItem{
			ID:    str(a.ID, ""),
			Time:  str(a.Time, ""),
			Title: str(a.Title, ""),
		})
	}
	c.GalleryPhotos = append(c.GalleryPhotos, in.GalleryPhotos...)
	for _, w := range in.FeaturedWishes {
		c.FeaturedWishes = append(c.FeaturedWishes, models.Wish{
			ID:      str(w.ID, ""),
			Name:    str(w.Name, ""),
			Message: str(w.Message, ""),
		})
	}
	return c
}

func str(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

func boolean(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
