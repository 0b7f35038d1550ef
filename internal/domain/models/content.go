// internal/domain/models/content.go
package models

// RSVP modes.
const (
	RSVPModeGuestList = "guest-list"
	RSVPModeOpen      = "open"
)

// Content defaults applied by the content schema validator.
const (
	DefaultLanguage       = "english"
	DefaultPackageType    = "gold"
	DefaultOpeningStyle   = "Circle Gate"
	DefaultAnimatedEffect = "none"
)

// Limits on repeated content fields.
const (
	MaxGalleryPhotos  = 20
	MaxAgendaItems    = 50
	MaxFeaturedWishes = 50
	MinTitleLength    = 3
)

// Content is the validated, fully-defaulted guest-facing invitation document.
// It is only ever produced by the content schema validator.
type Content struct {
	InvitationTitle string `bson:"invitationTitle" json:"invitationTitle"`
	EventType       string `bson:"eventType" json:"eventType"`
	HostNames       string `bson:"hostNames" json:"hostNames"`
	ShortGreeting   string `bson:"shortGreeting" json:"shortGreeting"`

	EventDate        string       `bson:"eventDate" json:"eventDate"` // free-form; consumers parse or fall back
	IncludeHijriDate bool         `bson:"includeHijriDate" json:"includeHijriDate"`
	EventAgenda      []AgendaItem `bson:"eventAgenda" json:"eventAgenda"`

	VenueName      string `bson:"venueName" json:"venueName"`
	Address        string `bson:"address" json:"address"`
	GoogleMapsLink string `bson:"googleMapsLink" json:"googleMapsLink"`
	WazeLink       string `bson:"wazeLink" json:"wazeLink"`

	GalleryPhotos []string `bson:"galleryPhotos" json:"galleryPhotos"`

	EnableWishes   bool   `bson:"enableWishes" json:"enableWishes"`
	FeaturedWishes []Wish `bson:"featuredWishes" json:"featuredWishes"`

	RSVPMode            string `bson:"rsvpMode" json:"rsvpMode"`
	RSVPDeadline        string `bson:"rsvpDeadline" json:"rsvpDeadline"`
	RSVPMessage         string `bson:"rsvpMessage" json:"rsvpMessage"`
	MaxGuests           *int   `bson:"maxGuests,omitempty" json:"maxGuests,omitempty"`
	MaxGuestsPerInvitee int    `bson:"maxGuestsPerInvitee" json:"maxGuestsPerInvitee"` // 0 = no plus-ones

	// Presentation options, passed through untouched.
	Language                  string `bson:"language" json:"language"`
	PackageType               string `bson:"packageType" json:"packageType"`
	OpeningStyle              string `bson:"openingStyle" json:"openingStyle"`
	AnimatedEffect            string `bson:"animatedEffect" json:"animatedEffect"`
	BackgroundMusic           bool   `bson:"backgroundMusic" json:"backgroundMusic"`
	BackgroundMusicYoutubeURL string `bson:"backgroundMusicYoutubeUrl" json:"backgroundMusicYoutubeUrl"`
}

// AgendaItem is one line of the event programme.
type AgendaItem struct {
	ID    string `bson:"id,omitempty" json:"id,omitempty"`
	Time  string `bson:"time" json:"time"`
	Title string `bson:"title" json:"title"`
}

// Wish is a named message. Hosts author featured wishes in the content;
// guests record their own through the guest store.
type Wish struct {
	ID      string `bson:"id,omitempty" json:"id,omitempty"`
	Name    string `bson:"name" json:"name"`
	Message string `bson:"message" json:"message"`
}
