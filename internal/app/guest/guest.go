// Package guest keeps a guest's own RSVP and wishes for an event.
//
// Everything lives in a KV under two key shapes:
//
//	wishes:{eventId}            JSON array of {id, name, message}
//	rsvp:{eventId}:{guestSlug}  JSON object {response, extraGuests}
//
// Reads never fail on bad data. Unparseable or mis-shaped values degrade to
// "nothing stored" (nil RSVP, empty wish list), and malformed wish entries are
// dropped while the rest keep their order.
package guest

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
)

// RSVP responses.
const (
	ResponseAttending    = "attending"
	ResponseNotAttending = "not-attending"
)

// Errors returned by the Save methods.
var (
	ErrInvalidWish = errors.New("wish needs a name and a message")
	ErrInvalidRSVP = errors.New("rsvp response must be attending or not-attending")
)

// Wish is one stored guest wish.
type Wish struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// RSVP is a guest's answer for one event.
type RSVP struct {
	Response    string `json:"response"`
	ExtraGuests int    `json:"extraGuests"`
}

// Store reads and writes guest records through a KV.
type Store struct {
	kv    KV
	newID func() string
}

// New returns a Store over kv.
func New(kv KV) *Store {
	return &Store{kv: kv, newID: uuid.NewString}
}

func wishesKey(eventID string) string { return "wishes:" + eventID }

func rsvpKey(eventID, guestSlug string) string { return "rsvp:" + eventID + ":" + guestSlug }

// SaveWish appends a wish for eventID and returns it with its new id.
func (s *Store) SaveWish(ctx context.Context, eventID, name, message string) (Wish, error) {
	name = strings.TrimSpace(name)
	message = strings.TrimSpace(message)
	if name == "" || message == "" {
		return Wish{}, ErrInvalidWish
	}

	w := Wish{ID: s.newID(), Name: name, Message: message}
	list := append(s.LoadWishes(ctx, eventID), w)

	b, err := json.Marshal(list)
	if err != nil {
		return Wish{}, err
	}
	if err := s.kv.Set(ctx, wishesKey(eventID), string(b)); err != nil {
		return Wish{}, err
	}
	return w, nil
}

// LoadWishes returns the well-formed wishes stored for eventID, oldest first.
// It never returns nil.
func (s *Store) LoadWishes(ctx context.Context, eventID string) []Wish {
	out := []Wish{}
	raw, ok, err := s.kv.Get(ctx, wishesKey(eventID))
	if err != nil || !ok {
		return out
	}

	var entries []json.RawMessage
	if json.Unmarshal([]byte(raw), &entries) != nil {
		return out
	}
	for _, e := range entries {
		if w, ok := decodeWish(e); ok {
			out = append(out, w)
		}
	}
	return out
}

// decodeWish accepts only objects whose name and message are non-empty strings.
func decodeWish(raw json.RawMessage) (Wish, bool) {
	var m map[string]any
	if json.Unmarshal(raw, &m) != nil || m == nil {
		return Wish{}, false
	}
	name, _ := m["name"].(string)
	message, _ := m["message"].(string)
	if name == "" || message == "" {
		return Wish{}, false
	}
	id, _ := m["id"].(string)
	return Wish{ID: id, Name: name, Message: message}, true
}

// SaveRSVP replaces the guest's answer for eventID. Negative extra guests are stored as 0.
func (s *Store) SaveRSVP(ctx context.Context, eventID, guestSlug string, r RSVP) error {
	if !validResponse(r.Response) {
		return ErrInvalidRSVP
	}
	if r.ExtraGuests < 0 {
		r.ExtraGuests = 0
	}
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, rsvpKey(eventID, guestSlug), string(b))
}

// LoadRSVP returns the guest's answer, or nil when none is stored or the
// stored value is not a recognised answer. extraGuests is clamped to
// [0, MaxInt32] and defaults to 0 when absent or not a number.
func (s *Store) LoadRSVP(ctx context.Context, eventID, guestSlug string) *RSVP {
	raw, ok, err := s.kv.Get(ctx, rsvpKey(eventID, guestSlug))
	if err != nil || !ok {
		return nil
	}

	var m map[string]any
	if json.Unmarshal([]byte(raw), &m) != nil || m == nil {
		return nil
	}
	resp, _ := m["response"].(string)
	if !validResponse(resp) {
		return nil
	}

	extra := 0
	if n, ok := m["extraGuests"].(float64); ok && n > 0 {
		extra = int(math.Min(n, math.MaxInt32))
	}
	return &RSVP{Response: resp, ExtraGuests: extra}
}

func validResponse(s string) bool {
	return s == ResponseAttending || s == ResponseNotAttending
}
