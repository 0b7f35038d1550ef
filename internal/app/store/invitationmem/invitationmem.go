// Package invitationmem is an in-process invitation repository. It backs
// local development (invitation_backend = memory) and handler tests, and
// follows the same conditional-update contract as the database stores.
package invitationmem

import (
	"context"
	"sort"
	"sync"

	"github.com/dalemusser/gatherly/internal/app/store/storeutil"
	"github.com/dalemusser/gatherly/internal/domain/models"
	"github.com/google/uuid"
)

// Store keeps invitations in a map guarded by a mutex.
type Store struct {
	mu     sync.Mutex
	byID   map[string]models.Invitation
	bySlug map[string]string // slug -> id
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		byID:   map[string]models.Invitation{},
		bySlug: map[string]string{},
	}
}

// Insert stores inv. An empty ID is replaced by a UUID.
func (s *Store) Insert(_ context.Context, inv models.Invitation) (*models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if sl := inv.SlugValue(); sl != "" {
		if _, taken := s.bySlug[sl]; taken {
			return nil, storeutil.ErrDuplicateSlug
		}
		s.bySlug[sl] = inv.ID
	}
	inv = clone(inv)
	s.byID[inv.ID] = inv
	out := clone(inv)
	return &out, nil
}

// GetByID returns the invitation with id.
func (s *Store) GetByID(_ context.Context, id string) (*models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.byID[id]
	if !ok {
		return nil, storeutil.ErrNotFound
	}
	out := clone(inv)
	return &out, nil
}

// GetPublishedBySlug returns the published invitation carrying slug.
func (s *Store) GetPublishedBySlug(_ context.Context, slug string) (*models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.bySlug[slug]
	if !ok {
		return nil, storeutil.ErrNotFound
	}
	inv := s.byID[id]
	if !inv.IsPublished() {
		return nil, storeutil.ErrNotFound
	}
	out := clone(inv)
	return &out, nil
}

// ListByOwner returns owner's invitations, most recently updated first.
func (s *Store) ListByOwner(_ context.Context, owner string, f storeutil.InvitationFilter) ([]models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := []models.Invitation{}
	for _, inv := range s.byID {
		if inv.UserID != owner {
			continue
		}
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		list = append(list, clone(inv))
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		}
		return list[i].ID > list[j].ID
	})

	limit, skip := storeutil.PageBounds(f.Limit, f.Page)
	if skip >= int64(len(list)) {
		return []models.Invitation{}, nil
	}
	end := skip + limit
	if end > int64(len(list)) {
		end = int64(len(list))
	}
	return list[skip:end], nil
}

// UpdateWhere applies patch only while the stored status equals expectedStatus.
func (s *Store) UpdateWhere(_ context.Context, id, expectedStatus string, patch storeutil.InvitationPatch) (*models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.byID[id]
	if !ok {
		return nil, storeutil.ErrNotFound
	}
	if inv.Status != expectedStatus {
		return nil, storeutil.ErrStateMismatch
	}
	if patch.Slug != nil {
		if owner, taken := s.bySlug[*patch.Slug]; taken && owner != id {
			return nil, storeutil.ErrDuplicateSlug
		}
	}

	if patch.TemplateID != nil {
		inv.TemplateID = *patch.TemplateID
	}
	if patch.Content != nil {
		inv.Content = *patch.Content
	}
	if patch.Status != nil {
		inv.Status = *patch.Status
	}
	if patch.Slug != nil {
		if old := inv.SlugValue(); old != "" && old != *patch.Slug {
			delete(s.bySlug, old)
		}
		sl := *patch.Slug
		inv.Slug = &sl
		s.bySlug[sl] = id
	}
	inv.UpdatedAt = patch.UpdatedAt

	s.byID[id] = clone(inv)
	out := clone(inv)
	return &out, nil
}

// Len returns the number of stored invitations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// clone copies the pointer and slice fields so callers cannot mutate stored state.
func clone(inv models.Invitation) models.Invitation {
	if inv.Slug != nil {
		sl := *inv.Slug
		inv.Slug = &sl
	}
	c := inv.Content
	c.EventAgenda = copySlice(c.EventAgenda)
	c.GalleryPhotos = copySlice(c.GalleryPhotos)
	c.FeaturedWishes = copySlice(c.FeaturedWishes)
	if c.MaxGuests != nil {
		n := *c.MaxGuests
		c.MaxGuests = &n
	}
	inv.Content = c
	return inv
}

// copySlice copies in, keeping nil as nil and empty as empty.
func copySlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
