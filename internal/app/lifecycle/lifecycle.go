// Package lifecycle owns the draft -> published state machine for invitations.
//
// The Controller validates content, enforces ownership, and issues
// conditional writes to a Repository. It performs no authentication: the
// caller's user id arrives as a plain string and "" means anonymous.
//
// Publishing relies on the repository's compare-and-swap update (the write
// only applies while the stored status is still draft) and on a unique slug
// index. A slug collision is reported as ErrSlugConflict and is not retried
// here; the client decides whether to publish again.
package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/gatherly/internal/app/store/storeutil"
	"github.com/dalemusser/gatherly/internal/app/system/contentschema"
	"github.com/dalemusser/gatherly/internal/app/system/slug"
	"github.com/dalemusser/gatherly/internal/domain/models"
)

// Repository is the persistence collaborator. Implementations report
// storeutil.ErrNotFound, storeutil.ErrStateMismatch and
// storeutil.ErrDuplicateSlug; any other error is treated as a storage failure.
type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Invitation, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*models.Invitation, error)
	ListByOwner(ctx context.Context, owner string, f storeutil.InvitationFilter) ([]models.Invitation, error)
	Insert(ctx context.Context, inv models.Invitation) (*models.Invitation, error)
	// UpdateWhere applies patch only if the record's status equals expectedStatus.
	UpdateWhere(ctx context.Context, id, expectedStatus string, patch storeutil.InvitationPatch) (*models.Invitation, error)
}

// PublishedCache holds published invitations by slug. Published records are
// immutable, so entries never need invalidating. Implementations swallow
// their own errors; a miss just falls through to the repository.
type PublishedCache interface {
	Get(ctx context.Context, slug string) (*models.Invitation, bool)
	Put(ctx context.Context, inv *models.Invitation)
}

// SlugFunc produces a new public slug.
type SlugFunc func() (string, error)

// Controller runs invitation lifecycle operations.
type Controller struct {
	repo  Repository
	cache PublishedCache
	slugs SlugFunc
	now   func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithCache serves slug reads from c before the repository.
func WithCache(c PublishedCache) Option {
	return func(ctl *Controller) { ctl.cache = c }
}

// WithSlugFunc replaces the slug generator.
func WithSlugFunc(f SlugFunc) Option {
	return func(ctl *Controller) { ctl.slugs = f }
}

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(ctl *Controller) { ctl.now = now }
}

// New creates a Controller over repo.
func New(repo Repository, opts ...Option) *Controller {
	c := &Controller{
		repo:  repo,
		slugs: slug.Generate,
		now:   time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CreateInput is the payload for Create.
type CreateInput struct {
	TemplateID string          // "" selects models.DefaultTemplateID
	Content    json.RawMessage // validated by contentschema
}

// UpdateInput is the payload for Update.
type UpdateInput struct {
	TemplateID *string // nil keeps the current template
	Content    json.RawMessage
}

// PublishResult is returned by Publish.
type PublishResult struct {
	Invitation *models.Invitation
	// AlreadyPublished is true when the call changed nothing.
	AlreadyPublished bool
}

// Create validates content and stores a new draft owned by actor.
func (c *Controller) Create(ctx context.Context, actor string, in CreateInput) (*models.Invitation, error) {
	if actor == "" {
		return nil, ErrUnauthenticated
	}
	content, err := validateContent(in.Content)
	if err != nil {
		return nil, err
	}

	templateID := strings.TrimSpace(in.TemplateID)
	if templateID == "" {
		templateID = models.DefaultTemplateID
	}

	now := c.now().UTC()
	inv, err := c.repo.Insert(ctx, models.Invitation{
		UserID:     actor,
		TemplateID: templateID,
		Content:    content,
		Status:     models.StatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("insert invitation: %w", err)
	}
	return inv, nil
}

// Update rewrites a draft's content (and optionally its template). Only the
// owner may update, and only while the invitation is a draft.
func (c *Controller) Update(ctx context.Context, actor, id string, in UpdateInput) (*models.Invitation, error) {
	if actor == "" {
		return nil, ErrUnauthenticated
	}
	existing, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !existing.IsOwnedBy(actor) {
		return nil, ErrForbidden
	}
	if existing.IsPublished() {
		return nil, ErrPublishedImmutable
	}

	content, err := validateContent(in.Content)
	if err != nil {
		return nil, err
	}

	patch := storeutil.InvitationPatch{
		Content:   &content,
		UpdatedAt: c.now().UTC(),
	}
	if in.TemplateID != nil {
		if t := strings.TrimSpace(*in.TemplateID); t != "" {
			patch.TemplateID = &t
		}
	}

	updated, err := c.repo.UpdateWhere(ctx, existing.ID, models.StatusDraft, patch)
	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, storeutil.ErrStateMismatch):
		// Published between our read and the write.
		return nil, ErrPublishedImmutable
	case errors.Is(err, storeutil.ErrNotFound):
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("update invitation %s: %w", existing.ID, err)
	}
}

// Publish moves a draft to published and assigns its slug. Publishing an
// already-published invitation returns it unchanged with AlreadyPublished set.
func (c *Controller) Publish(ctx context.Context, actor, id string) (*PublishResult, error) {
	if actor == "" {
		return nil, ErrUnauthenticated
	}
	existing, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !existing.IsOwnedBy(actor) {
		return nil, ErrForbidden
	}
	if existing.IsPublished() {
		return &PublishResult{Invitation: existing, AlreadyPublished: true}, nil
	}

	s := existing.SlugValue()
	if s == "" {
		if s, err = c.slugs(); err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}
	}

	published := models.StatusPublished
	updated, err := c.repo.UpdateWhere(ctx, existing.ID, models.StatusDraft, storeutil.InvitationPatch{
		Status:    &published,
		Slug:      &s,
		UpdatedAt: c.now().UTC(),
	})
	switch {
	case err == nil:
		if c.cache != nil {
			c.cache.Put(ctx, updated)
		}
		return &PublishResult{Invitation: updated}, nil
	case errors.Is(err, storeutil.ErrDuplicateSlug):
		return nil, ErrSlugConflict
	case errors.Is(err, storeutil.ErrStateMismatch):
		// A concurrent publish won; report its result as the no-op.
		current, lerr := c.load(ctx, existing.ID)
		if lerr != nil {
			return nil, lerr
		}
		return &PublishResult{Invitation: current, AlreadyPublished: true}, nil
	case errors.Is(err, storeutil.ErrNotFound):
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("publish invitation %s: %w", existing.ID, err)
	}
}

// Get returns an invitation to its owner in any state, or to anyone once published.
func (c *Controller) Get(ctx context.Context, actor, id string) (*models.Invitation, error) {
	inv, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.IsPublished() || inv.IsOwnedBy(actor) {
		return inv, nil
	}
	return nil, ErrForbidden
}

// GetBySlug returns a published invitation by its public slug.
func (c *Controller) GetBySlug(ctx context.Context, slugValue string) (*models.Invitation, error) {
	slugValue = strings.TrimSpace(slugValue)
	if slugValue == "" {
		return nil, ErrSlugRequired
	}
	if c.cache != nil {
		if inv, ok := c.cache.Get(ctx, slugValue); ok {
			return inv, nil
		}
	}

	inv, err := c.repo.GetPublishedBySlug(ctx, slugValue)
	if err != nil {
		if errors.Is(err, storeutil.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get invitation by slug: %w", err)
	}
	if c.cache != nil {
		c.cache.Put(ctx, inv)
	}
	return inv, nil
}

// List returns actor's invitations, most recently updated first. status
// values other than draft and published list both.
func (c *Controller) List(ctx context.Context, actor, status string, limit, page int64) ([]models.Invitation, error) {
	if actor == "" {
		return nil, ErrUnauthenticated
	}
	if !models.IsValidStatus(status) {
		status = ""
	}
	list, err := c.repo.ListByOwner(ctx, actor, storeutil.InvitationFilter{Status: status, Limit: limit, Page: page})
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	if list == nil {
		list = []models.Invitation{}
	}
	return list, nil
}

func (c *Controller) load(ctx context.Context, id string) (*models.Invitation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	inv, err := c.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storeutil.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get invitation %s: %w", id, err)
	}
	return inv, nil
}

func validateContent(raw json.RawMessage) (models.Content, error) {
	content, err := contentschema.Validate(raw)
	if err != nil {
		var cerr *contentschema.Error
		if errors.As(err, &cerr) {
			return models.Content{}, &ValidationError{Fields: cerr.Fields}
		}
		return models.Content{}, err
	}
	return content, nil
}
