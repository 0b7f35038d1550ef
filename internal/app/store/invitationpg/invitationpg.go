// Package invitationpg is the Postgres invitation repository, selected with
// invitation_backend=postgres. Content is stored as JSONB; ids are UUIDs.
package invitationpg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/gatherly/internal/app/store/storeutil"
	"github.com/dalemusser/gatherly/internal/domain/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// row is the invitations table. Timestamps are written explicitly, so gorm's
// automatic tracking is disabled.
type row struct {
	ID         string         `gorm:"column:id;type:uuid;primaryKey"`
	UserID     string         `gorm:"column:user_id;not null"`
	TemplateID string         `gorm:"column:template_id;not null"`
	Content    datatypes.JSON `gorm:"column:content;type:jsonb;not null"`
	Status     string         `gorm:"column:status;not null;default:draft"`
	Slug       *string        `gorm:"column:slug"`
	CreatedAt  time.Time      `gorm:"column:created_at;not null;autoCreateTime:false"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;not null;autoUpdateTime:false"`
}

func (row) TableName() string { return "invitations" }

// Open connects to Postgres. Driver errors are translated so unique
// violations surface as gorm.ErrDuplicatedKey.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	return db, nil
}

// Store implements lifecycle.Repository over gorm.
type Store struct {
	db *gorm.DB
}

// New creates a Store.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the table, its status check, and its indexes. Idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(&row{}); err != nil {
		return fmt.Errorf("migrate invitations: %w", err)
	}
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_invitations_slug ON invitations (slug) WHERE slug IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_invitations_user_updated ON invitations (user_id, updated_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_invitations_user_status_updated ON invitations (user_id, status, updated_at DESC)`,
		`DO $$ BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_invitations_status_slug') THEN
				ALTER TABLE invitations ADD CONSTRAINT chk_invitations_status_slug
					CHECK ((status = 'draft') OR (status = 'published' AND slug IS NOT NULL));
			END IF;
		END $$`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure invitations schema: %w", err)
		}
	}
	return nil
}

// Insert stores a new invitation, assigning a UUID when ID is empty.
func (s *Store) Insert(ctx context.Context, inv models.Invitation) (*models.Invitation, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	r, err := toRow(inv)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		if storeutil.IsDuplicateKey(err) {
			return nil, storeutil.ErrDuplicateSlug
		}
		return nil, err
	}
	return &inv, nil
}

// GetByID loads an invitation. Ids that are not UUIDs cannot exist here and
// report ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Invitation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, storeutil.ErrNotFound
	}
	return s.first(ctx, "id = ?", id)
}

// GetPublishedBySlug loads a published invitation by its slug.
func (s *Store) GetPublishedBySlug(ctx context.Context, slug string) (*models.Invitation, error) {
	return s.first(ctx, "slug = ? AND status = ?", slug, models.StatusPublished)
}

func (s *Store) first(ctx context.Context, query string, args ...any) (*models.Invitation, error) {
	var r row
	err := s.db.WithContext(ctx).Where(query, args...).Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeutil.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromRow(r)
}

// ListByOwner returns owner's invitations, newest updated_at first.
func (s *Store) ListByOwner(ctx context.Context, owner string, f storeutil.InvitationFilter) ([]models.Invitation, error) {
	limit, skip := storeutil.PageBounds(f.Limit, f.Page)

	q := s.db.WithContext(ctx).Where("user_id = ?", owner)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var rows []row
	if err := q.Order("updated_at DESC").Order("id DESC").
		Limit(int(limit)).Offset(int(skip)).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]models.Invitation, 0, len(rows))
	for _, r := range rows {
		inv, err := fromRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, nil
}

// UpdateWhere applies patch only while the row's status equals expectedStatus.
// The WHERE clause carries the status check, so concurrent callers cannot
// both succeed.
func (s *Store) UpdateWhere(ctx context.Context, id, expectedStatus string, patch storeutil.InvitationPatch) (*models.Invitation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, storeutil.ErrNotFound
	}

	updates := map[string]any{"updated_at": patch.UpdatedAt}
	if patch.TemplateID != nil {
		updates["template_id"] = *patch.TemplateID
	}
	if patch.Content != nil {
		b, err := json.Marshal(patch.Content)
		if err != nil {
			return nil, fmt.Errorf("encode content: %w", err)
		}
		updates["content"] = datatypes.JSON(b)
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.Slug != nil {
		updates["slug"] = *patch.Slug
	}

	db := s.db.WithContext(ctx)
	res := db.Model(&row{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(updates)
	if res.Error != nil {
		if storeutil.IsDuplicateKey(res.Error) {
			return nil, storeutil.ErrDuplicateSlug
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := db.Model(&row{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, storeutil.ErrNotFound
		}
		return nil, storeutil.ErrStateMismatch
	}
	return s.first(ctx, "id = ?", id)
}

func toRow(inv models.Invitation) (row, error) {
	b, err := json.Marshal(inv.Content)
	if err != nil {
		return row{}, fmt.Errorf("encode content: %w", err)
	}
	return row{
		ID:         inv.ID,
		UserID:     inv.UserID,
		TemplateID: inv.TemplateID,
		Content:    datatypes.JSON(b),
		Status:     inv.Status,
		Slug:       inv.Slug,
		CreatedAt:  inv.CreatedAt,
		UpdatedAt:  inv.UpdatedAt,
	}, nil
}

func fromRow(r row) (*models.Invitation, error) {
	var content models.Content
	if len(r.Content) > 0 {
		if err := json.Unmarshal(r.Content, &content); err != nil {
			return nil, fmt.Errorf("decode content of %s: %w", r.ID, err)
		}
	}
	return &models.Invitation{
		ID:         r.ID,
		UserID:     r.UserID,
		TemplateID: r.TemplateID,
		Content:    content,
		Status:     r.Status,
		Slug:       r.Slug,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}, nil
}
