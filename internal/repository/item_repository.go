package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
)

// ItemModel is the GORM model for the items projection table.
type ItemModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	Available   bool      `gorm:"not null;default:false"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName overrides the GORM table name.
func (ItemModel) TableName() string { return "items" }

// GormItemRepository implements ItemRepository using GORM.
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository.
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID returns the item or ErrItemNotFound.
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*itemDomain.Item, error) {
	var model ItemModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookingDomain.ErrItemNotFound.WithMessagef("item %s not found", id)
		}
		return nil, fmt.Errorf("failed to find item by ID: %w", err)
	}
	return toItemDomain(&model), nil
}

// FindByOwnerID returns the owner's items ordered by name.
func (r *GormItemRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*itemDomain.Item, error) {
	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name ASC").
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner items: %w", err)
	}

	items := make([]*itemDomain.Item, len(models))
	for i := range models {
		items[i] = toItemDomain(&models[i])
	}
	return items, nil
}

// Upsert inserts the item or overwrites the projected columns of an existing row.
func (r *GormItemRepository) Upsert(ctx context.Context, it *itemDomain.Item) error {
	model := ItemModel{
		ID:          it.ID(),
		OwnerID:     it.OwnerID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.IsAvailable(),
		UpdatedAt:   it.UpdatedAt(),
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner_id", "name", "description", "available", "updated_at"}),
	}).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}
	return nil
}

// Delete removes the item row if present.
func (r *GormItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ItemModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

func toItemDomain(m *ItemModel) *itemDomain.Item {
	return itemDomain.Reconstruct(m.ID, m.OwnerID, m.Name, m.Description, m.Available, m.UpdatedAt.UTC())
}
