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
	userDomain "github.com/shareit/service-booking/internal/domain/user"
)

// UserModel is the GORM model for the users projection table.
type UserModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(255)"`
	Email     string    `gorm:"type:varchar(512)"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName overrides the GORM table name.
func (UserModel) TableName() string { return "users" }

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID returns the user or ErrActorNotFound.
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookingDomain.ErrActorNotFound.WithMessagef("user %s not found", id)
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return userDomain.Reconstruct(model.ID, model.Name, model.Email, model.UpdatedAt.UTC()), nil
}

// Exists reports whether the user is projected.
func (r *GormUserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return count > 0, nil
}

// Upsert inserts the user or overwrites name and email of an existing row.
func (r *GormUserRepository) Upsert(ctx context.Context, u *userDomain.User) error {
	model := UserModel{ID: u.ID(), Name: u.Name(), Email: u.Email(), UpdatedAt: u.UpdatedAt()}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "updated_at"}),
	}).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// Delete removes the user row if present.
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
