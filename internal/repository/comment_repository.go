package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	commentDomain "github.com/shareit/service-booking/internal/domain/comment"
)

// CommentModel is the GORM model for the comments table.
type CommentModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null"`
	Text      string    `gorm:"type:varchar(512);not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null"`

	// AuthorName is read from the users projection.
	AuthorName string `gorm:"->;-:migration"`
}

// TableName overrides the GORM table name.
func (CommentModel) TableName() string { return "comments" }

// GormCommentRepository implements CommentRepository using GORM.
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository.
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Save inserts a new comment.
func (r *GormCommentRepository) Save(ctx context.Context, c *commentDomain.Comment) error {
	model := CommentModel{
		ID:        c.ID(),
		ItemID:    c.ItemID(),
		AuthorID:  c.AuthorID(),
		Text:      c.Text(),
		CreatedAt: c.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save comment: %w", err)
	}
	return nil
}

// FindByItemID returns the item's comments oldest first.
func (r *GormCommentRepository) FindByItemID(ctx context.Context, itemID uuid.UUID) ([]*commentDomain.Comment, error) {
	byItem, err := r.FindByItemIDs(ctx, []uuid.UUID{itemID})
	if err != nil {
		return nil, err
	}
	return byItem[itemID], nil
}

// FindByItemIDs groups the comments of several items by item id.
func (r *GormCommentRepository) FindByItemIDs(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID][]*commentDomain.Comment, error) {
	out := make(map[uuid.UUID][]*commentDomain.Comment)
	if len(itemIDs) == 0 {
		return out, nil
	}

	var models []CommentModel
	if err := r.db.WithContext(ctx).
		Model(&CommentModel{}).
		Select("comments.*, COALESCE(users.name, '') AS author_name").
		Joins("LEFT JOIN users ON users.id = comments.author_id").
		Where("comments.item_id IN ?", itemIDs).
		Order("comments.created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find item comments: %w", err)
	}

	for _, m := range models {
		out[m.ItemID] = append(out[m.ItemID], commentDomain.Reconstruct(
			m.ID, m.ItemID, m.AuthorID, m.AuthorName, m.Text, m.CreatedAt.UTC()))
	}
	return out, nil
}
