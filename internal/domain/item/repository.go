package item

import (
	"context"

	"github.com/google/uuid"
)

// ItemRepository defines persistence operations for the item projection.
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Item, error)
	Upsert(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id uuid.UUID) error
}
