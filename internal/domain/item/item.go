package item

import (
	"time"

	"github.com/google/uuid"

	"github.com/shareit/service-booking/internal/platform/apperr"
)

// Item is the local projection of a listed item. The available flag is a
// listing flag set by the catalog; bookings never change it.
type Item struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	name        string
	description string
	available   bool
	updatedAt   time.Time
}

// NewItem creates an item projection with validated fields.
func NewItem(id, ownerID uuid.UUID, name, description string, available bool) (*Item, error) {
	if id == uuid.Nil {
		return nil, apperr.NewValidationError("item ID is required")
	}
	if ownerID == uuid.Nil {
		return nil, apperr.NewValidationError("owner ID is required")
	}
	if name == "" {
		return nil, apperr.NewValidationError("item name is required")
	}
	return &Item{
		id:          id,
		ownerID:     ownerID,
		name:        name,
		description: description,
		available:   available,
		updatedAt:   time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds an Item from persistence data (no validation).
func Reconstruct(id, ownerID uuid.UUID, name, description string, available bool, updatedAt time.Time) *Item {
	return &Item{
		id:          id,
		ownerID:     ownerID,
		name:        name,
		description: description,
		available:   available,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

func (i *Item) ID() uuid.UUID        { return i.id }
func (i *Item) OwnerID() uuid.UUID   { return i.ownerID }
func (i *Item) Name() string         { return i.name }
func (i *Item) Description() string  { return i.description }
func (i *Item) IsAvailable() bool    { return i.available }
func (i *Item) UpdatedAt() time.Time { return i.updatedAt }

// IsOwnedBy checks if the item belongs to the given user.
func (i *Item) IsOwnedBy(userID uuid.UUID) bool {
	return i.ownerID == userID
}
