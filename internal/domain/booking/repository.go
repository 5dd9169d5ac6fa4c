package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
// Loaded bookings carry the owner of their item.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByBooker lists the booker's bookings matching the criteria, start DESC then id DESC.
	FindByBooker(ctx context.Context, bookerID uuid.UUID, c Criteria) ([]*Booking, error)

	// FindByItemOwner lists bookings of items owned by ownerID matching the criteria, same order.
	FindByItemOwner(ctx context.Context, ownerID uuid.UUID, c Criteria) ([]*Booking, error)

	// LastEndBefore returns the latest end among the item's bookings ending before asOf.
	LastEndBefore(ctx context.Context, itemID uuid.UUID, asOf time.Time) (*time.Time, error)

	// NextStartAfter returns the earliest start among the item's bookings starting after asOf.
	NextStartAfter(ctx context.Context, itemID uuid.UUID, asOf time.Time) (*time.Time, error)

	// LastEndsBefore is the grouped form of LastEndBefore. Items without a match are absent.
	LastEndsBefore(ctx context.Context, itemIDs []uuid.UUID, asOf time.Time) (map[uuid.UUID]time.Time, error)

	// NextStartsAfter is the grouped form of NextStartAfter.
	NextStartsAfter(ctx context.Context, itemIDs []uuid.UUID, asOf time.Time) (map[uuid.UUID]time.Time, error)

	// ExistsFinishedApproved reports whether the booker has an APPROVED booking of the item ending before asOf.
	ExistsFinishedApproved(ctx context.Context, bookerID, itemID uuid.UUID, asOf time.Time) (bool, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	// A version mismatch returns ErrStaleBooking.
	Update(ctx context.Context, booking *Booking) error
}
