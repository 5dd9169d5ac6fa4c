package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/shareit/service-booking/internal/platform/apperr"
)

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id          uuid.UUID
	itemID      uuid.UUID
	itemOwnerID uuid.UUID
	bookerID    uuid.UUID
	start       time.Time
	end         time.Time
	status      BookingStatus

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// ValidateRange checks that start strictly precedes end.
func ValidateRange(start, end time.Time) error {
	if !start.Before(end) {
		return ErrInvalidRange.WithMessagef("start %s should be before end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}

// NewBooking creates a new Booking aggregate with status=WAITING.
// itemOwnerID is the owner of the resolved item and must differ from bookerID.
func NewBooking(itemID, itemOwnerID, bookerID uuid.UUID, start, end time.Time) (*Booking, error) {
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}
	if itemID == uuid.Nil {
		return nil, apperr.NewValidationError("item ID is required")
	}
	if bookerID == uuid.Nil {
		return nil, apperr.NewValidationError("booker ID is required")
	}
	if bookerID == itemOwnerID {
		return nil, ErrSelfBookingForbidden.WithMessagef("user %s can not book their own item %s", bookerID, itemID)
	}

	now := time.Now().UTC()
	return &Booking{
		id:          uuid.New(),
		itemID:      itemID,
		itemOwnerID: itemOwnerID,
		bookerID:    bookerID,
		start:       start.UTC(),
		end:         end.UTC(),
		status:      StatusWaiting,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	itemID uuid.UUID,
	itemOwnerID uuid.UUID,
	bookerID uuid.UUID,
	start time.Time,
	end time.Time,
	status BookingStatus,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:          id,
		itemID:      itemID,
		itemOwnerID: itemOwnerID,
		bookerID:    bookerID,
		start:       start,
		end:         end,
		status:      status,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// ItemID returns the booked item's identifier.
func (b *Booking) ItemID() uuid.UUID { return b.itemID }

// ItemOwnerID returns the owner of the booked item.
func (b *Booking) ItemOwnerID() uuid.UUID { return b.itemOwnerID }

// BookerID returns the user who requested the booking.
func (b *Booking) BookerID() uuid.UUID { return b.bookerID }

// Start returns the start of the booking window.
func (b *Booking) Start() time.Time { return b.start }

// End returns the end of the booking window.
func (b *Booking) End() time.Time { return b.end }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Access ---

// IsOwnedBy reports whether userID owns the booked item.
func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.itemOwnerID == userID
}

// IsVisibleTo reports whether userID may read the booking: the booker or the item owner.
func (b *Booking) IsVisibleTo(userID uuid.UUID) bool {
	return b.bookerID == userID || b.itemOwnerID == userID
}

// --- Behavior ---

// Decide applies the owner's decision, moving a WAITING booking to APPROVED or REJECTED.
func (b *Booking) Decide(approve bool) error {
	return b.transitionTo(DecisionStatus(approve))
}

func (b *Booking) transitionTo(target BookingStatus) error {
	if !b.status.CanTransitionTo(target) {
		return ErrNotWaiting.WithMessagef("booking %s is %s, status should be %s", b.id, b.status, StatusWaiting)
	}
	b.status = target
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
