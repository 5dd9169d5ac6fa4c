package booking

import "github.com/shareit/service-booking/internal/platform/apperr"

// Failure kinds surfaced by the booking engine. Returned errors carry
// entity-specific messages; match them with errors.Is.
var (
	ErrActorNotFound   = apperr.New(apperr.KindNotFound, "ACTOR_NOT_FOUND", "user not found")
	ErrItemNotFound    = apperr.New(apperr.KindNotFound, "ITEM_NOT_FOUND", "item not found")
	ErrBookingNotFound = apperr.New(apperr.KindNotFound, "BOOKING_NOT_FOUND", "booking not found")

	ErrForbidden            = apperr.New(apperr.KindForbidden, "FORBIDDEN", "user has no rights to see this booking")
	ErrNotOwner             = apperr.New(apperr.KindForbidden, "NOT_OWNER", "user is not the owner of the item")
	ErrSelfBookingForbidden = apperr.New(apperr.KindForbidden, "SELF_BOOKING_FORBIDDEN", "user can not book their own item")

	ErrInvalidRange    = apperr.New(apperr.KindBadRequest, "INVALID_RANGE", "start should be before end")
	ErrItemUnavailable = apperr.New(apperr.KindBadRequest, "ITEM_UNAVAILABLE", "item is not available for booking")
	ErrNotWaiting      = apperr.New(apperr.KindBadRequest, "NOT_WAITING", "booking status should be WAITING")
	ErrUnknownState    = apperr.New(apperr.KindBadRequest, "UNKNOWN_STATE", "unknown state")

	// ErrStaleBooking is returned by repositories when an optimistic update lost a race.
	ErrStaleBooking = apperr.New(apperr.KindConflict, "STALE_BOOKING", "booking was modified by another transaction")
)
