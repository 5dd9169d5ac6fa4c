package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
	"github.com/shareit/service-booking/internal/platform/metrics"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ItemID uuid.UUID `json:"item_id" binding:"required"`
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID          uuid.UUID `json:"id"`
	ItemID      uuid.UUID `json:"item_id"`
	ItemOwnerID uuid.UUID `json:"item_owner_id"`
	BookerID    uuid.UUID `json:"booker_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Status      string    `json:"status"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo      bookingDomain.BookingRepository
	items     itemDomain.ItemRepository
	users     userDomain.UserRepository
	publisher EventPublisher
	logger    *zap.Logger
	now       Clock
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	items itemDomain.ItemRepository,
	users userDomain.UserRepository,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		items:     items,
		users:     users,
		publisher: publisher,
		logger:    logger,
		now:       systemClock,
	}
}

// WithClock replaces the clock used to evaluate view states.
func (s *BookingService) WithClock(clock Clock) *BookingService {
	s.now = clock
	return s
}

// CreateBooking creates a WAITING booking of an item for the actor.
// Overlapping requests for the same item are accepted.
func (s *BookingService) CreateBooking(ctx context.Context, actorID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	if err := bookingDomain.ValidateRange(req.Start, req.End); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, actorID); err != nil {
		return nil, err
	}

	item, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.IsAvailable() {
		return nil, bookingDomain.ErrItemUnavailable.WithMessagef("item %s is not available for booking", item.ID())
	}

	bk, err := bookingDomain.NewBooking(item.ID(), item.OwnerID(), actorID, req.Start, req.End)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.logger.Info("booking requested",
		zap.String("booking_id", bk.ID().String()),
		zap.String("item_id", bk.ItemID().String()),
		zap.String("booker_id", actorID.String()),
	)
	metrics.IncBookingStatus(bk.Status().String())

	publishEvent(ctx, s.publisher, s.logger, TopicBookingEvents, BookingRequested, bk.ID().String(), BookingRequestedEvent{
		BookingID:   bk.ID(),
		ItemID:      bk.ItemID(),
		ItemOwnerID: bk.ItemOwnerID(),
		BookerID:    bk.BookerID(),
		Start:       bk.Start(),
		End:         bk.End(),
		OccurredAt:  time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// ApproveReject applies the item owner's decision to a WAITING booking.
func (s *BookingService) ApproveReject(ctx context.Context, actorID, bookingID uuid.UUID, approve bool) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsOwnedBy(actorID) {
		return nil, bookingDomain.ErrNotOwner.WithMessagef("user %s is not the owner of item %s", actorID, bk.ItemID())
	}
	if err := s.requireUser(ctx, actorID); err != nil {
		return nil, err
	}

	if err := bk.Decide(approve); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		if errors.Is(err, bookingDomain.ErrStaleBooking) {
			return nil, bookingDomain.ErrNotWaiting.WithMessagef("booking %s was decided concurrently", bk.ID())
		}
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	s.logger.Info("booking decided",
		zap.String("booking_id", bk.ID().String()),
		zap.String("status", bk.Status().String()),
		zap.String("owner_id", actorID.String()),
	)
	metrics.IncBookingStatus(bk.Status().String())

	eventType := BookingRejected
	if approve {
		eventType = BookingApproved
	}
	publishEvent(ctx, s.publisher, s.logger, TopicBookingEvents, eventType, bk.ID().String(), BookingDecidedEvent{
		BookingID:  bk.ID(),
		ItemID:     bk.ItemID(),
		BookerID:   bk.BookerID(),
		DecidedBy:  actorID,
		Status:     bk.Status().String(),
		OccurredAt: time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking returns a booking visible to the actor: its booker or the item owner.
func (s *BookingService) GetBooking(ctx context.Context, actorID, bookingID uuid.UUID) (*BookingDTO, error) {
	if err := s.requireUser(ctx, actorID); err != nil {
		return nil, err
	}
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsVisibleTo(actorID) {
		return nil, bookingDomain.ErrForbidden.WithMessagef("user %s has no rights to see booking %s", actorID, bookingID)
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListForBooker returns the actor's own bookings in the given view state, newest start first.
func (s *BookingService) ListForBooker(ctx context.Context, actorID uuid.UUID, state bookingDomain.ViewState) ([]BookingDTO, error) {
	if err := s.requireUser(ctx, actorID); err != nil {
		return nil, err
	}
	bookings, err := s.repo.FindByBooker(ctx, actorID, state.Criteria(s.now()))
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(bookings), nil
}

// ListForOwner returns bookings of items the actor owns in the given view state.
func (s *BookingService) ListForOwner(ctx context.Context, actorID uuid.UUID, state bookingDomain.ViewState) ([]BookingDTO, error) {
	if err := s.requireUser(ctx, actorID); err != nil {
		return nil, err
	}
	bookings, err := s.repo.FindByItemOwner(ctx, actorID, state.Criteria(s.now()))
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(bookings), nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// GetBookingStats returns booking counts per status, zero-filled for every known status (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	byStatus := make(map[string]int64, len(bookingDomain.AllStatuses))
	for _, st := range bookingDomain.AllStatuses {
		byStatus[st.String()] = 0
	}
	var total int64
	for status, c := range counts {
		byStatus[status] = c
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      byStatus,
	}, nil
}

// --- Helpers ---

func (s *BookingService) requireUser(ctx context.Context, userID uuid.UUID) error {
	return requireUser(ctx, s.users, userID)
}

func requireUser(ctx context.Context, users userDomain.UserRepository, userID uuid.UUID) error {
	ok, err := users.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !ok {
		return bookingDomain.ErrActorNotFound.WithMessagef("user %s not found", userID)
	}
	return nil
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:          bk.ID(),
		ItemID:      bk.ItemID(),
		ItemOwnerID: bk.ItemOwnerID(),
		BookerID:    bk.BookerID(),
		Start:       bk.Start(),
		End:         bk.End(),
		Status:      string(bk.Status()),
		Version:     bk.Version(),
		CreatedAt:   bk.CreatedAt(),
		UpdatedAt:   bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}
