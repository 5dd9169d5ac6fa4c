package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
)

// AvailabilityService computes last and next booking windows per item.
// Every status counts, including WAITING and REJECTED.
type AvailabilityService struct {
	repo bookingDomain.BookingRepository
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(repo bookingDomain.BookingRepository) *AvailabilityService {
	return &AvailabilityService{repo: repo}
}

// LastBookingEnd returns the latest end before asOf among the item's bookings, or nil.
func (s *AvailabilityService) LastBookingEnd(ctx context.Context, itemID uuid.UUID, asOf time.Time) (*time.Time, error) {
	t, err := s.repo.LastEndBefore(ctx, itemID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to get last booking end: %w", err)
	}
	return t, nil
}

// NextBookingStart returns the earliest start after asOf among the item's bookings, or nil.
func (s *AvailabilityService) NextBookingStart(ctx context.Context, itemID uuid.UUID, asOf time.Time) (*time.Time, error) {
	t, err := s.repo.NextStartAfter(ctx, itemID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to get next booking start: %w", err)
	}
	return t, nil
}

// BatchLastBookingEnds is LastBookingEnd for many items in one query.
// Items without a qualifying booking are absent from the map.
func (s *AvailabilityService) BatchLastBookingEnds(ctx context.Context, itemIDs []uuid.UUID, asOf time.Time) (map[uuid.UUID]time.Time, error) {
	if len(itemIDs) == 0 {
		return map[uuid.UUID]time.Time{}, nil
	}
	m, err := s.repo.LastEndsBefore(ctx, itemIDs, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to get last booking ends: %w", err)
	}
	return m, nil
}

// BatchNextBookingStarts is NextBookingStart for many items in one query.
func (s *AvailabilityService) BatchNextBookingStarts(ctx context.Context, itemIDs []uuid.UUID, asOf time.Time) (map[uuid.UUID]time.Time, error) {
	if len(itemIDs) == 0 {
		return map[uuid.UUID]time.Time{}, nil
	}
	m, err := s.repo.NextStartsAfter(ctx, itemIDs, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to get next booking starts: %w", err)
	}
	return m, nil
}
