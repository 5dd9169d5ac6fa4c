package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	commentDomain "github.com/shareit/service-booking/internal/domain/comment"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
)

// ItemDTO is an item view decorated with booking windows and comments.
// The windows are set only when the viewer owns the item.
type ItemDTO struct {
	ID               uuid.UUID    `json:"id"`
	OwnerID          uuid.UUID    `json:"owner_id"`
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	Available        bool         `json:"available"`
	LastBookingEnd   *time.Time   `json:"last_booking_end,omitempty"`
	NextBookingStart *time.Time   `json:"next_booking_start,omitempty"`
	Comments         []CommentDTO `json:"comments"`
}

// ItemService renders item views for display.
type ItemService struct {
	items        itemDomain.ItemRepository
	users        userDomain.UserRepository
	comments     commentDomain.CommentRepository
	availability *AvailabilityService
	logger       *zap.Logger
	now          Clock
}

// NewItemService creates a new ItemService.
func NewItemService(
	items itemDomain.ItemRepository,
	users userDomain.UserRepository,
	comments commentDomain.CommentRepository,
	availability *AvailabilityService,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{
		items:        items,
		users:        users,
		comments:     comments,
		availability: availability,
		logger:       logger,
		now:          systemClock,
	}
}

// WithClock replaces the clock used for booking windows.
func (s *ItemService) WithClock(clock Clock) *ItemService {
	s.now = clock
	return s
}

// GetItem returns one item. Booking windows are attached only for the owner.
func (s *ItemService) GetItem(ctx context.Context, actorID, itemID uuid.UUID) (*ItemDTO, error) {
	if err := requireUser(ctx, s.users, actorID); err != nil {
		return nil, err
	}
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	dto := toItemDTO(it, comments)

	if it.IsOwnedBy(actorID) {
		now := s.now()
		if dto.LastBookingEnd, err = s.availability.LastBookingEnd(ctx, itemID, now); err != nil {
			return nil, err
		}
		if dto.NextBookingStart, err = s.availability.NextBookingStart(ctx, itemID, now); err != nil {
			return nil, err
		}
	}
	return &dto, nil
}

// ListOwnerItems returns every item of the actor with booking windows, using one query per window kind.
func (s *ItemService) ListOwnerItems(ctx context.Context, actorID uuid.UUID) ([]ItemDTO, error) {
	if err := requireUser(ctx, s.users, actorID); err != nil {
		return nil, err
	}
	items, err := s.items.FindByOwnerID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ID()
	}

	now := s.now()
	lasts, err := s.availability.BatchLastBookingEnds(ctx, ids, now)
	if err != nil {
		return nil, err
	}
	nexts, err := s.availability.BatchNextBookingStarts(ctx, ids, now)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.FindByItemIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}

	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dto := toItemDTO(it, comments[it.ID()])
		if t, ok := lasts[it.ID()]; ok {
			dto.LastBookingEnd = &t
		}
		if t, ok := nexts[it.ID()]; ok {
			dto.NextBookingStart = &t
		}
		dtos[i] = dto
	}
	return dtos, nil
}

func toItemDTO(it *itemDomain.Item, comments []*commentDomain.Comment) ItemDTO {
	return ItemDTO{
		ID:          it.ID(),
		OwnerID:     it.OwnerID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.IsAvailable(),
		Comments:    toCommentDTOs(comments),
	}
}
