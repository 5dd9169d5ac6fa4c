package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	commentDomain "github.com/shareit/service-booking/internal/domain/comment"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
	"github.com/shareit/service-booking/internal/platform/metrics"
)

// AddCommentRequest holds the text of a new comment.
type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// CommentDTO is the API response representation of a comment.
type CommentDTO struct {
	ID         uuid.UUID `json:"id"`
	ItemID     uuid.UUID `json:"item_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// CommentService handles item comment use cases.
type CommentService struct {
	bookings  bookingDomain.BookingRepository
	items     itemDomain.ItemRepository
	users     userDomain.UserRepository
	comments  commentDomain.CommentRepository
	publisher EventPublisher
	logger    *zap.Logger
	now       Clock
}

// NewCommentService creates a new CommentService.
func NewCommentService(
	bookings bookingDomain.BookingRepository,
	items itemDomain.ItemRepository,
	users userDomain.UserRepository,
	comments commentDomain.CommentRepository,
	publisher EventPublisher,
	logger *zap.Logger,
) *CommentService {
	return &CommentService{
		bookings:  bookings,
		items:     items,
		users:     users,
		comments:  comments,
		publisher: publisher,
		logger:    logger,
		now:       systemClock,
	}
}

// WithClock replaces the clock used by AddComment.
func (s *CommentService) WithClock(clock Clock) *CommentService {
	s.now = clock
	return s
}

// CanComment reports whether the actor has an APPROVED booking of the item that ended before asOf.
func (s *CommentService) CanComment(ctx context.Context, actorID, itemID uuid.UUID, asOf time.Time) (bool, error) {
	ok, err := s.bookings.ExistsFinishedApproved(ctx, actorID, itemID, asOf)
	if err != nil {
		return false, fmt.Errorf("failed to check comment eligibility: %w", err)
	}
	return ok, nil
}

// AddComment stores a comment by a renter who has finished an approved booking of the item.
func (s *CommentService) AddComment(ctx context.Context, actorID, itemID uuid.UUID, req AddCommentRequest) (*CommentDTO, error) {
	author, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.items.FindByID(ctx, itemID); err != nil {
		return nil, err
	}

	now := s.now()
	c, err := commentDomain.NewComment(itemID, actorID, author.Name(), req.Text, now)
	if err != nil {
		return nil, err
	}

	ok, err := s.CanComment(ctx, actorID, itemID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, commentDomain.ErrCommentNotAllowed.WithMessagef(
			"user %s has no finished approved booking of item %s", actorID, itemID)
	}

	if err := s.comments.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	s.logger.Info("comment added",
		zap.String("comment_id", c.ID().String()),
		zap.String("item_id", itemID.String()),
		zap.String("author_id", actorID.String()),
	)
	metrics.IncCommentAdded()

	publishEvent(ctx, s.publisher, s.logger, TopicBookingEvents, CommentAdded, itemID.String(), CommentAddedEvent{
		CommentID:  c.ID(),
		ItemID:     itemID,
		AuthorID:   actorID,
		OccurredAt: time.Now().UTC(),
	})

	dto := toCommentDTO(c)
	return &dto, nil
}

func toCommentDTO(c *commentDomain.Comment) CommentDTO {
	return CommentDTO{
		ID:         c.ID(),
		ItemID:     c.ItemID(),
		AuthorID:   c.AuthorID(),
		AuthorName: c.Author(),
		Text:       c.Text(),
		CreatedAt:  c.CreatedAt(),
	}
}

func toCommentDTOs(comments []*commentDomain.Comment) []CommentDTO {
	dtos := make([]CommentDTO, len(comments))
	for i, c := range comments {
		dtos[i] = toCommentDTO(c)
	}
	return dtos
}
