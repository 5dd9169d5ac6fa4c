package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shareit/service-booking/internal/platform/kafka"
)

// EventSource is the CloudEvent source of everything this service publishes.
const EventSource = "service-booking"

// Topics.
const (
	TopicBookingEvents = "booking.events"
	TopicUserEvents    = "user.events"
	TopicItemEvents    = "item.events"
)

// Event types produced on booking.events.
const (
	BookingRequested = "booking.requested"
	BookingApproved  = "booking.approved"
	BookingRejected  = "booking.rejected"
	CommentAdded     = "comment.added"
)

// Event types consumed from the catalog topics.
const (
	UserUpserted = "user.upserted"
	UserDeleted  = "user.deleted"
	ItemUpserted = "item.upserted"
	ItemDeleted  = "item.deleted"
)

// BookingRequestedEvent is published when a booking is created.
type BookingRequestedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	ItemID      uuid.UUID `json:"item_id"`
	ItemOwnerID uuid.UUID `json:"item_owner_id"`
	BookerID    uuid.UUID `json:"booker_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// BookingDecidedEvent is published when the owner approves or rejects a booking.
type BookingDecidedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ItemID     uuid.UUID `json:"item_id"`
	BookerID   uuid.UUID `json:"booker_id"`
	DecidedBy  uuid.UUID `json:"decided_by"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CommentAddedEvent is published when a comment is accepted.
type CommentAddedEvent struct {
	CommentID  uuid.UUID `json:"comment_id"`
	ItemID     uuid.UUID `json:"item_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UserUpsertedEvent carries a user created or changed by the account service.
type UserUpsertedEvent struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
}

// UserDeletedEvent carries a removed user.
type UserDeletedEvent struct {
	UserID uuid.UUID `json:"user_id"`
}

// ItemUpsertedEvent carries an item created or changed by the catalog service.
type ItemUpsertedEvent struct {
	ItemID      uuid.UUID `json:"item_id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Available   bool      `json:"available"`
}

// ItemDeletedEvent carries a removed item.
type ItemDeletedEvent struct {
	ItemID uuid.UUID `json:"item_id"`
}

// EventPublisher publishes CloudEvents. Implemented by kafka.Producer and kafka.NopProducer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, ce kafka.CloudEvent) error
}

// Clock returns the current instant. Services capture it once per call.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// publishEvent logs failures instead of returning them; the state change is already committed.
func publishEvent(ctx context.Context, pub EventPublisher, logger *zap.Logger, topic, eventType, key string, data any) {
	cloudEvent, err := kafka.NewCloudEvent(EventSource, eventType, data)
	if err != nil {
		logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := pub.PublishEvent(ctx, topic, key, cloudEvent); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
