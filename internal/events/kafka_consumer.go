package events

import (
	"context"
	"errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shareit/service-booking/internal/application"
	"github.com/shareit/service-booking/internal/platform/apperr"
	"github.com/shareit/service-booking/internal/platform/kafka"
	"github.com/shareit/service-booking/internal/platform/metrics"
)

// Outcomes recorded per consumed event.
const (
	outcomeApplied   = "applied"
	outcomeIgnored   = "ignored"
	outcomeMalformed = "malformed"
	outcomeFailed    = "failed"
)

// CatalogEventConsumer keeps the user and item projections in sync with
// the account and catalog services.
type CatalogEventConsumer struct {
	consumer  *kafka.Consumer
	directory *application.DirectoryService
	logger    *zap.Logger
}

// NewCatalogEventConsumer creates a new CatalogEventConsumer.
func NewCatalogEventConsumer(
	brokers []string,
	groupID string,
	directory *application.DirectoryService,
	logger *zap.Logger,
) *CatalogEventConsumer {
	topics := []string{application.TopicUserEvents, application.TopicItemEvents}
	return &CatalogEventConsumer{
		consumer:  kafka.NewConsumer(brokers, groupID, topics, logger),
		directory: directory,
		logger:    logger,
	}
}

// Start begins consuming catalog events. This blocks until the context is cancelled.
func (c *CatalogEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *CatalogEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *CatalogEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	ce, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from catalog topic",
			zap.String("topic", msg.Topic),
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		metrics.IncCatalogEvent("unknown", outcomeMalformed)
		return nil // Don't retry malformed messages
	}

	err = c.apply(ctx, ce)
	switch {
	case errors.Is(err, errIgnored):
		c.logger.Debug("ignoring unhandled catalog event type", zap.String("type", ce.Type))
		metrics.IncCatalogEvent(ce.Type, outcomeIgnored)
		return nil
	case err == nil:
		metrics.IncCatalogEvent(ce.Type, outcomeApplied)
		return nil
	case apperr.IsBadRequest(err) || isDataError(err):
		c.logger.Error("dropping invalid catalog event",
			zap.String("type", ce.Type),
			zap.String("id", ce.ID),
			zap.Error(err),
		)
		metrics.IncCatalogEvent(ce.Type, outcomeMalformed)
		return nil
	default:
		c.logger.Error("failed to apply catalog event",
			zap.String("type", ce.Type),
			zap.String("id", ce.ID),
			zap.Error(err),
		)
		metrics.IncCatalogEvent(ce.Type, outcomeFailed)
		return err
	}
}

func (c *CatalogEventConsumer) apply(ctx context.Context, ce kafka.CloudEvent) error {
	switch ce.Type {
	case application.UserUpserted:
		var evt application.UserUpsertedEvent
		if err := ce.ParseData(&evt); err != nil {
			return dataError{err}
		}
		return c.directory.UpsertUser(ctx, evt)

	case application.UserDeleted:
		var evt application.UserDeletedEvent
		if err := ce.ParseData(&evt); err != nil {
			return dataError{err}
		}
		return c.directory.DeleteUser(ctx, evt.UserID)

	case application.ItemUpserted:
		var evt application.ItemUpsertedEvent
		if err := ce.ParseData(&evt); err != nil {
			return dataError{err}
		}
		return c.directory.UpsertItem(ctx, evt)

	case application.ItemDeleted:
		var evt application.ItemDeletedEvent
		if err := ce.ParseData(&evt); err != nil {
			return dataError{err}
		}
		return c.directory.DeleteItem(ctx, evt.ItemID)

	default:
		return errIgnored
	}
}
