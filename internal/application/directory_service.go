package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
)

// DirectoryService maintains the local user and item projections.
type DirectoryService struct {
	users  userDomain.UserRepository
	items  itemDomain.ItemRepository
	logger *zap.Logger
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(users userDomain.UserRepository, items itemDomain.ItemRepository, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{users: users, items: items, logger: logger}
}

// UpsertUser validates and stores the published user.
func (s *DirectoryService) UpsertUser(ctx context.Context, evt UserUpsertedEvent) error {
	u, err := userDomain.NewUser(evt.UserID, evt.Name, evt.Email)
	if err != nil {
		return err
	}
	if err := s.users.Upsert(ctx, u); err != nil {
		return fmt.Errorf("failed to project user: %w", err)
	}
	s.logger.Debug("user projected", zap.String("user_id", evt.UserID.String()))
	return nil
}

// DeleteUser removes the user projection. Deleting an unknown user is not an error.
func (s *DirectoryService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user projection: %w", err)
	}
	s.logger.Debug("user projection removed", zap.String("user_id", userID.String()))
	return nil
}

// UpsertItem stores the item. Its availability flag is taken as published.
func (s *DirectoryService) UpsertItem(ctx context.Context, evt ItemUpsertedEvent) error {
	it, err := itemDomain.NewItem(evt.ItemID, evt.OwnerID, evt.Name, evt.Description, evt.Available)
	if err != nil {
		return err
	}
	if err := s.items.Upsert(ctx, it); err != nil {
		return fmt.Errorf("failed to project item: %w", err)
	}
	s.logger.Debug("item projected",
		zap.String("item_id", evt.ItemID.String()),
		zap.Bool("available", evt.Available),
	)
	return nil
}

// DeleteItem removes the item projection. Deleting an unknown item is not an error.
func (s *DirectoryService) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	if err := s.items.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete item projection: %w", err)
	}
	s.logger.Debug("item projection removed", zap.String("item_id", itemID.String()))
	return nil
}
