package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID    uuid.UUID `gorm:"type:uuid;index;not null"`
	BookerID  uuid.UUID `gorm:"type:uuid;index;not null"`
	StartAt   time.Time `gorm:"type:timestamptz;not null;index"`
	EndAt     time.Time `gorm:"type:timestamptz;not null;index"`
	Status    string    `gorm:"not null;size:20;index"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null"`

	// ItemOwnerID is read from the items projection.
	ItemOwnerID uuid.UUID `gorm:"->;-:migration"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) withOwner(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Select("bookings.*, items.owner_id AS item_owner_id").
		Joins("LEFT JOIN items ON items.id = bookings.item_id")
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.withOwner(ctx).Where("bookings.id = ?", id).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookingDomain.ErrBookingNotFound.WithMessagef("booking %s not found", id)
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByBooker lists the booker's bookings matching the criteria.
func (r *GormBookingRepository) FindByBooker(ctx context.Context, bookerID uuid.UUID, c bookingDomain.Criteria) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.withOwner(ctx).
		Where("bookings.booker_id = ?", bookerID).
		Scopes(criteriaScope(c), newestFirst).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find booker bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindByItemOwner lists bookings of the owner's items matching the criteria.
func (r *GormBookingRepository) FindByItemOwner(ctx context.Context, ownerID uuid.UUID, c bookingDomain.Criteria) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.withOwner(ctx).
		Where("items.owner_id = ?", ownerID).
		Scopes(criteriaScope(c), newestFirst).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner bookings: %w", err)
	}
	return toDomainBookings(models)
}

// LastEndBefore returns MAX(end_at) over the item's bookings ending before asOf, any status.
func (r *GormBookingRepository) LastEndBefore(ctx context.Context, itemID uuid.UUID, asOf time.Time) (*time.Time, error) {
	var last sql.NullTime
	row := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("MAX(end_at)").
		Where("item_id = ? AND end_at < ?", itemID, asOf).
		Row()
	if err := row.Scan(&last); err != nil {
		return nil, fmt.Errorf("failed to query last booking end: %w", err)
	}
	return nullTime(last), nil
}

// NextStartAfter returns MIN(start_at) over the item's bookings starting after asOf, any status.
func (r *GormBookingRepository) NextStartAfter(ctx context.Context, itemID uuid.UUID, asOf time.Time) (*time.Time, error) {
	var next sql.NullTime
	row := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("MIN(start_at)").
		Where("item_id = ? AND start_at > ?", itemID, asOf).
		Row()
	if err := row.Scan(&next); err != nil {
		return nil, fmt.Errorf("failed to query next booking start: %w", err)
	}
	return nullTime(next), nil
}

type itemInstant struct {
	ItemID uuid.UUID
	At     time.Time
}

// LastEndsBefore is the grouped form of LastEndBefore.
func (r *GormBookingRepository) LastEndsBefore(ctx context.Context, itemIDs []uuid.UUID, asOf time.Time) (map[uuid.UUID]time.Time, error) {
	if len(itemIDs) == 0 {
		return map[uuid.UUID]time.Time{}, nil
	}
	var rows []itemInstant
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("item_id, MAX(end_at) AS at").
		Where("item_id IN ? AND end_at < ?", itemIDs, asOf).
		Group("item_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query last booking ends: %w", err)
	}
	return instantsByItem(rows), nil
}

// NextStartsAfter is the grouped form of NextStartAfter.
func (r *GormBookingRepository) NextStartsAfter(ctx context.Context, itemIDs []uuid.UUID, asOf time.Time) (map[uuid.UUID]time.Time, error) {
	if len(itemIDs) == 0 {
		return map[uuid.UUID]time.Time{}, nil
	}
	var rows []itemInstant
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("item_id, MIN(start_at) AS at").
		Where("item_id IN ? AND start_at > ?", itemIDs, asOf).
		Group("item_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query next booking starts: %w", err)
	}
	return instantsByItem(rows), nil
}

// ExistsFinishedApproved reports whether the booker has an APPROVED booking of the item ending before asOf.
func (r *GormBookingRepository) ExistsFinishedApproved(ctx context.Context, bookerID, itemID uuid.UUID, asOf time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("booker_id = ? AND item_id = ? AND status = ? AND end_at < ?",
			bookerID, itemID, string(bookingDomain.StatusApproved), asOf).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return count > 0, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(bk)).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	// The caller has already called IncrementVersion.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", bk.ID(), expectedVersion).
		Updates(map[string]interface{}{
			"status":     string(bk.Status()),
			"version":    bk.Version(),
			"updated_at": bk.UpdatedAt(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return bookingDomain.ErrStaleBooking.WithMessagef("booking %s was modified by another transaction", bk.ID())
	}

	return nil
}

// criteriaScope translates a domain criteria into WHERE clauses.
func criteriaScope(c bookingDomain.Criteria) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if c.Status != "" {
			db = db.Where("bookings.status = ?", string(c.Status))
		}
		if c.StartAtMost != nil {
			db = db.Where("bookings.start_at <= ?", *c.StartAtMost)
		}
		if c.EndAtLeast != nil {
			db = db.Where("bookings.end_at >= ?", *c.EndAtLeast)
		}
		if c.EndBefore != nil {
			db = db.Where("bookings.end_at < ?", *c.EndBefore)
		}
		if c.StartAfter != nil {
			db = db.Where("bookings.start_at > ?", *c.StartAfter)
		}
		return db
	}
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("bookings.start_at DESC").Order("bookings.id DESC")
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:        bk.ID(),
		ItemID:    bk.ItemID(),
		BookerID:  bk.BookerID(),
		StartAt:   bk.Start(),
		EndAt:     bk.End(),
		Status:    string(bk.Status()),
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.ItemID,
		m.ItemOwnerID,
		m.BookerID,
		m.StartAt.UTC(),
		m.EndAt.UTC(),
		status,
		m.Version,
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func instantsByItem(rows []itemInstant) map[uuid.UUID]time.Time {
	out := make(map[uuid.UUID]time.Time, len(rows))
	for _, row := range rows {
		out[row.ItemID] = row.At.UTC()
	}
	return out
}
