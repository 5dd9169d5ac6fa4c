package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	commentDomain "github.com/shareit/service-booking/internal/domain/comment"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
)

// MemoryStore keeps users, items, bookings and comments in process memory.
// It backs local runs with BOOKING_STORE=memory and the service tests.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]*userDomain.User
	items    map[uuid.UUID]*itemDomain.Item
	bookings map[uuid.UUID]bookingRecord
	comments map[uuid.UUID][]*commentDomain.Comment // itemID -> comments

	Bookings *MemoryBookingRepository
	Items    *MemoryItemRepository
	Users    *MemoryUserRepository
	Comments *MemoryCommentRepository
}

// bookingRecord is the stored row; the item owner is resolved on read.
type bookingRecord struct {
	id        uuid.UUID
	itemID    uuid.UUID
	bookerID  uuid.UUID
	start     time.Time
	end       time.Time
	status    bookingDomain.BookingStatus
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		users:    make(map[uuid.UUID]*userDomain.User),
		items:    make(map[uuid.UUID]*itemDomain.Item),
		bookings: make(map[uuid.UUID]bookingRecord),
		comments: make(map[uuid.UUID][]*commentDomain.Comment),
	}
	s.Bookings = &MemoryBookingRepository{s: s}
	s.Items = &MemoryItemRepository{s: s}
	s.Users = &MemoryUserRepository{s: s}
	s.Comments = &MemoryCommentRepository{s: s}
	return s
}

// load rebuilds a domain booking; callers hold at least the read lock.
func (s *MemoryStore) load(rec bookingRecord) *bookingDomain.Booking {
	var ownerID uuid.UUID
	if it, ok := s.items[rec.itemID]; ok {
		ownerID = it.OwnerID()
	}
	return bookingDomain.ReconstructBooking(rec.id, rec.itemID, ownerID, rec.bookerID,
		rec.start, rec.end, rec.status, rec.version, rec.createdAt, rec.updatedAt)
}

// --- Bookings ---

// MemoryBookingRepository implements BookingRepository on a MemoryStore.
type MemoryBookingRepository struct {
	s *MemoryStore
}

// FindByID returns the booking or ErrBookingNotFound.
func (r *MemoryBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.bookings[id]
	if !ok {
		return nil, bookingDomain.ErrBookingNotFound.WithMessagef("booking %s not found", id)
	}
	return r.s.load(rec), nil
}

// FindByBooker lists the booker's bookings matching c, newest start first.
func (r *MemoryBookingRepository) FindByBooker(ctx context.Context, bookerID uuid.UUID, c bookingDomain.Criteria) ([]*bookingDomain.Booking, error) {
	return r.filter(func(b *bookingDomain.Booking) bool {
		return b.BookerID() == bookerID && c.Matches(b)
	}), nil
}

// FindByItemOwner lists bookings of the owner's items matching c, newest start first.
func (r *MemoryBookingRepository) FindByItemOwner(ctx context.Context, ownerID uuid.UUID, c bookingDomain.Criteria) ([]*bookingDomain.Booking, error) {
	return r.filter(func(b *bookingDomain.Booking) bool {
		return b.ItemOwnerID() == ownerID && c.Matches(b)
	}), nil
}

func (r *MemoryBookingRepository) filter(keep func(*bookingDomain.Booking) bool) []*bookingDomain.Booking {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*bookingDomain.Booking, 0)
	for _, rec := range r.s.bookings {
		if b := r.s.load(rec); keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return bookingDomain.Less(out[i], out[j]) })
	return out
}

// LastEndBefore returns the latest approved end before asOf, or nil.
func (r *MemoryBookingRepository) LastEndBefore(ctx context.Context, itemID uuid.UUID, asOf time.Time) (*time.Time, error) {
	last, err := r.LastEndsBefore(ctx, []uuid.UUID{itemID}, asOf)
	if err != nil {
		return nil, err
	}
	return instantOf(last, itemID), nil
}

// NextStartAfter returns the earliest approved start after asOf, or nil.
func (r *MemoryBookingRepository) NextStartAfter(ctx context.Context, itemID uuid.UUID, asOf time.Time) (*time.Time, error) {
	next, err := r.NextStartsAfter(ctx, []uuid.UUID{itemID}, asOf)
	if err != nil {
		return nil, err
	}
	return instantOf(next, itemID), nil
}

// LastEndsBefore is LastEndBefore for several items at once.
func (r *MemoryBookingRepository) LastEndsBefore(ctx context.Context, itemIDs []uuid.UUID, asOf time.Time) (map[uuid.UUID]time.Time, error) {
	return r.aggregate(itemIDs, func(rec bookingRecord, cur time.Time, seen bool) (time.Time, bool) {
		if !rec.end.Before(asOf) {
			return cur, seen
		}
		if !seen || rec.end.After(cur) {
			return rec.end, true
		}
		return cur, true
	}), nil
}

// NextStartsAfter is NextStartAfter for several items at once.
func (r *MemoryBookingRepository) NextStartsAfter(ctx context.Context, itemIDs []uuid.UUID, asOf time.Time) (map[uuid.UUID]time.Time, error) {
	return r.aggregate(itemIDs, func(rec bookingRecord, cur time.Time, seen bool) (time.Time, bool) {
		if !rec.start.After(asOf) {
			return cur, seen
		}
		if !seen || rec.start.Before(cur) {
			return rec.start, true
		}
		return cur, true
	}), nil
}

// aggregate folds every booking of the wanted items with step, one value per item.
func (r *MemoryBookingRepository) aggregate(itemIDs []uuid.UUID, step func(rec bookingRecord, cur time.Time, seen bool) (time.Time, bool)) map[uuid.UUID]time.Time {
	out := make(map[uuid.UUID]time.Time)
	if len(itemIDs) == 0 {
		return out
	}
	wanted := make(map[uuid.UUID]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rec := range r.s.bookings {
		if _, ok := wanted[rec.itemID]; !ok {
			continue
		}
		cur, seen := out[rec.itemID]
		if v, ok := step(rec, cur, seen); ok {
			out[rec.itemID] = v
		}
	}
	return out
}

// ExistsFinishedApproved reports whether the booker has an approved booking of the item that ended before asOf.
func (r *MemoryBookingRepository) ExistsFinishedApproved(ctx context.Context, bookerID, itemID uuid.UUID, asOf time.Time) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rec := range r.s.bookings {
		if rec.bookerID == bookerID && rec.itemID == itemID &&
			rec.status == bookingDomain.StatusApproved && rec.end.Before(asOf) {
			return true, nil
		}
	}
	return false, nil
}

// CountByStatus counts bookings per status.
func (r *MemoryBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, rec := range r.s.bookings {
		counts[string(rec.status)]++
	}
	return counts, nil
}

// Save stores a new booking.
func (r *MemoryBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.bookings[bk.ID()] = recordOf(bk)
	return nil
}

// Update applies the same version check as the SQL store.
func (r *MemoryBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.bookings[bk.ID()]
	if !ok || cur.version != bk.Version()-1 {
		return bookingDomain.ErrStaleBooking.WithMessagef("booking %s was modified by another transaction", bk.ID())
	}
	r.s.bookings[bk.ID()] = recordOf(bk)
	return nil
}

func recordOf(bk *bookingDomain.Booking) bookingRecord {
	return bookingRecord{
		id:        bk.ID(),
		itemID:    bk.ItemID(),
		bookerID:  bk.BookerID(),
		start:     bk.Start(),
		end:       bk.End(),
		status:    bk.Status(),
		version:   bk.Version(),
		createdAt: bk.CreatedAt(),
		updatedAt: bk.UpdatedAt(),
	}
}

func instantOf(m map[uuid.UUID]time.Time, id uuid.UUID) *time.Time {
	v, ok := m[id]
	if !ok {
		return nil
	}
	return &v
}

// --- Items ---

// MemoryItemRepository implements ItemRepository on a MemoryStore.
type MemoryItemRepository struct {
	s *MemoryStore
}

// FindByID returns the item or ErrItemNotFound.
func (r *MemoryItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*itemDomain.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	it, ok := r.s.items[id]
	if !ok {
		return nil, bookingDomain.ErrItemNotFound.WithMessagef("item %s not found", id)
	}
	return it, nil
}

// FindByOwnerID returns the owner's items ordered by name.
func (r *MemoryItemRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*itemDomain.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*itemDomain.Item, 0)
	for _, it := range r.s.items {
		if it.IsOwnedBy(ownerID) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name() != out[j].Name() {
			return out[i].Name() < out[j].Name()
		}
		return out[i].ID().String() < out[j].ID().String()
	})
	return out, nil
}

// Upsert stores the item, replacing any previous version.
func (r *MemoryItemRepository) Upsert(ctx context.Context, it *itemDomain.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.items[it.ID()] = it
	return nil
}

// Delete removes the item if present.
func (r *MemoryItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.items, id)
	return nil
}

// --- Users ---

// MemoryUserRepository implements UserRepository on a MemoryStore.
type MemoryUserRepository struct {
	s *MemoryStore
}

// FindByID returns the user or ErrActorNotFound.
func (r *MemoryUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, bookingDomain.ErrActorNotFound.WithMessagef("user %s not found", id)
	}
	return u, nil
}

// Exists reports whether the user is projected.
func (r *MemoryUserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.users[id]
	return ok, nil
}

// Upsert stores the user, replacing any previous version.
func (r *MemoryUserRepository) Upsert(ctx context.Context, u *userDomain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.users[u.ID()] = u
	return nil
}

// Delete removes the user if present.
func (r *MemoryUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.users, id)
	return nil
}

// --- Comments ---

// MemoryCommentRepository implements CommentRepository on a MemoryStore.
type MemoryCommentRepository struct {
	s *MemoryStore
}

// Save appends a comment.
func (r *MemoryCommentRepository) Save(ctx context.Context, c *commentDomain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.comments[c.ItemID()] = append(r.s.comments[c.ItemID()], c)
	return nil
}

// FindByItemID returns the item's comments oldest first.
func (r *MemoryCommentRepository) FindByItemID(ctx context.Context, itemID uuid.UUID) ([]*commentDomain.Comment, error) {
	byItem, err := r.FindByItemIDs(ctx, []uuid.UUID{itemID})
	if err != nil {
		return nil, err
	}
	return byItem[itemID], nil
}

// FindByItemIDs groups the comments of several items by item id.
func (r *MemoryCommentRepository) FindByItemIDs(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID][]*commentDomain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[uuid.UUID][]*commentDomain.Comment)
	for _, id := range itemIDs {
		if list := r.s.comments[id]; len(list) > 0 {
			out[id] = append([]*commentDomain.Comment(nil), list...)
		}
	}
	return out, nil
}
