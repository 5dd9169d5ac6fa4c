package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
)

var t0 = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func seedItem(t *testing.T, s *MemoryStore, owner uuid.UUID) *itemDomain.Item {
	t.Helper()
	it, err := itemDomain.NewItem(uuid.New(), owner, "drill", "", true)
	require.NoError(t, err)
	require.NoError(t, s.Items.Upsert(context.Background(), it))
	return it
}

func seedBooking(t *testing.T, s *MemoryStore, it *itemDomain.Item, booker uuid.UUID, start, end time.Time, status bookingDomain.BookingStatus) *bookingDomain.Booking {
	t.Helper()
	b := bookingDomain.ReconstructBooking(uuid.New(), it.ID(), it.OwnerID(), booker, start, end, status, 1, t0, t0)
	require.NoError(t, s.Bookings.Save(context.Background(), b))
	return b
}

func TestMemoryBookings_ResolveItemOwner(t *testing.T) {
	s := NewMemoryStore()
	owner, booker := uuid.New(), uuid.New()
	it := seedItem(t, s, owner)
	b := seedBooking(t, s, it, booker, t0, t0.Add(day), bookingDomain.StatusWaiting)

	got, err := s.Bookings.FindByID(context.Background(), b.ID())
	require.NoError(t, err)
	assert.Equal(t, owner, got.ItemOwnerID())

	_, err = s.Bookings.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, bookingDomain.ErrBookingNotFound)
}

func TestMemoryBookings_ListOrderAndScope(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	owner, booker := uuid.New(), uuid.New()
	it := seedItem(t, s, owner)
	early := seedBooking(t, s, it, booker, t0, t0.Add(day), bookingDomain.StatusWaiting)
	late := seedBooking(t, s, it, booker, t0.Add(5*day), t0.Add(6*day), bookingDomain.StatusApproved)
	seedBooking(t, s, seedItem(t, s, uuid.New()), uuid.New(), t0, t0.Add(day), bookingDomain.StatusWaiting)

	byBooker, err := s.Bookings.FindByBooker(ctx, booker, bookingDomain.Criteria{})
	require.NoError(t, err)
	require.Len(t, byBooker, 2)
	assert.Equal(t, late.ID(), byBooker[0].ID())
	assert.Equal(t, early.ID(), byBooker[1].ID())

	byOwner, err := s.Bookings.FindByItemOwner(ctx, owner, bookingDomain.ViewWaiting.Criteria(t0))
	require.NoError(t, err)
	require.Len(t, byOwner, 1)
	assert.Equal(t, early.ID(), byOwner[0].ID())

	none, err := s.Bookings.FindByBooker(ctx, uuid.New(), bookingDomain.Criteria{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryBookings_Aggregates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	a := seedItem(t, s, uuid.New())
	b := seedItem(t, s, uuid.New())
	empty := seedItem(t, s, uuid.New())
	booker := uuid.New()
	asOf := t0.Add(10 * day)

	seedBooking(t, s, a, booker, t0, t0.Add(day), bookingDomain.StatusApproved)
	seedBooking(t, s, a, booker, t0.Add(2*day), t0.Add(3*day), bookingDomain.StatusRejected)
	seedBooking(t, s, a, booker, t0.Add(12*day), t0.Add(13*day), bookingDomain.StatusWaiting)
	seedBooking(t, s, a, booker, t0.Add(11*day), t0.Add(14*day), bookingDomain.StatusApproved)
	seedBooking(t, s, b, booker, t0.Add(9*day), t0.Add(11*day), bookingDomain.StatusApproved)

	last, err := s.Bookings.LastEndBefore(ctx, a.ID(), asOf)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, t0.Add(3*day), *last)

	next, err := s.Bookings.NextStartAfter(ctx, a.ID(), asOf)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, t0.Add(11*day), *next)

	ids := []uuid.UUID{a.ID(), b.ID(), empty.ID()}
	lasts, err := s.Bookings.LastEndsBefore(ctx, ids, asOf)
	require.NoError(t, err)
	nexts, err := s.Bookings.NextStartsAfter(ctx, ids, asOf)
	require.NoError(t, err)

	for _, id := range ids {
		single, err := s.Bookings.LastEndBefore(ctx, id, asOf)
		require.NoError(t, err)
		assert.Equal(t, single, instantOf(lasts, id))

		single, err = s.Bookings.NextStartAfter(ctx, id, asOf)
		require.NoError(t, err)
		assert.Equal(t, single, instantOf(nexts, id))
	}
	assert.NotContains(t, lasts, empty.ID())
	assert.NotContains(t, lasts, b.ID())
}

func TestMemoryBookings_UpdateVersionCheck(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	it := seedItem(t, s, uuid.New())
	seeded := seedBooking(t, s, it, uuid.New(), t0, t0.Add(day), bookingDomain.StatusWaiting)

	first, err := s.Bookings.FindByID(ctx, seeded.ID())
	require.NoError(t, err)
	second, err := s.Bookings.FindByID(ctx, seeded.ID())
	require.NoError(t, err)

	require.NoError(t, first.Decide(true))
	first.IncrementVersion()
	require.NoError(t, s.Bookings.Update(ctx, first))

	require.NoError(t, second.Decide(false))
	second.IncrementVersion()
	assert.ErrorIs(t, s.Bookings.Update(ctx, second), bookingDomain.ErrStaleBooking)

	stored, err := s.Bookings.FindByID(ctx, seeded.ID())
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusApproved, stored.Status())
}

func TestMemoryBookings_CountAndFinished(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	it := seedItem(t, s, uuid.New())
	booker := uuid.New()
	seedBooking(t, s, it, booker, t0, t0.Add(day), bookingDomain.StatusApproved)
	seedBooking(t, s, it, booker, t0, t0.Add(day), bookingDomain.StatusCanceled)

	counts, err := s.Bookings.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"APPROVED": 1, "CANCELED": 1}, counts)

	ok, err := s.Bookings.ExistsFinishedApproved(ctx, booker, it.ID(), t0.Add(2*day))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Bookings.ExistsFinishedApproved(ctx, booker, it.ID(), t0.Add(day))
	require.NoError(t, err)
	assert.False(t, ok)
}
