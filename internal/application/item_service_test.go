package application

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
)

func TestGetItem_WindowsOnlyForOwner(t *testing.T) {
	f := newFixture(t) // now = day 5
	owner, renter := f.user("owner"), f.user("renter")
	item := f.item(owner, true)
	f.seed(renter, item, onDay(1), onDay(2), bookingDomain.StatusApproved)
	f.seed(renter, item, onDay(3), onDay(4), bookingDomain.StatusRejected)
	f.seed(renter, item, onDay(7), onDay(8), bookingDomain.StatusWaiting)

	mine, err := f.items.GetItem(f.ctx, owner, item)
	require.NoError(t, err)
	require.NotNil(t, mine.LastBookingEnd)
	require.NotNil(t, mine.NextBookingStart)
	assert.True(t, mine.LastBookingEnd.Equal(onDay(4)), "any status counts")
	assert.True(t, mine.NextBookingStart.Equal(onDay(7)))
	assert.NotNil(t, mine.Comments)

	theirs, err := f.items.GetItem(f.ctx, renter, item)
	require.NoError(t, err)
	assert.Nil(t, theirs.LastBookingEnd)
	assert.Nil(t, theirs.NextBookingStart)

	_, err = f.items.GetItem(f.ctx, renter, uuid.New())
	assert.ErrorIs(t, err, bookingDomain.ErrItemNotFound)
	_, err = f.items.GetItem(f.ctx, uuid.New(), item)
	assert.ErrorIs(t, err, bookingDomain.ErrActorNotFound)
}

func TestGetItem_NoBookings(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")
	item := f.item(owner, true)

	dto, err := f.items.GetItem(f.ctx, owner, item)
	require.NoError(t, err)
	assert.Nil(t, dto.LastBookingEnd)
	assert.Nil(t, dto.NextBookingStart)
	assert.Empty(t, dto.Comments)
}

func TestListOwnerItems_MatchesSingleItemView(t *testing.T) {
	f := newFixture(t)
	owner, renter := f.user("owner"), f.user("renter")
	busy := f.item(owner, true)
	quiet := f.item(owner, false)
	f.item(f.user("someone"), true)

	f.seed(renter, busy, onDay(1), onDay(3), bookingDomain.StatusApproved)
	f.seed(renter, busy, onDay(2), onDay(4), bookingDomain.StatusCanceled)
	f.seed(renter, busy, onDay(6), onDay(9), bookingDomain.StatusWaiting)
	f.seed(renter, quiet, onDay(9), onDay(10), bookingDomain.StatusRejected)

	list, err := f.items.ListOwnerItems(f.ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)

	for _, dto := range list {
		single, err := f.items.GetItem(f.ctx, owner, dto.ID)
		require.NoError(t, err)
		assert.Equal(t, single.LastBookingEnd, dto.LastBookingEnd, dto.ID)
		assert.Equal(t, single.NextBookingStart, dto.NextBookingStart, dto.ID)
	}
}

func TestBatchAggregates_EmptyInput(t *testing.T) {
	f := newFixture(t)

	lasts, err := f.avail.BatchLastBookingEnds(f.ctx, nil, f.now)
	require.NoError(t, err)
	assert.Empty(t, lasts)

	nexts, err := f.avail.BatchNextBookingStarts(f.ctx, []uuid.UUID{}, f.now)
	require.NoError(t, err)
	assert.Empty(t, nexts)
}

func TestDirectoryService_Projections(t *testing.T) {
	f := newFixture(t)
	dir := NewDirectoryService(f.store.Users, f.store.Items, zap.NewNop())

	userID, itemID := uuid.New(), uuid.New()
	require.NoError(t, dir.UpsertUser(f.ctx, UserUpsertedEvent{UserID: userID, Name: "Ann", Email: "ann@example.com"}))
	require.NoError(t, dir.UpsertItem(f.ctx, ItemUpsertedEvent{ItemID: itemID, OwnerID: userID, Name: "ladder", Available: true}))

	it, err := f.store.Items.FindByID(f.ctx, itemID)
	require.NoError(t, err)
	assert.True(t, it.IsAvailable())

	// A later event overwrites the projection.
	require.NoError(t, dir.UpsertItem(f.ctx, ItemUpsertedEvent{ItemID: itemID, OwnerID: userID, Name: "ladder", Available: false}))
	it, err = f.store.Items.FindByID(f.ctx, itemID)
	require.NoError(t, err)
	assert.False(t, it.IsAvailable())

	_, err = f.bookings.CreateBooking(f.ctx, f.user("renter"), CreateBookingRequest{ItemID: itemID, Start: onDay(6), End: onDay(7)})
	assert.ErrorIs(t, err, bookingDomain.ErrItemUnavailable)

	require.NoError(t, dir.DeleteItem(f.ctx, itemID))
	_, err = f.store.Items.FindByID(f.ctx, itemID)
	assert.ErrorIs(t, err, bookingDomain.ErrItemNotFound)

	require.NoError(t, dir.DeleteUser(f.ctx, userID))
	exists, err := f.store.Users.Exists(f.ctx, userID)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Error(t, dir.UpsertItem(f.ctx, ItemUpsertedEvent{ItemID: uuid.New(), OwnerID: uuid.Nil, Name: "x"}))
}
