package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
	"github.com/shareit/service-booking/internal/platform/kafka"
	"github.com/shareit/service-booking/internal/repository"
)

const day = 24 * time.Hour

// day0 is midnight of "day 0"; fixtures speak in days relative to it.
var day0 = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

func onDay(n int) time.Time { return day0.Add(time.Duration(n) * day) }

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _, _ string, ce kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ce)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	store    *repository.MemoryStore
	pub      *recordingPublisher
	now      time.Time
	bookings *BookingService
	avail    *AvailabilityService
	comments *CommentService
	items    *ItemService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		store: repository.NewMemoryStore(),
		pub:   &recordingPublisher{},
		now:   onDay(5),
	}
	clock := func() time.Time { return f.now }
	log := zap.NewNop()

	f.avail = NewAvailabilityService(f.store.Bookings)
	f.bookings = NewBookingService(f.store.Bookings, f.store.Items, f.store.Users, f.pub, log).WithClock(clock)
	f.comments = NewCommentService(f.store.Bookings, f.store.Items, f.store.Users, f.store.Comments, f.pub, log).WithClock(clock)
	f.items = NewItemService(f.store.Items, f.store.Users, f.store.Comments, f.avail, log).WithClock(clock)
	return f
}

func (f *fixture) user(name string) uuid.UUID {
	f.t.Helper()
	u, err := userDomain.NewUser(uuid.New(), name, name+"@example.com")
	require.NoError(f.t, err)
	require.NoError(f.t, f.store.Users.Upsert(f.ctx, u))
	return u.ID()
}

func (f *fixture) item(owner uuid.UUID, available bool) uuid.UUID {
	f.t.Helper()
	it, err := itemDomain.NewItem(uuid.New(), owner, "drill", "cordless", available)
	require.NoError(f.t, err)
	require.NoError(f.t, f.store.Items.Upsert(f.ctx, it))
	return it.ID()
}

// book creates a booking through the service and returns its id.
func (f *fixture) book(booker, item uuid.UUID, start, end time.Time) uuid.UUID {
	f.t.Helper()
	dto, err := f.bookings.CreateBooking(f.ctx, booker, CreateBookingRequest{ItemID: item, Start: start, End: end})
	require.NoError(f.t, err)
	return dto.ID
}

// seed stores a booking directly with any status.
func (f *fixture) seed(booker, item uuid.UUID, start, end time.Time, status bookingDomain.BookingStatus) uuid.UUID {
	f.t.Helper()
	id := uuid.New()
	b := bookingDomain.ReconstructBooking(id, item, uuid.Nil, booker, start, end, status, 1, f.now, f.now)
	require.NoError(f.t, f.store.Bookings.Save(f.ctx, b))
	return id
}
