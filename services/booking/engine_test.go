package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingRepo "zeena/database/repository/booking"
	providerRepo "zeena/database/repository/provider"
	"zeena/models"
	"zeena/services/notification"
)

// memBookingRepo implements the repository contract in memory with the same
// atomicity guarantees the mongo implementation gives: one mutex guards every
// write, so overlap checks and inserts are a single unit.
type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: map[string]*models.Booking{}}
}

func (r *memBookingRepo) overlappingLocked(b *models.Booking) []string {
	var ids []string
	for _, existing := range r.bookings {
		if existing.ProviderID != b.ProviderID || existing.Date != b.Date {
			continue
		}
		if existing.Status.IsTerminal() || existing.ID == b.ID {
			continue
		}
		if existing.Interval().Overlaps(b.Interval()) {
			ids = append(ids, existing.ID)
		}
	}
	return ids
}

func (r *memBookingRepo) CreateIfFree(ctx context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if blocking := r.overlappingLocked(b); len(blocking) > 0 {
		return &bookingRepo.OverlapError{BlockingIDs: blocking}
	}
	clone := *b
	r.bookings[b.ID] = &clone
	return nil
}

func (r *memBookingRepo) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	if b.Status != from {
		return nil, bookingRepo.ErrStaleStatus
	}
	b.Status = to
	b.Version++
	b.UpdatedAt = time.Now()
	clone := *b
	return &clone, nil
}

func (r *memBookingRepo) Reschedule(ctx context.Context, oldID string, oldStatus models.BookingStatus, replacement *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.bookings[oldID]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if old.Status != oldStatus {
		return bookingRepo.ErrStaleStatus
	}
	if blocking := r.overlappingLocked(replacement); len(blocking) > 0 {
		return &bookingRepo.OverlapError{BlockingIDs: blocking}
	}
	old.Status = models.StatusCancelled
	old.Version++
	clone := *replacement
	r.bookings[replacement.ID] = &clone
	return nil
}

func (r *memBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *memBookingRepo) ListActive(ctx context.Context, providerID, date string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.ProviderID == providerID && b.Date == date && !b.Status.IsTerminal() {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) ListByProviderDate(ctx context.Context, providerID, date string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.ProviderID == providerID && b.Date == date {
			out = append(out, *b)
		}
	}
	return out, nil
}

type memProviderRepo struct {
	providers map[string]*models.Provider
}

func (r *memProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, providerRepo.ErrNotFound
	}
	return p, nil
}

type recordingDispatcher struct {
	mu        sync.Mutex
	events    []notification.Event
	reminders []time.Time
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, ev notification.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
}

func (d *recordingDispatcher) ScheduleReminder(ctx context.Context, ev notification.Event, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reminders = append(d.reminders, at)
}

func (d *recordingDispatcher) reminderTimes() []time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]time.Time(nil), d.reminders...)
}

func (d *recordingDispatcher) types() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, ev := range d.events {
		out = append(out, ev.Type)
	}
	return out
}

func newTestEngine(t *testing.T) (*DefaultBookingEngine, *memBookingRepo, *recordingDispatcher) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kuwait")
	require.NoError(t, err)

	repo := newMemBookingRepo()
	dispatcher := &recordingDispatcher{}
	engine := &DefaultBookingEngine{
		Bookings:  repo,
		Providers: &memProviderRepo{providers: map[string]*models.Provider{"prov-1": testProvider()}},
		Fees:      testFees(),
		Policy: Policy{
			DefaultMinNoticeHours: 2,
			DefaultMaxAdvanceDays: 90,
			Location:              loc,
			// A fixed morning clock keeps every monday slot bookable.
			Now: func() time.Time { return time.Date(2025, 11, 3, 6, 0, 0, 0, loc) },
		},
		GranularityMin: 30,
		Events:         dispatcher,
	}
	return engine, repo, dispatcher
}

func createRequest() models.CreateBookingRequest {
	return models.CreateBookingRequest{
		ProviderID: "prov-1",
		ServiceID:  "svc-1",
		CustomerID: "cust-1",
		Date:       monday,
		StartTime:  "10:00",
	}
}

func TestCreateBooking(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	b, err := engine.CreateBooking(ctx, createRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, models.StatusPending, b.Status)
	assert.Equal(t, 600, b.Start)
	assert.Equal(t, 660, b.End)
	assert.Equal(t, int64(20000), b.TotalAmount.Fils())
	assert.Equal(t, int64(1000), b.PlatformFee.Fils())
	assert.Equal(t, int64(19000), b.ProviderEarnings.Fils())
	assert.Equal(t, int64(1), b.Version)
}

func TestCreateBookingRejectsBadSlots(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	var verr *ValidationError

	req := createRequest()
	req.StartTime = "10:15" // off the 30-minute grid
	_, err := engine.CreateBooking(ctx, req)
	assert.ErrorAs(t, err, &verr)

	req = createRequest()
	req.StartTime = "12:30" // 60 min service would spill past the 13:00 close
	_, err = engine.CreateBooking(ctx, req)
	assert.ErrorAs(t, err, &verr)

	req = createRequest()
	req.Date = tuesday // closed day
	_, err = engine.CreateBooking(ctx, req)
	assert.ErrorAs(t, err, &verr)

	req = createRequest()
	req.ServiceID = "svc-nope"
	_, err = engine.CreateBooking(ctx, req)
	var nferr *NotFoundError
	assert.ErrorAs(t, err, &nferr)
}

func TestCreateBookingConflict(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	first, err := engine.CreateBooking(ctx, createRequest())
	require.NoError(t, err)

	// Same slot again, different customer.
	req := createRequest()
	req.CustomerID = "cust-2"
	_, err = engine.CreateBooking(ctx, req)

	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []string{first.ID}, cerr.BlockingIDs)

	// An overlapping (not identical) slot conflicts too.
	req.StartTime = "10:30"
	_, err = engine.CreateBooking(ctx, req)
	assert.ErrorAs(t, err, &cerr)

	// A back-to-back slot does not.
	req.StartTime = "11:00"
	_, err = engine.CreateBooking(ctx, req)
	assert.NoError(t, err)
}

// Two racing requests for overlapping slots: exactly one commit survives.
func TestCreateBookingRace(t *testing.T) {
	engine, repo, _ := newTestEngine(t)
	ctx := context.Background()

	const racers = 16
	var wg sync.WaitGroup
	results := make(chan error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			req := createRequest()
			req.CustomerID = string(rune('a' + n))
			_, err := engine.CreateBooking(ctx, req)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		default:
			var cerr *ConflictError
			require.ErrorAs(t, err, &cerr)
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, racers-1, conflicts)

	active, err := repo.ListActive(ctx, "prov-1", monday)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

// Staggered variant: the racing requests ask for distinct start keys whose
// intervals still overlap, so exact-duplicate detection alone cannot save
// the invariant; the committer's overlap check has to.
func TestCreateBookingRaceStaggeredStarts(t *testing.T) {
	engine, repo, _ := newTestEngine(t)
	ctx := context.Background()

	starts := []string{"10:00", "10:30"}
	var wg sync.WaitGroup
	results := make(chan error, len(starts))

	for i, startTime := range starts {
		wg.Add(1)
		go func(n int, st string) {
			defer wg.Done()
			req := createRequest()
			req.CustomerID = string(rune('a' + n))
			req.StartTime = st
			_, err := engine.CreateBooking(ctx, req)
			results <- err
		}(i, startTime)
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		var cerr *ConflictError
		require.ErrorAs(t, err, &cerr)
		assert.NotEmpty(t, cerr.BlockingIDs)
	}
	assert.Equal(t, 1, wins)

	active, err := repo.ListActive(ctx, "prov-1", monday)
	require.NoError(t, err)
	require.Len(t, active, 1)
}

func TestCreateBookingSchedulesReminder(t *testing.T) {
	engine, _, dispatcher := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.CreateBooking(ctx, createRequest())
	require.NoError(t, err)

	// Reminder fires one notice window (2h) before the 10:00 start.
	loc := engine.Policy.Location
	want := time.Date(2025, 11, 3, 8, 0, 0, 0, loc)
	assert.Eventually(t, func() bool {
		times := dispatcher.reminderTimes()
		return len(times) == 1 && times[0].Equal(want)
	}, time.Second, 10*time.Millisecond)
}

func TestLifecycleTransitions(t *testing.T) {
	engine, _, dispatcher := newTestEngine(t)
	ctx := context.Background()

	b, err := engine.CreateBooking(ctx, createRequest())
	require.NoError(t, err)

	confirmed, err := engine.ConfirmBooking(ctx, b.ID, "prov-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)
	assert.Equal(t, int64(2), confirmed.Version)

	// Completing twice: the second attempt sees the terminal state.
	done, err := engine.CompleteBooking(ctx, b.ID, "prov-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)

	_, err = engine.CompleteBooking(ctx, b.ID, "prov-1")
	var terr *InvalidTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "completed", terr.From)

	// emit runs on a detached goroutine; give it a beat.
	assert.Eventually(t, func() bool {
		return len(dispatcher.types()) == 3
	}, time.Second, 10*time.Millisecond)
}

func TestTransitionOwnership(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	b, err := engine.CreateBooking(ctx, createRequest())
	require.NoError(t, err)

	// A different provider acting on the booking reads as not-found.
	var nferr *NotFoundError
	_, err = engine.ConfirmBooking(ctx, b.ID, "prov-other")
	assert.ErrorAs(t, err, &nferr)

	// Customers cannot confirm at all; only the provider owns that edge.
	_, err = engine.ConfirmBooking(ctx, b.ID, "cust-1")
	assert.ErrorAs(t, err, &nferr)

	// Either party may cancel their own booking.
	cancelled, err := engine.CancelBooking(ctx, b.ID, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
}

func TestCancelRespectsNotice(t *testing.T) {
	engine, repo, _ := newTestEngine(t)
	ctx := context.Background()

	b, err := engine.CreateBooking(ctx, createRequest())
	require.NoError(t, err)

	// Clock moves to one hour before the 10:00 start; 2h notice now blocks
	// cancellation.
	loc := engine.Policy.Location
	engine.Policy.Now = func() time.Time { return time.Date(2025, 11, 3, 9, 0, 0, 0, loc) }

	var perr *PolicyError
	_, err = engine.CancelBooking(ctx, b.ID, "cust-1")
	assert.ErrorAs(t, err, &perr)

	unchanged, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, unchanged.Status)

	// The provider can still record a no-show after the fact.
	_, err = engine.ConfirmBooking(ctx, b.ID, "prov-1")
	require.NoError(t, err)
	ns, err := engine.MarkNoShow(ctx, b.ID, "prov-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNoShow, ns.Status)
}

func TestRescheduleBooking(t *testing.T) {
	engine, repo, _ := newTestEngine(t)
	ctx := context.Background()

	old, err := engine.CreateBooking(ctx, createRequest())
	require.NoError(t, err)

	moved, err := engine.RescheduleBooking(ctx, old.ID, "cust-1", models.RescheduleRequest{
		NewDate:      monday,
		NewStartTime: "14:00",
	})
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, moved.ID)
	assert.Equal(t, 840, moved.Start)
	assert.Equal(t, models.StatusPending, moved.Status)

	stale, err := repo.GetByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stale.Status)
}

func TestRescheduleConflictLeavesOriginal(t *testing.T) {
	engine, repo, _ := newTestEngine(t)
	ctx := context.Background()

	old, err := engine.CreateBooking(ctx, createRequest())
	require.NoError(t, err)

	blocker := createRequest()
	blocker.CustomerID = "cust-2"
	blocker.StartTime = "14:00"
	blocking, err := engine.CreateBooking(ctx, blocker)
	require.NoError(t, err)

	var cerr *ConflictError
	_, err = engine.RescheduleBooking(ctx, old.ID, "cust-1", models.RescheduleRequest{
		NewDate:      monday,
		NewStartTime: "14:00",
	})
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []string{blocking.ID}, cerr.BlockingIDs)

	// Atomicity: the failed move didn't cancel the original.
	kept, err := repo.GetByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, kept.Status)

	// Only the booking's customer may move it.
	var nferr *NotFoundError
	_, err = engine.RescheduleBooking(ctx, old.ID, "cust-2", models.RescheduleRequest{
		NewDate:      monday,
		NewStartTime: "15:00",
	})
	assert.ErrorAs(t, err, &nferr)
}

func TestGetAvailableSlotsEndToEnd(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.CreateBooking(ctx, createRequest())
	require.NoError(t, err)

	day, err := engine.GetAvailableSlots(ctx, "prov-1", "svc-1", monday)
	require.NoError(t, err)
	assert.Equal(t, 60, day.DurationMin)
	assert.Len(t, day.Windows, 2)
	assert.Len(t, day.Slots, 14)

	var unavailable int
	for _, s := range day.Slots {
		if !s.Available {
			unavailable++
		}
	}
	// 09:30, 10:00 and 10:30 starts overlap the committed 10:00 booking.
	assert.Equal(t, 3, unavailable)
}

func TestGetAvailableSlotsIdempotent(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.CreateBooking(ctx, createRequest())
	require.NoError(t, err)

	first, err := engine.GetAvailableSlots(ctx, "prov-1", "svc-1", monday)
	require.NoError(t, err)
	second, err := engine.GetAvailableSlots(ctx, "prov-1", "svc-1", monday)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCheckAvailability(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	b, err := engine.CreateBooking(ctx, createRequest())
	require.NoError(t, err)

	res, err := engine.CheckAvailability(ctx, models.CheckAvailabilityRequest{
		ProviderID: "prov-1", ServiceID: "svc-1", Date: monday, StartTime: "10:30",
	})
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, []string{b.ID}, res.ConflictingBookings)

	res, err = engine.CheckAvailability(ctx, models.CheckAvailabilityRequest{
		ProviderID: "prov-1", ServiceID: "svc-1", Date: monday, StartTime: "11:00",
	})
	require.NoError(t, err)
	assert.True(t, res.Available)
}
