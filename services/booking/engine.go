package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "zeena/database/repository/booking"
	providerRepo "zeena/database/repository/provider"
	"zeena/models"
	"zeena/services/notification"
	"zeena/utils"
)

func (e *DefaultBookingEngine) GetAvailableSlots(ctx context.Context, providerID, serviceID, date string) (*models.DayAvailability, error) {
	if e.Cache != nil {
		if cached, ok := e.Cache.Get(ctx, providerID, serviceID, date); ok {
			return cached, nil
		}
	}

	provider, service, err := e.loadProviderService(ctx, providerID, serviceID)
	if err != nil {
		return nil, err
	}

	windows, err := ResolveWindows(provider, date)
	if err != nil {
		return nil, err
	}

	busy, err := e.Bookings.ListActive(ctx, providerID, date)
	if err != nil {
		return nil, &PersistenceError{Op: "list active bookings", Err: err}
	}

	day := &models.DayAvailability{
		ProviderID:  providerID,
		ServiceID:   serviceID,
		Date:        date,
		DurationMin: service.DurationMin,
		Windows:     windows,
		Slots:       GenerateSlots(windows, service.DurationMin, e.GranularityMin, busy),
	}

	if e.Cache != nil {
		e.Cache.Set(ctx, day)
	}
	return day, nil
}

func (e *DefaultBookingEngine) CheckAvailability(ctx context.Context, req models.CheckAvailabilityRequest) (*models.AvailabilityCheckResult, error) {
	provider, service, err := e.loadProviderService(ctx, req.ProviderID, req.ServiceID)
	if err != nil {
		return nil, err
	}

	slot, err := e.candidateSlot(provider, service, req.Date, req.StartTime)
	if err != nil {
		return nil, err
	}

	busy, err := e.Bookings.ListActive(ctx, req.ProviderID, req.Date)
	if err != nil {
		return nil, &PersistenceError{Op: "list active bookings", Err: err}
	}

	var blocking []string
	for i := range busy {
		if slot.Overlaps(busy[i].Interval()) {
			blocking = append(blocking, busy[i].ID)
		}
	}
	return &models.AvailabilityCheckResult{
		Available:           len(blocking) == 0,
		ConflictingBookings: blocking,
	}, nil
}

func (e *DefaultBookingEngine) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error) {
	provider, service, err := e.loadProviderService(ctx, req.ProviderID, req.ServiceID)
	if err != nil {
		return nil, err
	}

	// The read-path slot list the customer saw is advisory; everything is
	// re-validated here against a freshly resolved window.
	slot, err := e.candidateSlot(provider, service, req.Date, req.StartTime)
	if err != nil {
		return nil, err
	}

	if err := e.Policy.CheckAdvance(provider, req.Date); err != nil {
		return nil, err
	}
	if err := e.Policy.CheckNotice(provider, req.Date, slot.Start); err != nil {
		return nil, err
	}

	fees := e.Fees.Calculate(service.Price)
	b := &models.Booking{
		ID:               uuid.New().String(),
		ProviderID:       req.ProviderID,
		ServiceID:        req.ServiceID,
		CustomerID:       req.CustomerID,
		Date:             req.Date,
		Start:            slot.Start,
		End:              slot.End,
		Status:           models.StatusPending,
		TotalAmount:      fees.TotalAmount,
		PlatformFee:      fees.PlatformFee,
		ProviderEarnings: fees.ProviderEarnings,
		Notes:            req.Notes,
		Version:          1,
		CreatedAt:        time.Now(),
	}

	logger := utils.GetLogger()
	if err := e.Bookings.CreateIfFree(ctx, b); err != nil {
		var overlap *bookingRepo.OverlapError
		if errors.As(err, &overlap) {
			logger.Info("booking commit lost to existing booking",
				zap.String("providerId", b.ProviderID),
				zap.String("date", b.Date),
				zap.Strings("blockedBy", overlap.BlockingIDs))
			return nil, &ConflictError{
				Message:     "slot already booked",
				BlockingIDs: overlap.BlockingIDs,
			}
		}
		return nil, &PersistenceError{Op: "commit booking", Err: err}
	}
	logger.Info("booking committed",
		zap.String("bookingId", b.ID),
		zap.String("providerId", b.ProviderID),
		zap.String("date", b.Date),
		zap.String("start", models.FormatMinutes(b.Start)))

	e.invalidate(ctx, b.ProviderID, b.Date)
	e.emit(notification.Event{
		Type:       notification.EventBookingCreated,
		BookingID:  b.ID,
		ProviderID: b.ProviderID,
		CustomerID: b.CustomerID,
		Date:       b.Date,
		Start:      b.Start,
	})
	e.scheduleReminder(provider, b)
	return b, nil
}

func (e *DefaultBookingEngine) ConfirmBooking(ctx context.Context, bookingID, providerID string) (*models.Booking, error) {
	b, err := e.ownedBooking(ctx, bookingID, providerID, actorProvider)
	if err != nil {
		return nil, err
	}
	return e.transition(ctx, b, models.StatusConfirmed, notification.EventBookingConfirmed)
}

func (e *DefaultBookingEngine) CancelBooking(ctx context.Context, bookingID, actorID string) (*models.Booking, error) {
	b, err := e.ownedBooking(ctx, bookingID, actorID, actorEither)
	if err != nil {
		return nil, err
	}

	if err := CheckTransition(b.Status, models.StatusCancelled); err != nil {
		return nil, err
	}

	provider, err := e.Providers.GetByID(ctx, b.ProviderID)
	if err != nil {
		return nil, e.mapProviderErr(err, b.ProviderID)
	}
	if err := e.Policy.CheckNotice(provider, b.Date, b.Start); err != nil {
		return nil, err
	}

	return e.transition(ctx, b, models.StatusCancelled, notification.EventBookingCancelled)
}

func (e *DefaultBookingEngine) CompleteBooking(ctx context.Context, bookingID, providerID string) (*models.Booking, error) {
	b, err := e.ownedBooking(ctx, bookingID, providerID, actorProvider)
	if err != nil {
		return nil, err
	}
	return e.transition(ctx, b, models.StatusCompleted, notification.EventBookingCompleted)
}

func (e *DefaultBookingEngine) MarkNoShow(ctx context.Context, bookingID, providerID string) (*models.Booking, error) {
	b, err := e.ownedBooking(ctx, bookingID, providerID, actorProvider)
	if err != nil {
		return nil, err
	}
	return e.transition(ctx, b, models.StatusNoShow, notification.EventBookingNoShow)
}

func (e *DefaultBookingEngine) RescheduleBooking(ctx context.Context, bookingID, customerID string, req models.RescheduleRequest) (*models.Booking, error) {
	old, err := e.ownedBooking(ctx, bookingID, customerID, actorCustomer)
	if err != nil {
		return nil, err
	}

	// The old booking must still be movable at all.
	if err := CheckTransition(old.Status, models.StatusCancelled); err != nil {
		return nil, err
	}

	provider, service, err := e.loadProviderService(ctx, old.ProviderID, old.ServiceID)
	if err != nil {
		return nil, err
	}

	// Notice applies to leaving the old slot and to the new one; the new
	// slot also re-runs the full create-path validation.
	if err := e.Policy.CheckNotice(provider, old.Date, old.Start); err != nil {
		return nil, err
	}
	slot, err := e.candidateSlot(provider, service, req.NewDate, req.NewStartTime)
	if err != nil {
		return nil, err
	}
	if err := e.Policy.CheckAdvance(provider, req.NewDate); err != nil {
		return nil, err
	}
	if err := e.Policy.CheckNotice(provider, req.NewDate, slot.Start); err != nil {
		return nil, err
	}

	fees := e.Fees.Calculate(service.Price)
	replacement := &models.Booking{
		ID:               uuid.New().String(),
		ProviderID:       old.ProviderID,
		ServiceID:        old.ServiceID,
		CustomerID:       old.CustomerID,
		Date:             req.NewDate,
		Start:            slot.Start,
		End:              slot.End,
		Status:           models.StatusPending,
		TotalAmount:      fees.TotalAmount,
		PlatformFee:      fees.PlatformFee,
		ProviderEarnings: fees.ProviderEarnings,
		Notes:            old.Notes,
		Version:          1,
		CreatedAt:        time.Now(),
	}

	if err := e.Bookings.Reschedule(ctx, old.ID, old.Status, replacement); err != nil {
		var overlap *bookingRepo.OverlapError
		switch {
		case errors.As(err, &overlap):
			// Transaction aborted; the original booking is untouched.
			return nil, &ConflictError{
				Message:     "new slot already booked",
				BlockingIDs: overlap.BlockingIDs,
			}
		case errors.Is(err, bookingRepo.ErrStaleStatus):
			fresh, ferr := e.Bookings.GetByID(ctx, old.ID)
			if ferr != nil {
				return nil, &PersistenceError{Op: "reschedule booking", Err: err}
			}
			return nil, &InvalidTransitionError{From: string(fresh.Status), To: string(models.StatusCancelled)}
		default:
			return nil, &PersistenceError{Op: "reschedule booking", Err: err}
		}
	}

	e.invalidate(ctx, old.ProviderID, old.Date)
	e.invalidate(ctx, replacement.ProviderID, replacement.Date)
	e.emit(notification.Event{
		Type:         notification.EventBookingRescheduled,
		BookingID:    replacement.ID,
		ProviderID:   replacement.ProviderID,
		CustomerID:   replacement.CustomerID,
		Date:         replacement.Date,
		Start:        replacement.Start,
		OldBookingID: old.ID,
	})
	e.scheduleReminder(provider, replacement)
	return replacement, nil
}

func (e *DefaultBookingEngine) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := e.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, &NotFoundError{Kind: "booking", ID: bookingID}
		}
		return nil, &PersistenceError{Op: "fetch booking", Err: err}
	}
	return b, nil
}

func (e *DefaultBookingEngine) ListProviderBookings(ctx context.Context, providerID, date string) ([]models.Booking, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, NewValidationError("invalid date %q, want YYYY-MM-DD", date)
	}
	list, err := e.Bookings.ListByProviderDate(ctx, providerID, date)
	if err != nil {
		return nil, &PersistenceError{Op: "list bookings", Err: err}
	}
	return list, nil
}

// candidateSlot parses the requested start and confirms the slot would be
// emitted by the slot generator: aligned to the granularity grid and fully
// contained in one open interval.
func (e *DefaultBookingEngine) candidateSlot(provider *models.Provider, service *models.Service, date, startTime string) (models.Interval, error) {
	startMin, err := models.ParseClock(startTime)
	if err != nil {
		return models.Interval{}, NewValidationError("invalid startTime: %v", err)
	}
	if e.GranularityMin > 0 && startMin%e.GranularityMin != 0 {
		return models.Interval{}, NewValidationError("startTime %s is not aligned to the %d-minute grid",
			models.FormatMinutes(startMin), e.GranularityMin)
	}

	windows, err := ResolveWindows(provider, date)
	if err != nil {
		return models.Interval{}, err
	}

	slot := models.Interval{Start: startMin, End: startMin + service.DurationMin}
	for _, w := range windows {
		if w.Contains(slot) {
			return slot, nil
		}
	}
	return models.Interval{}, NewValidationError("slot %s on %s is outside the provider's working hours",
		slot.Label(), date)
}

type actorRole int

const (
	actorCustomer actorRole = iota
	actorProvider
	actorEither
)

// ownedBooking fetches a booking and verifies the actor may act on it. A
// mismatch reads as not-found so booking ids don't leak across accounts.
func (e *DefaultBookingEngine) ownedBooking(ctx context.Context, bookingID, actorID string, role actorRole) (*models.Booking, error) {
	b, err := e.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	owned := false
	switch role {
	case actorCustomer:
		owned = b.CustomerID == actorID
	case actorProvider:
		owned = b.ProviderID == actorID
	case actorEither:
		owned = b.CustomerID == actorID || b.ProviderID == actorID
	}
	if !owned {
		return nil, &NotFoundError{Kind: "booking", ID: bookingID}
	}
	return b, nil
}

func (e *DefaultBookingEngine) transition(ctx context.Context, b *models.Booking, to models.BookingStatus, eventType string) (*models.Booking, error) {
	if err := CheckTransition(b.Status, to); err != nil {
		return nil, err
	}

	updated, err := e.Bookings.UpdateStatus(ctx, b.ID, b.Status, to)
	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrNotFound):
			return nil, &NotFoundError{Kind: "booking", ID: b.ID}
		case errors.Is(err, bookingRepo.ErrStaleStatus):
			fresh, ferr := e.Bookings.GetByID(ctx, b.ID)
			if ferr != nil {
				return nil, &PersistenceError{Op: "update booking status", Err: err}
			}
			return nil, &InvalidTransitionError{From: string(fresh.Status), To: string(to)}
		default:
			return nil, &PersistenceError{Op: "update booking status", Err: err}
		}
	}

	e.invalidate(ctx, updated.ProviderID, updated.Date)
	e.emit(notification.Event{
		Type:       eventType,
		BookingID:  updated.ID,
		ProviderID: updated.ProviderID,
		CustomerID: updated.CustomerID,
		Date:       updated.Date,
		Start:      updated.Start,
	})
	return updated, nil
}

func (e *DefaultBookingEngine) invalidate(ctx context.Context, providerID, date string) {
	if e.Cache != nil {
		e.Cache.Invalidate(ctx, providerID, date)
	}
}

// emit hands the event to the dispatcher on a detached context so a caller
// disconnecting right after commit cannot suppress the notification, and a
// slow queue cannot delay the response.
func (e *DefaultBookingEngine) emit(ev notification.Event) {
	if e.Events == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		e.Events.Dispatch(ctx, ev)
	}()
}

// scheduleReminder queues an upcoming-appointment reminder one notice window
// before the start. The worker re-reads the booking at fire time, so a
// cancellation in the meantime silences it.
func (e *DefaultBookingEngine) scheduleReminder(provider *models.Provider, b *models.Booking) {
	if e.Events == nil {
		return
	}
	startAt, err := e.Policy.StartAt(b.Date, b.Start)
	if err != nil {
		return
	}
	at := startAt.Add(-e.Policy.minNotice(provider))
	if !at.After(e.Policy.now()) {
		return
	}
	ev := notification.Event{
		Type:       notification.EventBookingReminder,
		BookingID:  b.ID,
		ProviderID: b.ProviderID,
		CustomerID: b.CustomerID,
		Date:       b.Date,
		Start:      b.Start,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		e.Events.ScheduleReminder(ctx, ev, at)
	}()
}

func (e *DefaultBookingEngine) loadProviderService(ctx context.Context, providerID, serviceID string) (*models.Provider, *models.Service, error) {
	provider, err := e.Providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, nil, e.mapProviderErr(err, providerID)
	}
	service, ok := provider.ServiceByID(serviceID)
	if !ok {
		return nil, nil, &NotFoundError{Kind: "service", ID: serviceID}
	}
	if service.DurationMin <= 0 {
		return nil, nil, NewValidationError("service %s has no duration configured", serviceID)
	}
	return provider, &service, nil
}

func (e *DefaultBookingEngine) mapProviderErr(err error, providerID string) error {
	if errors.Is(err, providerRepo.ErrNotFound) {
		return &NotFoundError{Kind: "provider", ID: providerID}
	}
	return &PersistenceError{Op: "fetch provider", Err: err}
}

