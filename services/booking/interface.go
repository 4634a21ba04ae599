package booking

import (
	"context"

	bookingRepo "zeena/database/repository/booking"
	providerRepo "zeena/database/repository/provider"
	"zeena/models"
	"zeena/services/notification"
)

// BookingEngine is the admission engine: it turns declared working hours and
// committed bookings into offerable slots, and commits new bookings such
// that two racing requests for overlapping slots can never both succeed.
type BookingEngine interface {
	// GetAvailableSlots is the read path: advisory, lock-free, recomputed
	// per request (a short-lived cache in front is an optimisation only).
	GetAvailableSlots(ctx context.Context, providerID, serviceID, date string) (*models.DayAvailability, error)

	// CheckAvailability answers a point query for one candidate slot.
	CheckAvailability(ctx context.Context, req models.CheckAvailabilityRequest) (*models.AvailabilityCheckResult, error)

	// CreateBooking is the write path: re-validates the candidate against a
	// freshly resolved window, applies policy, stamps fees, and commits
	// atomically. Exactly one of two racing overlapping requests succeeds.
	CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error)

	// Status transitions, gated by the state machine and (for cancel) the
	// notice policy.
	ConfirmBooking(ctx context.Context, bookingID, providerID string) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, actorID string) (*models.Booking, error)
	CompleteBooking(ctx context.Context, bookingID, providerID string) (*models.Booking, error)
	MarkNoShow(ctx context.Context, bookingID, providerID string) (*models.Booking, error)

	// RescheduleBooking validates the new slot exactly like CreateBooking,
	// then atomically cancels the old booking and creates the new one.
	RescheduleBooking(ctx context.Context, bookingID, customerID string, req models.RescheduleRequest) (*models.Booking, error)

	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	ListProviderBookings(ctx context.Context, providerID, date string) ([]models.Booking, error)
}

// DefaultBookingEngine is the production implementation.
type DefaultBookingEngine struct {
	Bookings       bookingRepo.BookingRepository
	Providers      providerRepo.ProviderRepository
	Fees           FeeSchedule
	Policy         Policy
	GranularityMin int
	Cache          *AvailabilityCache      // optional
	Events         notification.Dispatcher // optional
}
