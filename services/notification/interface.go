package notification

import (
	"context"
	"time"
)

// Event types emitted by the booking engine.
const (
	EventBookingCreated     = "booking_created"
	EventBookingConfirmed   = "booking_confirmed"
	EventBookingCancelled   = "booking_cancelled"
	EventBookingCompleted   = "booking_completed"
	EventBookingNoShow      = "booking_no_show"
	EventBookingRescheduled = "booking_rescheduled"
	EventBookingReminder    = "booking_reminder"
)

// Event is a booking lifecycle notification handed to the delivery worker.
type Event struct {
	Type         string `json:"type"`
	BookingID    string `json:"bookingId"`
	ProviderID   string `json:"providerId"`
	CustomerID   string `json:"customerId"`
	Date         string `json:"date"`
	Start        int    `json:"start"`
	OldBookingID string `json:"oldBookingId,omitempty"` // set on reschedule
}

// Dispatcher hands lifecycle events to the notification collaborator.
// Both methods are fire-and-forget: they must return promptly and may never
// fail a committed booking, so delivery errors are logged, not returned.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event)

	// ScheduleReminder enqueues ev for delivery at the given instant. The
	// worker re-reads the booking before sending, so a reminder for a
	// since-cancelled booking is dropped there.
	ScheduleReminder(ctx context.Context, ev Event, at time.Time)
}
