package models

import "time"

// BookingStatus is the closed set of lifecycle states for a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
	StatusNoShow    BookingStatus = "no_show"
)

// IsValid reports whether s is one of the known statuses.
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether s ends the booking's lifecycle. Terminal
// bookings no longer occupy their slot in availability queries.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

// Booking is the durable record created by the reservation committer.
// Invariant: no two non-terminal bookings for the same (providerId, date)
// may have overlapping [start, end) intervals. Bookings are never deleted;
// cancellation is a status change.
type Booking struct {
	ID               string        `bson:"id" json:"id"`
	ProviderID       string        `bson:"providerId" json:"providerId"`
	ServiceID        string        `bson:"serviceId" json:"serviceId"`
	CustomerID       string        `bson:"customerId" json:"customerId"`
	Date             string        `bson:"date" json:"date"` // "YYYY-MM-DD" in the provider's zone
	Start            int           `bson:"start" json:"start"`
	End              int           `bson:"end" json:"end"`
	Status           BookingStatus `bson:"status" json:"status"`
	TotalAmount      Money         `bson:"totalAmountFils" json:"totalAmount"`
	PlatformFee      Money         `bson:"platformFeeFils" json:"platformFee"`
	ProviderEarnings Money         `bson:"providerEarningsFils" json:"providerEarnings"`
	Notes            string        `bson:"notes,omitempty" json:"notes,omitempty"`
	Version          int64         `bson:"version" json:"version"`
	CreatedAt        time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time     `bson:"updatedAt" json:"updatedAt,omitzero"`
}

// Interval returns the booking's occupied [start, end) range.
func (b *Booking) Interval() Interval {
	return Interval{Start: b.Start, End: b.End}
}
