package models

// CreateBookingRequest is the POST /bookings payload. CustomerID comes from
// the auth context, never from the body.
type CreateBookingRequest struct {
	ProviderID string `json:"providerId" binding:"required"`
	ServiceID  string `json:"serviceId" binding:"required"`
	Date       string `json:"date" binding:"required"`      // "YYYY-MM-DD"
	StartTime  string `json:"startTime" binding:"required"` // "HH:MM"
	Notes      string `json:"notes"`
	CustomerID string `json:"-"`
}

// CheckAvailabilityRequest is the advisory point query for one slot.
type CheckAvailabilityRequest struct {
	ProviderID string `json:"providerId" binding:"required"`
	ServiceID  string `json:"serviceId" binding:"required"`
	Date       string `json:"date" binding:"required"`
	StartTime  string `json:"startTime" binding:"required"`
}

// RescheduleRequest moves a booking to a new slot; the old booking is
// cancelled and a new one created in a single atomic unit.
type RescheduleRequest struct {
	NewDate      string `json:"newDate" binding:"required"`
	NewStartTime string `json:"newStartTime" binding:"required"`
}
