package models

// TimeSlot is a candidate bookable interval of exactly one service's
// duration, derived from an availability window minus committed bookings.
// Slots are ephemeral and advisory; they are recomputed per request and
// never persisted.
type TimeSlot struct {
	Start       int      `json:"start"`
	End         int      `json:"end"`
	StartLabel  string   `json:"startLabel"`
	EndLabel    string   `json:"endLabel"`
	Available   bool     `json:"available"`
	BlockedByID []string `json:"blockedBy,omitempty"` // non-terminal bookings overlapping this slot
}

// DayAvailability is the Slot Generator's output for one provider and date.
type DayAvailability struct {
	ProviderID  string     `json:"providerId"`
	ServiceID   string     `json:"serviceId"`
	Date        string     `json:"date"`
	DurationMin int        `json:"durationMin"`
	Windows     []Interval `json:"windows"`
	Slots       []TimeSlot `json:"slots"`
}

// AvailabilityCheckResult answers a point query for one candidate slot.
// Advisory only: the committer re-validates at write time.
type AvailabilityCheckResult struct {
	Available           bool     `json:"available"`
	ConflictingBookings []string `json:"conflictingBookings"`
}
