package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"zeena/models"
)

// ErrNotFound is returned when a booking id does not exist.
var ErrNotFound = errors.New("booking not found")

// ErrStaleStatus is returned when a compare-and-set status update loses to a
// concurrent writer; the caller re-reads and re-evaluates the transition.
var ErrStaleStatus = errors.New("booking status changed concurrently")

// OverlapError aborts a commit whose interval clashes with existing
// non-terminal bookings for the same provider and date.
type OverlapError struct {
	BlockingIDs []string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("slot overlaps bookings: %s", strings.Join(e.BlockingIDs, ", "))
}

// BookingRepository is the persistence contract for the reservation engine.
// All mutation of the non-terminal booking set for a (providerId, date) pair
// goes through these methods; nothing else writes a booking row.
type BookingRepository interface {
	// CreateIfFree atomically checks for overlapping non-terminal bookings
	// and inserts. With respect to other commits for the same provider and
	// date it behaves as a single unit: under two racing overlapping
	// requests exactly one insert survives, the other observes
	// *OverlapError. Cancellation of ctx mid-commit leaves no partial row.
	CreateIfFree(ctx context.Context, b *models.Booking) error

	// UpdateStatus transitions id from the expected status, bumping the
	// version. Returns ErrStaleStatus when the stored status no longer
	// matches from, ErrNotFound when the id is unknown.
	UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error)

	// Reschedule cancels old and inserts replacement in one atomic unit,
	// with the same overlap guarantee as CreateIfFree for the new slot.
	// Either both writes commit or neither does.
	Reschedule(ctx context.Context, oldID string, oldStatus models.BookingStatus, replacement *models.Booking) error

	GetByID(ctx context.Context, id string) (*models.Booking, error)

	// ListActive returns the non-terminal bookings for a provider and date,
	// ordered by start time. Lock-free: the read path is advisory.
	ListActive(ctx context.Context, providerID, date string) ([]models.Booking, error)

	// ListByProviderDate returns all bookings for a provider and date,
	// terminal included.
	ListByProviderDate(ctx context.Context, providerID, date string) ([]models.Booking, error)
}
