package booking

import (
	"zeena/models"
)

// legalTransitions is the full lifecycle of a booking. There is no path out
// of a terminal state, and completed can only be reached through confirmed.
var legalTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusCancelled, models.StatusCompleted, models.StatusNoShow},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to models.BookingStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns an InvalidTransitionError unless from -> to is legal.
func CheckTransition(from, to models.BookingStatus) error {
	if !from.IsValid() || !to.IsValid() {
		return &InvalidTransitionError{From: string(from), To: string(to)}
	}
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: string(from), To: string(to)}
	}
	return nil
}
