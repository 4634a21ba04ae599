package booking

import (
	"zeena/models"
)

// GenerateSlots subdivides the resolved open windows into candidate slots of
// exactly durationMin length, with start times aligned to the granularity
// grid. A slot never spans two windows, even when they touch on the clock.
// Slots overlapping any non-terminal booking are kept but tagged unavailable
// with the blocking booking ids.
func GenerateSlots(windows []models.Interval, durationMin, granularityMin int, busy []models.Booking) []models.TimeSlot {
	if durationMin <= 0 || granularityMin <= 0 {
		return nil
	}

	slots := make([]models.TimeSlot, 0, 16)
	for _, w := range windows {
		// First aligned start at or after the window opens.
		start := w.Start
		if rem := start % granularityMin; rem != 0 {
			start += granularityMin - rem
		}
		// Last admissible start leaves room for the full duration; a window
		// shorter than the service yields no slots at all.
		for ; start+durationMin <= w.End; start += granularityMin {
			slot := models.Interval{Start: start, End: start + durationMin}
			blocking := blockingBookings(slot, busy)
			slots = append(slots, models.TimeSlot{
				Start:       slot.Start,
				End:         slot.End,
				StartLabel:  models.FormatMinutes(slot.Start),
				EndLabel:    models.FormatMinutes(slot.End),
				Available:   len(blocking) == 0,
				BlockedByID: blocking,
			})
		}
	}
	return slots
}

func blockingBookings(slot models.Interval, busy []models.Booking) []string {
	var ids []string
	for i := range busy {
		if busy[i].Status.IsTerminal() {
			continue
		}
		if slot.Overlaps(busy[i].Interval()) {
			ids = append(ids, busy[i].ID)
		}
	}
	return ids
}
