package booking

import (
	"sort"
	"time"

	"zeena/models"
)

const dateLayout = "2006-01-02"

// ResolveWindows merges a provider's recurring weekly schedule with calendar
// exceptions into the ordered, disjoint open intervals for one date. An
// exception for the exact date fully replaces the recurring entry; it is an
// override, never additive. A closed day resolves to an empty list. The
// result is a derived view: same inputs always produce the same output.
func ResolveWindows(p *models.Provider, date string) ([]models.Interval, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, NewValidationError("invalid date %q, want YYYY-MM-DD", date)
	}

	var intervals []models.Interval
	if ex, ok := p.ExceptionFor(date); ok {
		intervals = ex.Intervals
	} else {
		intervals = p.ShiftsFor(day.Weekday())
	}
	if len(intervals) == 0 {
		return []models.Interval{}, nil
	}

	out := make([]models.Interval, len(intervals))
	copy(out, intervals)
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })

	// Schedule validation keeps shifts disjoint; a bad stored record still
	// must not leak overlapping windows to the slot generator.
	for i, iv := range out {
		if err := iv.Validate(); err != nil {
			return nil, NewValidationError("stored schedule for %s is invalid: %v", date, err)
		}
		if i > 0 && out[i-1].End > iv.Start {
			return nil, NewValidationError("stored schedule for %s has overlapping shifts", date)
		}
	}
	return out, nil
}

// ValidateSchedule is the definition-time check run when a provider declares
// or edits working hours. Midnight-crossing shifts are rejected here, so the
// resolver never sees one.
func ValidateSchedule(weekly []models.DaySchedule, exceptions []models.ScheduleException) error {
	seen := map[time.Weekday]bool{}
	for _, ds := range weekly {
		if ds.Weekday < time.Sunday || ds.Weekday > time.Saturday {
			return NewValidationError("unknown weekday %d", ds.Weekday)
		}
		if seen[ds.Weekday] {
			return NewValidationError("duplicate schedule entry for %s", ds.Weekday)
		}
		seen[ds.Weekday] = true
		if err := validateShifts(ds.Intervals); err != nil {
			return NewValidationError("%s: %v", ds.Weekday, err)
		}
	}
	dates := map[string]bool{}
	for _, ex := range exceptions {
		if _, err := time.Parse(dateLayout, ex.Date); err != nil {
			return NewValidationError("exception date %q is not YYYY-MM-DD", ex.Date)
		}
		if dates[ex.Date] {
			return NewValidationError("duplicate exception for %s", ex.Date)
		}
		dates[ex.Date] = true
		if err := validateShifts(ex.Intervals); err != nil {
			return NewValidationError("exception %s: %v", ex.Date, err)
		}
	}
	return nil
}

func validateShifts(shifts []models.Interval) error {
	sorted := make([]models.Interval, len(shifts))
	copy(sorted, shifts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i, iv := range sorted {
		if err := iv.Validate(); err != nil {
			return err
		}
		if i > 0 && sorted[i-1].End > iv.Start {
			return NewValidationError("shifts %s and %s overlap", sorted[i-1].Label(), iv.Label())
		}
	}
	return nil
}
