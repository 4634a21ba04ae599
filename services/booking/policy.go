package booking

import (
	"time"

	"zeena/models"
)

// Policy enforces the timing rules around booking writes: a minimum notice
// before a booking may be created, cancelled or rescheduled, and a maximum
// advance window for new bookings. Providers may override both; the defaults
// apply when they don't.
type Policy struct {
	DefaultMinNoticeHours int
	DefaultMaxAdvanceDays int
	Location              *time.Location
	Now                   func() time.Time // injectable clock for tests
}

func (p Policy) now() time.Time {
	if p.Now != nil {
		return p.Now().In(p.Location)
	}
	return time.Now().In(p.Location)
}

func (p Policy) minNotice(provider *models.Provider) time.Duration {
	hours := p.DefaultMinNoticeHours
	if provider.MinNoticeHours != nil {
		hours = *provider.MinNoticeHours
	}
	return time.Duration(hours) * time.Hour
}

func (p Policy) maxAdvance(provider *models.Provider) int {
	days := p.DefaultMaxAdvanceDays
	if provider.MaxAdvanceDays != nil {
		days = *provider.MaxAdvanceDays
	}
	return days
}

// StartAt converts a (date, minutes-from-midnight) pair into an absolute
// instant in the provider's zone.
func (p Policy) StartAt(date string, startMin int) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, date, p.Location)
	if err != nil {
		return time.Time{}, NewValidationError("invalid date %q, want YYYY-MM-DD", date)
	}
	return day.Add(time.Duration(startMin) * time.Minute), nil
}

// CheckNotice rejects an action on a slot that starts sooner than the
// provider's minimum notice from now. Applies to create, cancel and
// reschedule alike; no_show is recorded after the fact and is exempt.
func (p Policy) CheckNotice(provider *models.Provider, date string, startMin int) error {
	startAt, err := p.StartAt(date, startMin)
	if err != nil {
		return err
	}
	notice := p.minNotice(provider)
	if p.now().Add(notice).After(startAt) {
		return NewPolicyError("requires at least %s notice before the %s %s start",
			notice, date, models.FormatMinutes(startMin))
	}
	return nil
}

// CheckAdvance rejects a new booking (including a reschedule target) placed
// further out than the provider's maximum advance window.
func (p Policy) CheckAdvance(provider *models.Provider, date string) error {
	day, err := time.ParseInLocation(dateLayout, date, p.Location)
	if err != nil {
		return NewValidationError("invalid date %q, want YYYY-MM-DD", date)
	}
	days := p.maxAdvance(provider)
	now := p.now()
	horizon := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, p.Location).
		AddDate(0, 0, days)
	if day.After(horizon) {
		return NewPolicyError("date %s is beyond the %d-day booking window", date, days)
	}
	return nil
}
