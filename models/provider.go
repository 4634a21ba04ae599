package models

import (
	"time"
)

// DaySchedule holds the recurring shifts for one weekday. A weekday with no
// entry (or no intervals) is closed. Multiple shifts model a midday break and
// are kept disjoint; they are never merged.
type DaySchedule struct {
	Weekday   time.Weekday `bson:"weekday" json:"weekday"`
	Intervals []Interval   `bson:"intervals" json:"intervals"`
}

// ScheduleException fully replaces the recurring shifts for one exact date.
// An empty interval list closes the day (holiday, temporary closure). Ramadan
// hours and prayer blackouts are expressed the same way: the override lists
// whatever intervals remain open on that date.
type ScheduleException struct {
	Date      string     `bson:"date" json:"date"` // "YYYY-MM-DD"
	Intervals []Interval `bson:"intervals" json:"intervals"`
	Reason    string     `bson:"reason,omitempty" json:"reason,omitempty"`
}

// Provider carries only what the booking engine needs; profile CRUD, images
// and verification live with the provider-profile collaborator.
type Provider struct {
	ID             string              `bson:"id" json:"id"`
	Name           string              `bson:"name" json:"name"`
	TimeZone       string              `bson:"timeZone" json:"timeZone"` // single regional zone, e.g. "Asia/Kuwait"
	WeeklySchedule []DaySchedule       `bson:"weeklySchedule" json:"weeklySchedule"`
	Exceptions     []ScheduleException `bson:"exceptions,omitempty" json:"exceptions,omitempty"`
	MinNoticeHours *int                `bson:"minNoticeHours,omitempty" json:"minNoticeHours,omitempty"`
	MaxAdvanceDays *int                `bson:"maxAdvanceDays,omitempty" json:"maxAdvanceDays,omitempty"`
	Services       []Service           `bson:"services" json:"services"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt,omitzero"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt,omitzero"`
}

// ShiftsFor returns the recurring intervals configured for a weekday.
func (p *Provider) ShiftsFor(day time.Weekday) []Interval {
	for _, ds := range p.WeeklySchedule {
		if ds.Weekday == day {
			return ds.Intervals
		}
	}
	return nil
}

// ExceptionFor returns the exception for an exact date, if one exists.
func (p *Provider) ExceptionFor(date string) (ScheduleException, bool) {
	for _, ex := range p.Exceptions {
		if ex.Date == date {
			return ex, true
		}
	}
	return ScheduleException{}, false
}

// ServiceByID finds a service in the provider's catalogue.
func (p *Provider) ServiceByID(serviceID string) (Service, bool) {
	for _, svc := range p.Services {
		if svc.ID == serviceID {
			return svc, true
		}
	}
	return Service{}, false
}
