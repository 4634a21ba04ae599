package models

import (
	"fmt"
)

// MinutesPerDay bounds every interval; a provider's day never crosses midnight.
const MinutesPerDay = 24 * 60

// Interval is a half-open [Start, End) time range in minutes from midnight.
type Interval struct {
	Start int `bson:"start" json:"start"`
	End   int `bson:"end" json:"end"`
}

// Overlaps reports whether two half-open intervals share any time.
// A booking ending exactly when another starts does not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Contains reports whether other lies entirely within iv.
func (iv Interval) Contains(other Interval) bool {
	return iv.Start <= other.Start && other.End <= iv.End
}

// ContainsMinute reports whether the minute m falls inside iv.
func (iv Interval) ContainsMinute(m int) bool {
	return iv.Start <= m && m < iv.End
}

// Duration returns the interval length in minutes.
func (iv Interval) Duration() int {
	return iv.End - iv.Start
}

// Validate rejects malformed intervals, including any that would cross midnight.
func (iv Interval) Validate() error {
	if iv.Start < 0 || iv.End > MinutesPerDay {
		return fmt.Errorf("interval [%d, %d) outside day bounds", iv.Start, iv.End)
	}
	if iv.Start >= iv.End {
		return fmt.Errorf("interval start %d must be before end %d", iv.Start, iv.End)
	}
	return nil
}

// Label renders the interval as "09:00 - 10:30" for clients.
func (iv Interval) Label() string {
	return FormatMinutes(iv.Start) + " - " + FormatMinutes(iv.End)
}

// FormatMinutes renders minutes from midnight as "HH:MM".
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ParseClock converts "HH:MM" to minutes from midnight. The wire format is
// strict: exactly two digits, a colon, two digits, nothing else.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid clock time %q, want HH:MM", s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("invalid clock time %q, want HH:MM", s)
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return h*60 + m, nil
}
