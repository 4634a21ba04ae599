package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Money is a fixed-point monetary amount in fils (1/1000 of the major unit),
// matching the regional currency's three-decimal convention. All arithmetic
// stays in integer fils; binary floating point never enters the money path.
type Money int64

// MoneyFromFils wraps a raw fils amount.
func MoneyFromFils(fils int64) Money {
	return Money(fils)
}

// Fils returns the raw amount in fils.
func (m Money) Fils() int64 {
	return int64(m)
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return m - other
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return m + other
}

// String renders the amount as a three-decimal string, e.g. "25.000".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%03d", sign, v/1000, v%1000)
}

// ParseMoney parses a decimal string with up to three fractional digits
// into fils, without going through floating point.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty money amount")
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 3 {
		return 0, fmt.Errorf("money amount %q exceeds three decimal places", s)
	}
	for len(frac) < 3 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid money amount %q", s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid money amount %q", s)
	}
	fils := w*1000 + f
	if neg {
		fils = -fils
	}
	return Money(fils), nil
}

// MarshalJSON emits the canonical decimal string form.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts either a decimal string or a bare number literal.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
