package ledger

import (
	"time"
)

// =============================================================================
// DATE - Civil calendar date (the ledger's unit of bucketing)
// =============================================================================

// DateLayout is the canonical form of a DayID.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day or zone. Internally it is
// midnight UTC of that date so that comparisons and arithmetic are exact.
type Date struct {
	t time.Time
}

// DayID is the canonical YYYY-MM-DD key of a Date. It sorts chronologically.
type DayID string

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the wall-clock date of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

func Today() Date { return DateOf(time.Now()) }

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) Quarter() int          { return (int(d.t.Month())-1)/3 + 1 }
func (d Date) IsZero() bool          { return d.t.IsZero() }

// ISOWeek returns the ISO 8601 week-year and week number.
func (d Date) ISOWeek() (year, week int) { return d.t.ISOWeek() }

// Midnight returns 00:00 UTC of the date.
func (d Date) Midnight() time.Time { return d.t }

func (d Date) ID() DayID     { return DayID(d.String()) }
func (d Date) String() string { return d.t.Format(DateLayout) }

// MarshalText lets Date act as a JSON string and map key.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// DATE UTILITIES
// =============================================================================

// DaysBetween returns the number of days from `from` to `to` (negative if to is earlier).
func DaysBetween(from, to Date) int { return int(to.t.Sub(from.t).Hours() / 24) }

// DateRange returns every date in [start, end]. Empty if end is before start.
func DateRange(start, end Date) []Date {
	var dates []Date
	for current := start; current.BeforeOrEqual(end); current = current.AddDays(1) {
		dates = append(dates, current)
	}
	return dates
}

// nextMidnight returns 00:00 of the day after t, in t's location.
func nextMidnight(t time.Time) time.Time {
	next := t.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, t.Location())
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
