package ledger

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - Calendar periods the days are rolled up into
// =============================================================================

// Period is an inclusive range of dates.
type Period struct {
	Start Date
	End   Date
}

// Contains returns true if the date is within the period [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns all dates in the period.
func (p Period) Days() []Date { return DateRange(p.Start, p.End) }

// Len returns the number of days in the period.
func (p Period) Len() int { return DaysBetween(p.Start, p.End) + 1 }

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// PeriodType names a rollup granularity.
type PeriodType string

const (
	PeriodWeek    PeriodType = "week"    // ISO 8601 week, Monday - Sunday
	PeriodMonth   PeriodType = "month"   // calendar month
	PeriodQuarter PeriodType = "quarter" // Jan-Mar, Apr-Jun, Jul-Sep, Oct-Dec
	PeriodYear    PeriodType = "year"    // calendar year
	PeriodAll     PeriodType = "all"     // the whole report range
)

// PeriodKey identifies one period of a given type. Index is the ISO week,
// month, or quarter number; it is zero for years and for "all".
type PeriodKey struct {
	Type  PeriodType
	Year  int
	Index int
}

// KeyFor returns the key of the period of this type that contains the date.
func (pt PeriodType) KeyFor(d Date) PeriodKey {
	switch pt {
	case PeriodWeek:
		year, week := d.ISOWeek()
		return PeriodKey{Type: pt, Year: year, Index: week}
	case PeriodMonth:
		return PeriodKey{Type: pt, Year: d.Year(), Index: int(d.Month())}
	case PeriodQuarter:
		return PeriodKey{Type: pt, Year: d.Year(), Index: d.Quarter()}
	case PeriodYear:
		return PeriodKey{Type: pt, Year: d.Year()}
	default:
		return PeriodKey{Type: PeriodAll}
	}
}

// Bounds returns the first and last date of the keyed period. The "all"
// period has no calendar bounds of its own and returns the zero Period.
func (k PeriodKey) Bounds() Period {
	switch k.Type {
	case PeriodWeek:
		start := isoWeekStart(k.Year, k.Index)
		return Period{Start: start, End: start.AddDays(6)}
	case PeriodMonth:
		start := NewDate(k.Year, time.Month(k.Index), 1)
		return Period{Start: start, End: start.AddMonths(1).AddDays(-1)}
	case PeriodQuarter:
		start := NewDate(k.Year, time.Month((k.Index-1)*3+1), 1)
		return Period{Start: start, End: start.AddMonths(3).AddDays(-1)}
	case PeriodYear:
		return Period{Start: NewDate(k.Year, time.January, 1), End: NewDate(k.Year, time.December, 31)}
	default:
		return Period{}
	}
}

// String renders the key as "2024-W01", "2024-01", "2024-Q1", "2024" or "all".
func (k PeriodKey) String() string {
	switch k.Type {
	case PeriodWeek:
		return fmt.Sprintf("%04d-W%02d", k.Year, k.Index)
	case PeriodMonth:
		return fmt.Sprintf("%04d-%02d", k.Year, k.Index)
	case PeriodQuarter:
		return fmt.Sprintf("%04d-Q%d", k.Year, k.Index)
	case PeriodYear:
		return fmt.Sprintf("%04d", k.Year)
	default:
		return string(PeriodAll)
	}
}

// Less orders keys chronologically within one type.
func (k PeriodKey) Less(other PeriodKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Index < other.Index
}

// isoWeekStart returns the Monday of ISO week `week` of ISO year `year`.
// January 4th is always in week 1.
func isoWeekStart(year, week int) Date {
	jan4 := NewDate(year, time.January, 4)
	offset := int(jan4.Weekday()+6) % 7 // days since Monday
	return jan4.AddDays(-offset + (week-1)*7)
}
