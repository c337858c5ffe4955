/*
bucket.go - Period rollups over days

PURPOSE:
  A Bucket answers "how did this week / month / quarter / year go?" by
  summing the days that fall into it. Every bucket kind shares the same
  arithmetic; only the period key differs (see period.go).

OWNERSHIP:
  Days are owned by the Report. A bucket holds the DayIDs of its members
  and resolves them against the report's day arena, so one Day is shared
  by its week, month, quarter, year and the "all" bucket at once.

ARITHMETIC:
  TargetTime = Σ day.TargetTime()
  ActualTime = Σ day.ActualTime()
  Delta      = ActualTime - TargetTime
  FulfillmentRate = ActualTime / TargetTime (invalid when TargetTime == 0)

SEE ALSO:
  - period.go: period keys and bounds
  - report.go: the day arena
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// Bucket is a read-only rollup of the days of one period.
type Bucket struct {
	Key    PeriodKey
	Period Period

	dayIDs []DayID
	days   map[DayID]*Day
}

func newBucket(key PeriodKey, period Period, arena map[DayID]*Day) *Bucket {
	return &Bucket{Key: key, Period: period, days: arena}
}

func (b *Bucket) add(id DayID) { b.dayIDs = append(b.dayIDs, id) }

// DayIDs returns the member days in chronological order.
func (b *Bucket) DayIDs() []DayID {
	result := make([]DayID, len(b.dayIDs))
	copy(result, b.dayIDs)
	return result
}

// Days returns the member days in chronological order.
func (b *Bucket) Days() []*Day {
	result := make([]*Day, 0, len(b.dayIDs))
	for _, id := range b.dayIDs {
		result = append(result, b.days[id])
	}
	return result
}

// Len returns the number of member days inside the report range. This can
// be less than MaxDays for periods cut by the range boundaries.
func (b *Bucket) Len() int { return len(b.dayIDs) }

// MaxDays returns the calendar length of the period.
func (b *Bucket) MaxDays() int { return b.Period.Len() }

func (b *Bucket) TargetTime() int64 {
	var total int64
	for _, day := range b.Days() {
		total += day.TargetTime()
	}
	return total
}

func (b *Bucket) ActualTime() int64 {
	var total int64
	for _, day := range b.Days() {
		total += day.ActualTime()
	}
	return total
}

func (b *Bucket) Delta() int64 { return b.ActualTime() - b.TargetTime() }

// DaysWithTargetTime counts members with a non-zero target.
func (b *Bucket) DaysWithTargetTime() int {
	count := 0
	for _, day := range b.Days() {
		if day.TargetTime() != 0 {
			count++
		}
	}
	return count
}

// DaysWithActualTime counts members with recorded time.
func (b *Bucket) DaysWithActualTime() int {
	count := 0
	for _, day := range b.Days() {
		if day.ActualTime() != 0 {
			count++
		}
	}
	return count
}

func (b *Bucket) FulfillmentRate() decimal.NullDecimal {
	return fulfillmentRate(b.ActualTime(), b.TargetTime())
}
