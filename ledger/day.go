package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DAY - Per-date accumulator
// =============================================================================

// Day collects everything that applies to one calendar date. Target, actual
// and delta are derived on demand, never stored.
//
// A Day is mutated only while its report is being built and is read-only
// afterwards.
type Day struct {
	Date Date

	schedules map[ScheduleID]Schedule
	events    map[EventID]Event
	slices    []Slice
}

func newDay(date Date) *Day {
	return &Day{
		Date:      date,
		schedules: make(map[ScheduleID]Schedule),
		events:    make(map[EventID]Event),
	}
}

func (d *Day) ID() DayID { return d.Date.ID() }

// addSchedule attaches a schedule. Attaching the same schedule twice is a no-op.
func (d *Day) addSchedule(s Schedule) { d.schedules[s.ID] = s }

func (d *Day) addEvent(e Event) { d.events[e.ID] = e }

func (d *Day) addSlice(s Slice) { d.slices = append(d.slices, s) }

// TargetTime returns the expected seconds of work:
//
//	trunc(Σ schedule.Target × (1 + Σ event.ModRelative) + Σ event.ModAbsolute)
//
// Schedules stack before the modifiers apply, so a relative event discounts
// the combined base once. The result is truncated toward zero.
func (d *Day) TargetTime() int64 {
	var base int64
	for _, s := range d.schedules {
		base += s.Target
	}

	relative := decimal.NewFromInt(1)
	var absolute int64
	for _, e := range d.events {
		relative = relative.Add(e.ModRelative)
		absolute += e.ModAbsolute
	}

	return decimal.NewFromInt(base).
		Mul(relative).
		Add(decimal.NewFromInt(absolute)).
		Truncate(0).
		IntPart()
}

// ActualTime returns the recorded seconds of work on this date.
func (d *Day) ActualTime() int64 {
	var total int64
	for _, s := range d.slices {
		total += s.Duration()
	}
	return total
}

func (d *Day) Delta() int64 { return d.ActualTime() - d.TargetTime() }

// DeltaPercentage returns delta / target × 100. It is invalid (undefined)
// when the target is not positive.
func (d *Day) DeltaPercentage() decimal.NullDecimal {
	target := d.TargetTime()
	if target <= 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(
		decimal.NewFromInt(d.Delta()).Div(decimal.NewFromInt(target)).Mul(decimal.NewFromInt(100)),
	)
}

// FulfillmentRate returns actual / target, invalid when the target is zero.
func (d *Day) FulfillmentRate() decimal.NullDecimal {
	return fulfillmentRate(d.ActualTime(), d.TargetTime())
}

// Schedules returns the attached schedules ordered by ID.
func (d *Day) Schedules() []Schedule {
	result := make([]Schedule, 0, len(d.schedules))
	for _, s := range d.schedules {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Events returns the attached events ordered by ID.
func (d *Day) Events() []Event {
	result := make([]Event, 0, len(d.events))
	for _, e := range d.events {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Slices returns the attached slices ordered by local start.
func (d *Day) Slices() []Slice {
	result := make([]Slice, len(d.slices))
	copy(result, d.slices)
	sort.SliceStable(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })
	return result
}

func fulfillmentRate(actual, target int64) decimal.NullDecimal {
	if target == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromInt(actual).Div(decimal.NewFromInt(target)))
}
