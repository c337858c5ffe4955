package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/worktime/ledger"
)

// =============================================================================
// TARGET TIME
// =============================================================================

func TestDay_SingleSchedule_TargetIsScheduleTarget(t *testing.T) {
	// GIVEN: a one-off 8h schedule on Jan 1
	jan1 := date(2024, time.January, 1)
	report := build(t, jan1, jan1,
		[]ledger.Schedule{schedule("s-1", jan1, "", 8*hour)}, nil, nil)

	// THEN: 8h target, nothing recorded
	day := report.Day(jan1.ID())
	require.NotNil(t, day)
	assert.Equal(t, 8*hour, day.TargetTime())
	assert.Equal(t, int64(0), day.ActualTime())
	assert.Equal(t, -8*hour, day.Delta())
	assert.True(t, day.DeltaPercentage().Valid)
	assert.True(t, day.DeltaPercentage().Decimal.Equal(decimal.NewFromInt(-100)))
}

func TestDay_FullDayOff_RelativeMinusOneZeroesTarget(t *testing.T) {
	jan1 := date(2024, time.January, 1)
	report := build(t, jan1, jan1,
		[]ledger.Schedule{schedule("s-1", jan1, "", 8*hour)},
		[]ledger.Event{event("holiday", jan1, "", "-1", 0)},
		nil)

	day := report.Day(jan1.ID())
	assert.Equal(t, int64(0), day.TargetTime())
	assert.False(t, day.DeltaPercentage().Valid)
	assert.False(t, day.FulfillmentRate().Valid)
}

func TestDay_AbsoluteModifierCancelsSchedule(t *testing.T) {
	jan1 := date(2024, time.January, 1)
	report := build(t, jan1, jan1,
		[]ledger.Schedule{schedule("s-1", jan1, "", 8*hour)},
		[]ledger.Event{event("off", jan1, "", "0", -8*hour)},
		nil)

	assert.Equal(t, int64(0), report.Day(jan1.ID()).TargetTime())
}

func TestDay_SchedulesStackBeforeRelativeModifier(t *testing.T) {
	// GIVEN: 8h + 4h schedules and a half-day event
	// THEN: (8h + 4h) * 0.5 = 6h
	jan1 := date(2024, time.January, 1)
	report := build(t, jan1, jan1,
		[]ledger.Schedule{
			schedule("s-1", jan1, "", 8*hour),
			schedule("s-2", jan1, "", 4*hour),
		},
		[]ledger.Event{event("half", jan1, "", "-0.5", 0)},
		nil)

	day := report.Day(jan1.ID())
	assert.Equal(t, 6*hour, day.TargetTime())
	assert.Len(t, day.Schedules(), 2)
	assert.Len(t, day.Events(), 1)
}

func TestDay_RelativeModifiersAddUp(t *testing.T) {
	// GIVEN: two -0.25 events on an 8h day
	// THEN: 8h * (1 - 0.25 - 0.25) = 4h
	jan1 := date(2024, time.January, 1)
	report := build(t, jan1, jan1,
		[]ledger.Schedule{schedule("s-1", jan1, "", 8*hour)},
		[]ledger.Event{
			event("e-1", jan1, "", "-0.25", 0),
			event("e-2", jan1, "", "-0.25", 0),
		},
		nil)

	assert.Equal(t, 4*hour, report.Day(jan1.ID()).TargetTime())
}

func TestDay_TargetTruncatesTowardZero(t *testing.T) {
	jan1 := date(2024, time.January, 1)

	tests := []struct {
		name       string
		target     int64
		relative   string
		absolute   int64
		wantTarget int64
	}{
		{name: "positive fraction", target: 28800, relative: "-0.33333", wantTarget: 19200},
		{name: "half second", target: 3, relative: "-0.5", wantTarget: 1},
		{name: "negative fraction", target: 3, relative: "-0.5", absolute: -5, wantTarget: -3},
		{name: "negative whole", target: 8 * hour, relative: "0", absolute: -30000, wantTarget: -1200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := build(t, jan1, jan1,
				[]ledger.Schedule{schedule("s-1", jan1, "", tt.target)},
				[]ledger.Event{event("e-1", jan1, "", tt.relative, tt.absolute)},
				nil)
			assert.Equal(t, tt.wantTarget, report.Day(jan1.ID()).TargetTime())
		})
	}
}

func TestDay_NegativeTarget_PercentageUndefinedRateDefined(t *testing.T) {
	jan1 := date(2024, time.January, 1)
	report := build(t, jan1, jan1,
		[]ledger.Schedule{schedule("s-1", jan1, "", hour)},
		[]ledger.Event{event("e-1", jan1, "", "0", -2*hour)},
		nil)

	day := report.Day(jan1.ID())
	assert.Equal(t, -hour, day.TargetTime())
	assert.Equal(t, hour, day.Delta())
	assert.False(t, day.DeltaPercentage().Valid)
	assert.True(t, day.FulfillmentRate().Valid)
}

// =============================================================================
// ACTUAL TIME
// =============================================================================

func TestDay_EntryWithoutSchedule_PositiveDelta(t *testing.T) {
	jan1 := date(2024, time.January, 1)
	report := build(t, jan1, jan1, nil, nil, []ledger.TimeEntry{
		entry(t, "te-1", "2024-01-01T10:00:00+00:00", "2024-01-01T11:00:00+00:00"),
	})

	day := report.Day(jan1.ID())
	assert.Equal(t, int64(0), day.TargetTime())
	assert.Equal(t, hour, day.ActualTime())
	assert.Equal(t, hour, day.Delta())
	assert.False(t, day.DeltaPercentage().Valid)
}

func TestDay_PartialDay_PercentageAndRate(t *testing.T) {
	jan1 := date(2024, time.January, 1)
	report := build(t, jan1, jan1,
		[]ledger.Schedule{schedule("s-1", jan1, "", 8*hour)}, nil,
		[]ledger.TimeEntry{
			entry(t, "te-1", "2024-01-01T08:00:00+01:00", "2024-01-01T10:00:00+01:00"),
			entry(t, "te-2", "2024-01-01T13:00:00+01:00", "2024-01-01T15:00:00+01:00"),
		})

	day := report.Day(jan1.ID())
	assert.Equal(t, 4*hour, day.ActualTime())
	assert.True(t, day.DeltaPercentage().Decimal.Equal(decimal.NewFromInt(-50)))
	assert.True(t, day.FulfillmentRate().Decimal.Equal(decimal.RequireFromString("0.5")))

	slices := day.Slices()
	require.Len(t, slices, 2)
	assert.Equal(t, ledger.TimeEntryID("te-1"), slices[0].Entry)
	assert.Equal(t, ledger.TimeEntryID("te-2"), slices[1].Entry)
}

func TestDay_DeltaIsActualMinusTarget(t *testing.T) {
	// GIVEN: a month of weekday schedules, a holiday and scattered entries
	start := date(2024, time.May, 1)
	end := date(2024, time.May, 31)
	report := build(t, start, end,
		[]ledger.Schedule{schedule("s-1", start, weekdays, 8*hour)},
		[]ledger.Event{event("holiday", date(2024, time.May, 9), "", "-1", 0)},
		[]ledger.TimeEntry{
			entry(t, "te-1", "2024-05-02T09:00:00+02:00", "2024-05-02T18:00:00+02:00"),
			entry(t, "te-2", "2024-05-10T22:00:00+02:00", "2024-05-11T03:00:00+02:00"),
			entry(t, "te-3", "2024-05-31T20:00:00+02:00", "2024-06-01T01:00:00+02:00"),
		})

	// THEN: the identity holds for every day
	for _, day := range report.Days() {
		assert.Equal(t, day.ActualTime()-day.TargetTime(), day.Delta(), day.ID())
	}
	assert.Equal(t, int64(0), report.Day(date(2024, time.May, 9).ID()).TargetTime())
	assert.Equal(t, 3*hour, report.Day(date(2024, time.May, 11).ID()).ActualTime())
	assert.Equal(t, 4*hour, report.Day(date(2024, time.May, 31).ID()).ActualTime())
	assert.Nil(t, report.Day(date(2024, time.June, 1).ID()), "out of range")
}
