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
// PERIOD KEYS
// =============================================================================

func TestPeriodKey_ISOWeekAcrossYearBoundary(t *testing.T) {
	tests := []struct {
		day       ledger.Date
		wantKey   string
		wantStart ledger.Date
		wantEnd   ledger.Date
	}{
		{date(2020, time.December, 31), "2020-W53", date(2020, time.December, 28), date(2021, time.January, 3)},
		{date(2021, time.January, 3), "2020-W53", date(2020, time.December, 28), date(2021, time.January, 3)},
		{date(2021, time.January, 4), "2021-W01", date(2021, time.January, 4), date(2021, time.January, 10)},
		{date(2024, time.January, 1), "2024-W01", date(2024, time.January, 1), date(2024, time.January, 7)},
		{date(2024, time.December, 30), "2025-W01", date(2024, time.December, 30), date(2025, time.January, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.day.String(), func(t *testing.T) {
			key := ledger.PeriodWeek.KeyFor(tt.day)
			assert.Equal(t, tt.wantKey, key.String())

			bounds := key.Bounds()
			assert.Equal(t, tt.wantStart, bounds.Start)
			assert.Equal(t, tt.wantEnd, bounds.End)
			assert.Equal(t, time.Monday, bounds.Start.Weekday())
			assert.True(t, bounds.Contains(tt.day))
		})
	}
}

func TestPeriodKey_CalendarBounds(t *testing.T) {
	leapDay := date(2024, time.February, 29)

	month := ledger.PeriodMonth.KeyFor(leapDay)
	assert.Equal(t, "2024-02", month.String())
	assert.Equal(t, date(2024, time.February, 1), month.Bounds().Start)
	assert.Equal(t, date(2024, time.February, 29), month.Bounds().End)
	assert.Equal(t, 29, month.Bounds().Len())

	quarter := ledger.PeriodQuarter.KeyFor(date(2024, time.August, 15))
	assert.Equal(t, "2024-Q3", quarter.String())
	assert.Equal(t, date(2024, time.July, 1), quarter.Bounds().Start)
	assert.Equal(t, date(2024, time.September, 30), quarter.Bounds().End)

	year := ledger.PeriodYear.KeyFor(leapDay)
	assert.Equal(t, "2024", year.String())
	assert.Equal(t, 366, year.Bounds().Len())

	assert.Equal(t, "all", ledger.PeriodAll.KeyFor(leapDay).String())
}

// =============================================================================
// ROLLUPS
// =============================================================================

func TestReport_QuarterOfWeekdays_BucketSums(t *testing.T) {
	// GIVEN: Q1 2024 with an 8h weekday schedule
	start := date(2024, time.January, 1)
	end := date(2024, time.March, 31)
	report := build(t, start, end,
		[]ledger.Schedule{schedule("s-1", start, weekdays, 8*hour)}, nil, nil)

	// THEN: 23 + 21 + 21 weekdays
	months := report.Months()
	require.Len(t, months, 3)
	assert.Equal(t, 23*8*hour, months[0].TargetTime())
	assert.Equal(t, 21*8*hour, months[1].TargetTime())
	assert.Equal(t, 21*8*hour, months[2].TargetTime())
	assert.Equal(t, 23, months[0].DaysWithTargetTime())
	assert.Equal(t, 29, months[1].Len())

	quarters := report.Quarters()
	require.Len(t, quarters, 1)
	assert.Equal(t, 65*8*hour, quarters[0].TargetTime())
	assert.Equal(t, 91, quarters[0].Len())
	assert.Equal(t, 91, quarters[0].MaxDays())

	// AND: ISO weeks 1 to 13, each complete with five working days
	weeks := report.Weeks()
	require.Len(t, weeks, 13)
	for i, week := range weeks {
		assert.Equal(t, i+1, week.Key.Index)
		assert.Equal(t, 7, week.Len())
		assert.Equal(t, 5*8*hour, week.TargetTime())
		assert.Equal(t, 5, week.DaysWithTargetTime())
	}

	years := report.Years()
	require.Len(t, years, 1)
	assert.Equal(t, 91, years[0].Len())
	assert.Equal(t, 366, years[0].MaxDays())

	assert.Equal(t, 65*8*hour, report.All().TargetTime())
	assert.Equal(t, -65*8*hour, report.RunningDelta())
}

func TestReport_BucketsSumTheirDays(t *testing.T) {
	start := date(2024, time.January, 15)
	end := date(2024, time.February, 20)
	report := build(t, start, end,
		[]ledger.Schedule{schedule("s-1", start, weekdays, 8*hour)},
		[]ledger.Event{event("friday-half", date(2024, time.January, 19), "FREQ=WEEKLY;BYDAY=FR", "-0.5", 0)},
		[]ledger.TimeEntry{
			entry(t, "te-1", "2024-01-15T09:00:00+01:00", "2024-01-15T17:00:00+01:00"),
			entry(t, "te-2", "2024-01-31T21:00:00+01:00", "2024-02-01T02:00:00+01:00"),
			entry(t, "te-3", "2024-02-10T10:00:00+01:00", "2024-02-10T12:30:00+01:00"),
		})

	for _, pt := range []ledger.PeriodType{ledger.PeriodWeek, ledger.PeriodMonth, ledger.PeriodQuarter, ledger.PeriodYear, ledger.PeriodAll} {
		for _, bucket := range report.Buckets(pt) {
			var target, actual int64
			withTarget, withActual := 0, 0
			for _, day := range bucket.Days() {
				target += day.TargetTime()
				actual += day.ActualTime()
				if day.TargetTime() != 0 {
					withTarget++
				}
				if day.ActualTime() != 0 {
					withActual++
				}
				assert.True(t, bucket.Period.Contains(day.Date), "%s outside %s", day.ID(), bucket.Key)
			}
			assert.Equal(t, target, bucket.TargetTime(), bucket.Key.String())
			assert.Equal(t, actual, bucket.ActualTime(), bucket.Key.String())
			assert.Equal(t, actual-target, bucket.Delta(), bucket.Key.String())
			assert.Equal(t, withTarget, bucket.DaysWithTargetTime(), bucket.Key.String())
			assert.Equal(t, withActual, bucket.DaysWithActualTime(), bucket.Key.String())
		}
	}

	// AND: the cross-month entry is split between January and February
	months := report.Months()
	require.Len(t, months, 2)
	assert.Equal(t, 8*hour+3*hour, months[0].ActualTime())
	assert.Equal(t, 2*hour+2*hour+hour/2, months[1].ActualTime())
	assert.Equal(t, report.All().Delta(), report.RunningDelta())
}

func TestReport_RangeCutsPeriods(t *testing.T) {
	// GIVEN: Dec 30 2020 to Jan 2 2021, all inside ISO week 2020-W53
	start := date(2020, time.December, 30)
	end := date(2021, time.January, 2)
	report := build(t, start, end, nil, nil, nil)

	weeks := report.Weeks()
	require.Len(t, weeks, 1)
	assert.Equal(t, "2020-W53", weeks[0].Key.String())
	assert.Equal(t, 4, weeks[0].Len())
	assert.Equal(t, 7, weeks[0].MaxDays())

	years := report.Years()
	require.Len(t, years, 2)
	assert.Equal(t, 2, years[0].Len())
	assert.Equal(t, 2, years[1].Len())
	assert.Len(t, report.Months(), 2)
	assert.Len(t, report.Quarters(), 2)

	all := report.All()
	assert.Equal(t, 4, all.Len())
	assert.Equal(t, 4, all.MaxDays())
	assert.Equal(t, start, all.Period.Start)
}

func TestReport_EveryDayOfRangePresent(t *testing.T) {
	start := date(2024, time.February, 25)
	end := date(2024, time.March, 3)
	report := build(t, start, end, nil, nil, nil)

	days := report.Days()
	require.Len(t, days, 8)
	for i, day := range days {
		assert.Equal(t, start.AddDays(i), day.Date)
		assert.Equal(t, int64(0), day.TargetTime())
		assert.Equal(t, int64(0), day.ActualTime())
	}
	assert.False(t, report.All().FulfillmentRate().Valid)
}

func TestReport_FulfillmentRate(t *testing.T) {
	start := date(2024, time.January, 1)
	end := date(2024, time.January, 7)
	report := build(t, start, end,
		[]ledger.Schedule{schedule("s-1", start, weekdays, 8*hour)}, nil,
		[]ledger.TimeEntry{
			entry(t, "te-1", "2024-01-01T08:00:00+00:00", "2024-01-01T18:00:00+00:00"),
			entry(t, "te-2", "2024-01-02T08:00:00+00:00", "2024-01-02T18:00:00+00:00"),
		})

	rate := report.Weeks()[0].FulfillmentRate()
	require.True(t, rate.Valid)
	assert.True(t, rate.Decimal.Equal(decimal.RequireFromString("0.5")), rate.Decimal.String())
	assert.Equal(t, 2, report.Weeks()[0].DaysWithActualTime())
}

func TestReport_RollupIsACopy(t *testing.T) {
	start := date(2024, time.January, 1)
	end := date(2024, time.February, 29)
	report := build(t, start, end, nil, nil, nil)

	months := report.Rollup(ledger.PeriodMonth)
	require.Len(t, months, 2)
	for k := range months {
		delete(months, k)
	}

	assert.Len(t, report.Rollup(ledger.PeriodMonth), 2)
	assert.Len(t, report.Months(), 2)
}
