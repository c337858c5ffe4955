package recurrence_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/worktime/recurrence"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestExpand_NoRule_ReturnsSeedOnly(t *testing.T) {
	// GIVEN: a one-off record seeded outside the requested range
	// THEN: the seed is returned anyway; range checks belong to the caller
	got, err := recurrence.Expand("", date(2023, time.June, 5), date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(2023, time.June, 5)}, got)
}

func TestExpand_Weekdays(t *testing.T) {
	// 2024-01-01 is a Monday
	got, err := recurrence.Expand("FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR",
		date(2024, time.January, 1), date(2024, time.January, 1), date(2024, time.January, 14))
	require.NoError(t, err)

	require.Len(t, got, 10)
	for _, d := range got {
		assert.NotEqual(t, time.Saturday, d.Weekday())
		assert.NotEqual(t, time.Sunday, d.Weekday())
	}
	assert.Equal(t, date(2024, time.January, 1), got[0])
	assert.Equal(t, date(2024, time.January, 12), got[9])
}

func TestExpand_BoundsAreInclusive(t *testing.T) {
	got, err := recurrence.Expand("FREQ=DAILY", date(2024, time.January, 1),
		date(2024, time.January, 3), date(2024, time.January, 5))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2024, time.January, 3),
		date(2024, time.January, 4),
		date(2024, time.January, 5),
	}, got)
}

func TestExpand_NeverLeavesRange(t *testing.T) {
	rules := []string{
		"FREQ=DAILY",
		"FREQ=WEEKLY;BYDAY=SA,SU",
		"FREQ=MONTHLY;BYMONTHDAY=1,15",
		"FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=24",
		"RRULE:FREQ=DAILY;INTERVAL=3",
	}
	start, end := date(2024, time.February, 10), date(2024, time.December, 31)

	for _, rule := range rules {
		t.Run(rule, func(t *testing.T) {
			got, err := recurrence.Expand(rule, date(2023, time.March, 1), start, end)
			require.NoError(t, err)
			require.NotEmpty(t, got)
			for _, d := range got {
				assert.False(t, d.Before(start), "%s before range", d)
				assert.False(t, d.After(end), "%s after range", d)
			}
		})
	}
}

func TestExpand_CountEndsBeforeRange(t *testing.T) {
	got, err := recurrence.Expand("FREQ=DAILY;COUNT=3", date(2024, time.January, 1),
		date(2024, time.February, 1), date(2024, time.February, 28))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExpand_Until(t *testing.T) {
	got, err := recurrence.Expand("FREQ=DAILY;UNTIL=20240103T000000Z", date(2024, time.January, 1),
		date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestExpand_MalformedRule_NamesRule(t *testing.T) {
	for _, rule := range []string{"FREQ=SOMETIMES", "BYDAY=MO", "not a rule"} {
		t.Run(rule, func(t *testing.T) {
			_, err := recurrence.Expand(rule, date(2024, time.January, 1),
				date(2024, time.January, 1), date(2024, time.January, 31))
			require.Error(t, err)
			assert.True(t, errors.Is(err, recurrence.ErrInvalidRule))
			assert.Contains(t, err.Error(), rule)

			var ruleErr *recurrence.RuleError
			require.ErrorAs(t, err, &ruleErr)
			assert.Equal(t, rule, ruleErr.Rule)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, recurrence.Validate(""))
	assert.NoError(t, recurrence.Validate("FREQ=WEEKLY;BYDAY=MO"))
	assert.NoError(t, recurrence.Validate("rrule:freq=weekly;byday=mo"))
	assert.ErrorIs(t, recurrence.Validate("FREQ=WEEKLY;BYDAY=XX"), recurrence.ErrInvalidRule)
}

func TestExpand_LowercaseRule(t *testing.T) {
	// Property names and values are case-insensitive
	lower, err := recurrence.Expand("freq=weekly;byday=mo,we", date(2024, time.January, 1),
		date(2024, time.January, 1), date(2024, time.January, 14))
	require.NoError(t, err)

	upper, err := recurrence.Expand("FREQ=WEEKLY;BYDAY=MO,WE", date(2024, time.January, 1),
		date(2024, time.January, 1), date(2024, time.January, 14))
	require.NoError(t, err)

	assert.Equal(t, upper, lower)
	assert.Len(t, lower, 4)
}
