package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/warp/worktime/ledger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const (
	hour   = int64(3600)
	user   = ledger.UserID("user-1")
	wspace = ledger.WorkspaceID("ws-1")
)

func date(year int, month time.Month, day int) ledger.Date {
	return ledger.NewDate(year, month, day)
}

func at(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return parsed
}

func entry(t *testing.T, id, start, stop string) ledger.TimeEntry {
	t.Helper()
	return ledger.NewTimeEntry(ledger.TimeEntryID(id), user, wspace, at(t, start), at(t, stop))
}

func schedule(id string, seed ledger.Date, rule string, target int64) ledger.Schedule {
	return ledger.Schedule{
		ID:          ledger.ScheduleID(id),
		UserID:      user,
		WorkspaceID: wspace,
		Name:        id,
		StartDate:   seed,
		RRule:       rule,
		Target:      target,
	}
}

func event(id string, seed ledger.Date, rule string, relative string, absolute int64) ledger.Event {
	return ledger.Event{
		ID:          ledger.EventID(id),
		UserID:      user,
		WorkspaceID: wspace,
		Name:        id,
		StartDate:   seed,
		RRule:       rule,
		ModRelative: decimal.RequireFromString(relative),
		ModAbsolute: absolute,
	}
}

func build(t *testing.T, start, end ledger.Date, schedules []ledger.Schedule, events []ledger.Event, entries []ledger.TimeEntry) *ledger.Report {
	t.Helper()
	report, err := ledger.Build(ledger.Request{UserID: user, WorkspaceID: wspace, Start: start, End: end},
		schedules, events, entries)
	require.NoError(t, err)
	return report
}

const weekdays = "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR"
