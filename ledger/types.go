/*
Package ledger provides the work-time reconciliation engine.

PURPOSE:
  This package compares the time a user actually recorded against the time
  they were expected to work. Expected time comes from recurring schedules
  and events, recorded time comes from time entries. The result is a Report:
  one Day per calendar date plus week, month, quarter, year and all-time
  rollups.

KEY CONCEPTS IN THIS FILE (types.go):
  - Schedule: recurring baseline target time (seconds per occurrence)
  - Event: recurring or one-off modifier (relative and absolute)
  - TimeEntry: a closed start/stop interval with the UTC offset of each end
  - Identifiers: type-safe user/workspace/record IDs

DESIGN PRINCIPLES:
  1. Pure computation: Build has no I/O and returns the same report for the same inputs
  2. Precision: modifiers use decimal.Decimal, never float64 arithmetic
  3. Fail fast: a malformed rule or interval aborts the report, it is never guessed
  4. Local days: time is bucketed by the user's local date at the moment it was recorded

USAGE:
  resolver := ledger.NewResolver(source)
  report, err := resolver.CreateReport(ctx, "user-1", "ws-1",
      ledger.NewDate(2024, time.January, 1), ledger.NewDate(2024, time.March, 31))

SEE ALSO:
  - day.go: per-day target/actual arithmetic
  - slice.go: splitting entries at local midnight
  - resolver.go: report construction
  - period.go, bucket.go: calendar rollups
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type WorkspaceID string
type ScheduleID string
type EventID string
type TimeEntryID string

// =============================================================================
// SCHEDULE - Baseline expected work time
// =============================================================================

// Schedule defines how many seconds of work are expected on every date its
// rule fires. Without a rule it applies to StartDate only.
type Schedule struct {
	ID          ScheduleID
	UserID      UserID
	WorkspaceID WorkspaceID
	Name        string
	StartDate   Date
	RRule       string
	Target      int64 // seconds, >= 0
}

// Validate checks the record invariants.
func (s Schedule) Validate() error {
	if s.ID == "" {
		return &RecordError{Kind: "schedule", Reason: "id is required"}
	}
	if s.Target < 0 {
		return &RecordError{Kind: "schedule", ID: string(s.ID), Reason: "target must not be negative"}
	}
	if s.StartDate.IsZero() {
		return &RecordError{Kind: "schedule", ID: string(s.ID), Reason: "start date is required"}
	}
	return nil
}

// =============================================================================
// EVENT - Modifier applied on top of schedules
// =============================================================================

// Event adjusts the target of the days it applies to. ModRelative is a
// fraction of the combined schedule base (-1 removes it entirely, -0.5
// halves it), ModAbsolute is a flat number of seconds.
type Event struct {
	ID          EventID
	UserID      UserID
	WorkspaceID WorkspaceID
	Name        string
	StartDate   Date
	RRule       string
	ModRelative decimal.Decimal
	ModAbsolute int64
}

func (e Event) Validate() error {
	if e.ID == "" {
		return &RecordError{Kind: "event", Reason: "id is required"}
	}
	if e.StartDate.IsZero() {
		return &RecordError{Kind: "event", ID: string(e.ID), Reason: "start date is required"}
	}
	return nil
}

// =============================================================================
// TIME ENTRY - Recorded work
// =============================================================================

// TimeEntry is one recorded interval of work. Start and Stop are instants;
// StartOffset and StopOffset are the UTC offsets (seconds east) that were in
// effect at each end, which decide the local days the entry falls on.
//
// A zero Stop means the entry is still running.
type TimeEntry struct {
	ID          TimeEntryID
	UserID      UserID
	WorkspaceID WorkspaceID
	Description string
	Start       time.Time
	StartOffset int
	Stop        time.Time
	StopOffset  int
}

// NewTimeEntry builds an entry from two offset-carrying timestamps, e.g. as
// parsed from "2024-01-01T22:00:00+01:00". The offset of each timestamp is
// kept as that endpoint's offset.
func NewTimeEntry(id TimeEntryID, user UserID, workspace WorkspaceID, start, stop time.Time) TimeEntry {
	_, startOffset := start.Zone()
	entry := TimeEntry{
		ID:          id,
		UserID:      user,
		WorkspaceID: workspace,
		Start:       start.UTC(),
		StartOffset: startOffset,
	}
	if !stop.IsZero() {
		_, stopOffset := stop.Zone()
		entry.Stop = stop.UTC()
		entry.StopOffset = stopOffset
	}
	return entry
}

// Running reports whether the entry has no stop yet.
func (te TimeEntry) Running() bool { return te.Stop.IsZero() }

// LocalStart returns Start in the fixed zone of StartOffset.
func (te TimeEntry) LocalStart() time.Time {
	return te.Start.In(time.FixedZone("", te.StartOffset))
}

// LocalStop returns Stop in the fixed zone of StopOffset.
func (te TimeEntry) LocalStop() time.Time {
	return te.Stop.In(time.FixedZone("", te.StopOffset))
}

// Duration is the elapsed time between the two instants.
func (te TimeEntry) Duration() time.Duration {
	if te.Running() {
		return 0
	}
	return te.Stop.Sub(te.Start)
}

// Validate rejects intervals that stop before they start.
func (te TimeEntry) Validate() error {
	if te.Running() {
		return ErrRunningInterval
	}
	if te.Stop.Before(te.Start) {
		return &InvalidIntervalError{EntryID: te.ID, Start: te.LocalStart(), Stop: te.LocalStop()}
	}
	return nil
}
