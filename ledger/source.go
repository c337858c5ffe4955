/*
source.go - Repository interface the resolver reads from

PURPOSE:
  Defines the boundary between the reconciliation engine and wherever
  schedules, events and time entries are kept. The engine never writes;
  the sync layer that mirrors the calendar and the time-tracking service
  owns the data.

IMPLEMENTATIONS:
  - ledger/store/memory.go: In-memory for testing
  - store/sqlite/sqlite.go: SQLite

TIME ENTRY FILTER:
  TimeEntries(from, to) returns every entry that starts in [from, to],
  stops in [from, to], or spans the whole window. The resolver passes a
  window widened by the timezone tolerance, so implementations can filter
  on UTC instants without losing entries near the range edges.
*/
package ledger

import (
	"context"
	"time"
)

// Source supplies the raw records for one user and workspace.
type Source interface {
	// Schedules returns all schedules of the user in the workspace.
	Schedules(ctx context.Context, user UserID, workspace WorkspaceID) ([]Schedule, error)

	// Events returns all events of the user in the workspace.
	Events(ctx context.Context, user UserID, workspace WorkspaceID) ([]Event, error)

	// TimeEntries returns the entries overlapping [from, to] (UTC instants).
	TimeEntries(ctx context.Context, user UserID, workspace WorkspaceID, from, to time.Time) ([]TimeEntry, error)
}

// Overlaps reports whether the entry should be returned for the window
// [from, to]. Sources use it so that all of them filter identically.
// Running entries overlap if they started before the window ends.
func (te TimeEntry) Overlaps(from, to time.Time) bool {
	inWindow := func(t time.Time) bool { return !t.Before(from) && !t.After(to) }
	if inWindow(te.Start) {
		return true
	}
	if te.Running() {
		return te.Start.Before(from)
	}
	return inWindow(te.Stop) || (!te.Start.After(from) && !te.Stop.Before(to))
}
