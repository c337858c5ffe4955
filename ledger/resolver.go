/*
resolver.go - Builds a Report from schedules, events and time entries

PURPOSE:
  The Resolver is the orchestrator of the engine. For one user, one
  workspace and one date range it produces the day ledger and its rollups.

STEPS (order matters for correctness):
  1. Create one Day per date in [start, end]
  2. Expand every schedule's recurrence over the range, attach to its days
  3. Expand every event's recurrence over the range, attach to its days
  4. Slice every closed time entry at local midnight, attach each slice to
     the day of its start; slices outside the range are dropped
  5. Roll the days up into week, month, quarter, year and "all" buckets

TIMEZONE TOLERANCE:
  Entries are stored as UTC instants but bucketed by local date. An entry
  recorded at 23:00 on Jan 31 at +14:00 is 09:00 UTC the same day; one
  recorded at 01:00 on Feb 1 at -12:00 is 13:00 UTC. CreateReport therefore
  fetches entries in a window widened by TimezoneTolerance on both sides
  and lets step 4 drop what falls outside after precise conversion.

PURITY:
  Build performs no I/O and has no shared state: the same inputs always
  give the same report, and concurrent calls never interact.
  CreateReport = fetch from Source + Build.

SEE ALSO:
  - slice.go: midnight splitting
  - recurrence/recurrence.go: rule expansion
*/
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/warp/worktime/recurrence"
)

// DefaultTimezoneTolerance covers the widest UTC offsets in use (-12:00 to +14:00).
const DefaultTimezoneTolerance = 15 * time.Hour

// Request identifies one report.
type Request struct {
	UserID      UserID
	WorkspaceID WorkspaceID
	Start       Date
	End         Date
}

// Resolver creates reports from a Source.
type Resolver struct {
	Source            Source
	TimezoneTolerance time.Duration
	Logger            *slog.Logger
}

func NewResolver(source Source) *Resolver {
	return &Resolver{
		Source:            source,
		TimezoneTolerance: DefaultTimezoneTolerance,
		Logger:            slog.Default(),
	}
}

// FetchWindow returns the UTC window used to fetch time entries for the
// date range [start, end].
func (r *Resolver) FetchWindow(start, end Date) (from, to time.Time) {
	return start.Midnight().Add(-r.TimezoneTolerance),
		end.AddDays(1).Midnight().Add(r.TimezoneTolerance)
}

// CreateReport loads the records of user in workspace and builds the report
// for [start, end]. A malformed rule or interval aborts the whole report.
func (r *Resolver) CreateReport(ctx context.Context, user UserID, workspace WorkspaceID, start, end Date) (*Report, error) {
	req := Request{UserID: user, WorkspaceID: workspace, Start: start, End: end}
	if end.Before(start) {
		return nil, fmt.Errorf("report %s..%s: %w", start, end, ErrInvalidRange)
	}

	schedules, err := r.Source.Schedules(ctx, user, workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedules: %w", err)
	}

	events, err := r.Source.Events(ctx, user, workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	from, to := r.FetchWindow(start, end)
	entries, err := r.Source.TimeEntries(ctx, user, workspace, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load time entries: %w", err)
	}

	closed := make([]TimeEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Running() {
			r.logger().Debug("skipping running time entry",
				slog.String("entry", string(entry.ID)),
				slog.String("user", string(user)))
			continue
		}
		closed = append(closed, entry)
	}

	report, err := Build(req, schedules, events, closed)
	if err != nil {
		return nil, err
	}

	r.logger().Info("report created",
		slog.String("user", string(user)),
		slog.String("workspace", string(workspace)),
		slog.String("period", report.Period.String()),
		slog.Int("schedules", len(schedules)),
		slog.Int("events", len(events)),
		slog.Int("time_entries", len(closed)))
	return report, nil
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Build constructs the report for req from already-fetched records.
// Running entries are ignored; entries and dates outside the range are
// dropped. Schedule and event ids must be unique within their kind.
func Build(req Request, schedules []Schedule, events []Event, entries []TimeEntry) (*Report, error) {
	if req.End.Before(req.Start) {
		return nil, fmt.Errorf("report %s..%s: %w", req.Start, req.End, ErrInvalidRange)
	}

	report := newReport(req.UserID, req.WorkspaceID, Period{Start: req.Start, End: req.End})

	seenSchedules := make(map[ScheduleID]bool, len(schedules))
	for _, schedule := range schedules {
		if err := schedule.Validate(); err != nil {
			return nil, err
		}
		if seenSchedules[schedule.ID] {
			return nil, &RecordError{Kind: "schedule", ID: string(schedule.ID), Reason: "duplicate id"}
		}
		seenSchedules[schedule.ID] = true
		dates, err := occurrences("schedule", string(schedule.ID), schedule.RRule, schedule.StartDate, report.Period)
		if err != nil {
			return nil, err
		}
		for _, date := range dates {
			if day := report.days[date.ID()]; day != nil {
				day.addSchedule(schedule)
			}
		}
	}

	seenEvents := make(map[EventID]bool, len(events))
	for _, event := range events {
		if err := event.Validate(); err != nil {
			return nil, err
		}
		if seenEvents[event.ID] {
			return nil, &RecordError{Kind: "event", ID: string(event.ID), Reason: "duplicate id"}
		}
		seenEvents[event.ID] = true
		dates, err := occurrences("event", string(event.ID), event.RRule, event.StartDate, report.Period)
		if err != nil {
			return nil, err
		}
		for _, date := range dates {
			if day := report.days[date.ID()]; day != nil {
				day.addEvent(event)
			}
		}
	}

	for _, entry := range entries {
		if entry.Running() {
			continue
		}
		slices, err := SliceEntry(entry)
		if err != nil {
			return nil, err
		}
		for _, slice := range slices {
			if day := report.days[slice.Date().ID()]; day != nil {
				day.addSlice(slice)
			}
		}
	}

	report.aggregate()
	return report, nil
}

// occurrences expands a record's rule over the period.
func occurrences(kind, id, rule string, seed Date, period Period) ([]Date, error) {
	times, err := recurrence.Expand(rule, seed.Midnight(), period.Start.Midnight(), period.End.Midnight())
	if err != nil {
		return nil, &RecordError{Kind: kind, ID: id, Reason: "cannot expand recurrence", Err: err}
	}

	dates := make([]Date, len(times))
	for i, t := range times {
		dates[i] = DateOf(t.UTC())
	}
	return dates, nil
}
