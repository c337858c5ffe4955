/*
Package sqlite provides a SQLite-backed ledger.Source.

PURPOSE:
  Persists the schedules, events and time entries that the sync layer
  mirrors from the calendar and the time-tracking service, and serves them
  to the resolver. The same patterns apply to PostgreSQL with only minor
  SQL dialect differences.

INTERFACES IMPLEMENTED:
  ledger.Source: Schedules, Events, TimeEntries

KEY TABLES:
  schedules:    Recurring expected work (target seconds per occurrence)
  events:       Recurring target modifiers (relative fraction, absolute seconds)
  time_entries: Recorded intervals; stop_at is NULL while running

  Every table is keyed by (user_id, workspace_id, id): records of one user
  and workspace never see another's.

TIME STORAGE:
  Instants are stored in UTC with a fixed-width layout so that string
  comparison in SQL orders them chronologically. The UTC offset of each
  endpoint is stored next to it in seconds. Dates are stored as
  YYYY-MM-DD. Decimal modifiers are stored as their exact string form.

INDEXES:
  - idx_time_entries_owner_start: fetch window (hot path)
  - idx_time_entries_owner_stop:  entries reaching into the window

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

USAGE:
  store, err := sqlite.New("./data/worktime.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  resolver := ledger.NewResolver(store)

SEE ALSO:
  - ledger/source.go: Source interface and the overlap filter
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/worktime/ledger"
)

// ErrNotFound is returned when deleting a record that does not exist.
var ErrNotFound = errors.New("record not found")

// instantLayout is fixed-width so that stored instants sort lexically.
const instantLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements ledger.Source using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ ledger.Source = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Schedules (expected work)
	CREATE TABLE IF NOT EXISTS schedules (
		id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		workspace_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL,
		rrule TEXT NOT NULL DEFAULT '',
		target INTEGER NOT NULL CHECK (target >= 0),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, workspace_id, id)
	);

	-- Events (target modifiers)
	CREATE TABLE IF NOT EXISTS events (
		id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		workspace_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL,
		rrule TEXT NOT NULL DEFAULT '',
		mod_relative TEXT NOT NULL DEFAULT '0',
		mod_absolute INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, workspace_id, id)
	);

	-- Time entries (recorded work)
	CREATE TABLE IF NOT EXISTS time_entries (
		id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		workspace_id TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		start_at TEXT NOT NULL,
		start_offset INTEGER NOT NULL DEFAULT 0,
		stop_at TEXT,
		stop_offset INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, workspace_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_time_entries_owner_start
		ON time_entries(user_id, workspace_id, start_at);
	CREATE INDEX IF NOT EXISTS idx_time_entries_owner_stop
		ON time_entries(user_id, workspace_id, stop_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SCHEDULES
// =============================================================================

// SaveSchedule inserts or replaces a schedule.
func (s *Store) SaveSchedule(ctx context.Context, sch ledger.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO schedules (id, user_id, workspace_id, name, start_date, rrule, target, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, workspace_id, id) DO UPDATE SET
			name = excluded.name,
			start_date = excluded.start_date,
			rrule = excluded.rrule,
			target = excluded.target,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		sch.ID, sch.UserID, sch.WorkspaceID, sch.Name,
		sch.StartDate.String(), sch.RRule, sch.Target,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save schedule %s: %w", sch.ID, err)
	}
	return nil
}

// Schedules returns all schedules of the user in the workspace, ordered by ID.
func (s *Store) Schedules(ctx context.Context, user ledger.UserID, workspace ledger.WorkspaceID) ([]ledger.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, workspace_id, name, start_date, rrule, target
		FROM schedules
		WHERE user_id = ? AND workspace_id = ?
		ORDER BY id`,
		user, workspace,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []ledger.Schedule
	for rows.Next() {
		var (
			sch       ledger.Schedule
			startDate string
		)
		if err := rows.Scan(&sch.ID, &sch.UserID, &sch.WorkspaceID, &sch.Name, &startDate, &sch.RRule, &sch.Target); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		if sch.StartDate, err = ledger.ParseDate(startDate); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", sch.ID, err)
		}
		schedules = append(schedules, sch)
	}
	return schedules, rows.Err()
}

// DeleteSchedule removes a schedule.
func (s *Store) DeleteSchedule(ctx context.Context, user ledger.UserID, workspace ledger.WorkspaceID, id ledger.ScheduleID) error {
	return s.delete(ctx, "schedules", "schedule", string(user), string(workspace), string(id))
}

// =============================================================================
// EVENTS
// =============================================================================

// SaveEvent inserts or replaces an event.
func (s *Store) SaveEvent(ctx context.Context, e ledger.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO events (id, user_id, workspace_id, name, start_date, rrule, mod_relative, mod_absolute, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, workspace_id, id) DO UPDATE SET
			name = excluded.name,
			start_date = excluded.start_date,
			rrule = excluded.rrule,
			mod_relative = excluded.mod_relative,
			mod_absolute = excluded.mod_absolute,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.WorkspaceID, e.Name,
		e.StartDate.String(), e.RRule, e.ModRelative.String(), e.ModAbsolute,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save event %s: %w", e.ID, err)
	}
	return nil
}

// Events returns all events of the user in the workspace, ordered by ID.
func (s *Store) Events(ctx context.Context, user ledger.UserID, workspace ledger.WorkspaceID) ([]ledger.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, workspace_id, name, start_date, rrule, mod_relative, mod_absolute
		FROM events
		WHERE user_id = ? AND workspace_id = ?
		ORDER BY id`,
		user, workspace,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []ledger.Event
	for rows.Next() {
		var (
			e                   ledger.Event
			startDate, relative string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.WorkspaceID, &e.Name, &startDate, &e.RRule, &relative, &e.ModAbsolute); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if e.StartDate, err = ledger.ParseDate(startDate); err != nil {
			return nil, fmt.Errorf("event %s: %w", e.ID, err)
		}
		if e.ModRelative, err = decimal.NewFromString(relative); err != nil {
			return nil, fmt.Errorf("event %s: invalid relative modifier %q: %w", e.ID, relative, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteEvent removes an event.
func (s *Store) DeleteEvent(ctx context.Context, user ledger.UserID, workspace ledger.WorkspaceID, id ledger.EventID) error {
	return s.delete(ctx, "events", "event", string(user), string(workspace), string(id))
}

// =============================================================================
// TIME ENTRIES
// =============================================================================

// SaveTimeEntry inserts or replaces a time entry.
func (s *Store) SaveTimeEntry(ctx context.Context, te ledger.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveTimeEntry(ctx, s.db, te)
}

// SaveTimeEntries inserts or replaces multiple entries atomically.
func (s *Store) SaveTimeEntries(ctx context.Context, entries []ledger.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, te := range entries {
		if err := s.saveTimeEntry(ctx, tx, te); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) saveTimeEntry(ctx context.Context, db execer, te ledger.TimeEntry) error {
	query := `
		INSERT INTO time_entries
		(id, user_id, workspace_id, description, start_at, start_offset, stop_at, stop_offset, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, workspace_id, id) DO UPDATE SET
			description = excluded.description,
			start_at = excluded.start_at,
			start_offset = excluded.start_offset,
			stop_at = excluded.stop_at,
			stop_offset = excluded.stop_offset,
			updated_at = excluded.updated_at
	`

	var stopAt sql.NullString
	if !te.Running() {
		stopAt = sql.NullString{String: formatInstant(te.Stop), Valid: true}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.ExecContext(ctx, query,
		te.ID, te.UserID, te.WorkspaceID, te.Description,
		formatInstant(te.Start), te.StartOffset,
		stopAt, te.StopOffset,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save time entry %s: %w", te.ID, err)
	}
	return nil
}

// TimeEntries returns the entries overlapping [from, to], ordered by start.
// The filter matches ledger.TimeEntry.Overlaps.
func (s *Store) TimeEntries(ctx context.Context, user ledger.UserID, workspace ledger.WorkspaceID, from, to time.Time) ([]ledger.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, t := formatInstant(from), formatInstant(to)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, workspace_id, description, start_at, start_offset, stop_at, stop_offset
		FROM time_entries
		WHERE user_id = ? AND workspace_id = ?
		  AND (
		        (start_at >= ? AND start_at <= ?)
		     OR (stop_at IS NULL AND start_at < ?)
		     OR (stop_at >= ? AND stop_at <= ?)
		     OR (start_at <= ? AND stop_at >= ?)
		  )
		ORDER BY start_at, id`,
		user, workspace,
		f, t,
		f,
		f, t,
		f, t,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.TimeEntry
	for rows.Next() {
		te, err := scanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, te)
	}
	return entries, rows.Err()
}

// DeleteTimeEntry removes a time entry.
func (s *Store) DeleteTimeEntry(ctx context.Context, user ledger.UserID, workspace ledger.WorkspaceID, id ledger.TimeEntryID) error {
	return s.delete(ctx, "time_entries", "time entry", string(user), string(workspace), string(id))
}

func scanTimeEntry(rows *sql.Rows) (ledger.TimeEntry, error) {
	var (
		te      ledger.TimeEntry
		startAt string
		stopAt  sql.NullString
	)

	err := rows.Scan(
		&te.ID, &te.UserID, &te.WorkspaceID, &te.Description,
		&startAt, &te.StartOffset, &stopAt, &te.StopOffset,
	)
	if err != nil {
		return te, fmt.Errorf("failed to scan time entry: %w", err)
	}

	if te.Start, err = parseInstant(startAt); err != nil {
		return te, fmt.Errorf("time entry %s: %w", te.ID, err)
	}
	if stopAt.Valid {
		if te.Stop, err = parseInstant(stopAt.String); err != nil {
			return te, fmt.Errorf("time entry %s: %w", te.ID, err)
		}
	}
	return te, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"time_entries", "events", "schedules"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of stored rows per table.
func (s *Store) Count(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, table := range []string{"schedules", "events", "time_entries"} {
		var n int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, err
		}
		counts[table] = n
	}
	return counts, nil
}

func (s *Store) delete(ctx context.Context, table, kind, user, workspace, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM "+table+" WHERE user_id = ? AND workspace_id = ? AND id = ?",
		user, workspace, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(instantLayout)
}

func parseInstant(s string) (time.Time, error) {
	t, err := time.Parse(instantLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored instant %q: %w", s, err)
	}
	return t.UTC(), nil
}
