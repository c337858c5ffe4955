/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates schedules, events and
	time entries for one user and workspace that demonstrate specific
	features of the reconciliation.

AVAILABLE SCENARIOS:

	full-time:   Weekday 8h schedule, a public holiday, short Fridays
	part-time:   Mon/Wed/Fri 4h schedule, monthly team day, overtime
	night-shift: Shifts crossing midnight, a UTC offset change, a running entry

RELATIVE DATES:

	Data is generated for the four weeks before the current week and the
	current week up to yesterday, so the default report (month start to
	today) always shows something.

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create schedules
 3. Create events
 4. Create time entries in one batch

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "night-shift"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description, user, workspace
 2. Create loader function: loadXxxScenario(ctx, today)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase handler
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/worktime/ledger"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "full-time",
		Name:        "Full Time",
		Description: "Weekday 8h schedule with a public holiday and short Fridays",
		UserID:      "alice",
		WorkspaceID: "acme",
	},
	{
		ID:          "part-time",
		Name:        "Part Time",
		Description: "Mon/Wed/Fri 4h schedule, monthly team day, some overtime",
		UserID:      "bob",
		WorkspaceID: "acme",
	},
	{
		ID:          "night-shift",
		Name:        "Night Shift",
		Description: "Shifts crossing midnight, a UTC offset change and a running entry",
		UserID:      "carol",
		WorkspaceID: "hospital",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.getCurrentScenario()
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var load func(context.Context, ledger.Date) error
	switch req.ScenarioID {
	case "full-time":
		load = h.loadFullTimeScenario
	case "part-time":
		load = h.loadPartTimeScenario
	case "night-shift":
		load = h.loadNightShiftScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()

	// One load at a time, so reset and load of two requests never interleave
	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	if err := load(ctx, h.Today()); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID
	h.Logger.Info("scenario loaded", "scenario", req.ScenarioID)

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

func (h *Handler) getCurrentScenario() string {
	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()
	return h.currentScenario
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

const hour = int64(time.Hour / time.Second)

func (h *Handler) loadFullTimeScenario(ctx context.Context, today ledger.Date) error {
	const user, workspace = ledger.UserID("alice"), ledger.WorkspaceID("acme")
	start := mondayOf(today).AddDays(-28)
	holiday := start.AddDays(2)
	cet := 3600

	if err := h.Store.SaveSchedule(ctx, ledger.Schedule{
		ID: "full-time", UserID: user, WorkspaceID: workspace, Name: "Full time",
		StartDate: start, RRule: "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR", Target: 8 * hour,
	}); err != nil {
		return err
	}

	events := []ledger.Event{
		{
			ID: "public-holiday", UserID: user, WorkspaceID: workspace, Name: "Public holiday",
			StartDate: holiday, ModRelative: decimal.NewFromInt(-1),
		},
		{
			ID: "short-friday", UserID: user, WorkspaceID: workspace, Name: "Short Friday",
			StartDate: start.AddDays(4), RRule: "FREQ=WEEKLY;BYDAY=FR", ModAbsolute: -2 * hour,
		},
	}
	for _, e := range events {
		if err := h.Store.SaveEvent(ctx, e); err != nil {
			return err
		}
	}

	var entries []ledger.TimeEntry
	for d := start; d.Before(today); d = d.AddDays(1) {
		if d.Equal(holiday) || d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		finish := 17
		if d.Weekday() == time.Friday {
			finish = 15
		}
		entries = append(entries,
			entryOn(user, workspace, d, "am", at(d, 9, 0, cet), at(d, 12, 30, cet)),
			entryOn(user, workspace, d, "pm", at(d, 13, 15, cet), at(d, finish, 45, cet)),
		)
	}
	return h.Store.SaveTimeEntries(ctx, entries)
}

func (h *Handler) loadPartTimeScenario(ctx context.Context, today ledger.Date) error {
	const user, workspace = ledger.UserID("bob"), ledger.WorkspaceID("acme")
	start := mondayOf(today).AddDays(-28)
	cet := 3600

	if err := h.Store.SaveSchedule(ctx, ledger.Schedule{
		ID: "part-time", UserID: user, WorkspaceID: workspace, Name: "Part time",
		StartDate: start, RRule: "FREQ=WEEKLY;BYDAY=MO,WE,FR", Target: 4 * hour,
	}); err != nil {
		return err
	}
	if err := h.Store.SaveEvent(ctx, ledger.Event{
		ID: "team-day", UserID: user, WorkspaceID: workspace, Name: "Team day",
		StartDate: start.AddMonths(-1), RRule: "FREQ=MONTHLY;BYDAY=+1TH", ModAbsolute: 6 * hour,
	}); err != nil {
		return err
	}

	var entries []ledger.TimeEntry
	for d := start; d.Before(today); d = d.AddDays(1) {
		switch d.Weekday() {
		case time.Monday, time.Wednesday:
			entries = append(entries, entryOn(user, workspace, d, "work", at(d, 8, 0, cet), at(d, 12, 0, cet)))
		case time.Friday:
			// Overtime on Fridays
			entries = append(entries, entryOn(user, workspace, d, "work", at(d, 8, 0, cet), at(d, 13, 30, cet)))
		case time.Thursday:
			if d.Day() <= 7 {
				entries = append(entries, entryOn(user, workspace, d, "team-day", at(d, 10, 0, cet), at(d, 16, 0, cet)))
			}
		}
	}
	return h.Store.SaveTimeEntries(ctx, entries)
}

func (h *Handler) loadNightShiftScenario(ctx context.Context, today ledger.Date) error {
	const user, workspace = ledger.UserID("carol"), ledger.WorkspaceID("hospital")
	start := mondayOf(today).AddDays(-28)
	summer, winter := 7200, 3600

	if err := h.Store.SaveSchedule(ctx, ledger.Schedule{
		ID: "night-shift", UserID: user, WorkspaceID: workspace, Name: "Night shift",
		StartDate: start, RRule: "FREQ=WEEKLY;BYDAY=SU,MO,TU,WE", Target: 8 * hour,
	}); err != nil {
		return err
	}

	// Shifts run 22:00 to 06:00 and are booked on the evening's schedule.
	// The clocks go back in the middle of the third week.
	offsetChange := start.AddDays(16)
	var entries []ledger.TimeEntry
	for d := start; d.Before(today.AddDays(-1)); d = d.AddDays(1) {
		switch d.Weekday() {
		case time.Sunday, time.Monday, time.Tuesday, time.Wednesday:
		default:
			continue
		}
		startOffset, stopOffset := summer, summer
		if !d.Before(offsetChange) {
			startOffset, stopOffset = winter, winter
		}
		if d.Equal(offsetChange.AddDays(-1)) {
			stopOffset = winter
		}
		next := d.AddDays(1)
		entries = append(entries, entryOn(user, workspace, d, "shift", at(d, 22, 0, startOffset), at(next, 6, 0, stopOffset)))
	}

	running := ledger.NewTimeEntry("shift-running", user, workspace, at(today.AddDays(-1), 22, 0, winter), time.Time{})
	running.Description = "current shift"
	entries = append(entries, running)

	return h.Store.SaveTimeEntries(ctx, entries)
}

// =============================================================================
// HELPERS
// =============================================================================

func mondayOf(d ledger.Date) ledger.Date {
	return d.AddDays(-((int(d.Weekday()) + 6) % 7))
}

func at(d ledger.Date, hh, mm, offset int) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), hh, mm, 0, 0, time.FixedZone("", offset))
}

func entryOn(user ledger.UserID, workspace ledger.WorkspaceID, d ledger.Date, suffix string, start, stop time.Time) ledger.TimeEntry {
	te := ledger.NewTimeEntry(ledger.TimeEntryID(d.String()+"-"+suffix), user, workspace, start, stop)
	te.Description = suffix
	return te
}
