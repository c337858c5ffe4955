/*
handlers.go - HTTP API handlers for the work-time reconciliation engine

PURPOSE:
  Exposes the reconciliation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the ledger.

ENDPOINTS:
  All record and report routes are scoped to one user and workspace:
    /api/users/{user}/workspaces/{workspace}

  Report:
    GET    .../report?start=&end=&format=   Day ledger and rollups
                                            (format=text for plain text)

  Schedules:
    GET    .../schedules                    List schedules
    POST   .../schedules                    Create or replace a schedule
    DELETE .../schedules/{id}               Remove a schedule

  Events:
    GET    .../events                       List events
    POST   .../events                       Create or replace an event
    DELETE .../events/{id}                  Remove an event

  Time entries:
    GET    .../time-entries?from=&to=       Entries overlapping the window
    POST   .../time-entries                 Store a batch atomically
    DELETE .../time-entries/{id}            Remove an entry

  Scenarios:
    GET    /api/scenarios                   List demo scenarios
    POST   /api/scenarios/load              Load a demo scenario
    POST   /api/scenarios/reset             Clear all data

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access (also the resolver's Source)
  - Resolver: Report construction
  - Reconcile: Default report start

REQUEST FLOW:
  1. Parse HTTP request
  2. Convert payload (dto.go), which validates it
  3. Call the store or the resolver
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed input (dates, rules, intervals, ranges)
  - 404: Record not found
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/worktime/config"
	"github.com/warp/worktime/ledger"
	"github.com/warp/worktime/render"
	"github.com/warp/worktime/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Resolver  *ledger.Resolver
	Reconcile config.ReconcileConfig
	Logger    *slog.Logger

	// Today returns the current date; reports end there by default.
	Today func() ledger.Date

	// Track currently loaded scenario
	scenarioMu      sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, reconcile config.ReconcileConfig, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	resolver := ledger.NewResolver(store)
	resolver.Logger = logger
	if reconcile.TimezoneTolerance > 0 {
		resolver.TimezoneTolerance = reconcile.TimezoneTolerance
	}

	return &Handler{
		Store:     store,
		Resolver:  resolver,
		Reconcile: reconcile,
		Logger:    logger,
		Today:     ledger.Today,
	}
}

func owner(r *http.Request) (ledger.UserID, ledger.WorkspaceID) {
	return ledger.UserID(chi.URLParam(r, "user")), ledger.WorkspaceID(chi.URLParam(r, "workspace"))
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetReport builds the report for the requested range.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	user, workspace := owner(r)
	today := h.Today()

	start := h.Reconcile.DefaultStartDate(today)
	if s := r.URL.Query().Get("start"); s != "" {
		d, err := ledger.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start format (use YYYY-MM-DD)", err)
			return
		}
		start = d
	}

	end := today
	if s := r.URL.Query().Get("end"); s != "" {
		d, err := ledger.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end format (use YYYY-MM-DD)", err)
			return
		}
		end = d
	}

	report, err := h.Resolver.CreateReport(r.Context(), user, workspace, start, end)
	if err != nil {
		if ledger.IsInputError(err) {
			writeError(w, http.StatusBadRequest, "Cannot create report", err)
			return
		}
		h.Logger.Error("report failed",
			slog.String("user", string(user)),
			slog.String("workspace", string(workspace)),
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to create report", err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := render.Text(w, report); err != nil {
			h.Logger.Error("writing text report failed",
				slog.String("user", string(user)),
				slog.String("workspace", string(workspace)),
				slog.String("error", err.Error()))
		}
		return
	}

	writeJSON(w, http.StatusOK, NewReportDTO(report))
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// ListSchedules returns all schedules of the user in the workspace.
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	user, workspace := owner(r)

	schedules, err := h.Store.Schedules(r.Context(), user, workspace)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list schedules", err)
		return
	}

	dtos := make([]ScheduleDTO, len(schedules))
	for i, s := range schedules {
		dtos[i] = toScheduleDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateSchedule creates or replaces a schedule.
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	user, workspace := owner(r)

	var req ScheduleDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	schedule, err := toSchedule(user, workspace, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule", err)
		return
	}

	if err := h.Store.SaveSchedule(r.Context(), schedule); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save schedule", err)
		return
	}

	writeJSON(w, http.StatusCreated, toScheduleDTO(schedule))
}

// DeleteSchedule removes a schedule.
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	user, workspace := owner(r)
	err := h.Store.DeleteSchedule(r.Context(), user, workspace, ledger.ScheduleID(chi.URLParam(r, "id")))
	writeDeleteResult(w, "schedule", err)
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

// ListEvents returns all events of the user in the workspace.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	user, workspace := owner(r)

	events, err := h.Store.Events(r.Context(), user, workspace)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events", err)
		return
	}

	dtos := make([]EventDTO, len(events))
	for i, e := range events {
		dtos[i] = toEventDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEvent creates or replaces an event.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	user, workspace := owner(r)

	var req EventDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	event, err := toEvent(user, workspace, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event", err)
		return
	}

	if err := h.Store.SaveEvent(r.Context(), event); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save event", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEventDTO(event))
}

// DeleteEvent removes an event.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	user, workspace := owner(r)
	err := h.Store.DeleteEvent(r.Context(), user, workspace, ledger.EventID(chi.URLParam(r, "id")))
	writeDeleteResult(w, "event", err)
}

// =============================================================================
// TIME ENTRY HANDLERS
// =============================================================================

// ListTimeEntries returns the entries overlapping [from, to] (RFC 3339).
func (h *Handler) ListTimeEntries(w http.ResponseWriter, r *http.Request) {
	user, workspace := owner(r)

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from format (use RFC 3339)", err)
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to format (use RFC 3339)", err)
		return
	}

	entries, err := h.Store.TimeEntries(r.Context(), user, workspace, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list time entries", err)
		return
	}

	dtos := make([]TimeEntryDTO, len(entries))
	for i, te := range entries {
		dtos[i] = toTimeEntryDTO(te)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTimeEntries stores a batch of entries. Either all are stored or none.
func (h *Handler) CreateTimeEntries(w http.ResponseWriter, r *http.Request) {
	user, workspace := owner(r)

	var req CreateTimeEntriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.TimeEntries) == 0 {
		writeError(w, http.StatusBadRequest, "time_entries must not be empty", nil)
		return
	}

	entries := make([]ledger.TimeEntry, len(req.TimeEntries))
	for i, dto := range req.TimeEntries {
		te, err := toTimeEntry(user, workspace, dto)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid time entry", err)
			return
		}
		entries[i] = te
	}

	if err := h.Store.SaveTimeEntries(r.Context(), entries); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save time entries", err)
		return
	}

	dtos := make([]TimeEntryDTO, len(entries))
	for i, te := range entries {
		dtos[i] = toTimeEntryDTO(te)
	}
	writeJSON(w, http.StatusCreated, dtos)
}

// DeleteTimeEntry removes a time entry.
func (h *Handler) DeleteTimeEntry(w http.ResponseWriter, r *http.Request) {
	user, workspace := owner(r)
	err := h.Store.DeleteTimeEntry(r.Context(), user, workspace, ledger.TimeEntryID(chi.URLParam(r, "id")))
	writeDeleteResult(w, "time entry", err)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeDeleteResult(w http.ResponseWriter, kind string, err error) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, sqlite.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found: "+kind, err)
	default:
		writeError(w, http.StatusInternalServerError, "Failed to delete "+kind, err)
	}
}
