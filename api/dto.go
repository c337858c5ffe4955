/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the ledger model from the external API contract. Every payload type has
  explicit conversion functions in both directions; nothing is converted by
  reflection over the domain types.

NAMING CONVENTION:
  - *DTO: Types returned to clients (and accepted back for records)
  - *Request: Request body wrappers from clients

TYPES:
  Records:
    ScheduleDTO, EventDTO, TimeEntryDTO, CreateTimeEntriesRequest

  Report:
    ReportDTO, DayDTO, SliceDTO, BucketDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

WIRE FORMATS:
  Dates:        YYYY-MM-DD
  Instants:     RFC 3339 with the UTC offset that was in effect locally,
                e.g. "2024-03-31T04:00:00+02:00"
  Durations:    integer seconds
  Decimals:     JSON strings ("-0.5"); numbers are accepted on input
  Undefined:    null (delta percentage and fulfilment rate)

VALIDATION:
  Conversion into the ledger types validates and returns input errors;
  handlers map those to 400.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/types.go: Domain records
*/
package api

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/worktime/ledger"
	"github.com/warp/worktime/recurrence"
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// ScheduleDTO represents a schedule. ID is generated when omitted on create.
type ScheduleDTO struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	RRule     string `json:"rrule,omitempty"`
	Target    int64  `json:"target"` // seconds
}

// EventDTO represents a target modifier.
type EventDTO struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	StartDate   string          `json:"start_date"`
	RRule       string          `json:"rrule,omitempty"`
	ModRelative decimal.Decimal `json:"mod_relative"`
	ModAbsolute int64           `json:"mod_absolute"` // seconds
}

// TimeEntryDTO represents a recorded interval. An empty Stop means running.
type TimeEntryDTO struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start"`
	Stop        string `json:"stop,omitempty"`
	Duration    int64  `json:"duration,omitempty"` // seconds, responses only
}

// CreateTimeEntriesRequest is a batch of entries stored atomically.
type CreateTimeEntriesRequest struct {
	TimeEntries []TimeEntryDTO `json:"time_entries"`
}

// =============================================================================
// REPORT TYPES
// =============================================================================

// ReportDTO is the full reconciliation report.
type ReportDTO struct {
	UserID       string      `json:"user_id"`
	WorkspaceID  string      `json:"workspace_id"`
	Start        string      `json:"start"`
	End          string      `json:"end"`
	Days         []DayDTO    `json:"days"`
	Weeks        []BucketDTO `json:"weeks"`
	Months       []BucketDTO `json:"months"`
	Quarters     []BucketDTO `json:"quarters"`
	Years        []BucketDTO `json:"years"`
	All          BucketDTO   `json:"all"`
	RunningDelta int64       `json:"running_delta"`
}

// DayDTO is one day of the ledger.
type DayDTO struct {
	Date            string              `json:"date"`
	Weekday         string              `json:"weekday"`
	TargetTime      int64               `json:"target_time"`
	ActualTime      int64               `json:"actual_time"`
	Delta           int64               `json:"delta"`
	DeltaPercentage decimal.NullDecimal `json:"delta_percentage"`
	FulfillmentRate decimal.NullDecimal `json:"fulfillment_rate"`
	Schedules       []string            `json:"schedules"`
	Events          []string            `json:"events"`
	Slices          []SliceDTO          `json:"slices"`
}

// SliceDTO is the part of a time entry that falls on one local date.
type SliceDTO struct {
	TimeEntryID string `json:"time_entry_id"`
	Start       string `json:"start"`
	Stop        string `json:"stop"`
	Duration    int64  `json:"duration"`
}

// BucketDTO is the rollup of one period.
type BucketDTO struct {
	Key                string              `json:"key"`
	Start              string              `json:"start,omitempty"`
	End                string              `json:"end,omitempty"`
	Days               int                 `json:"days"`
	MaxDays            int                 `json:"max_days"`
	TargetTime         int64               `json:"target_time"`
	ActualTime         int64               `json:"actual_time"`
	Delta              int64               `json:"delta"`
	DaysWithTargetTime int                 `json:"days_with_target_time"`
	DaysWithActualTime int                 `json:"days_with_actual_time"`
	FulfillmentRate    decimal.NullDecimal `json:"fulfillment_rate"`
}

// =============================================================================
// SCENARIO / ERROR TYPES
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	UserID      string `json:"user_id"`
	WorkspaceID string `json:"workspace_id"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION: REQUEST -> LEDGER
// =============================================================================

// inputError marks a payload that cannot be converted. It unwraps to
// ledger.ErrInvalidRecord so ledger.IsInputError recognises it.
type inputError struct {
	field string
	err   error
}

func (e *inputError) Error() string { return fmt.Sprintf("%s: %v", e.field, e.err) }

func (e *inputError) Unwrap() []error { return []error{ledger.ErrInvalidRecord, e.err} }

func toSchedule(user ledger.UserID, workspace ledger.WorkspaceID, dto ScheduleDTO) (ledger.Schedule, error) {
	startDate, err := ledger.ParseDate(dto.StartDate)
	if err != nil {
		return ledger.Schedule{}, &inputError{field: "start_date", err: err}
	}
	if err := recurrence.Validate(dto.RRule); err != nil {
		return ledger.Schedule{}, err
	}

	s := ledger.Schedule{
		ID:          ledger.ScheduleID(idOrNew(dto.ID)),
		UserID:      user,
		WorkspaceID: workspace,
		Name:        dto.Name,
		StartDate:   startDate,
		RRule:       dto.RRule,
		Target:      dto.Target,
	}
	return s, s.Validate()
}

func toEvent(user ledger.UserID, workspace ledger.WorkspaceID, dto EventDTO) (ledger.Event, error) {
	startDate, err := ledger.ParseDate(dto.StartDate)
	if err != nil {
		return ledger.Event{}, &inputError{field: "start_date", err: err}
	}
	if err := recurrence.Validate(dto.RRule); err != nil {
		return ledger.Event{}, err
	}

	e := ledger.Event{
		ID:          ledger.EventID(idOrNew(dto.ID)),
		UserID:      user,
		WorkspaceID: workspace,
		Name:        dto.Name,
		StartDate:   startDate,
		RRule:       dto.RRule,
		ModRelative: dto.ModRelative,
		ModAbsolute: dto.ModAbsolute,
	}
	return e, e.Validate()
}

// toTimeEntry parses the offset-carrying timestamps. Running entries are
// accepted; closed entries must not stop before they start.
func toTimeEntry(user ledger.UserID, workspace ledger.WorkspaceID, dto TimeEntryDTO) (ledger.TimeEntry, error) {
	start, err := time.Parse(time.RFC3339, dto.Start)
	if err != nil {
		return ledger.TimeEntry{}, &inputError{field: "start", err: err}
	}

	var stop time.Time
	if dto.Stop != "" {
		if stop, err = time.Parse(time.RFC3339, dto.Stop); err != nil {
			return ledger.TimeEntry{}, &inputError{field: "stop", err: err}
		}
	}

	te := ledger.NewTimeEntry(ledger.TimeEntryID(idOrNew(dto.ID)), user, workspace, start, stop)
	te.Description = dto.Description
	if te.Running() {
		return te, nil
	}
	return te, te.Validate()
}

func idOrNew(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// =============================================================================
// CONVERSION: LEDGER -> RESPONSE
// =============================================================================

func toScheduleDTO(s ledger.Schedule) ScheduleDTO {
	return ScheduleDTO{
		ID:        string(s.ID),
		Name:      s.Name,
		StartDate: s.StartDate.String(),
		RRule:     s.RRule,
		Target:    s.Target,
	}
}

func toEventDTO(e ledger.Event) EventDTO {
	return EventDTO{
		ID:          string(e.ID),
		Name:        e.Name,
		StartDate:   e.StartDate.String(),
		RRule:       e.RRule,
		ModRelative: e.ModRelative,
		ModAbsolute: e.ModAbsolute,
	}
}

func toTimeEntryDTO(te ledger.TimeEntry) TimeEntryDTO {
	dto := TimeEntryDTO{
		ID:          string(te.ID),
		Description: te.Description,
		Start:       te.LocalStart().Format(time.RFC3339),
	}
	if !te.Running() {
		dto.Stop = te.LocalStop().Format(time.RFC3339)
		dto.Duration = int64(te.Duration() / time.Second)
	}
	return dto
}

// NewReportDTO converts a report for JSON output.
func NewReportDTO(r *ledger.Report) ReportDTO {
	dto := ReportDTO{
		UserID:       string(r.UserID),
		WorkspaceID:  string(r.WorkspaceID),
		Start:        r.Period.Start.String(),
		End:          r.Period.End.String(),
		Weeks:        toBucketDTOs(r.Weeks()),
		Months:       toBucketDTOs(r.Months()),
		Quarters:     toBucketDTOs(r.Quarters()),
		Years:        toBucketDTOs(r.Years()),
		All:          toBucketDTO(r.All()),
		RunningDelta: r.RunningDelta(),
	}

	days := r.Days()
	dto.Days = make([]DayDTO, len(days))
	for i, day := range days {
		dto.Days[i] = toDayDTO(day)
	}
	return dto
}

func toDayDTO(day *ledger.Day) DayDTO {
	dto := DayDTO{
		Date:            day.Date.String(),
		Weekday:         day.Date.Weekday().String(),
		TargetTime:      day.TargetTime(),
		ActualTime:      day.ActualTime(),
		Delta:           day.Delta(),
		DeltaPercentage: day.DeltaPercentage(),
		FulfillmentRate: day.FulfillmentRate(),
		Schedules:       []string{},
		Events:          []string{},
		Slices:          []SliceDTO{},
	}
	for _, s := range day.Schedules() {
		dto.Schedules = append(dto.Schedules, string(s.ID))
	}
	for _, e := range day.Events() {
		dto.Events = append(dto.Events, string(e.ID))
	}
	for _, s := range day.Slices() {
		dto.Slices = append(dto.Slices, SliceDTO{
			TimeEntryID: string(s.Entry),
			Start:       s.Start.Format(time.RFC3339),
			Stop:        s.Stop.Format(time.RFC3339),
			Duration:    s.Duration(),
		})
	}
	return dto
}

func toBucketDTO(b *ledger.Bucket) BucketDTO {
	dto := BucketDTO{
		Key:                b.Key.String(),
		Days:               b.Len(),
		MaxDays:            b.MaxDays(),
		TargetTime:         b.TargetTime(),
		ActualTime:         b.ActualTime(),
		Delta:              b.Delta(),
		DaysWithTargetTime: b.DaysWithTargetTime(),
		DaysWithActualTime: b.DaysWithActualTime(),
		FulfillmentRate:    b.FulfillmentRate(),
	}
	if !b.Period.Start.IsZero() {
		dto.Start = b.Period.Start.String()
		dto.End = b.Period.End.String()
	}
	return dto
}

func toBucketDTOs(buckets []*ledger.Bucket) []BucketDTO {
	dtos := make([]BucketDTO, len(buckets))
	for i, b := range buckets {
		dtos[i] = toBucketDTO(b)
	}
	return dtos
}
