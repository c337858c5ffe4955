/*
errors.go - Centralized error types for the reconciliation engine

ERROR CATEGORIES:
  1. Input malformation - invalid interval, invalid record, invalid range.
     Fatal to the single report; the caller logs and skips the record.
  2. Running intervals - not an error for the report, the resolver skips them.
     Returned only when slicing a running entry directly.

  Division by zero in rate computations is NOT an error: rates are
  decimal.NullDecimal and are simply invalid when the target is zero.

USAGE:
  if errors.Is(err, ledger.ErrInvalidInterval) {
      var ie *ledger.InvalidIntervalError
      errors.As(err, &ie) // ie.EntryID names the bad record
  }

SEE ALSO:
  - recurrence/recurrence.go: RuleError for malformed recurrence rules
*/
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/warp/worktime/recurrence"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInterval is returned when a time entry stops before it starts.
	ErrInvalidInterval = errors.New("invalid interval: stop before start")

	// ErrRunningInterval is returned when slicing an entry that has no stop yet.
	ErrRunningInterval = errors.New("interval is still running")

	// ErrInvalidRange is returned when a report's end date precedes its start date.
	ErrInvalidRange = errors.New("invalid range: end before start")

	// ErrInvalidRecord is returned when a schedule or event violates its invariants.
	ErrInvalidRecord = errors.New("invalid record")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidIntervalError names the entry whose stop precedes its start.
type InvalidIntervalError struct {
	EntryID TimeEntryID
	Start   time.Time
	Stop    time.Time
}

func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("time entry %s: stop %s before start %s",
		e.EntryID, e.Stop.Format(time.RFC3339), e.Start.Format(time.RFC3339))
}

func (e *InvalidIntervalError) Unwrap() error {
	return ErrInvalidInterval
}

// RecordError names a schedule or event that cannot be applied.
type RecordError struct {
	Kind   string // "schedule" or "event"
	ID     string
	Reason string
	Err    error
}

func (e *RecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Kind, e.ID, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Kind, e.ID, e.Reason)
}

func (e *RecordError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidRecord, e.Err}
	}
	return []error{ErrInvalidRecord}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsInputError returns true if the error is caused by malformed input data
// rather than by the source that delivered it.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidRecord) ||
		errors.Is(err, recurrence.ErrInvalidRule)
}
