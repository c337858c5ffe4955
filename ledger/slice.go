package ledger

import "time"

// =============================================================================
// SLICE - The part of a time entry inside one local day
// =============================================================================

// Slice is the portion of a TimeEntry that lies within one local calendar
// day. Start and Stop carry the fixed offset of the entry endpoint they were
// derived from; Entry is kept for provenance only.
type Slice struct {
	Entry TimeEntryID
	Start time.Time
	Stop  time.Time
}

// Date is the local date the slice belongs to: the date of its start.
func (s Slice) Date() Date { return DateOf(s.Start) }

// Duration returns the slice length in whole seconds.
func (s Slice) Duration() int64 { return int64(s.Stop.Sub(s.Start) / time.Second) }

// SliceEntry splits a closed entry at every local midnight it crosses.
//
// Each endpoint is converted with its own offset, so an entry spanning an
// offset change (DST) is measured by the real elapsed time. Slices are
// returned in order; their durations sum to the entry's duration.
//
// An entry with Start == Stop yields one zero-length slice. Running entries
// return ErrRunningInterval, entries that stop before they start return an
// *InvalidIntervalError.
func SliceEntry(entry TimeEntry) ([]Slice, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	current := entry.LocalStart()
	stop := entry.LocalStop()

	var slices []Slice
	for !sameDate(current, stop) {
		midnight := nextMidnight(current)
		// The stop's local date can trail the start's when the offset drops
		// across a short entry; the remainder then fits in the current day.
		if midnight.After(stop) {
			break
		}
		slices = append(slices, Slice{Entry: entry.ID, Start: current, Stop: midnight})
		current = midnight
	}
	return append(slices, Slice{Entry: entry.ID, Start: current, Stop: stop}), nil
}
