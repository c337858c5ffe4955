package ledger

import (
	"sort"
)

// =============================================================================
// REPORT - Result of one reconciliation
// =============================================================================

// Report owns the days of the requested range and the rollups over them.
// It is immutable once returned by Build or Resolver.CreateReport.
type Report struct {
	UserID      UserID
	WorkspaceID WorkspaceID
	Period      Period

	days    map[DayID]*Day
	dayIDs  []DayID
	rollups map[PeriodType]map[PeriodKey]*Bucket
	all     *Bucket
}

func newReport(user UserID, workspace WorkspaceID, period Period) *Report {
	r := &Report{
		UserID:      user,
		WorkspaceID: workspace,
		Period:      period,
		days:        make(map[DayID]*Day),
		rollups:     make(map[PeriodType]map[PeriodKey]*Bucket),
	}
	for _, date := range period.Days() {
		day := newDay(date)
		r.days[day.ID()] = day
		r.dayIDs = append(r.dayIDs, day.ID())
	}
	for _, pt := range rollupTypes {
		r.rollups[pt] = make(map[PeriodKey]*Bucket)
	}
	r.all = newBucket(PeriodAll.KeyFor(period.Start), period, r.days)
	return r
}

// rollupTypes are the calendar granularities every report carries besides "all".
var rollupTypes = []PeriodType{PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear}

// aggregate assigns every day to its week, month, quarter and year bucket,
// creating buckets on first reference, and to the "all" bucket.
func (r *Report) aggregate() {
	for _, id := range r.dayIDs {
		date := r.days[id].Date
		for _, pt := range rollupTypes {
			key := pt.KeyFor(date)
			bucket, ok := r.rollups[pt][key]
			if !ok {
				bucket = newBucket(key, key.Bounds(), r.days)
				r.rollups[pt][key] = bucket
			}
			bucket.add(id)
		}
		r.all.add(id)
	}
}

// Day returns the day with the given ID, or nil if it is outside the range.
func (r *Report) Day(id DayID) *Day { return r.days[id] }

// Days returns all days in chronological order.
func (r *Report) Days() []*Day {
	result := make([]*Day, 0, len(r.dayIDs))
	for _, id := range r.dayIDs {
		result = append(result, r.days[id])
	}
	return result
}

// Rollup returns the buckets of one period type, keyed by period. The map
// is a copy; the report itself stays unchanged.
func (r *Report) Rollup(pt PeriodType) map[PeriodKey]*Bucket {
	if pt == PeriodAll {
		return map[PeriodKey]*Bucket{r.all.Key: r.all}
	}
	result := make(map[PeriodKey]*Bucket, len(r.rollups[pt]))
	for k, b := range r.rollups[pt] {
		result[k] = b
	}
	return result
}

// Buckets returns the buckets of one period type in chronological order.
func (r *Report) Buckets(pt PeriodType) []*Bucket {
	if pt == PeriodAll {
		return []*Bucket{r.all}
	}
	result := make([]*Bucket, 0, len(r.rollups[pt]))
	for _, b := range r.rollups[pt] {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key.Less(result[j].Key) })
	return result
}

func (r *Report) Weeks() []*Bucket    { return r.Buckets(PeriodWeek) }
func (r *Report) Months() []*Bucket   { return r.Buckets(PeriodMonth) }
func (r *Report) Quarters() []*Bucket { return r.Buckets(PeriodQuarter) }
func (r *Report) Years() []*Bucket    { return r.Buckets(PeriodYear) }
func (r *Report) All() *Bucket        { return r.all }

// RunningDelta returns the sum of all daily deltas in the range.
func (r *Report) RunningDelta() int64 {
	var total int64
	for _, id := range r.dayIDs {
		total += r.days[id].Delta()
	}
	return total
}
