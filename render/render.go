/*
Package render writes a reconciliation report as plain text.

LAYOUT:
  User: user-1 > Workspace: ws-1
  Period: [2024-01-01, 2024-01-07]

  2024-01-01 Mon -> Target:  08:00:00; Actual:  07:30:00; Delta: -00:30:00; Events: ...
  ...

  2024-W01 (7/7 days) -> Target: ...; Actual: ...; Delta: ...; Fulfillment: 93.75%; RunningDelta: ...

  Total (7 days) -> Target: ...; Actual: ...; Delta: ...; Fulfillment: ...

  Durations are [-]HH:MM:SS. Hours are not wrapped at 24. A fulfilment rate
  that is undefined (zero target) renders as ---%.
*/
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/worktime/ledger"
)

// Text writes the full report to w.
func Text(w io.Writer, report *ledger.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "User: %s > Workspace: %s\n", report.UserID, report.WorkspaceID)
	fmt.Fprintf(&b, "Period: %s\n\n", report.Period)

	for _, day := range report.Days() {
		b.WriteString(DayLine(day))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	var running int64
	for _, week := range report.Weeks() {
		running += week.Delta()
		b.WriteString(WeekLine(week, running))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	all := report.All()
	fmt.Fprintf(&b, "Total (%d days) -> Target: %s; Actual: %s; Delta: %s; Fulfillment: %s\n",
		all.Len(),
		FormatSeconds(all.TargetTime()),
		FormatSeconds(all.ActualTime()),
		FormatSeconds(all.Delta()),
		FormatPercentage(all.FulfillmentRate()))

	_, err := io.WriteString(w, b.String())
	return err
}

// DayLine renders one day.
func DayLine(day *ledger.Day) string {
	line := fmt.Sprintf("%s %s -> Target: %s; Actual: %s; Delta: %s",
		day.Date,
		day.Date.Weekday().String()[:3],
		FormatSeconds(day.TargetTime()),
		FormatSeconds(day.ActualTime()),
		FormatSeconds(day.Delta()))

	events := day.Events()
	if len(events) == 0 {
		return line
	}
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = fmt.Sprintf("%s (%s, %+d)", e.Name, e.ModRelative.StringFixed(2), e.ModAbsolute)
	}
	return line + "; Events: " + strings.Join(names, ", ")
}

// WeekLine renders one week bucket together with the running delta up to
// and including it.
func WeekLine(week *ledger.Bucket, runningDelta int64) string {
	return fmt.Sprintf("%s (%d/%d days) -> Target: %s; Actual: %s; Delta: %s; Fulfillment: %s; RunningDelta: %s",
		week.Key,
		week.Len(), week.MaxDays(),
		FormatSeconds(week.TargetTime()),
		FormatSeconds(week.ActualTime()),
		FormatSeconds(week.Delta()),
		FormatPercentage(week.FulfillmentRate()),
		FormatSeconds(runningDelta))
}

// FormatSeconds renders seconds as [-]HH:MM:SS, with a leading space in
// place of the sign for non-negative values so that columns line up.
func FormatSeconds(seconds int64) string {
	sign := " "
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, seconds/3600, seconds/60%60, seconds%60)
}

// FormatPercentage renders a ratio (0.5 is 50%) with two decimals, or ---%
// when the ratio is undefined.
func FormatPercentage(ratio decimal.NullDecimal) string {
	if !ratio.Valid {
		return "---%"
	}
	return ratio.Decimal.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
