// Package recurrence expands RFC 5545 recurrence rules into concrete dates.
//
// Rules arrive verbatim from the calendar sync layer, e.g.
// "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR" or "RRULE:FREQ=DAILY;COUNT=5". They are
// anchored at the seed date of the schedule or event that carries them.
package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// ErrInvalidRule is returned (wrapped in a RuleError) for unparseable rules.
var ErrInvalidRule = errors.New("invalid recurrence rule")

// RuleError names the offending rule text.
type RuleError struct {
	Rule  string
	Cause error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("invalid recurrence rule %q: %v", e.Rule, e.Cause)
}

func (e *RuleError) Unwrap() error { return ErrInvalidRule }

const rulePrefix = "RRULE:"

// Parse builds the rule anchored at seed. The seed is truncated to midnight
// UTC of its calendar date so occurrences land on whole dates.
func Parse(rule string, seed time.Time) (*rrule.RRule, error) {
	text := strings.ToUpper(strings.TrimSpace(rule))
	if len(text) >= len(rulePrefix) && text[:len(rulePrefix)] == rulePrefix {
		text = text[len(rulePrefix):]
	}
	if !hasFrequency(text) {
		return nil, &RuleError{Rule: rule, Cause: errors.New("missing FREQ")}
	}

	opt, err := rrule.StrToROption(text)
	if err != nil {
		return nil, &RuleError{Rule: rule, Cause: err}
	}
	opt.Dtstart = midnight(seed)

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, &RuleError{Rule: rule, Cause: err}
	}
	return r, nil
}

// Validate reports whether rule parses. An empty rule is valid (one-off).
func Validate(rule string) error {
	if strings.TrimSpace(rule) == "" {
		return nil
	}
	_, err := Parse(rule, time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC))
	return err
}

// Expand returns the dates rule fires on between start 00:00 and end 00:00,
// both inclusive, in chronological order.
//
// An empty rule yields just the seed, without checking it against the
// range: callers range-check the one-off case themselves.
func Expand(rule string, seed, start, end time.Time) ([]time.Time, error) {
	if strings.TrimSpace(rule) == "" {
		return []time.Time{midnight(seed)}, nil
	}

	r, err := Parse(rule, seed)
	if err != nil {
		return nil, err
	}
	return r.Between(midnight(start), midnight(end), true), nil
}

func hasFrequency(text string) bool {
	for _, part := range strings.Split(text, ";") {
		key, _, _ := strings.Cut(part, "=")
		if strings.EqualFold(strings.TrimSpace(key), "FREQ") {
			return true
		}
	}
	return false
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
