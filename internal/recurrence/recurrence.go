// Package recurrence decides which tasks are due on a given day and when a
// completed recurring task returns to pending.
package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Freq int

const (
	None Freq = iota
	Daily
	Weekly
)

// A completed recurring task stays done for at least this long before the
// sweep puts it back on the board.
const resetThreshold = 24 * time.Hour

// Rule describes if and when a task reappears after completion.
// Text form (as stored): "" (one-off), "daily", or "weekly:N" where N is the
// weekday 0-6 with 0 = Sunday.
type Rule struct {
	Freq      Freq
	DayOfWeek time.Weekday // only meaningful when Freq == Weekly
}

// Parse parses the stored text form of a rule.
func Parse(s string) (Rule, error) {
	switch {
	case s == "":
		return Rule{Freq: None}, nil
	case s == "daily":
		return Rule{Freq: Daily}, nil
	case strings.HasPrefix(s, "weekly:"):
		n, err := strconv.Atoi(strings.TrimPrefix(s, "weekly:"))
		if err != nil || n < 0 || n > 6 {
			return Rule{}, fmt.Errorf("invalid weekday in rule %q", s)
		}
		return Rule{Freq: Weekly, DayOfWeek: time.Weekday(n)}, nil
	default:
		return Rule{}, fmt.Errorf("invalid recurrence rule %q", s)
	}
}

// String renders the rule in its stored text form.
func (r Rule) String() string {
	switch r.Freq {
	case Daily:
		return "daily"
	case Weekly:
		return fmt.Sprintf("weekly:%d", int(r.DayOfWeek))
	default:
		return ""
	}
}

// IsDueOn reports whether a task with this rule belongs on the board on the
// given weekday. One-off and daily tasks are due every day; weekly tasks only
// on their day.
func (r Rule) IsDueOn(day time.Weekday) bool {
	if r.Freq == Weekly {
		return r.DayOfWeek == day
	}
	return true
}

// ShouldReset reports whether a completed task should go back to pending.
// Daily tasks reset once 24 hours have passed since the last reset; weekly
// tasks additionally wait for their weekday to come around again. One-off
// tasks never reset.
func (r Rule) ShouldReset(lastResetAt, now time.Time) bool {
	elapsed := now.Sub(lastResetAt)
	switch r.Freq {
	case Daily:
		return elapsed >= resetThreshold
	case Weekly:
		return now.Weekday() == r.DayOfWeek && elapsed >= resetThreshold
	default:
		return false
	}
}
