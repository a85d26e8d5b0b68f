package recurrence

import (
	"testing"
	"time"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []struct {
		text string
		want Rule
	}{
		{"", Rule{Freq: None}},
		{"daily", Rule{Freq: Daily}},
		{"weekly:0", Rule{Freq: Weekly, DayOfWeek: time.Sunday}},
		{"weekly:3", Rule{Freq: Weekly, DayOfWeek: time.Wednesday}},
		{"weekly:6", Rule{Freq: Weekly, DayOfWeek: time.Saturday}},
	}
	for _, c := range cases {
		got, err := Parse(c.text)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.text, err)
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %+v, want %+v", c.text, got, c.want)
		}
		if got.String() != c.text {
			t.Errorf("String() = %q, want %q", got.String(), c.text)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, bad := range []string{"weekly:7", "weekly:-1", "weekly:x", "monthly", "DAILY"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) should fail", bad)
		}
	}
}

func TestIsDueOn(t *testing.T) {
	daily := Rule{Freq: Daily}
	oneOff := Rule{Freq: None}
	wednesday := Rule{Freq: Weekly, DayOfWeek: time.Wednesday}

	for day := time.Sunday; day <= time.Saturday; day++ {
		if !daily.IsDueOn(day) {
			t.Errorf("daily task not due on %s", day)
		}
		if !oneOff.IsDueOn(day) {
			t.Errorf("one-off task not due on %s", day)
		}
		if got, want := wednesday.IsDueOn(day), day == time.Wednesday; got != want {
			t.Errorf("weekly:3 due on %s = %v, want %v", day, got, want)
		}
	}
}

func TestShouldResetDaily(t *testing.T) {
	rule := Rule{Freq: Daily}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if rule.ShouldReset(now.Add(-30*time.Hour), now) != true {
		t.Error("daily task reset 30h ago should reset")
	}
	if rule.ShouldReset(now.Add(-23*time.Hour), now) != false {
		t.Error("daily task reset 23h ago should not reset")
	}
	// Exactly at the threshold
	if rule.ShouldReset(now.Add(-24*time.Hour), now) != true {
		t.Error("daily task reset exactly 24h ago should reset")
	}
}

func TestShouldResetWeekly(t *testing.T) {
	// 2026-03-09 is a Monday.
	rule := Rule{Freq: Weekly, DayOfWeek: time.Monday}
	completedMonday := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	// The following Monday, a full week later: resets.
	nextMonday := completedMonday.AddDate(0, 0, 7)
	if !rule.ShouldReset(completedMonday, nextMonday) {
		t.Error("weekly task should reset the following Monday")
	}

	// Tuesday, 24h elapsed but wrong weekday: no reset.
	tuesday := completedMonday.AddDate(0, 0, 1).Add(2 * time.Hour)
	if rule.ShouldReset(completedMonday, tuesday) {
		t.Error("weekly task must not reset on the wrong weekday")
	}

	// Same Monday, only a few hours elapsed: no reset.
	if rule.ShouldReset(completedMonday, completedMonday.Add(3*time.Hour)) {
		t.Error("weekly task must not reset within 24h of the last reset")
	}
}

func TestShouldResetNone(t *testing.T) {
	rule := Rule{Freq: None}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if rule.ShouldReset(now.AddDate(0, 0, -30), now) {
		t.Error("one-off task must never reset")
	}
}
