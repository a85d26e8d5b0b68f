// Package week implements ISO-8601 week arithmetic: week numbering, the
// "YYYY-Wnn" week string used as the scoreboard key, and the mapping back
// from a week string to its Monday-Sunday date range.
package week

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var weekStrRegexp = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// Number returns the ISO-8601 week number for t: week 1 is the week
// containing the year's first Thursday, weeks run Monday through Sunday.
func Number(t time.Time) int {
	_, wk := t.ISOWeek()
	return wk
}

// Of formats t's ISO week as "YYYY-Wnn". The year is the ISO year (the year
// of that week's Thursday), which may differ from t's calendar year around
// January 1, so the string always round-trips through Range.
func Of(t time.Time) string {
	year, wk := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, wk)
}

// Range returns the Monday (start) and Sunday (end) of the week identified
// by a "YYYY-Wnn" string. Both are midnight UTC.
func Range(weekStr string) (start, end time.Time, err error) {
	m := weekStrRegexp.FindStringSubmatch(weekStr)
	if m == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse week %q: want YYYY-Wnn", weekStr)
	}
	year, _ := strconv.Atoi(m[1])
	wk, _ := strconv.Atoi(m[2])
	if wk < 1 || wk > 53 {
		return time.Time{}, time.Time{}, fmt.Errorf("parse week %q: week number out of range", weekStr)
	}

	// Week 1 contains the ISO year's first Thursday.
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	wd := int(jan1.Weekday())
	if wd == 0 {
		wd = 7
	}
	firstThursday := jan1.AddDate(0, 0, (4-wd+7)%7)

	start = firstThursday.AddDate(0, 0, -3+(wk-1)*7)
	end = start.AddDate(0, 0, 6)

	// Week 53 only exists in long ISO years; the round-trip catches the rest.
	if Of(start) != weekStr {
		return time.Time{}, time.Time{}, fmt.Errorf("parse week %q: no such week", weekStr)
	}
	return start, end, nil
}

// OfMonth returns every distinct ISO week touched by a day of the given
// calendar month, in chronological order.
func OfMonth(year int, month time.Month) []string {
	var weeks []string
	seen := make(map[string]bool)

	day := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for day.Month() == month {
		ws := Of(day)
		if !seen[ws] {
			seen[ws] = true
			weeks = append(weeks, ws)
		}
		day = day.AddDate(0, 0, 1)
	}
	return weeks
}
