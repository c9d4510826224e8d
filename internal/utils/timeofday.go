package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"shuttle.campusbus.org/internal/clock"
)

// MinutesPerDay is the length of a service day in minutes.
const MinutesPerDay = 24 * 60

// FormatError reports a clock time that is not of the form HH:MM.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid time %q: %s", e.Input, e.Reason)
}

// TimeToMinutes converts "HH:MM" into minutes since midnight. Values are not
// range checked, so "25:10" yields 1510.
func TimeToMinutes(text string) (int, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 2 {
		return 0, &FormatError{Input: text, Reason: "expected HH:MM"}
	}
	if parts[0] == "" || parts[1] == "" {
		return 0, &FormatError{Input: text, Reason: "missing hour or minute"}
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, &FormatError{Input: text, Reason: "hour is not a number"}
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 {
		return 0, &FormatError{Input: text, Reason: "minute is not a number"}
	}

	return hours*60 + minutes, nil
}

// MinutesToTime formats minutes since midnight as zero padded HH:MM.
// There is no wrap at midnight: 1530 formats as "25:30".
func MinutesToTime(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// MinutesOf returns the minutes since local midnight of t.
func MinutesOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// NowMinutes returns the minutes since midnight of the clock's current time.
func NowMinutes(c clock.Clock) int {
	return MinutesOf(c.Now())
}

// SameDay reports whether a and b fall on the same calendar date in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseServiceDate parses YYYY-MM-DD as local midnight in loc.
func ParseServiceDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
