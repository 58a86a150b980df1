package care

import "time"

// DateLayout is the user-facing date format (dd.mm.yyyy).
const DateLayout = "02.01.2006"

// ParseDate parses a dd.mm.yyyy string into a civil date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Civil(t), nil
}

// FormatDate renders t as dd.mm.yyyy.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// Civil drops the clock part of t, keeping the calendar day as seen in t's
// location, and returns it as UTC midnight.
func Civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the civil date n days after t.
func AddDays(t time.Time, n int) time.Time {
	return Civil(t).AddDate(0, 0, n)
}
