package leave

import "time"

const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TotalDays counts the days of the inclusive range [start, end].
func TotalDays(start, end time.Time) int {
	return int(DateOf(end).Sub(DateOf(start)).Hours()/24) + 1
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two inclusive ranges share at least one day.
// Ranges touching on a boundary day overlap.
func (a DateRange) Overlaps(b DateRange) bool {
	return !(DateOf(b.End).Before(DateOf(a.Start)) || DateOf(b.Start).After(DateOf(a.End)))
}

// FormatRange renders "Jan 02, 2026" for single days and
// "Jan 02 - Jan 04, 2026" otherwise.
func FormatRange(start, end time.Time) string {
	if DateOf(start).Equal(DateOf(end)) {
		return start.Format("Jan 02, 2006")
	}
	return start.Format("Jan 02") + " - " + end.Format("Jan 02, 2006")
}
