package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestTotalDays(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"single day", "2025-06-10", "2025-06-10", 1},
		{"three days", "2025-06-10", "2025-06-12", 3},
		{"across month", "2025-01-30", "2025-02-02", 4},
		{"across leap day", "2024-02-28", "2024-03-01", 3},
		{"across year", "2025-12-31", "2026-01-01", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalDays(day(tt.start), day(tt.end)))
		})
	}
}

func TestTotalDays_IgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2025, 6, 10, 23, 30, 0, 0, time.UTC)
	end := time.Date(2025, 6, 12, 0, 15, 0, 0, time.UTC)

	assert.Equal(t, 3, TotalDays(start, end))
}

func TestDateRange_Overlaps(t *testing.T) {
	base := DateRange{Start: day("2025-06-10"), End: day("2025-06-12")}

	tests := []struct {
		name  string
		other DateRange
		want  bool
	}{
		{"identical", base, true},
		{"touching end boundary", DateRange{day("2025-06-12"), day("2025-06-14")}, true},
		{"touching start boundary", DateRange{day("2025-06-08"), day("2025-06-10")}, true},
		{"contained", DateRange{day("2025-06-11"), day("2025-06-11")}, true},
		{"containing", DateRange{day("2025-06-01"), day("2025-06-30")}, true},
		{"day after", DateRange{day("2025-06-13"), day("2025-06-15")}, false},
		{"day before", DateRange{day("2025-06-05"), day("2025-06-09")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base), "overlap must be symmetric")
		})
	}
}

func TestFormatRange(t *testing.T) {
	assert.Equal(t, "Jun 10, 2025", FormatRange(day("2025-06-10"), day("2025-06-10")))
	assert.Equal(t, "Jun 10 - Jun 12, 2025", FormatRange(day("2025-06-10"), day("2025-06-12")))
}

func TestLeaveRequest_SetDates(t *testing.T) {
	var r LeaveRequest
	r.SetDates(time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC), day("2025-06-12"))

	assert.Equal(t, day("2025-06-10"), r.StartDate)
	assert.Equal(t, 3, r.TotalDays)
}
