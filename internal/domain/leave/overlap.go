package leave

import "time"

// AnyOverlap reports whether [start, end] intersects any calendar-blocking
// leave in existing. The leave with id excludeID is ignored.
func AnyOverlap(existing []LeaveRequest, start, end time.Time, excludeID string) bool {
	proposed := DateRange{Start: start, End: end}
	for _, l := range existing {
		if excludeID != "" && l.ID == excludeID {
			continue
		}
		if !l.IsActive || !l.Status.BlocksCalendar() {
			continue
		}
		if proposed.Overlaps(l.Range()) {
			return true
		}
	}
	return false
}
