package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// countsForConflict reports whether an existing appointment occupies its slot.
func countsForConflict(status AppointmentStatus) bool {
	return status != StatusCancelled && status != StatusNoShow
}

// HasConflict decides whether a candidate interval collides with any existing
// appointment. Cancelled and no-show appointments never block. excludeID, when
// non-nil, removes that appointment from consideration (reschedule
// revalidation); fresh bookings pass nil.
func HasConflict(candidateStart time.Time, durationMinutes int, existing []Appointment, excludeID *uuid.UUID) bool {
	candidateEnd := candidateStart.Add(time.Duration(durationMinutes) * time.Minute)

	for _, appt := range existing {
		if excludeID != nil && appt.ID == *excludeID {
			continue
		}
		if !countsForConflict(appt.Status) {
			continue
		}
		if Overlaps(candidateStart, candidateEnd, appt.ScheduledAt, appt.End()) {
			return true
		}
	}
	return false
}
