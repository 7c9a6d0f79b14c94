package appointment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func at(t *testing.T, hhmm string) time.Time {
	t.Helper()
	tod, err := ParseTimeOfDay(hhmm)
	if err != nil {
		t.Fatalf("bad time %q: %v", hhmm, err)
	}
	day := time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC) // a Monday
	return tod.At(day, time.UTC)
}

func existing(t *testing.T, hhmm string, minutes int, status AppointmentStatus) Appointment {
	t.Helper()
	return Appointment{
		ID:              uuid.New(),
		ScheduledAt:     at(t, hhmm),
		DurationMinutes: minutes,
		Status:          status,
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{name: "identical", aStart: "09:00", aEnd: "09:30", bStart: "09:00", bEnd: "09:30", want: true},
		{name: "new starts during existing", aStart: "09:15", aEnd: "09:45", bStart: "09:00", bEnd: "09:30", want: true},
		{name: "new ends during existing", aStart: "08:45", aEnd: "09:15", bStart: "09:00", bEnd: "09:30", want: true},
		{name: "existing within new", aStart: "08:00", aEnd: "10:00", bStart: "09:00", bEnd: "09:30", want: true},
		{name: "adjacent before", aStart: "08:30", aEnd: "09:00", bStart: "09:00", bEnd: "09:30", want: false},
		{name: "adjacent after", aStart: "09:30", aEnd: "10:00", bStart: "09:00", bEnd: "09:30", want: false},
		{name: "disjoint", aStart: "11:00", aEnd: "11:30", bStart: "09:00", bEnd: "09:30", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(at(t, tc.aStart), at(t, tc.aEnd), at(t, tc.bStart), at(t, tc.bEnd))
			assert.Equal(t, tc.want, got)

			// The overlap predicate is symmetric.
			swapped := Overlaps(at(t, tc.bStart), at(t, tc.bEnd), at(t, tc.aStart), at(t, tc.aEnd))
			assert.Equal(t, got, swapped)
		})
	}
}

func TestHasConflict_BlockingStatuses(t *testing.T) {
	for _, status := range []AppointmentStatus{StatusPending, StatusConfirmed, StatusCompleted} {
		t.Run(string(status), func(t *testing.T) {
			appts := []Appointment{existing(t, "09:00", 30, status)}
			assert.True(t, HasConflict(at(t, "09:00"), 30, appts, nil))
		})
	}
}

func TestHasConflict_CancelledAndNoShowDoNotBlock(t *testing.T) {
	appts := []Appointment{
		existing(t, "09:00", 30, StatusCancelled),
		existing(t, "09:00", 30, StatusNoShow),
	}
	assert.False(t, HasConflict(at(t, "09:00"), 30, appts, nil))
}

func TestHasConflict_PartialOverlap(t *testing.T) {
	appts := []Appointment{existing(t, "09:00", 60, StatusConfirmed)}

	assert.True(t, HasConflict(at(t, "09:30"), 30, appts, nil))
	assert.True(t, HasConflict(at(t, "08:45"), 30, appts, nil))
	assert.False(t, HasConflict(at(t, "10:00"), 30, appts, nil))
	assert.False(t, HasConflict(at(t, "08:00"), 60, appts, nil))
}

func TestHasConflict_ExcludeID(t *testing.T) {
	appt := existing(t, "09:00", 30, StatusConfirmed)
	appts := []Appointment{appt}

	assert.True(t, HasConflict(at(t, "09:00"), 30, appts, nil))
	assert.False(t, HasConflict(at(t, "09:00"), 30, appts, &appt.ID))

	other := uuid.New()
	assert.True(t, HasConflict(at(t, "09:00"), 30, appts, &other))
}

func TestHasConflict_EmptySet(t *testing.T) {
	assert.False(t, HasConflict(at(t, "09:00"), 30, nil, nil))
}
