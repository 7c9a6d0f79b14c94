package appointment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusNoShow, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusNoShow, true},

		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusNoShow, StatusCancelled, false},
		{StatusPending, StatusPending, false},
	}

	for _, tc := range tests {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.want, CanTransition(tc.from, tc.to))
		})
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, Terminal(StatusPending))
	assert.False(t, Terminal(StatusConfirmed))
	assert.True(t, Terminal(StatusCompleted))
	assert.True(t, Terminal(StatusCancelled))
	assert.True(t, Terminal(StatusNoShow))
}

func TestAllowedFor(t *testing.T) {
	doctorID := uuid.New()
	patientID := uuid.New()
	appt := &Appointment{DoctorID: doctorID, PatientID: patientID}

	doctor := Principal{UserID: doctorID, Role: RoleDoctor}
	patient := Principal{UserID: patientID, Role: RolePatient}
	otherDoctor := Principal{UserID: uuid.New(), Role: RoleDoctor}
	otherPatient := Principal{UserID: uuid.New(), Role: RolePatient}

	assert.True(t, AllowedFor(doctor, appt, StatusConfirmed))
	assert.True(t, AllowedFor(doctor, appt, StatusNoShow))
	assert.False(t, AllowedFor(otherDoctor, appt, StatusConfirmed))

	assert.True(t, AllowedFor(patient, appt, StatusCancelled))
	assert.False(t, AllowedFor(patient, appt, StatusConfirmed))
	assert.False(t, AllowedFor(patient, appt, StatusCompleted))
	assert.False(t, AllowedFor(otherPatient, appt, StatusCancelled))
}
