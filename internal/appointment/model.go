package appointment

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no-show"
)

// ValidStatus reports whether s is one of the known appointment statuses.
func ValidStatus(s AppointmentStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Principal is the authenticated identity attached to every request by the
// upstream auth layer. The engine trusts it and does not re-authenticate.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	Phone     *string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Doctor struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	Specialty *string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AvailabilityWindow is one recurring weekly interval during which a doctor
// accepts appointments. Windows for the same doctor may overlap; overlap is
// resolved at slot-generation time.
type AvailabilityWindow struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	DayOfWeek Weekday
	StartTime TimeOfDay
	EndTime   TimeOfDay
	Active    bool
}

// Appointment is the durable reservation between a patient and a doctor.
// ScheduledAt is the canonical instant used for conflict comparison; the
// occupied interval is [ScheduledAt, ScheduledAt + DurationMinutes).
type Appointment struct {
	ID                 uuid.UUID
	PatientID          uuid.UUID
	DoctorID           uuid.UUID
	ScheduledAt        time.Time
	DurationMinutes    int
	Status             AppointmentStatus
	Reason             string
	Notes              *string
	CancellationReason *string
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// End returns the exclusive end instant of the appointment interval.
func (a Appointment) End() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
