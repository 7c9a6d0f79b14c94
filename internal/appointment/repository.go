package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotTaken is the store's own overlap signal: the exclusion
	// constraint rejected a racing insert.
	ErrSlotTaken = errors.New("slot already taken")

	// ErrTxSerialization marks a transaction aborted by the store's
	// isolation machinery. Safe to retry once with a fresh read.
	ErrTxSerialization = errors.New("transaction serialization failure")

	// ErrVersionConflict means an optimistic-version-checked update lost a
	// race with a concurrent writer.
	ErrVersionConflict = errors.New("appointment changed concurrently")
)

// Repository contains all store interactions needed by the service.
// Implementations must be usable both directly and inside WithTx.
type Repository interface {
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	ListDoctors(ctx context.Context) ([]Doctor, error)

	// Availability store
	GetAvailability(ctx context.Context, doctorID uuid.UUID) ([]AvailabilityWindow, error)
	ReplaceAvailability(ctx context.Context, doctorID uuid.UUID, windows []AvailabilityWindow) error

	// Booking
	ListOverlapCandidates(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error)
	InsertAppointment(ctx context.Context, appt *Appointment) (*Appointment, error)

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// UpdateAppointmentChecked writes status/notes/cancellation reason iff the
	// stored version still equals expectedVersion, bumping the version.
	UpdateAppointmentChecked(ctx context.Context, appt *Appointment, expectedVersion int) (*Appointment, error)

	ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error)
	ListAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error)
	ListPatientsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Patient, error)

	// No-show sweeper
	FindOverdue(ctx context.Context, before time.Time) ([]Appointment, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error

	// WithTx runs fn against a transaction-scoped view of the repository.
	// The transaction commits iff fn returns nil; any error rolls it back.
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error
}
