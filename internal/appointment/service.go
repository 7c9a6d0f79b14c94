package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/riju-talk/HCL-Hackathon-Hiring-simple-medical-portal/internal/config"
	redisclient "github.com/riju-talk/HCL-Hackathon-Hiring-simple-medical-portal/internal/redis"
)

const (
	EventAppointmentBooked    = "APPOINTMENT_BOOKED"
	EventAppointmentUpdated   = "APPOINTMENT_STATUS_CHANGED"
	EventAppointmentSwept     = "APPOINTMENT_NO_SHOW_SWEPT"
	EventAvailabilityReplaced = "AVAILABILITY_REPLACED"
)

var (
	// ErrSlotUnavailable is the terminal booking outcome when the requested
	// time overlaps an existing appointment. Not a system fault; the caller
	// picks another slot.
	ErrSlotUnavailable = errors.New("time slot is no longer available")

	ErrInvalidStatus           = errors.New("invalid appointment status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrNotAllowed              = errors.New("not allowed")
	ErrInvalidWindow           = errors.New("invalid availability window")
	ErrInvalidSchedule         = errors.New("invalid appointment date or time")
)

// BookingInput is the draft a patient submits. Date is "YYYY-MM-DD", Time is
// 24-hour "HH:MM"; both are interpreted in UTC.
type BookingInput struct {
	DoctorID        uuid.UUID
	Date            string
	Time            string
	DurationMinutes int
	Reason          string
}

// WindowDraft is an unvalidated availability window as submitted by a doctor.
type WindowDraft struct {
	DayOfWeek string
	StartTime string
	EndTime   string
	Active    bool
}

// DaySchedule is the advisory slot listing for one doctor and date.
type DaySchedule struct {
	Free   []TimeOfDay
	Booked []TimeOfDay
}

type Service struct {
	repo   Repository
	locker redisclient.Locker
	cfg    config.Config
}

func NewService(repo Repository, locker redisclient.Locker, cfg config.Config) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		cfg:    cfg,
	}
}

// Book reserves a slot for the patient behind p. A per-(doctor, start) Redis
// lock keeps concurrent requests for the same time out of each other's way;
// the store transaction re-validates overlap and the exclusion constraint on
// appointments settles any race the lock did not catch. Either way the loser
// sees ErrSlotUnavailable, never a raw store error.
func (s *Service) Book(ctx context.Context, p Principal, in BookingInput) (*Appointment, error) {
	if p.Role != RolePatient {
		return nil, ErrNotAllowed
	}

	scheduledAt, err := parseSchedule(in.Date, in.Time)
	if err != nil {
		return nil, err
	}

	duration := in.DurationMinutes
	if duration == 0 {
		duration = s.cfg.DefaultDuration
	}
	if duration < 0 {
		return nil, fmt.Errorf("%w: negative duration", ErrInvalidSchedule)
	}

	if _, err := s.repo.GetPatientByID(ctx, p.UserID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	doctor, err := s.repo.GetDoctorByID(ctx, in.DoctorID)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if !doctor.Active {
		return nil, ErrDoctorNotFound
	}

	draft := &Appointment{
		PatientID:       p.UserID,
		DoctorID:        in.DoctorID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: duration,
		Status:          StatusPending,
		Reason:          in.Reason,
	}

	var created *Appointment

	err = s.locker.WithBookingLock(ctx, in.DoctorID, scheduledAt, func(lockCtx context.Context) error {
		appt, err := s.bookTx(lockCtx, draft)
		if errors.Is(err, ErrTxSerialization) {
			// A concurrent writer aborted the transaction. One retry with a
			// fresh read; a stale conflict result is never reused.
			appt, err = s.bookTx(lockCtx, draft)
		}
		if err != nil {
			return err
		}
		created = appt
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, redisclient.ErrLockNotAcquired):
			// Somebody else holds this exact slot right now; surfacing it as
			// unavailable matches what the loser of the race would see anyway.
			return nil, ErrSlotUnavailable
		case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrTxSerialization):
			return nil, ErrSlotUnavailable
		default:
			return nil, err
		}
	}

	s.logEvent(ctx, created.ID, EventAppointmentBooked, map[string]any{
		"doctor_id":    created.DoctorID.String(),
		"patient_id":   created.PatientID.String(),
		"scheduled_at": created.ScheduledAt,
		"duration":     created.DurationMinutes,
	})

	return created, nil
}

// bookTx runs the check-then-create unit of work inside one store transaction.
func (s *Service) bookTx(ctx context.Context, draft *Appointment) (*Appointment, error) {
	var created *Appointment

	err := s.repo.WithTx(ctx, func(txCtx context.Context, repo Repository) error {
		candidates, err := repo.ListOverlapCandidates(txCtx, draft.DoctorID, draft.ScheduledAt, draft.End())
		if err != nil {
			return fmt.Errorf("list overlap candidates: %w", err)
		}

		if HasConflict(draft.ScheduledAt, draft.DurationMinutes, candidates, nil) {
			return ErrSlotUnavailable
		}

		appt, err := repo.InsertAppointment(txCtx, draft)
		if err != nil {
			return err
		}
		created = appt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AvailableSlots expands the doctor's windows for the date and splits the
// grid into free and booked start times. Advisory only: the listing can go
// stale between listing and booking, Book re-validates at commit time.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) (*DaySchedule, error) {
	if _, err := s.repo.GetDoctorByID(ctx, doctorID); err != nil {
		return nil, err
	}

	windows, err := s.repo.GetAvailability(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("load availability: %w", err)
	}

	slots := SlotsForDay(windows, WeekdayOf(date), s.cfg.SlotMinutes)

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	existing, err := s.repo.ListOverlapCandidates(ctx, doctorID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("load booked appointments: %w", err)
	}

	bookedSet := make(map[TimeOfDay]bool)
	var booked []TimeOfDay
	for _, appt := range existing {
		at := appt.ScheduledAt.UTC()
		tod := TimeOfDay(at.Hour()*60 + at.Minute())
		if !bookedSet[tod] {
			bookedSet[tod] = true
			booked = append(booked, tod)
		}
	}

	var free []TimeOfDay
	for _, slot := range slots {
		if !bookedSet[slot] {
			free = append(free, slot)
		}
	}

	return &DaySchedule{Free: free, Booked: booked}, nil
}

// SetAvailability validates and replaces the doctor's whole window set.
// One bad window rejects the entire call; the stored set is untouched.
func (s *Service) SetAvailability(ctx context.Context, p Principal, drafts []WindowDraft) ([]AvailabilityWindow, error) {
	if p.Role != RoleDoctor {
		return nil, ErrNotAllowed
	}

	windows := make([]AvailabilityWindow, 0, len(drafts))
	for i, d := range drafts {
		day, err := ParseWeekday(d.DayOfWeek)
		if err != nil {
			return nil, fmt.Errorf("%w: window %d: %v", ErrInvalidWindow, i, err)
		}
		start, err := ParseTimeOfDay(d.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: window %d: %v", ErrInvalidWindow, i, err)
		}
		end, err := ParseTimeOfDay(d.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%w: window %d: %v", ErrInvalidWindow, i, err)
		}
		if start >= end {
			return nil, fmt.Errorf("%w: window %d: start %s is not before end %s", ErrInvalidWindow, i, start, end)
		}

		windows = append(windows, AvailabilityWindow{
			ID:        uuid.New(),
			DoctorID:  p.UserID,
			DayOfWeek: day,
			StartTime: start,
			EndTime:   end,
			Active:    d.Active,
		})
	}

	if err := s.repo.ReplaceAvailability(ctx, p.UserID, windows); err != nil {
		return nil, fmt.Errorf("replace availability: %w", err)
	}

	s.logEvent(ctx, uuid.Nil, EventAvailabilityReplaced, map[string]any{
		"doctor_id": p.UserID.String(),
		"windows":   len(windows),
	})

	return windows, nil
}

// Availability returns the doctor's configured windows, empty when none.
func (s *Service) Availability(ctx context.Context, doctorID uuid.UUID) ([]AvailabilityWindow, error) {
	windows, err := s.repo.GetAvailability(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("load availability: %w", err)
	}
	if windows == nil {
		windows = []AvailabilityWindow{}
	}
	return windows, nil
}

// UpdateInput carries a partial appointment update. Nil fields are left as is.
type UpdateInput struct {
	Status             *AppointmentStatus
	Notes              *string
	CancellationReason *string
}

// Update applies a status transition and/or notes to an appointment with an
// optimistic version check. Status changes never re-run conflict detection;
// cancelling or completing cannot collide with anything.
func (s *Service) Update(ctx context.Context, p Principal, id uuid.UUID, in UpdateInput) (*Appointment, error) {
	if in.Status != nil && !ValidStatus(*in.Status) {
		return nil, ErrInvalidStatus
	}

	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	target := appt.Status
	if in.Status != nil {
		target = *in.Status
	}

	if !AllowedFor(p, appt, target) {
		return nil, ErrNotAllowed
	}

	if in.Status != nil && !CanTransition(appt.Status, *in.Status) {
		return nil, ErrInvalidStatusTransition
	}

	expectedVersion := appt.Version
	next := *appt
	if in.Status != nil {
		next.Status = *in.Status
	}
	if in.Notes != nil {
		next.Notes = in.Notes
	}
	if in.CancellationReason != nil {
		next.CancellationReason = in.CancellationReason
	}

	updated, err := s.repo.UpdateAppointmentChecked(ctx, &next, expectedVersion)
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, updated.ID, EventAppointmentUpdated, map[string]any{
		"from":    string(appt.Status),
		"to":      string(updated.Status),
		"by_role": string(p.Role),
	})

	return updated, nil
}

// CancelOwn is the patient-facing soft cancel.
func (s *Service) CancelOwn(ctx context.Context, p Principal, id uuid.UUID, reason *string) (*Appointment, error) {
	status := StatusCancelled
	return s.Update(ctx, p, id, UpdateInput{Status: &status, CancellationReason: reason})
}

func (s *Service) AppointmentsFor(ctx context.Context, p Principal) ([]Appointment, error) {
	switch p.Role {
	case RolePatient:
		return s.repo.ListAppointmentsByPatient(ctx, p.UserID)
	case RoleDoctor:
		return s.repo.ListAppointmentsByDoctor(ctx, p.UserID)
	}
	return nil, ErrNotAllowed
}

// PatientsOf lists the distinct patients a doctor has seen.
func (s *Service) PatientsOf(ctx context.Context, doctorID uuid.UUID) ([]Patient, error) {
	return s.repo.ListPatientsByDoctor(ctx, doctorID)
}

func (s *Service) Doctors(ctx context.Context) ([]Doctor, error) {
	return s.repo.ListDoctors(ctx)
}

func (s *Service) Doctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetDoctorByID(ctx, id)
}

// SweepNoShows marks pending and confirmed appointments whose slot ended
// longer than the grace period ago as no-show. Called by the worker.
func (s *Service) SweepNoShows(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.repo.FindOverdue(ctx, now.Add(-s.cfg.NoShowGracePeriod))
	if err != nil {
		return 0, fmt.Errorf("find overdue appointments: %w", err)
	}

	swept := 0
	for _, appt := range overdue {
		next := appt
		next.Status = StatusNoShow

		if _, err := s.repo.UpdateAppointmentChecked(ctx, &next, appt.Version); err != nil {
			// A concurrent status change won; skip it, the next run re-reads.
			if errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrAppointmentNotFound) {
				continue
			}
			log.Printf("failed to sweep appointment %s: %v", appt.ID, err)
			continue
		}
		swept++
		s.logEvent(ctx, appt.ID, EventAppointmentSwept, map[string]any{
			"scheduled_at": appt.ScheduledAt,
		})
	}

	return swept, nil
}

func parseSchedule(date, timeOfDay string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	tod, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	return tod.At(day, time.UTC), nil
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal event payload for %s: %v", eventType, err)
		data = nil
	}

	ev := EventLog{
		EventType: eventType,
		Payload:   data,
		CreatedAt: time.Now(),
	}
	if appointmentID != uuid.Nil {
		apptID := appointmentID
		ev.AppointmentID = &apptID
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		log.Printf("failed to insert event log %s for appointment %s: %v", eventType, appointmentID, err)
	}
}
