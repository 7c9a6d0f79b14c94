package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riju-talk/HCL-Hackathon-Hiring-simple-medical-portal/internal/config"
)

// ────────────────────────────────────────────────
// Test doubles
// ────────────────────────────────────────────────

// noopLocker runs the critical section without any distributed lock so the
// store transaction is the only thing standing between racing bookings.
type noopLocker struct{}

func (noopLocker) WithBookingLock(ctx context.Context, doctorID uuid.UUID, startAt time.Time, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockRepo struct {
	getPatientFunc      func(ctx context.Context, id uuid.UUID) (*Patient, error)
	getDoctorFunc       func(ctx context.Context, id uuid.UUID) (*Doctor, error)
	getAvailabilityFunc func(ctx context.Context, doctorID uuid.UUID) ([]AvailabilityWindow, error)
	replaceAvailFunc    func(ctx context.Context, doctorID uuid.UUID, windows []AvailabilityWindow) error
	listOverlapFunc     func(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error)
	insertFunc          func(ctx context.Context, appt *Appointment) (*Appointment, error)
	getAppointmentFunc  func(ctx context.Context, id uuid.UUID) (*Appointment, error)
	updateCheckedFunc   func(ctx context.Context, appt *Appointment, expectedVersion int) (*Appointment, error)
	findOverdueFunc     func(ctx context.Context, before time.Time) ([]Appointment, error)
}

func (m *mockRepo) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	if m.getPatientFunc != nil {
		return m.getPatientFunc(ctx, id)
	}
	return &Patient{ID: id, Name: "Test Patient", Active: true}, nil
}

func (m *mockRepo) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	if m.getDoctorFunc != nil {
		return m.getDoctorFunc(ctx, id)
	}
	return &Doctor{ID: id, Name: "Test Doctor", Active: true}, nil
}

func (m *mockRepo) ListDoctors(ctx context.Context) ([]Doctor, error) { return nil, nil }

func (m *mockRepo) GetAvailability(ctx context.Context, doctorID uuid.UUID) ([]AvailabilityWindow, error) {
	if m.getAvailabilityFunc != nil {
		return m.getAvailabilityFunc(ctx, doctorID)
	}
	return nil, nil
}

func (m *mockRepo) ReplaceAvailability(ctx context.Context, doctorID uuid.UUID, windows []AvailabilityWindow) error {
	if m.replaceAvailFunc != nil {
		return m.replaceAvailFunc(ctx, doctorID, windows)
	}
	return nil
}

func (m *mockRepo) ListOverlapCandidates(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	if m.listOverlapFunc != nil {
		return m.listOverlapFunc(ctx, doctorID, from, to)
	}
	return nil, nil
}

func (m *mockRepo) InsertAppointment(ctx context.Context, appt *Appointment) (*Appointment, error) {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, appt)
	}
	created := *appt
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	return &created, nil
}

func (m *mockRepo) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	if m.getAppointmentFunc != nil {
		return m.getAppointmentFunc(ctx, id)
	}
	return nil, ErrAppointmentNotFound
}

func (m *mockRepo) UpdateAppointmentChecked(ctx context.Context, appt *Appointment, expectedVersion int) (*Appointment, error) {
	if m.updateCheckedFunc != nil {
		return m.updateCheckedFunc(ctx, appt, expectedVersion)
	}
	updated := *appt
	updated.Version = expectedVersion + 1
	return &updated, nil
}

func (m *mockRepo) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error) {
	return nil, nil
}

func (m *mockRepo) ListAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	return nil, nil
}

func (m *mockRepo) ListPatientsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Patient, error) {
	return nil, nil
}

func (m *mockRepo) FindOverdue(ctx context.Context, before time.Time) ([]Appointment, error) {
	if m.findOverdueFunc != nil {
		return m.findOverdueFunc(ctx, before)
	}
	return nil, nil
}

func (m *mockRepo) InsertEvent(ctx context.Context, ev EventLog) error { return nil }

func (m *mockRepo) WithTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error {
	return fn(ctx, m)
}

// memRepo is a mutex-backed in-memory store whose WithTx serializes whole
// transactions, mimicking the isolation the real store provides.
type memRepo struct {
	mockRepo
	mu    sync.Mutex
	appts []Appointment
}

func (m *memRepo) ListOverlapCandidates(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	var out []Appointment
	for _, a := range m.appts {
		if a.DoctorID != doctorID || !countsForConflict(a.Status) {
			continue
		}
		if a.ScheduledAt.Before(to) && a.End().After(from) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memRepo) InsertAppointment(ctx context.Context, appt *Appointment) (*Appointment, error) {
	created := *appt
	created.ID = uuid.New()
	m.appts = append(m.appts, created)
	return &created, nil
}

func (m *memRepo) WithTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m)
}

func testConfig() config.Config {
	return config.Config{
		SlotMinutes:       30,
		DefaultDuration:   30,
		NoShowGracePeriod: 2 * time.Hour,
	}
}

func newTestService(repo Repository) *Service {
	return NewService(repo, noopLocker{}, testConfig())
}

func patientPrincipal() Principal {
	return Principal{UserID: uuid.New(), Role: RolePatient}
}

// ────────────────────────────────────────────────
// Book
// ────────────────────────────────────────────────

func TestBook_Success(t *testing.T) {
	svc := newTestService(&mockRepo{})
	p := patientPrincipal()

	appt, err := svc.Book(context.Background(), p, BookingInput{
		DoctorID: uuid.New(),
		Date:     "2026-09-07",
		Time:     "09:00",
		Reason:   "checkup",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, appt.Status)
	assert.Equal(t, p.UserID, appt.PatientID)
	assert.Equal(t, 30, appt.DurationMinutes)
	assert.Equal(t, time.Date(2026, time.September, 7, 9, 0, 0, 0, time.UTC), appt.ScheduledAt)
}

func TestBook_OverlapFails(t *testing.T) {
	doctorID := uuid.New()
	repo := &mockRepo{
		listOverlapFunc: func(ctx context.Context, id uuid.UUID, from, to time.Time) ([]Appointment, error) {
			return []Appointment{{
				ID:              uuid.New(),
				DoctorID:        id,
				ScheduledAt:     time.Date(2026, time.September, 7, 9, 0, 0, 0, time.UTC),
				DurationMinutes: 30,
				Status:          StatusConfirmed,
			}}, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Book(context.Background(), patientPrincipal(), BookingInput{
		DoctorID: doctorID,
		Date:     "2026-09-07",
		Time:     "09:00",
		Reason:   "checkup",
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestBook_CancelledDoesNotBlock(t *testing.T) {
	doctorID := uuid.New()
	repo := &memRepo{}
	repo.appts = append(repo.appts, Appointment{
		ID:              uuid.New(),
		DoctorID:        doctorID,
		ScheduledAt:     time.Date(2026, time.September, 7, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
		Status:          StatusCancelled,
	})
	svc := newTestService(repo)

	appt, err := svc.Book(context.Background(), patientPrincipal(), BookingInput{
		DoctorID: doctorID,
		Date:     "2026-09-07",
		Time:     "09:00",
		Reason:   "checkup",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, appt.Status)
}

func TestBook_StoreConflictSignalBecomesSlotUnavailable(t *testing.T) {
	repo := &mockRepo{
		insertFunc: func(ctx context.Context, appt *Appointment) (*Appointment, error) {
			return nil, ErrSlotTaken
		},
	}
	svc := newTestService(repo)

	_, err := svc.Book(context.Background(), patientPrincipal(), BookingInput{
		DoctorID: uuid.New(),
		Date:     "2026-09-07",
		Time:     "09:00",
		Reason:   "checkup",
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestBook_SerializationFailureRetriedOnce(t *testing.T) {
	attempts := 0
	repo := &mockRepo{
		insertFunc: func(ctx context.Context, appt *Appointment) (*Appointment, error) {
			attempts++
			if attempts == 1 {
				return nil, ErrTxSerialization
			}
			created := *appt
			created.ID = uuid.New()
			return &created, nil
		},
	}
	svc := newTestService(repo)

	appt, err := svc.Book(context.Background(), patientPrincipal(), BookingInput{
		DoctorID: uuid.New(),
		Date:     "2026-09-07",
		Time:     "09:00",
		Reason:   "checkup",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, StatusPending, appt.Status)
}

func TestBook_PersistentSerializationFailureSurfacesAsSlotUnavailable(t *testing.T) {
	attempts := 0
	repo := &mockRepo{
		insertFunc: func(ctx context.Context, appt *Appointment) (*Appointment, error) {
			attempts++
			return nil, ErrTxSerialization
		},
	}
	svc := newTestService(repo)

	_, err := svc.Book(context.Background(), patientPrincipal(), BookingInput{
		DoctorID: uuid.New(),
		Date:     "2026-09-07",
		Time:     "09:00",
		Reason:   "checkup",
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Equal(t, 2, attempts)
}

func TestBook_InvalidScheduleRejected(t *testing.T) {
	svc := newTestService(&mockRepo{})

	tests := []struct {
		name string
		date string
		time string
	}{
		{name: "bad date", date: "07-09-2026", time: "09:00"},
		{name: "bad time", date: "2026-09-07", time: "9am"},
		{name: "empty time", date: "2026-09-07", time: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Book(context.Background(), patientPrincipal(), BookingInput{
				DoctorID: uuid.New(),
				Date:     tc.date,
				Time:     tc.time,
				Reason:   "checkup",
			})
			assert.ErrorIs(t, err, ErrInvalidSchedule)
		})
	}
}

func TestBook_InactiveDoctorRejected(t *testing.T) {
	repo := &mockRepo{
		getDoctorFunc: func(ctx context.Context, id uuid.UUID) (*Doctor, error) {
			return &Doctor{ID: id, Name: "Retired", Active: false}, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Book(context.Background(), patientPrincipal(), BookingInput{
		DoctorID: uuid.New(),
		Date:     "2026-09-07",
		Time:     "09:00",
		Reason:   "checkup",
	})
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestBook_DoctorPrincipalRejected(t *testing.T) {
	svc := newTestService(&mockRepo{})

	_, err := svc.Book(context.Background(), Principal{UserID: uuid.New(), Role: RoleDoctor}, BookingInput{
		DoctorID: uuid.New(),
		Date:     "2026-09-07",
		Time:     "09:00",
		Reason:   "checkup",
	})
	assert.ErrorIs(t, err, ErrNotAllowed)
}

// Exactly one of N concurrent bookings for the same doctor and time commits;
// every other caller gets ErrSlotUnavailable.
func TestBook_ConcurrentRequestsSingleWinner(t *testing.T) {
	const n = 32

	doctorID := uuid.New()
	repo := &memRepo{}
	svc := newTestService(repo)

	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Book(context.Background(), patientPrincipal(), BookingInput{
				DoctorID: doctorID,
				Date:     "2026-09-07",
				Time:     "09:00",
				Reason:   "checkup",
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrSlotUnavailable)
		}
	}
	assert.Equal(t, 1, winners)
	require.Len(t, repo.appts, 1)
}

// ────────────────────────────────────────────────
// Availability
// ────────────────────────────────────────────────

func TestSetAvailability_Success(t *testing.T) {
	var stored []AvailabilityWindow
	repo := &mockRepo{
		replaceAvailFunc: func(ctx context.Context, doctorID uuid.UUID, windows []AvailabilityWindow) error {
			stored = windows
			return nil
		},
	}
	svc := newTestService(repo)
	doctor := Principal{UserID: uuid.New(), Role: RoleDoctor}

	windows, err := svc.SetAvailability(context.Background(), doctor, []WindowDraft{
		{DayOfWeek: "monday", StartTime: "09:00", EndTime: "17:00", Active: true},
		{DayOfWeek: "friday", StartTime: "10:00", EndTime: "14:00", Active: true},
	})
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, stored, windows)
	assert.Equal(t, doctor.UserID, windows[0].DoctorID)
	assert.Equal(t, Monday, windows[0].DayOfWeek)
}

// One bad window rejects the whole call before the store is touched.
func TestSetAvailability_AllOrNothing(t *testing.T) {
	called := false
	repo := &mockRepo{
		replaceAvailFunc: func(ctx context.Context, doctorID uuid.UUID, windows []AvailabilityWindow) error {
			called = true
			return nil
		},
	}
	svc := newTestService(repo)
	doctor := Principal{UserID: uuid.New(), Role: RoleDoctor}

	drafts := []WindowDraft{
		{DayOfWeek: "monday", StartTime: "09:00", EndTime: "17:00", Active: true},
		{DayOfWeek: "tuesday", StartTime: "09:00", EndTime: "17:00", Active: true},
		{DayOfWeek: "humpday", StartTime: "09:00", EndTime: "17:00", Active: true},
		{DayOfWeek: "thursday", StartTime: "09:00", EndTime: "17:00", Active: true},
		{DayOfWeek: "friday", StartTime: "09:00", EndTime: "17:00", Active: true},
	}

	_, err := svc.SetAvailability(context.Background(), doctor, drafts)
	assert.ErrorIs(t, err, ErrInvalidWindow)
	assert.False(t, called)
}

func TestSetAvailability_RejectsBadTimes(t *testing.T) {
	svc := newTestService(&mockRepo{})
	doctor := Principal{UserID: uuid.New(), Role: RoleDoctor}

	tests := []struct {
		name  string
		draft WindowDraft
	}{
		{name: "bad start", draft: WindowDraft{DayOfWeek: "monday", StartTime: "25:00", EndTime: "17:00"}},
		{name: "bad end", draft: WindowDraft{DayOfWeek: "monday", StartTime: "09:00", EndTime: "17:61"}},
		{name: "start after end", draft: WindowDraft{DayOfWeek: "monday", StartTime: "17:00", EndTime: "09:00"}},
		{name: "start equals end", draft: WindowDraft{DayOfWeek: "monday", StartTime: "09:00", EndTime: "09:00"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SetAvailability(context.Background(), doctor, []WindowDraft{tc.draft})
			assert.ErrorIs(t, err, ErrInvalidWindow)
		})
	}
}

func TestSetAvailability_PatientRejected(t *testing.T) {
	svc := newTestService(&mockRepo{})

	_, err := svc.SetAvailability(context.Background(), patientPrincipal(), nil)
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestAvailableSlots(t *testing.T) {
	doctorID := uuid.New()
	monday := time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC)

	repo := &mockRepo{
		getAvailabilityFunc: func(ctx context.Context, id uuid.UUID) ([]AvailabilityWindow, error) {
			start, _ := ParseTimeOfDay("09:00")
			end, _ := ParseTimeOfDay("11:00")
			return []AvailabilityWindow{
				{DoctorID: id, DayOfWeek: Monday, StartTime: start, EndTime: end, Active: true},
			}, nil
		},
		listOverlapFunc: func(ctx context.Context, id uuid.UUID, from, to time.Time) ([]Appointment, error) {
			return []Appointment{{
				DoctorID:        id,
				ScheduledAt:     time.Date(2026, time.September, 7, 9, 30, 0, 0, time.UTC),
				DurationMinutes: 30,
				Status:          StatusPending,
			}}, nil
		},
	}
	svc := newTestService(repo)

	schedule, err := svc.AvailableSlots(context.Background(), doctorID, monday)
	require.NoError(t, err)

	free := make([]string, 0, len(schedule.Free))
	for _, s := range schedule.Free {
		free = append(free, s.String())
	}
	booked := make([]string, 0, len(schedule.Booked))
	for _, s := range schedule.Booked {
		booked = append(booked, s.String())
	}

	assert.Equal(t, []string{"09:00", "10:00", "10:30"}, free)
	assert.Equal(t, []string{"09:30"}, booked)
}

func TestAvailableSlots_NoWindowsMeansEmpty(t *testing.T) {
	svc := newTestService(&mockRepo{})

	schedule, err := svc.AvailableSlots(context.Background(), uuid.New(), time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, schedule.Free)
	assert.Empty(t, schedule.Booked)
}

// ────────────────────────────────────────────────
// Update / cancel
// ────────────────────────────────────────────────

func storedAppointment(doctorID, patientID uuid.UUID, status AppointmentStatus) *Appointment {
	return &Appointment{
		ID:              uuid.New(),
		DoctorID:        doctorID,
		PatientID:       patientID,
		ScheduledAt:     time.Date(2026, time.September, 7, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
		Status:          status,
		Reason:          "checkup",
		Version:         3,
	}
}

func TestUpdate_DoctorConfirms(t *testing.T) {
	doctorID := uuid.New()
	appt := storedAppointment(doctorID, uuid.New(), StatusPending)

	var gotVersion int
	repo := &mockRepo{
		getAppointmentFunc: func(ctx context.Context, id uuid.UUID) (*Appointment, error) {
			return appt, nil
		},
		updateCheckedFunc: func(ctx context.Context, next *Appointment, expectedVersion int) (*Appointment, error) {
			gotVersion = expectedVersion
			updated := *next
			updated.Version = expectedVersion + 1
			return &updated, nil
		},
	}
	svc := newTestService(repo)

	status := StatusConfirmed
	updated, err := svc.Update(context.Background(), Principal{UserID: doctorID, Role: RoleDoctor}, appt.ID, UpdateInput{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, updated.Status)
	assert.Equal(t, 3, gotVersion)
	assert.Equal(t, 4, updated.Version)
}

func TestUpdate_PatientCancelsOwn(t *testing.T) {
	patientID := uuid.New()
	appt := storedAppointment(uuid.New(), patientID, StatusConfirmed)

	repo := &mockRepo{
		getAppointmentFunc: func(ctx context.Context, id uuid.UUID) (*Appointment, error) {
			return appt, nil
		},
	}
	svc := newTestService(repo)

	reason := "can't make it"
	updated, err := svc.CancelOwn(context.Background(), Principal{UserID: patientID, Role: RolePatient}, appt.ID, &reason)
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, updated.Status)
	require.NotNil(t, updated.CancellationReason)
	assert.Equal(t, reason, *updated.CancellationReason)
}

func TestUpdate_PatientCannotConfirm(t *testing.T) {
	patientID := uuid.New()
	appt := storedAppointment(uuid.New(), patientID, StatusPending)

	repo := &mockRepo{
		getAppointmentFunc: func(ctx context.Context, id uuid.UUID) (*Appointment, error) {
			return appt, nil
		},
	}
	svc := newTestService(repo)

	status := StatusConfirmed
	_, err := svc.Update(context.Background(), Principal{UserID: patientID, Role: RolePatient}, appt.ID, UpdateInput{Status: &status})
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestUpdate_StrangerCannotCancel(t *testing.T) {
	appt := storedAppointment(uuid.New(), uuid.New(), StatusPending)

	repo := &mockRepo{
		getAppointmentFunc: func(ctx context.Context, id uuid.UUID) (*Appointment, error) {
			return appt, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.CancelOwn(context.Background(), patientPrincipal(), appt.ID, nil)
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestUpdate_TerminalStateRejected(t *testing.T) {
	doctorID := uuid.New()
	appt := storedAppointment(doctorID, uuid.New(), StatusCompleted)

	repo := &mockRepo{
		getAppointmentFunc: func(ctx context.Context, id uuid.UUID) (*Appointment, error) {
			return appt, nil
		},
	}
	svc := newTestService(repo)

	status := StatusCancelled
	_, err := svc.Update(context.Background(), Principal{UserID: doctorID, Role: RoleDoctor}, appt.ID, UpdateInput{Status: &status})
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestUpdate_UnknownStatusRejected(t *testing.T) {
	svc := newTestService(&mockRepo{})

	status := AppointmentStatus("rescheduled")
	_, err := svc.Update(context.Background(), patientPrincipal(), uuid.New(), UpdateInput{Status: &status})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdate_VersionConflictPropagates(t *testing.T) {
	doctorID := uuid.New()
	appt := storedAppointment(doctorID, uuid.New(), StatusPending)

	repo := &mockRepo{
		getAppointmentFunc: func(ctx context.Context, id uuid.UUID) (*Appointment, error) {
			return appt, nil
		},
		updateCheckedFunc: func(ctx context.Context, next *Appointment, expectedVersion int) (*Appointment, error) {
			return nil, ErrVersionConflict
		},
	}
	svc := newTestService(repo)

	status := StatusConfirmed
	_, err := svc.Update(context.Background(), Principal{UserID: doctorID, Role: RoleDoctor}, appt.ID, UpdateInput{Status: &status})
	assert.ErrorIs(t, err, ErrVersionConflict)
}

// ────────────────────────────────────────────────
// No-show sweep
// ────────────────────────────────────────────────

func TestSweepNoShows(t *testing.T) {
	overdue := []Appointment{
		*storedAppointment(uuid.New(), uuid.New(), StatusPending),
		*storedAppointment(uuid.New(), uuid.New(), StatusConfirmed),
	}

	var updates []AppointmentStatus
	repo := &mockRepo{
		findOverdueFunc: func(ctx context.Context, before time.Time) ([]Appointment, error) {
			return overdue, nil
		},
		updateCheckedFunc: func(ctx context.Context, next *Appointment, expectedVersion int) (*Appointment, error) {
			updates = append(updates, next.Status)
			updated := *next
			updated.Version = expectedVersion + 1
			return &updated, nil
		},
	}
	svc := newTestService(repo)

	swept, err := svc.SweepNoShows(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, swept)
	assert.Equal(t, []AppointmentStatus{StatusNoShow, StatusNoShow}, updates)
}

func TestSweepNoShows_LostRaceSkipped(t *testing.T) {
	overdue := []Appointment{*storedAppointment(uuid.New(), uuid.New(), StatusPending)}

	repo := &mockRepo{
		findOverdueFunc: func(ctx context.Context, before time.Time) ([]Appointment, error) {
			return overdue, nil
		},
		updateCheckedFunc: func(ctx context.Context, next *Appointment, expectedVersion int) (*Appointment, error) {
			return nil, ErrVersionConflict
		},
	}
	svc := newTestService(repo)

	swept, err := svc.SweepNoShows(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, swept)
}
