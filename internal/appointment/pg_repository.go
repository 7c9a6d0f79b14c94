package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so every repository
// method works unchanged inside WithTx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	pool *pgxpool.Pool // nil when tx-scoped
	q    querier
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool, q: pool}
}

// WithTx runs fn against a REPEATABLE READ transaction. Overlap candidates
// read inside the scope stay stable until commit; the appointments exclusion
// constraint catches the truly simultaneous case.
func (r *PgRepository) WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	if r.pool == nil {
		// Already inside a transaction scope.
		return fn(ctx, r)
	}

	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.RepeatableRead}, func(tx pgx.Tx) error {
		return fn(ctx, &PgRepository{q: tx})
	})
}

// translateError maps store-level concurrency signals onto repository
// sentinels so the service never sees raw SQLSTATEs.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23P01", "23505": // exclusion / unique violation
			return ErrSlotTaken
		case "40001", "40P01": // serialization failure / deadlock
			return ErrTxSerialization
		}
	}
	return err
}

// Scan helpers

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Email, &d.Specialty, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}
	return &d, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.DoctorID,
		&a.ScheduledAt,
		&a.DurationMinutes,
		&a.Status,
		&a.Reason,
		&a.Notes,
		&a.CancellationReason,
		&a.Version,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

const appointmentColumns = `id, patient_id, doctor_id, scheduled_at, duration_minutes,
		status, reason, notes, cancellation_reason, version, created_at, updated_at`

// Interface methods

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, name, email, phone, active, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, name, email, specialty, active, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) ListDoctors(ctx context.Context) ([]Doctor, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, email, specialty, active, created_at, updated_at
		FROM doctors
		WHERE active
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	return result, rows.Err()
}

func (r *PgRepository) GetAvailability(ctx context.Context, doctorID uuid.UUID) ([]AvailabilityWindow, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, doctor_id, day_of_week, start_minutes, end_minutes, active
		FROM availability_windows
		WHERE doctor_id = $1
		ORDER BY day_of_week, start_minutes
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []AvailabilityWindow
	for rows.Next() {
		var w AvailabilityWindow
		var startMin, endMin int
		if err := rows.Scan(&w.ID, &w.DoctorID, &w.DayOfWeek, &startMin, &endMin, &w.Active); err != nil {
			return nil, err
		}
		w.StartTime = TimeOfDay(startMin)
		w.EndTime = TimeOfDay(endMin)
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// ReplaceAvailability swaps the doctor's full window set in one transaction.
// A failure anywhere leaves the previous set untouched.
func (r *PgRepository) ReplaceAvailability(ctx context.Context, doctorID uuid.UUID, windows []AvailabilityWindow) error {
	return r.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		txRepo := repo.(*PgRepository)

		if _, err := txRepo.q.Exec(ctx, `
			DELETE FROM availability_windows WHERE doctor_id = $1
		`, doctorID); err != nil {
			return fmt.Errorf("clear availability: %w", err)
		}

		for _, w := range windows {
			id := w.ID
			if id == uuid.Nil {
				id = uuid.New()
			}
			if _, err := txRepo.q.Exec(ctx, `
				INSERT INTO availability_windows (id, doctor_id, day_of_week, start_minutes, end_minutes, active)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, id, doctorID, w.DayOfWeek, int(w.StartTime), int(w.EndTime), w.Active); err != nil {
				return fmt.Errorf("insert availability window: %w", err)
			}
		}
		return nil
	})
}

// ListOverlapCandidates returns non-cancelled appointments whose interval
// could intersect [from, to). The (doctor_id, scheduled_at) index bounds the
// scan; the final overlap decision belongs to the conflict detector.
func (r *PgRepository) ListOverlapCandidates(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1
		  AND status NOT IN ('cancelled', 'no-show')
		  AND scheduled_at < $3
		  AND scheduled_at + make_interval(mins => duration_minutes) > $2
		ORDER BY scheduled_at
	`, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) InsertAppointment(ctx context.Context, appt *Appointment) (*Appointment, error) {
	id := appt.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.q.QueryRow(ctx, `
		INSERT INTO appointments
			(id, patient_id, doctor_id, scheduled_at, duration_minutes, status, reason, notes, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, now(), now())
		RETURNING `+appointmentColumns+`
	`, id, appt.PatientID, appt.DoctorID, appt.ScheduledAt, appt.DurationMinutes, appt.Status, appt.Reason, appt.Notes)

	created, err := scanAppointment(row)
	if err != nil {
		return nil, translateError(err)
	}
	return created, nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateAppointmentChecked(ctx context.Context, appt *Appointment, expectedVersion int) (*Appointment, error) {
	row := r.q.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    notes = $3,
		    cancellation_reason = $4,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $1
		  AND version = $5
		RETURNING `+appointmentColumns+`
	`, appt.ID, appt.Status, appt.Notes, appt.CancellationReason, expectedVersion)

	updated, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Row exists but at a different version, or is truly gone;
			// disambiguate so a lost race is not reported as missing.
			if _, getErr := r.GetAppointmentByID(ctx, appt.ID); getErr == nil {
				return nil, ErrVersionConflict
			}
			return nil, ErrAppointmentNotFound
		}
		return nil, translateError(err)
	}
	return updated, nil
}

func (r *PgRepository) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		ORDER BY scheduled_at DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) ListAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1
		ORDER BY scheduled_at DESC
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) ListPatientsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Patient, error) {
	rows, err := r.q.Query(ctx, `
		SELECT DISTINCT ON (p.id) p.id, p.name, p.email, p.phone, p.active, p.created_at, p.updated_at
		FROM patients p
		JOIN appointments a ON a.patient_id = p.id
		WHERE a.doctor_id = $1
		ORDER BY p.id, p.created_at DESC
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

// FindOverdue returns pending and confirmed appointments whose interval ended
// before the given instant. Used by the no-show sweeper.
func (r *PgRepository) FindOverdue(ctx context.Context, before time.Time) ([]Appointment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status IN ('pending', 'confirmed')
		  AND scheduled_at + make_interval(mins => duration_minutes) < $1
		ORDER BY scheduled_at
	`, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}
	return nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
