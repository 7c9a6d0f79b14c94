package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at startup; every statement is idempotent.
//
// The exclusion constraint on appointments is the store-level half of the
// no-double-booking guarantee: two non-cancelled appointments for the same
// doctor can never commit with intersecting [scheduled_at, scheduled_at +
// duration) ranges, no matter how the requests interleave.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,

	`CREATE TABLE IF NOT EXISTS patients (
		id         uuid PRIMARY KEY,
		name       text NOT NULL,
		email      text,
		phone      text,
		active     boolean NOT NULL DEFAULT true,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS doctors (
		id         uuid PRIMARY KEY,
		name       text NOT NULL,
		email      text,
		specialty  text,
		active     boolean NOT NULL DEFAULT true,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS availability_windows (
		id            uuid PRIMARY KEY,
		doctor_id     uuid NOT NULL REFERENCES doctors(id),
		day_of_week   text NOT NULL,
		start_minutes smallint NOT NULL CHECK (start_minutes >= 0 AND start_minutes < 1440),
		end_minutes   smallint NOT NULL CHECK (end_minutes > 0 AND end_minutes <= 1440),
		active        boolean NOT NULL DEFAULT true,
		CHECK (start_minutes < end_minutes)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_availability_doctor
		ON availability_windows (doctor_id)`,

	`CREATE TABLE IF NOT EXISTS appointments (
		id                  uuid PRIMARY KEY,
		patient_id          uuid NOT NULL REFERENCES patients(id),
		doctor_id           uuid NOT NULL REFERENCES doctors(id),
		scheduled_at        timestamptz NOT NULL,
		duration_minutes    integer NOT NULL DEFAULT 30 CHECK (duration_minutes > 0),
		status              text NOT NULL DEFAULT 'pending',
		reason              text NOT NULL,
		notes               text,
		cancellation_reason text,
		version             integer NOT NULL DEFAULT 0,
		created_at          timestamptz NOT NULL DEFAULT now(),
		updated_at          timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_appointments_doctor_time
		ON appointments (doctor_id, scheduled_at)`,

	`CREATE INDEX IF NOT EXISTS idx_appointments_patient_time
		ON appointments (patient_id, scheduled_at)`,

	`DO $$ BEGIN
		ALTER TABLE appointments ADD CONSTRAINT appointments_no_overlap
			EXCLUDE USING gist (
				doctor_id WITH =,
				tstzrange(scheduled_at, scheduled_at + make_interval(mins => duration_minutes)) WITH &&
			)
			WHERE (status NOT IN ('cancelled', 'no-show'));
	EXCEPTION
		WHEN duplicate_object THEN NULL;
	END $$`,

	`CREATE TABLE IF NOT EXISTS event_logs (
		id             bigserial PRIMARY KEY,
		event_type     text NOT NULL,
		appointment_id uuid,
		payload        jsonb,
		created_at     timestamptz NOT NULL DEFAULT now()
	)`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
