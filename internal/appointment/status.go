package appointment

// Terminal reports whether no further status transitions are allowed.
func Terminal(s AppointmentStatus) bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// CanTransition encodes the appointment lifecycle:
// pending -> confirmed -> completed, with cancelled and no-show reachable
// from pending or confirmed. Terminal states never transition.
func CanTransition(from, to AppointmentStatus) bool {
	if Terminal(from) || from == to {
		return false
	}
	switch to {
	case StatusConfirmed:
		return from == StatusPending
	case StatusCompleted:
		return from == StatusPending || from == StatusConfirmed
	case StatusCancelled, StatusNoShow:
		return from == StatusPending || from == StatusConfirmed
	}
	return false
}

// AllowedFor reports whether the principal may perform the transition on the
// given appointment. Doctors manage the full lifecycle of their own calendar;
// patients may only cancel their own appointments.
func AllowedFor(p Principal, appt *Appointment, to AppointmentStatus) bool {
	switch p.Role {
	case RoleDoctor:
		return appt.DoctorID == p.UserID
	case RolePatient:
		return appt.PatientID == p.UserID && to == StatusCancelled
	}
	return false
}
