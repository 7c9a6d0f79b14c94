package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/riju-talk/HCL-Hackathon-Hiring-simple-medical-portal/internal/appointment"
)

func listDoctorsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors, err := svc.Doctors(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "could not list doctors")
			return
		}

		out := make([]DoctorResponse, 0, len(doctors))
		for _, d := range doctors {
			out = append(out, DoctorResponse{ID: d.ID, Name: d.Name, Email: d.Email, Specialty: d.Specialty})
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "doctors": out})
	}
}

func getDoctorHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		doctor, err := svc.Doctor(r.Context(), id)
		if err != nil {
			if errors.Is(err, appointment.ErrDoctorNotFound) {
				writeError(w, http.StatusNotFound, "doctor_not_found", "doctor not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "could not load doctor")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"doctor": DoctorResponse{
			ID: doctor.ID, Name: doctor.Name, Email: doctor.Email, Specialty: doctor.Specialty,
		}})
	}
}

func getAvailabilityHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		windows, err := svc.Availability(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "could not load availability")
			return
		}

		writeJSON(w, http.StatusOK, AvailabilityResponse{DoctorID: id, Windows: toWindowResponses(windows)})
	}
}

func setAvailabilityHandler(svc *appointment.Service, validate *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := GetPrincipal(r.Context())

		var req SetAvailabilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		drafts := make([]appointment.WindowDraft, 0, len(req.Windows))
		for _, win := range req.Windows {
			active := true
			if win.IsActive != nil {
				active = *win.IsActive
			}
			drafts = append(drafts, appointment.WindowDraft{
				DayOfWeek: win.DayOfWeek,
				StartTime: win.StartTime,
				EndTime:   win.EndTime,
				Active:    active,
			})
		}

		windows, err := svc.SetAvailability(r.Context(), p, drafts)
		if err != nil {
			if errors.Is(err, appointment.ErrInvalidWindow) {
				writeError(w, http.StatusBadRequest, "invalid_window", err.Error())
				return
			}
			if errors.Is(err, appointment.ErrNotAllowed) {
				writeError(w, http.StatusForbidden, "forbidden", "access denied")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "could not update availability")
			return
		}

		writeJSON(w, http.StatusOK, AvailabilityResponse{DoctorID: p.UserID, Windows: toWindowResponses(windows)})
	}
}

func availableSlotsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		dateStr := r.URL.Query().Get("date")
		if dateStr == "" {
			writeError(w, http.StatusBadRequest, "missing_date", "date query parameter is required (YYYY-MM-DD)")
			return
		}
		date, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		schedule, err := svc.AvailableSlots(r.Context(), id, date)
		if err != nil {
			if errors.Is(err, appointment.ErrDoctorNotFound) {
				writeError(w, http.StatusNotFound, "doctor_not_found", "doctor not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "could not compute available slots")
			return
		}

		writeJSON(w, http.StatusOK, SlotsResponse{
			Slots:       timesToStrings(schedule.Free),
			BookedSlots: timesToStrings(schedule.Booked),
		})
	}
}

func bookAppointmentHandler(svc *appointment.Service, validate *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := GetPrincipal(r.Context())

		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctorId must be a valid UUID")
			return
		}

		appt, err := svc.Book(r.Context(), p, appointment.BookingInput{
			DoctorID:        doctorID,
			Date:            req.AppointmentDate,
			Time:            req.AppointmentTime,
			DurationMinutes: req.DurationMinutes,
			Reason:          req.Reason,
		})
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{"appointment": toAppointmentResponse(appt)})
	}
}

func handleBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot_unavailable", "Time slot is no longer available")
	case errors.Is(err, appointment.ErrInvalidSchedule):
		writeError(w, http.StatusBadRequest, "invalid_schedule", err.Error())
	case errors.Is(err, appointment.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", "doctor not found or inactive")
	case errors.Is(err, appointment.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", "patient not found")
	case errors.Is(err, appointment.ErrNotAllowed):
		writeError(w, http.StatusForbidden, "forbidden", "access denied")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "could not book appointment")
	}
}

func myAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := GetPrincipal(r.Context())

		appts, err := svc.AppointmentsFor(r.Context(), p)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "could not list appointments")
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentList(appts))
	}
}

func doctorPatientsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := GetPrincipal(r.Context())

		patients, err := svc.PatientsOf(r.Context(), p.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "could not list patients")
			return
		}

		out := make([]PatientResponse, 0, len(patients))
		for _, pt := range patients {
			out = append(out, PatientResponse{ID: pt.ID, Name: pt.Name, Email: pt.Email, Phone: pt.Phone})
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "patients": out})
	}
}

func updateAppointmentHandler(svc *appointment.Service, validate *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := GetPrincipal(r.Context())

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req UpdateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		in := appointment.UpdateInput{Notes: req.Notes}
		if req.Status != nil {
			status := appointment.AppointmentStatus(*req.Status)
			in.Status = &status
		}

		appt, err := svc.Update(r.Context(), p, id, in)
		if err != nil {
			handleUpdateError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"appointment": toAppointmentResponse(appt)})
	}
}

func cancelAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := GetPrincipal(r.Context())

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		// Optional body with a cancellation reason.
		var req CancelAppointmentRequest
		if body, readErr := io.ReadAll(r.Body); readErr == nil && len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
				return
			}
		}

		appt, err := svc.CancelOwn(r.Context(), p, id, req.CancellationReason)
		if err != nil {
			handleUpdateError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"appointment": toAppointmentResponse(appt)})
	}
}

func handleUpdateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", "appointment not found")
	case errors.Is(err, appointment.ErrNotAllowed):
		writeError(w, http.StatusForbidden, "forbidden", "access denied")
	case errors.Is(err, appointment.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
	case errors.Is(err, appointment.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, appointment.ErrVersionConflict):
		writeError(w, http.StatusConflict, "version_conflict", "appointment was changed concurrently, reload and retry")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "could not update appointment")
	}
}
