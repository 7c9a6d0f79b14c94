package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/riju-talk/HCL-Hackathon-Hiring-simple-medical-portal/internal/appointment"
)

type BookAppointmentRequest struct {
	DoctorID        string `json:"doctorId" validate:"required,uuid"`
	AppointmentDate string `json:"appointmentDate" validate:"required,datetime=2006-01-02"`
	AppointmentTime string `json:"appointmentTime" validate:"required"`
	DurationMinutes int    `json:"durationMinutes" validate:"omitempty,gt=0,lte=480"`
	Reason          string `json:"reason" validate:"required,max=2000"`
}

type UpdateAppointmentRequest struct {
	Status *string `json:"status" validate:"omitempty,oneof=pending confirmed completed cancelled no-show"`
	Notes  *string `json:"notes" validate:"omitempty,max=4000"`
}

type CancelAppointmentRequest struct {
	CancellationReason *string `json:"cancellationReason" validate:"omitempty,max=2000"`
}

type WindowRequest struct {
	DayOfWeek string `json:"dayOfWeek" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	IsActive  *bool  `json:"isActive"`
}

type SetAvailabilityRequest struct {
	Windows []WindowRequest `json:"slots" validate:"required,dive"`
}

type WindowResponse struct {
	ID        uuid.UUID `json:"id"`
	DayOfWeek string    `json:"dayOfWeek"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	IsActive  bool      `json:"isActive"`
}

type AvailabilityResponse struct {
	DoctorID uuid.UUID        `json:"doctorId"`
	Windows  []WindowResponse `json:"slots"`
}

type SlotsResponse struct {
	Slots       []string `json:"slots"`
	BookedSlots []string `json:"bookedSlots"`
}

type AppointmentResponse struct {
	ID                 uuid.UUID `json:"id"`
	PatientID          uuid.UUID `json:"patientId"`
	DoctorID           uuid.UUID `json:"doctorId"`
	ScheduledAt        time.Time `json:"scheduledAt"`
	DurationMinutes    int       `json:"durationMinutes"`
	Status             string    `json:"status"`
	Reason             string    `json:"reason"`
	Notes              *string   `json:"notes,omitempty"`
	CancellationReason *string   `json:"cancellationReason,omitempty"`
	Version            int       `json:"version"`
	CreatedAt          time.Time `json:"createdAt"`
}

type AppointmentListResponse struct {
	Count        int                   `json:"count"`
	Appointments []AppointmentResponse `json:"appointments"`
}

type DoctorResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Specialty *string   `json:"specialty,omitempty"`
}

type PatientResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email *string   `json:"email,omitempty"`
	Phone *string   `json:"phone,omitempty"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:                 a.ID,
		PatientID:          a.PatientID,
		DoctorID:           a.DoctorID,
		ScheduledAt:        a.ScheduledAt,
		DurationMinutes:    a.DurationMinutes,
		Status:             string(a.Status),
		Reason:             a.Reason,
		Notes:              a.Notes,
		CancellationReason: a.CancellationReason,
		Version:            a.Version,
		CreatedAt:          a.CreatedAt,
	}
}

func toAppointmentList(appts []appointment.Appointment) AppointmentListResponse {
	out := AppointmentListResponse{
		Count:        len(appts),
		Appointments: make([]AppointmentResponse, 0, len(appts)),
	}
	for i := range appts {
		out.Appointments = append(out.Appointments, toAppointmentResponse(&appts[i]))
	}
	return out
}

func toWindowResponses(windows []appointment.AvailabilityWindow) []WindowResponse {
	out := make([]WindowResponse, 0, len(windows))
	for _, w := range windows {
		out = append(out, WindowResponse{
			ID:        w.ID,
			DayOfWeek: string(w.DayOfWeek),
			StartTime: w.StartTime.String(),
			EndTime:   w.EndTime.String(),
			IsActive:  w.Active,
		})
	}
	return out
}

func timesToStrings(times []appointment.TimeOfDay) []string {
	out := make([]string, 0, len(times))
	for _, t := range times {
		out = append(out, t.String())
	}
	return out
}
