package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/riju-talk/HCL-Hackathon-Hiring-simple-medical-portal/internal/appointment"
)

type RouterConfig struct {
	Service *appointment.Service
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	validate := validator.New()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Public doctor directory and slot listing
	r.Get("/doctors", listDoctorsHandler(cfg.Service))
	r.Get("/doctors/{id}", getDoctorHandler(cfg.Service))
	r.Get("/doctors/{id}/availability", getAvailabilityHandler(cfg.Service))
	r.Get("/doctors/{id}/available-slots", availableSlotsHandler(cfg.Service))

	// Doctor endpoints
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware)
		r.Use(RequireRole(appointment.RoleDoctor))
		r.Post("/doctors/availability", setAvailabilityHandler(cfg.Service, validate))
		r.Get("/doctors/appointments/me", myAppointmentsHandler(cfg.Service))
		r.Get("/doctors/patients/me", doctorPatientsHandler(cfg.Service))
		r.Put("/doctors/appointments/{id}", updateAppointmentHandler(cfg.Service, validate))
	})

	// Patient endpoints
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware)
		r.Use(RequireRole(appointment.RolePatient))
		r.Get("/patients/appointments/me", myAppointmentsHandler(cfg.Service))
		r.Post("/patients/appointments", bookAppointmentHandler(cfg.Service, validate))
		r.Delete("/patients/appointments/{id}", cancelAppointmentHandler(cfg.Service))
	})

	return r
}
