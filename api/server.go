/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address behind proxies
  3. Logger:     Request logging
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for the frontend (origins from config)

ROUTE GROUPS:
  /healthz               Liveness
  /api/auth/*            Employee registration and login (public)
  /api/admin/login       Admin login (public)
  /api/admin/bootstrap   Default admin bootstrap (public)
  /api/admin/*           Admin operations (admin token)
  /api/attendance/{id}*  Self or admin
  /api/leaves/{id}       Self or admin
  /api/employees/{id}/*  Self or admin

AUTHENTICATION:
  Bearer JWT resolved by Handler.Authenticate. Admin routes add
  RequireAdmin. Per-employee routes check self-or-admin in the handler.

SEE ALSO:
  - handlers.go: Handler implementations
  - middleware.go: Authentication middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string

	// DisableRequestLog turns off chi's access log (tests).
	DisableRequestLog bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if !opts.DisableRequestLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/auth/register", h.RegisterEmployee)
		r.Post("/auth/login", h.LoginEmployee)
		r.Post("/admin/login", h.LoginAdmin)
		r.Get("/admin/bootstrap", h.BootstrapAdmin)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Use(RequireAdmin)

			r.Post("/admin/register", h.RegisterAdmin)
			r.Get("/admin/employees", h.ListEmployees)
			r.Get("/admin/leaves", h.ListLeaves)
			r.Patch("/admin/leaves", h.DecideLeave)
			r.Get("/admin/scenarios", h.ListScenarios)
			r.Post("/admin/scenarios/load", h.LoadScenario)
		})

		// Employee routes (self or admin)
		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Get("/attendance/{id}", h.GetAttendanceStats)
			r.Post("/attendance/{id}", h.MarkAttendance)
			r.Get("/attendance/{id}/records", h.ListAttendanceRecords)

			r.Get("/leaves/{id}", h.ListEmployeeLeaves)
			r.Post("/leaves/{id}", h.SubmitLeave)

			r.Get("/employees/{id}/leave-days", h.GetLeaveDays)
		})
	})

	return r
}
