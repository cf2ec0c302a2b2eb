/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:       Request logging
  2. Recoverer:    Panic recovery (500 instead of crash)
  3. RequestID:    Unique ID per request for tracing
  4. CORS:         Cross-origin requests for frontend
  5. Authenticate: Bearer token validation (all routes except login)
  6. RequireHR:    Role gate on approval and administration routes

ROUTE GROUPS:
  /api/auth/*        Login and account management
  /api/employees/*   Employee records and their requests
  /api/requests/*    Leave request listing and decisions
  /api/seed          Demo fixture (HR only)

SEE ALSO:
  - handlers.go: Handler implementations
  - middleware.go: Authentication and role middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Public: login only
		r.Post("/auth/login", h.Login)

		// Everything else needs a valid token
		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Post("/auth/password", h.ChangePassword)

			// Account administration (HR)
			r.Route("/auth/users", func(r chi.Router) {
				r.Use(RequireHR)
				r.Get("/", h.ListUsers)
				r.Post("/", h.CreateUser)
				r.Put("/{id}/role", h.UpdateUserRole)
				r.Delete("/{id}", h.DeleteUser)
			})

			// Employee routes
			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.ListEmployees)
				r.Get("/{id}", h.GetEmployee)
				r.Get("/{id}/requests", h.ListEmployeeRequests)
				r.Post("/{id}/requests", h.SubmitRequest)

				r.Group(func(r chi.Router) {
					r.Use(RequireHR)
					r.Post("/", h.CreateEmployee)
					r.Put("/{id}/balance", h.SetBalance)
					r.Delete("/{id}", h.DeleteEmployee)
				})
			})

			// Request listing and decisions (HR)
			r.Route("/requests", func(r chi.Router) {
				r.Get("/{id}", h.GetRequest)

				r.Group(func(r chi.Router) {
					r.Use(RequireHR)
					r.Get("/", h.ListRequests)
					r.Get("/pending", h.ListPendingRequests)
					r.Post("/{id}/approve", h.ApproveRequest)
					r.Post("/{id}/reject", h.RejectRequest)
				})
			})

			// Demo fixture (HR)
			r.With(RequireHR).Post("/seed", h.LoadSeed)
		})
	})

	return r
}
