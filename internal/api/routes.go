package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pienissimo/opsdash/internal/pkg/logger"
)

// SetupRoutes wires the full HTTP surface onto a chi router.
func SetupRoutes(h *Handlers, corsOrigins []string) *chi.Mux {
	h.log = logger.Component("api")
	if h.MaxUploadMB <= 0 {
		h.MaxUploadMB = 25
	}

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	if len(corsOrigins) == 0 {
		corsOrigins = []string{"http://localhost:5173"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/imports/{type}", h.handleImport)
		r.Get("/dashboard", h.handleDashboard)
		r.Get("/report", h.handleReport)
		r.Post("/sync/zoho", h.handleZohoSync)

		r.Route("/timesheet", func(r chi.Router) {
			r.Get("/", h.handleTimesheetList)
			r.Post("/", h.handleTimesheetCreate)
			r.Delete("/{id}", h.handleTimesheetDelete)
			r.Get("/activity-types", h.handleActivityTypesList)
			r.Post("/activity-types", h.handleActivityTypesCreate)
		})
	})

	return r
}
