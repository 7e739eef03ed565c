package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/learnloop/backend/app"
	"github.com/learnloop/backend/handlers"
)

// SetupRoutes configures all application routes and middleware.
//
// The request lifecycle middleware runs outermost so every handler, including
// the failure boundary, sees the request context and operation buffer it
// installs.
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(deps.Lifecycle.Wrap)
	r.Use(chimw.RealIP)
	r.Use(chimw.Timeout(60 * time.Second))

	// Credentialed CORS cannot use a wildcard origin, so the allowed origin
	// echoes the caller's.
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return true
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	boundary := handlers.NewBoundary(deps.Logger, deps.Config.Observability.FaultStatusThreshold)

	// Health check endpoints
	r.Get("/healthz", handlers.HealthCheck(deps))
	r.Get("/readyz", handlers.ReadinessCheck(deps))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Get("/status", handlers.StatusHandler(deps))
		r.Post("/client-errors", boundary.Wrap(handlers.ReportClientErrorHandler(deps)))

		// Company (tenant) management
		r.Route("/companies", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Get("/", boundary.Wrap(handlers.ListCompaniesHandler(deps)))
			r.Post("/", boundary.Wrap(handlers.CreateCompanyHandler(deps)))
			r.Get("/{id}", boundary.Wrap(handlers.GetCompanyHandler(deps)))
			r.Put("/{id}", boundary.Wrap(handlers.UpdateCompanyHandler(deps)))
			r.Delete("/{id}", boundary.Wrap(handlers.DeleteCompanyHandler(deps)))
		})

		// User management (scoped to the caller's company)
		r.Route("/users", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Use(deps.AuthMiddleware.ExtractTenant)
			r.Get("/", boundary.Wrap(handlers.ListUsersHandler(deps)))
			r.Post("/", boundary.Wrap(handlers.CreateUserHandler(deps)))
			r.Get("/me", boundary.Wrap(handlers.GetCurrentUserHandler(deps)))
			r.Get("/{id}", boundary.Wrap(handlers.GetUserHandler(deps)))
			r.Put("/{id}", boundary.Wrap(handlers.UpdateUserHandler(deps)))
			r.Get("/{id}/assignments", boundary.Wrap(handlers.ListAssignmentsHandler(deps)))
		})

		// Notebook (learning module) management
		r.Route("/notebooks", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Use(deps.AuthMiddleware.ExtractTenant)
			r.Get("/", boundary.Wrap(handlers.ListNotebooksHandler(deps)))
			r.Post("/", boundary.Wrap(handlers.CreateNotebookHandler(deps)))
			r.Get("/{id}", boundary.Wrap(handlers.GetNotebookHandler(deps)))
			r.Put("/{id}", boundary.Wrap(handlers.UpdateNotebookHandler(deps)))
			r.Delete("/{id}", boundary.Wrap(handlers.DeleteNotebookHandler(deps)))
			r.Post("/{id}/assignments", boundary.Wrap(handlers.AssignNotebookHandler(deps)))
		})

		// Module assignments
		r.Route("/assignments", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Use(deps.AuthMiddleware.ExtractTenant)
			r.Put("/{id}", boundary.Wrap(handlers.ToggleAssignmentHandler(deps)))
		})

		// Token usage accounting
		r.Route("/usage", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Use(deps.AuthMiddleware.ExtractTenant)
			r.Get("/", boundary.Wrap(handlers.ListUsageHandler(deps)))
			r.Get("/summary", boundary.Wrap(handlers.GetUsageSummaryHandler(deps)))
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"endpoint not found","request_id":null}`))
	})

	return r
}
