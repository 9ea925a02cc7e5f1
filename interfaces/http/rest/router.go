package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"concepter-backend/application/services"
	"concepter-backend/infrastructure/config"
	"concepter-backend/interfaces/http/rest/handlers"
	"concepter-backend/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router
type Router struct {
	service *services.GraphService
	cfg     *config.Config
	logger  *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(service *services.GraphService, cfg *config.Config, logger *zap.Logger) *Router {
	return &Router{service: service, cfg: cfg, logger: logger}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.cfg, rt.logger))

		nodeHandler := handlers.NewNodeHandler(rt.service, rt.logger)
		stateHandler := handlers.NewStateHandler(rt.service, rt.logger)
		projectHandler := handlers.NewProjectHandler(rt.service, rt.logger)

		// Node endpoints
		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", nodeHandler.CreateNode)
			r.Get("/", nodeHandler.ListNodes)
			r.Post("/group", nodeHandler.GroupNodes)
			r.Get("/search", nodeHandler.SearchNode)
			r.Get("/{nodeID}", nodeHandler.GetNode)
			r.Put("/{nodeID}", nodeHandler.UpdateNode)
			r.Delete("/{nodeID}", nodeHandler.DeleteNode)
			r.Post("/{nodeID}/clone", nodeHandler.CloneNode)
			r.Post("/{nodeID}/merge", nodeHandler.MergeNode)

			// Edge endpoints
			r.Post("/{nodeID}/edges", nodeHandler.AddEdge)
			r.Get("/{nodeID}/edges/{childID}", nodeHandler.GetEdge)
			r.Put("/{nodeID}/edges/{childID}", nodeHandler.UpdateEdge)
			r.Delete("/{nodeID}/edges/{childID}", nodeHandler.RemoveEdge)
			r.Get("/{nodeID}/children", nodeHandler.GetChildren)
			r.Get("/{nodeID}/parents", nodeHandler.GetParents)
			r.Get("/{nodeID}/relation/{otherID}", nodeHandler.GetRelation)

			// Snapshot endpoints
			r.Get("/{nodeID}/states", stateHandler.ListStates)
			r.Delete("/{nodeID}/states", stateHandler.ClearStates)
			r.Put("/{nodeID}/states/active", stateHandler.SwitchState)
			r.Post("/{nodeID}/states/compare", stateHandler.CompareStates)
			r.Put("/{nodeID}/states/{stateName}", stateHandler.RenameState)
			r.Delete("/{nodeID}/states/{stateName}", stateHandler.RemoveState)
			r.Get("/{nodeID}/states/{stateName}/diff", stateHandler.CompareWithState)
		})

		// Diff endpoints
		r.Route("/diffs", func(r chi.Router) {
			r.Post("/apply", stateHandler.ApplyDiff)
			r.Post("/revert", stateHandler.RevertDiff)
			r.Post("/scores", stateHandler.ScoreDiff)
		})

		// Project endpoints
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projectHandler.ListProjects)
			r.Put("/{projectName}", projectHandler.SaveProject)
			r.Delete("/{projectName}", projectHandler.DeleteProject)
			r.Post("/{projectName}/load", projectHandler.LoadProject)
			r.Post("/{projectName}/import", projectHandler.ImportProject)
		})

		r.Post("/export", projectHandler.ExportNodes)

		// Project-scoped variables
		r.Route("/variables", func(r chi.Router) {
			r.Get("/{key}", projectHandler.GetStateVariable)
			r.Put("/{key}", projectHandler.SetStateVariable)
		})

		// Maintenance endpoints
		r.Route("/maintenance", func(r chi.Router) {
			r.Post("/deduplicate", nodeHandler.Deduplicate)
			r.Post("/rekey", nodeHandler.Rekey)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
