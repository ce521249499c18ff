package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", s.registerHandler)
			r.Post("/login", s.loginHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Route("/todos", func(r chi.Router) {
				r.Post("/", s.createTodoHandler)
				r.Get("/", s.listTodosHandler)
				r.Get("/{todoID}", s.getTodoByIDHandler)
				r.Put("/{todoID}", s.updateTodoHandler)
				r.Patch("/{todoID}", s.partialUpdateTodoHandler)
				r.Delete("/{todoID}", s.deleteTodoHandler)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", s.listProjectsHandler)
				r.With(s.requireStaff).Post("/", s.createProjectHandler)
				r.Get("/{projectID}", s.getProjectHandler)
				r.Patch("/{projectID}/add-members", s.addMembersHandler)
				r.Patch("/{projectID}/remove-members", s.removeMembersHandler)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(s.requireStaff)
				r.Get("/", s.listReportsHandler)
				r.Get("/{name}", s.runReportHandler)
			})
		})
	})

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}
