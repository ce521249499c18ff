package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Tomlord1122/taskhub/internal/service"
)

func (s *Server) createTodoHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	todo, err := s.services.Todos.CreateTodo(r.Context(), currentUser(r).ID, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, todo)
}

func (s *Server) listTodosHandler(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondWithError(w, http.StatusNotFound, "Invalid page.")
			return
		}
		page = n
	}

	todos, err := s.services.Todos.ListTodos(r.Context(), currentUser(r).ID, page)
	if errors.Is(err, service.ErrInvalidPage) {
		respondWithError(w, http.StatusNotFound, "Invalid page.")
		return
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, todos)
}

func (s *Server) getTodoByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "todoID", "todo")
	if !ok {
		return
	}

	todo, err := s.services.Todos.GetTodoByID(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) updateTodoHandler(w http.ResponseWriter, r *http.Request) {
	s.updateTodo(w, r, false)
}

func (s *Server) partialUpdateTodoHandler(w http.ResponseWriter, r *http.Request) {
	s.updateTodo(w, r, true)
}

func (s *Server) updateTodo(w http.ResponseWriter, r *http.Request, partial bool) {
	id, ok := pathID(w, r, "todoID", "todo")
	if !ok {
		return
	}

	var req service.UpdateTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	todo, err := s.services.Todos.UpdateTodo(r.Context(), currentUser(r).ID, id, req, partial)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) deleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "todoID", "todo")
	if !ok {
		return
	}

	if err := s.services.Todos.DeleteTodo(r.Context(), currentUser(r).ID, id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
