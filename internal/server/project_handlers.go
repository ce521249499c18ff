package server

import (
	"context"
	"net/http"

	"github.com/Tomlord1122/taskhub/internal/service"
)

func (s *Server) listProjectsHandler(w http.ResponseWriter, r *http.Request) {
	projects, err := s.services.Projects.ListProjects(r.Context(), requester(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, projects)
}

func (s *Server) createProjectHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	project, err := s.services.Projects.CreateProject(r.Context(), requester(r), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, project)
}

func (s *Server) getProjectHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "projectID", "project")
	if !ok {
		return
	}

	project, err := s.services.Projects.GetProject(r.Context(), requester(r), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, project)
}

type membersFunc func(ctx context.Context, who service.Requester, projectID uint, req service.MembersRequest) (*service.MembersResponse, error)

func (s *Server) addMembersHandler(w http.ResponseWriter, r *http.Request) {
	s.changeMembers(w, r, s.services.Projects.AddMembers)
}

func (s *Server) removeMembersHandler(w http.ResponseWriter, r *http.Request) {
	s.changeMembers(w, r, s.services.Projects.RemoveMembers)
}

func (s *Server) changeMembers(w http.ResponseWriter, r *http.Request, change membersFunc) {
	id, ok := pathID(w, r, "projectID", "project")
	if !ok {
		return
	}

	var req service.MembersRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := change(r.Context(), requester(r), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}
