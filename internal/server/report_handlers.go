package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Tomlord1122/taskhub/internal/domain"
	"github.com/Tomlord1122/taskhub/internal/service"
)

func (s *Server) listReportsHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string][]string{"reports": s.services.Reports.Names()})
}

func (s *Server) runReportHandler(w http.ResponseWriter, r *http.Request) {
	params, err := reportParams(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	result, err := s.services.Reports.Run(r.Context(), chi.URLParam(r, "name"), params)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func reportParams(r *http.Request) (service.ReportParams, error) {
	q := r.URL.Query()
	params := service.ReportParams{
		Prefix: q.Get("prefix"),
		Suffix: q.Get("suffix"),
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || limit == 0 {
			return params, domain.NewValidationError("limit", "A valid positive integer is required.")
		}
		params.Limit = limit
	}
	if raw := q.Get("n"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return params, domain.NewValidationError("n", "A valid integer is required.")
		}
		params.N = &n
	}
	return params, nil
}
