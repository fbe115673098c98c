package server

import (
	"net/http"

	"github.com/jonathan/profile-studio/internal/templates"
)

// handleListTemplates lists the template catalog without markup.
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := s.sessions.Deps().Templates.List(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}
	if list == nil {
		list = []templates.Template{}
	}
	s.jsonResponse(w, http.StatusOK, list)
}

// handleGetTemplate returns one template including its markup.
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !templates.ValidID(id) {
		s.errorResponse(w, http.StatusBadRequest, "invalid template id")
		return
	}
	tpl, err := s.sessions.Deps().Templates.Get(r.Context(), id)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, tpl)
}
