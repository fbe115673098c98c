package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/jonathan/profile-studio/internal/profile"
	"github.com/jonathan/profile-studio/internal/schemas"
	"github.com/jonathan/profile-studio/internal/studio"
)

// keepAliveInterval is how often an idle event stream is pinged.
const keepAliveInterval = 15 * time.Second

// CreateSessionRequest is the body of POST /sessions.
type CreateSessionRequest struct {
	TemplateID string          `json:"template_id"`
	Profile    json.RawMessage `json:"profile,omitempty"`
}

// ImportRequest is the body of POST /sessions/{id}/import.
type ImportRequest struct {
	Export string `json:"export"`
}

// ImportResponse reports the fields an import extracted.
type ImportResponse struct {
	Imported profile.Partial `json:"imported"`
	Profile  profile.Data    `json:"profile"`
}

// session resolves the {id} path value, writing a 404 when it is unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*studio.Session, bool) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.handleError(w, err)
		return nil, false
	}
	return sess, true
}

// decodeProfile validates raw against the profile schema and decodes it.
func decodeProfile(raw []byte) (profile.Partial, error) {
	var p profile.Partial
	if err := schemas.ValidateProfile(raw); err != nil {
		return p, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, &ErrValidation{Field: "profile", Message: err.Error()}
	}
	return p, nil
}

// handleCreateSession opens a session on a template.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}
	if req.TemplateID == "" {
		s.errorResponse(w, http.StatusBadRequest, "template_id is required")
		return
	}

	var initial *profile.Partial
	if len(req.Profile) > 0 && string(req.Profile) != "null" {
		p, err := decodeProfile(req.Profile)
		if err != nil {
			s.handleError(w, err)
			return
		}
		initial = &p
	}

	sess, err := s.sessions.Create(r.Context(), req.TemplateID, initial)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, sess.View())
}

// handleGetSession returns the session summary and current profile.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"session": sess.View(),
		"profile": sess.Profile(),
	})
}

// handleDeleteSession closes a session.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.PathValue("id")); err != nil {
		s.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePutProfile merges a schema-validated partial profile.
func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	p, err := decodeProfile(raw)
	if err != nil {
		s.handleError(w, err)
		return
	}
	if err := sess.Import(p); err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Profile())
}

// handleImportExport extracts profile fields from a LinkedIn data export.
func (s *Server) handleImportExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req ImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}
	p, err := sess.ImportExport(r.Context(), req.Export)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ImportResponse{Imported: p, Profile: sess.Profile()})
}

// handleEvents streams session events until the client leaves or the
// session closes. The first events carry the current review and profile.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	events, cancel := sess.Subscribe()
	defer cancel()

	stream, err := openEventStream(w)
	if err != nil {
		if errors.Is(err, errStreamingUnsupported) {
			s.errorResponse(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	if err := stream.send(studio.EventReview, sess.Review().View()); err != nil {
		return
	}
	if err := stream.send(studio.EventProfile, sess.Profile()); err != nil {
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := stream.ping(); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				stream.closed(sess.ID()) //nolint:errcheck
				return
			}
			if err := stream.send(ev.Name, ev.Data); err != nil {
				return
			}
		}
	}
}
