package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/jonathan/profile-studio/internal/bus"
)

// EditRequest carries a snapshot of an edit made in the client's copy of
// the hosted document.
type EditRequest struct {
	HTML string `json:"html"`
}

// AIEditRequest asks the model to restyle the session's template.
type AIEditRequest struct {
	Prompt string `json:"prompt"`
}

// DownloadRequest selects the download format and file name.
type DownloadRequest struct {
	Format   string `json:"format"`
	FileName string `json:"file_name,omitempty"`
}

// handleGetPreview returns the document currently shown.
func (s *Server) handleGetPreview(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Preview-Reloads", strconv.FormatUint(sess.Preview().Reloads(), 10))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(sess.Preview().Markup()))
}

// handlePreviewEdit replays a client-side edit into the hosted document.
func (s *Server) handlePreviewEdit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req EditRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}
	if req.HTML == "" {
		s.handleError(w, &ErrValidation{Field: "html", Message: "is required"})
		return
	}
	if err := sess.ApplyEdit(r.Context(), req.HTML); err != nil {
		s.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAIEdit rewrites the template from a prompt and reloads the preview.
func (s *Server) handleAIEdit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req AIEditRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}
	out, err := sess.EditTemplate(r.Context(), req.Prompt)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"html": out})
}

// handleDownload produces the document as html, png or pdf.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req DownloadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}
	format, err := bus.ParseFormat(req.Format)
	if err != nil {
		s.handleError(w, &ErrValidation{Field: "format", Message: err.Error()})
		return
	}
	fileName := req.FileName
	if fileName == "" {
		fileName = sess.Profile().FullName
	}

	dl, err := sess.Download(r.Context(), format, fileName)
	if err != nil {
		s.handleError(w, err)
		return
	}
	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Data)))
	w.Header().Set("X-Download-ID", dl.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(dl.Data)
}
