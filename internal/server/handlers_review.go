package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jonathan/profile-studio/internal/profile"
	"github.com/jonathan/profile-studio/internal/review"
)

// ReviewActionResponse reports whether an action changed the review.
type ReviewActionResponse struct {
	Applied bool        `json:"applied"`
	Review  review.View `json:"review"`
}

// KeyRequest is a key press forwarded from the client. Focus is the tag name
// of the focused element.
type KeyRequest struct {
	Key   string `json:"key"`
	Focus string `json:"focus,omitempty"`
}

// FieldRequest sets one top-level field. Value has the field's JSON type.
type FieldRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// NestedRequest sets one key of the contact or socialLinks record.
type NestedRequest struct {
	Parent string `json:"parent"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// InstructionsRequest carries free-text guidance for the model.
type InstructionsRequest struct {
	Instructions *string `json:"instructions,omitempty"`
}

// EnhanceResponse carries the staged suggestion, if any.
type EnhanceResponse struct {
	Suggestion *profile.Partial `json:"suggestion"`
	Review     review.View      `json:"review"`
}

// DragRequest is one pointer event on the review card.
type DragRequest struct {
	Phase string  `json:"phase"` // begin, move or end
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// handleGetReview returns the review snapshot.
func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Review().View())
}

// handleReviewNav handles next, prev and skip.
func (s *Server) handleReviewNav(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	ctrl := sess.Review()

	var applied bool
	switch {
	case strings.HasSuffix(r.URL.Path, "/next"):
		applied = ctrl.Next()
	case strings.HasSuffix(r.URL.Path, "/prev"):
		applied = ctrl.Prev()
	case strings.HasSuffix(r.URL.Path, "/skip"):
		applied = ctrl.SkipAll()
	default:
		s.errorResponse(w, http.StatusNotFound, "unknown review action")
		return
	}
	s.jsonResponse(w, http.StatusOK, ReviewActionResponse{Applied: applied, Review: ctrl.View()})
}

// handleReviewKey applies keyboard navigation.
func (s *Server) handleReviewKey(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req KeyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}
	ctrl := sess.Review()
	applied := ctrl.HandleKey(req.Key, req.Focus)
	s.jsonResponse(w, http.StatusOK, ReviewActionResponse{Applied: applied, Review: ctrl.View()})
}

// handleReviewField writes a field into the step's local edits and the store.
func (s *Server) handleReviewField(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req FieldRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}
	if req.Field == "" || len(req.Value) == 0 {
		s.handleError(w, &ErrValidation{Field: "field", Message: "field and value are required"})
		return
	}
	u, err := profile.DecodeUpdate(profile.Field(req.Field), req.Value)
	if err != nil {
		s.handleError(w, err)
		return
	}
	ctrl := sess.Review()
	if err := ctrl.SetFieldValue(u); err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ReviewActionResponse{Applied: true, Review: ctrl.View()})
}

// handleReviewNested writes one key of a nested record.
func (s *Server) handleReviewNested(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req NestedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}
	ctrl := sess.Review()
	if err := ctrl.SetNestedValue(profile.Field(req.Parent), req.Key, req.Value); err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ReviewActionResponse{Applied: true, Review: ctrl.View()})
}

// handleReviewInstructions stores guidance for the next enhancement.
func (s *Server) handleReviewInstructions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req InstructionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}
	ctrl := sess.Review()
	if req.Instructions != nil {
		ctrl.SetInstructions(*req.Instructions)
	}
	s.jsonResponse(w, http.StatusOK, ReviewActionResponse{Applied: req.Instructions != nil, Review: ctrl.View()})
}

// handleReviewEnhance asks the model to rewrite the current section. The
// request blocks until the suggestion is staged.
func (s *Server) handleReviewEnhance(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req InstructionsRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			s.handleError(w, err)
			return
		}
	}
	ctrl := sess.Review()
	if req.Instructions != nil {
		ctrl.SetInstructions(*req.Instructions)
	}
	suggestion, err := ctrl.Enhance(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, EnhanceResponse{Suggestion: suggestion, Review: ctrl.View()})
}

// handleSuggestion accepts or rejects the staged suggestion.
func (s *Server) handleSuggestion(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	ctrl := sess.Review()
	var applied bool
	if strings.HasSuffix(r.URL.Path, "/accept") {
		applied = ctrl.AcceptSuggestion()
	} else {
		applied = ctrl.RejectSuggestion()
	}
	s.jsonResponse(w, http.StatusOK, ReviewActionResponse{Applied: applied, Review: ctrl.View()})
}

// handleReviewDrag moves the review card.
func (s *Server) handleReviewDrag(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req DragRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}
	ctrl := sess.Review()
	applied := true
	switch req.Phase {
	case "begin":
		ctrl.BeginDrag(req.X, req.Y)
	case "move":
		applied = ctrl.DragTo(req.X, req.Y)
	case "end":
		ctrl.EndDrag()
	default:
		s.handleError(w, &ErrValidation{Field: "phase", Message: "must be begin, move or end"})
		return
	}
	s.jsonResponse(w, http.StatusOK, ReviewActionResponse{Applied: applied, Review: ctrl.View()})
}
