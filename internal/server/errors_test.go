package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/profile-studio/internal/enhance"
	"github.com/jonathan/profile-studio/internal/export"
	"github.com/jonathan/profile-studio/internal/host"
	"github.com/jonathan/profile-studio/internal/preview"
	"github.com/jonathan/profile-studio/internal/profile"
	"github.com/jonathan/profile-studio/internal/rendering"
	"github.com/jonathan/profile-studio/internal/review"
	"github.com/jonathan/profile-studio/internal/schemas"
	"github.com/jonathan/profile-studio/internal/studio"
	"github.com/jonathan/profile-studio/internal/templates"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "format", Message: "unsupported"}
	assert.Equal(t, "validation error: format - unsupported", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"session", studio.ErrSessionNotFound, http.StatusNotFound},
		{"template", fmt.Errorf("get: %w", templates.ErrNotFound), http.StatusNotFound},
		{"field", &profile.FieldError{Field: profile.FieldSkills, Message: "bad"}, http.StatusBadRequest},
		{"import", &studio.ImportError{Message: "bad"}, http.StatusBadRequest},
		{"schema", &schemas.ValidationError{}, http.StatusBadRequest},
		{"input", &enhance.InputError{Field: "prompt", Message: "empty"}, http.StatusBadRequest},
		{"template syntax", &rendering.TemplateError{Ref: "x", Message: "parse"}, http.StatusUnprocessableEntity},
		{"enhance busy", review.ErrEnhanceInProgress, http.StatusConflict},
		{"export busy", preview.ErrExportInProgress, http.StatusConflict},
		{"completed", review.ErrCompleted, http.StatusConflict},
		{"no editor", studio.ErrEditorUnavailable, http.StatusServiceUnavailable},
		{"no enhancer", review.ErrNoEnhancer, http.StatusServiceUnavailable},
		{"capture", host.ErrCaptureUnavailable, http.StatusServiceUnavailable},
		{"export unavailable", &export.ExportUnavailableError{Message: "x"}, http.StatusServiceUnavailable},
		{"gateway", &review.EnhancementError{Section: "identity", Message: "x", Cause: errors.New("boom")}, http.StatusBadGateway},
		{"download", &preview.DownloadError{ID: "1", Message: "x"}, http.StatusBadGateway},
		{"timeout", fmt.Errorf("wait: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
