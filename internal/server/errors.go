package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

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

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation *ErrValidation
		field      *profile.FieldError
		imp        *studio.ImportError
		schema     *schemas.ValidationError
		input      *enhance.InputError
		tmpl       *rendering.TemplateError
		unavail    *export.ExportUnavailableError
		enh        *review.EnhancementError
		response   *enhance.ResponseError
		download   *preview.DownloadError
		decode     *preview.DecodeError
	)

	switch {
	case errors.Is(err, studio.ErrSessionNotFound), errors.Is(err, templates.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &field), errors.As(err, &imp),
		errors.As(err, &schema), errors.As(err, &input):
		return http.StatusBadRequest
	case errors.As(err, &tmpl):
		return http.StatusUnprocessableEntity
	case errors.Is(err, review.ErrEnhanceInProgress), errors.Is(err, preview.ErrExportInProgress),
		errors.Is(err, review.ErrCompleted), errors.Is(err, preview.ErrNoTemplate):
		return http.StatusConflict
	case errors.Is(err, studio.ErrEditorUnavailable), errors.Is(err, studio.ErrImporterUnavailable),
		errors.Is(err, review.ErrNoEnhancer), errors.Is(err, host.ErrCaptureUnavailable),
		errors.As(err, &unavail):
		return http.StatusServiceUnavailable
	case errors.As(err, &enh), errors.As(err, &response), errors.As(err, &download), errors.As(err, &decode):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
