package preview

import (
	"errors"
	"fmt"
)

// ErrExportInProgress is returned when a download is requested while another
// one is still running for the same preview.
var ErrExportInProgress = errors.New("an export is already in progress")

// ErrNoTemplate is returned before a template has been set.
var ErrNoTemplate = errors.New("no template loaded")

// DownloadError is a failure reported by the hosted document for one request.
type DownloadError struct {
	ID      string
	Message string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s failed: %s", e.ID, e.Message)
}

// DecodeError reports a DOWNLOAD_READY payload that could not be decoded.
type DecodeError struct {
	Message string
	Cause   error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid download payload: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid download payload: %s", e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
