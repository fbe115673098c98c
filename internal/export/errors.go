package export

import "fmt"

// ExportUnavailableError means the hosted context cannot rasterize. It is
// recoverable by retrying once a capable context is available.
type ExportUnavailableError struct {
	Message string
	Cause   error
}

func (e *ExportUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export unavailable: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("export unavailable: %s", e.Message)
}

func (e *ExportUnavailableError) Unwrap() error {
	return e.Cause
}

// AssetFetchError records a stylesheet that could not be inlined. It is
// logged and the export continues without the asset.
type AssetFetchError struct {
	URL   string
	Cause error
}

func (e *AssetFetchError) Error() string {
	return fmt.Sprintf("asset fetch failed for %s: %v", e.URL, e.Cause)
}

func (e *AssetFetchError) Unwrap() error {
	return e.Cause
}

// PDFError represents a failure converting a raster to PDF
type PDFError struct {
	Message string
	Cause   error
}

func (e *PDFError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pdf error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("pdf error: %s", e.Message)
}

func (e *PDFError) Unwrap() error {
	return e.Cause
}
