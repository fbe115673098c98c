package export

import (
	"bytes"
	"image/png"
	"strings"

	"github.com/go-pdf/fpdf"
)

// A4 page size in millimetres.
const (
	pageWidthMM  = 210.0
	pageHeightMM = 297.0
)

// Paginate places a PNG raster on A4 portrait pages, scaled to the page
// width. Rasters taller than one page continue on following pages.
func Paginate(pngData []byte, title string) ([]byte, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(pngData))
	if err != nil {
		return nil, &PDFError{Message: "input is not a PNG", Cause: err}
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, &PDFError{Message: "empty raster"}
	}

	imgHeightMM := pageWidthMM * float64(cfg.Height) / float64(cfg.Width)
	pages := PageCount(cfg.Width, cfg.Height)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("profile-studio", false)
	if title != "" {
		pdf.SetTitle(title, true)
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("document", opts, bytes.NewReader(pngData))
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.ImageOptions("document", 0, -float64(i)*pageHeightMM, pageWidthMM, imgHeightMM, false, opts, 0, "")
	}
	if err := pdf.Error(); err != nil {
		return nil, &PDFError{Message: "failed to build pdf", Cause: err}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &PDFError{Message: "failed to write pdf", Cause: err}
	}
	return buf.Bytes(), nil
}

// PageCount is the number of A4 pages a width x height raster spans when
// scaled to page width.
func PageCount(width, height int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	heightMM := pageWidthMM * float64(height) / float64(width)
	pages := int(heightMM / pageHeightMM)
	// Tolerate rounding so an exact A4 raster stays on one page.
	if heightMM-float64(pages)*pageHeightMM > 0.5 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return pages
}

// FileName ensures name ends with the extension for format.
func FileName(name, ext string) string {
	if name == "" {
		name = "profile"
	}
	if strings.HasSuffix(strings.ToLower(name), "."+ext) {
		return name
	}
	return name + "." + ext
}
