package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/profile-studio/internal/bus"
	"github.com/jonathan/profile-studio/internal/preview"
	"github.com/jonathan/profile-studio/internal/profile"
	"github.com/jonathan/profile-studio/internal/schemas"
	"github.com/jonathan/profile-studio/internal/sections"
)

func TestPrintProfile(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	d := profile.Default()
	d.FullName = "Ada Lovelace"
	d.ProfessionalTitle = "Analyst"
	d.Contact.EmailPrimary = "ada@example.com"
	d.TopHighlights = []string{"First program", "Notes on the Engine"}
	d.ExpertiseAreas = []string{"a", "b", "c", "d", "e", "f", "g"}
	d.Brands = []profile.Brand{{Name: "Analytical Engine"}}

	p.PrintProfile(d)
	output := buf.String()

	assert.Contains(t, output, "PROFILE")
	assert.Contains(t, output, "Ada Lovelace")
	assert.Contains(t, output, "Analyst")
	assert.Contains(t, output, "ada@example.com")
	assert.Contains(t, output, "First program")
	assert.Contains(t, output, "... and 2 more")
	assert.Contains(t, output, "Analytical Engine")
}

func TestPrintSectionProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSectionProgress([]sections.Status{
		{ID: "identity", Label: "Your Identity", HasData: true},
		{ID: "story", Label: "Your Story"},
	})
	output := buf.String()

	assert.Contains(t, output, "REVIEW SECTIONS")
	assert.Contains(t, output, "✓ 1. Your Identity (identity)")
	assert.Contains(t, output, "○ 2. Your Story (story)")
	assert.Contains(t, output, "1 of 2 sections have content")
}

func TestPrintSectionProgress_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSectionProgress(nil)
	assert.Empty(t, buf.String())
}

func TestPrintSuggestion(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	tagline := "Builds teams that ship"
	p.PrintSuggestion("identity", &profile.Partial{Tagline: &tagline})
	output := buf.String()

	assert.Contains(t, output, "AI SUGGESTION")
	assert.Contains(t, output, "Section: identity")
	assert.Contains(t, output, "tagline: Builds teams that ship")

	buf.Reset()
	p.PrintSuggestion("identity", &profile.Partial{})
	p.PrintSuggestion("identity", nil)
	assert.Empty(t, buf.String())
}

func TestPrintDownload(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDownload(&preview.Download{
		FileName:    "ada.png",
		Format:      bus.FormatPNG,
		ContentType: "image/png",
		Data:        make([]byte, 1024),
		Width:       1588,
		Height:      2246,
	})
	output := buf.String()

	assert.Contains(t, output, "DOWNLOAD")
	assert.Contains(t, output, "ada.png")
	assert.Contains(t, output, "png (image/png)")
	assert.Contains(t, output, "1024 bytes")
	assert.Contains(t, output, "1588x2246 px")
}

func TestPrintValidationErrors(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintValidationErrors(&schemas.ValidationError{Errors: []schemas.FieldError{
		{Field: "fullName", Message: "Invalid type. Expected: string, given: integer"},
	}})
	output := buf.String()
	assert.Contains(t, output, "SCHEMA VIOLATIONS")
	assert.Contains(t, output, "⚠ fullName")
}

func TestPrintValidationErrors_None(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintValidationErrors(nil)
	assert.Contains(t, buf.String(), "NO SCHEMA VIOLATIONS")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 100))
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}
