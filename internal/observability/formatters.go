// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/profile-studio/internal/preview"
	"github.com/jonathan/profile-studio/internal/profile"
	"github.com/jonathan/profile-studio/internal/schemas"
	"github.com/jonathan/profile-studio/internal/sections"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(label + ":\n")
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// PrintProfile outputs a human-readable summary of a profile.
func (p *Printer) PrintProfile(d profile.Data) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Name:     %s\n", d.FullName))
	if d.ProfessionalTitle != "" {
		sb.WriteString(fmt.Sprintf("Title:    %s\n", d.ProfessionalTitle))
	}
	if d.Tagline != "" {
		sb.WriteString(fmt.Sprintf("Tagline:  %s\n", d.Tagline))
	}
	if d.Contact.EmailPrimary != "" {
		sb.WriteString(fmt.Sprintf("Email:    %s\n", d.Contact.EmailPrimary))
	}
	sb.WriteString("\n")

	writeList(&sb, "Highlights", d.TopHighlights)
	writeList(&sb, "Expertise", d.ExpertiseAreas)
	if len(d.Brands) > 0 {
		names := make([]string, 0, len(d.Brands))
		for _, b := range d.Brands {
			names = append(names, b.Name)
		}
		writeList(&sb, "Brands", names)
	}

	p.printBox("PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSectionProgress outputs which review sections already have content.
func (p *Printer) PrintSectionProgress(progress []sections.Status) {
	if len(progress) == 0 {
		return
	}

	var sb strings.Builder
	done := 0
	for i, s := range progress {
		mark := "○"
		if s.HasData {
			mark = "✓"
			done++
		}
		sb.WriteString(fmt.Sprintf("%s %d. %s (%s)\n", mark, i+1, s.Label, s.ID))
	}
	sb.WriteString(fmt.Sprintf("\n%d of %d sections have content", done, len(progress)))

	p.printBox("REVIEW SECTIONS", sb.String())
}

// PrintSuggestion outputs the fields an AI rewrite would change.
func (p *Printer) PrintSuggestion(sectionID string, s *profile.Partial) {
	if s == nil || s.IsEmpty() {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Section: %s\n\n", sectionID))
	for _, f := range s.Fields() {
		v, _ := s.Value(f)
		sb.WriteString(fmt.Sprintf("• %s: %v\n", f, v))
	}

	p.printBox("AI SUGGESTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDownload outputs the result of an export.
func (p *Printer) PrintDownload(dl *preview.Download) {
	if dl == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:     %s\n", dl.FileName))
	sb.WriteString(fmt.Sprintf("Format:   %s (%s)\n", dl.Format, dl.ContentType))
	sb.WriteString(fmt.Sprintf("Size:     %d bytes", len(dl.Data)))
	if dl.Width > 0 && dl.Height > 0 {
		sb.WriteString(fmt.Sprintf("\nRaster:   %dx%d px", dl.Width, dl.Height))
	}

	p.printBox("DOWNLOAD", sb.String())
}

// PrintValidationErrors outputs schema violations found in a document.
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) PrintValidationErrors(verr *schemas.ValidationError) {
	if verr == nil || len(verr.Errors) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO SCHEMA VIOLATIONS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d violations:\n\n", len(verr.Errors)))
	for i, e := range verr.Errors {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", e.Field))
		sb.WriteString(fmt.Sprintf("  %s\n", e.Message))
		if i < len(verr.Errors)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("SCHEMA VIOLATIONS", strings.TrimSuffix(sb.String(), "\n"))
}
