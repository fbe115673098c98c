package db

import (
	"strings"
	"time"
)

// Default page dimensions in CSS pixels (A4 at 96 dpi).
const (
	DefaultTemplateWidth  = 794
	DefaultTemplateHeight = 1123
)

// DefaultTemplateCategory is stored when a template has no category.
const DefaultTemplateCategory = "Simple"

// TemplateRecord is one row of the templates table.
type TemplateRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	Features    []string  `json:"features"`
	Category    string    `json:"category"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	HTML        string    `json:"html,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Normalize fills defaults for optional columns.
func (r *TemplateRecord) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
	if r.Name == "" {
		r.Name = r.ID
	}
	if r.Features == nil {
		r.Features = []string{}
	}
	if r.Category == "" {
		r.Category = DefaultTemplateCategory
	}
	if r.Width <= 0 {
		r.Width = DefaultTemplateWidth
	}
	if r.Height <= 0 {
		r.Height = DefaultTemplateHeight
	}
}

// TemplatesSchema creates the templates table when it does not exist.
const TemplatesSchema = `CREATE TABLE IF NOT EXISTS templates (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	thumbnail   TEXT NOT NULL DEFAULT '',
	features    TEXT[] NOT NULL DEFAULT '{}',
	category    TEXT NOT NULL DEFAULT 'Simple',
	width       INTEGER NOT NULL DEFAULT 794,
	height      INTEGER NOT NULL DEFAULT 1123,
	html        TEXT NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
