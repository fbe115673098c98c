package templates

import (
	"context"
	"fmt"

	"github.com/jonathan/profile-studio/internal/db"
)

// recordStore is the part of *db.DB used by PGSource.
type recordStore interface {
	GetTemplate(ctx context.Context, id string) (*db.TemplateRecord, error)
	ListTemplates(ctx context.Context) ([]db.TemplateRecord, error)
}

// PGSource serves templates from the PostgreSQL templates table.
type PGSource struct {
	store recordStore
}

// NewPGSource creates a source backed by database.
func NewPGSource(database *db.DB) *PGSource {
	return &PGSource{store: database}
}

// Get loads the template id with its markup.
func (s *PGSource) Get(ctx context.Context, id string) (*Template, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	rec, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	rec.Normalize()
	t := fromRecord(*rec)
	t.Markup = rec.HTML
	return &t, nil
}

// List returns the catalog without markup.
func (s *PGSource) List(ctx context.Context) ([]Template, error) {
	recs, err := s.store.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Template, 0, len(recs))
	for _, rec := range recs {
		rec.Normalize()
		out = append(out, fromRecord(rec))
	}
	return out, nil
}

func fromRecord(rec db.TemplateRecord) Template {
	return Template{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Thumbnail:   rec.Thumbnail,
		Features:    append([]string{}, rec.Features...),
		Category:    rec.Category,
		Width:       rec.Width,
		Height:      rec.Height,
	}
}
