package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const templateColumns = `id, name, description, thumbnail, features, category, width, height, updated_at`

// EnsureTemplatesTable creates the templates table if needed.
func (db *DB) EnsureTemplatesTable(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, TemplatesSchema); err != nil {
		return fmt.Errorf("failed to create templates table: %w", err)
	}
	return nil
}

// GetTemplate retrieves a template with its markup. It returns nil, nil
// when no template has the id.
func (db *DB) GetTemplate(ctx context.Context, id string) (*TemplateRecord, error) {
	var r TemplateRecord
	err := db.pool.QueryRow(ctx,
		`SELECT `+templateColumns+`, html FROM templates WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.Name, &r.Description, &r.Thumbnail, &r.Features, &r.Category,
		&r.Width, &r.Height, &r.UpdatedAt, &r.HTML)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get template %s: %w", id, err)
	}
	return &r, nil
}

// ListTemplates returns every template without markup, ordered by name.
func (db *DB) ListTemplates(ctx context.Context) ([]TemplateRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+templateColumns+` FROM templates ORDER BY name, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var out []TemplateRecord
	for rows.Next() {
		var r TemplateRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.Thumbnail, &r.Features,
			&r.Category, &r.Width, &r.Height, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return out, nil
}

// UpsertTemplate inserts or replaces a template keyed by id.
func (db *DB) UpsertTemplate(ctx context.Context, r *TemplateRecord) error {
	if r == nil || r.ID == "" {
		return fmt.Errorf("template id is required")
	}
	r.Normalize()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO templates (id, name, description, thumbnail, features, category, width, height, html)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
		   name = $2, description = $3, thumbnail = $4, features = $5,
		   category = $6, width = $7, height = $8, html = $9, updated_at = NOW()`,
		r.ID, r.Name, r.Description, r.Thumbnail, r.Features, r.Category, r.Width, r.Height, r.HTML,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert template %s: %w", r.ID, err)
	}
	return nil
}

// DeleteTemplate removes a template. Deleting a missing id is not an error.
func (db *DB) DeleteTemplate(ctx context.Context, id string) error {
	if _, err := db.pool.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete template %s: %w", id, err)
	}
	return nil
}
