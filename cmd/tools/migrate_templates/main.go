// Command migrate_templates copies a templates directory into the
// PostgreSQL templates table so the server can run with --db-url.
//
// The directory uses the server layout: <dir>/<id>/index.html plus an
// optional <dir>/templates.json with names, categories and dimensions.
// Existing rows are replaced.
//
// Usage:
//
//	go run cmd/tools/migrate_templates/main.go [templates-dir]
//
// Requires DATABASE_URL environment variable to be set.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/jonathan/profile-studio/internal/db"
	"github.com/jonathan/profile-studio/internal/templates"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "ERROR: DATABASE_URL environment variable not set")
		os.Exit(1)
	}
	dir := "templates"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	ctx := context.Background()

	src, err := templates.NewDirSource(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	database, err := db.Connect(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.EnsureTemplatesTable(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Template Migration ===")
	fmt.Println()

	list, err := src.List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to list templates: %v\n", err)
		os.Exit(1)
	}
	if len(list) == 0 {
		fmt.Printf("No templates found in %s.\n", dir)
		return
	}

	migrated, failed := 0, 0
	for _, meta := range list {
		tpl, err := src.Get(ctx, meta.ID)
		if err != nil {
			fmt.Printf("  ✗ %s: %v\n", meta.ID, err)
			failed++
			continue
		}
		record := &db.TemplateRecord{
			ID:          tpl.ID,
			Name:        tpl.Name,
			Description: tpl.Description,
			Thumbnail:   tpl.Thumbnail,
			Features:    tpl.Features,
			Category:    tpl.Category,
			Width:       tpl.Width,
			Height:      tpl.Height,
			HTML:        tpl.Markup,
		}
		if err := database.UpsertTemplate(ctx, record); err != nil {
			fmt.Printf("  ✗ %s: %v\n", tpl.ID, err)
			failed++
			continue
		}
		fmt.Printf("  ✓ %s (%s)\n", tpl.ID, record.Name)
		migrated++
	}

	fmt.Println()
	fmt.Println("=== Migration Summary ===")
	fmt.Printf("  Migrated: %d\n", migrated)
	fmt.Printf("  Failed: %d\n", failed)
	fmt.Printf("  Total: %d\n", len(list))

	if failed > 0 {
		os.Exit(1)
	}
}
