package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/profile-studio/internal/config"
	"github.com/jonathan/profile-studio/internal/profile"
	"github.com/jonathan/profile-studio/internal/rendering"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a profile into a template",
	Long:  "Compiles a template against a profile JSON file and writes the HTML to stdout or --out.",
	RunE:  runRender,
}

var (
	renderTemplateID   string
	renderTemplatesDir string
	renderDatabaseURL  string
	renderProfileFile  string
	renderOutputFile   string
)

func init() {
	renderCmd.Flags().StringVarP(&renderTemplateID, "template", "t", "", "Template id (required)")
	renderCmd.Flags().StringVar(&renderTemplatesDir, "templates", "", "Templates directory (default ./templates)")
	renderCmd.Flags().StringVar(&renderDatabaseURL, "db-url", "", "Read the template from PostgreSQL")
	renderCmd.Flags().StringVarP(&renderProfileFile, "profile", "p", "", "Path to profile JSON file")
	renderCmd.Flags().StringVarP(&renderOutputFile, "out", "o", "", "Path to output HTML file (default stdout)")

	_ = renderCmd.MarkFlagRequired("template")
	rootCmd.AddCommand(renderCmd)
}

func runRender(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := resolveConfig("", config.Config{TemplatesDir: renderTemplatesDir, DatabaseURL: renderDatabaseURL}, os.Getenv)
	if err != nil {
		return err
	}

	src, closeTemplates, err := openTemplates(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeTemplates()

	tpl, err := src.Get(ctx, renderTemplateID)
	if err != nil {
		return fmt.Errorf("failed to load template %s: %w", renderTemplateID, err)
	}
	p, err := readProfile(renderProfileFile)
	if err != nil {
		return err
	}

	renderer, err := rendering.NewRenderer(rendering.DefaultCacheSize)
	if err != nil {
		return err
	}
	html, err := renderer.RenderNamed(tpl.ID, tpl.Markup, profile.Default().With(p).DisplayData())
	if err != nil {
		return err
	}

	return writeOutput(renderOutputFile, []byte(html))
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d bytes to %s\n", len(data), path)
	return nil
}
