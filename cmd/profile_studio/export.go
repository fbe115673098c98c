package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/profile-studio/internal/bus"
	"github.com/jonathan/profile-studio/internal/config"
	"github.com/jonathan/profile-studio/internal/observability"
	"github.com/jonathan/profile-studio/internal/studio"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a profile and export it as html, png or pdf",
	Long:  "Opens a headless session on a template, loads the profile and downloads the document in the requested format.",
	RunE:  runExport,
}

var (
	exportTemplateID   string
	exportTemplatesDir string
	exportProfileFile  string
	exportFormat       string
	exportOutputFile   string
	exportChromePath   string
	exportHeadful      bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportTemplateID, "template", "t", "", "Template id (required)")
	exportCmd.Flags().StringVar(&exportTemplatesDir, "templates", "", "Templates directory (default ./templates)")
	exportCmd.Flags().StringVarP(&exportProfileFile, "profile", "p", "", "Path to profile JSON file")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "pdf", "Output format: html, png or pdf")
	exportCmd.Flags().StringVarP(&exportOutputFile, "out", "o", "", "Output file (default: derived from the profile name)")
	exportCmd.Flags().StringVar(&exportChromePath, "chrome-path", "", "Chrome executable (default: auto-detect)")
	exportCmd.Flags().BoolVar(&exportHeadful, "headful", false, "Show the browser window")

	_ = exportCmd.MarkFlagRequired("template")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	format, err := bus.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	ctx := context.Background()
	cfg, err := resolveConfig("", config.Config{
		TemplatesDir: exportTemplatesDir,
		ChromePath:   exportChromePath,
		Headful:      exportHeadful,
		Verbose:      verbose,
	}, os.Getenv)
	if err != nil {
		return err
	}
	// Exports never need the model.
	cfg.APIKey = ""

	src, closeTemplates, err := openTemplates(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeTemplates()

	deps, closeDeps, err := newStudioDeps(ctx, cfg, src, nil)
	if err != nil {
		return err
	}
	defer closeDeps()

	manager, err := studio.NewManager(deps, studio.ManagerOptions{MaxSessions: 1})
	if err != nil {
		return err
	}
	defer manager.Close()

	p, err := readProfile(exportProfileFile)
	if err != nil {
		return err
	}
	sess, err := manager.Create(ctx, exportTemplateID, &p)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ExportTimeoutDuration())
	defer cancel()
	dl, err := sess.Download(ctx, format, sess.Profile().FullName)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if verbose {
		printer := observability.NewPrinter(os.Stderr)
		printer.PrintProfile(sess.Profile())
		printer.PrintDownload(dl)
	}

	out := exportOutputFile
	if out == "" {
		out = dl.FileName
	}
	return writeOutput(out, dl.Data)
}
