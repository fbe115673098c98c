package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/profile-studio/internal/config"
	"github.com/jonathan/profile-studio/internal/metrics"
	"github.com/jonathan/profile-studio/internal/rendering"
	"github.com/jonathan/profile-studio/internal/server"
	"github.com/jonathan/profile-studio/internal/studio"
	"github.com/jonathan/profile-studio/internal/templates"
)

var (
	serveConfigFile string
	serveFlags      config.Config
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that hosts profile studio sessions.

Settings are read from flags, then the environment (PORT, TEMPLATES_DIR,
DATABASE_URL, GEMINI_API_KEY, CHROME_HEADLESS, ...), then --config, then the
built-in defaults.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigFile, "config", "c", "", "Path to JSON config file")
	serveCmd.Flags().IntVar(&serveFlags.Port, "port", 0, "Port to listen on (default 8080)")
	serveCmd.Flags().IntVar(&serveFlags.MaxSessions, "max-sessions", 0, "Maximum open sessions (default 32)")
	serveCmd.Flags().StringVar(&serveFlags.IdleTTL, "idle-ttl", "", "Close sessions idle for this long (default 30m)")
	serveCmd.Flags().StringVarP(&serveFlags.TemplatesDir, "templates", "t", "", "Templates directory (default ./templates)")
	serveCmd.Flags().StringVar(&serveFlags.DatabaseURL, "db-url", "", "Serve templates from PostgreSQL instead of a directory")
	serveCmd.Flags().StringVar(&serveFlags.SectionsFile, "sections", "", "YAML file overriding the review sections")
	serveCmd.Flags().BoolVar(&serveFlags.WatchTemplates, "watch", false, "Reload templates when the directory changes")
	serveCmd.Flags().StringVar(&serveFlags.ChromePath, "chrome-path", "", "Chrome executable (default: auto-detect)")
	serveCmd.Flags().BoolVar(&serveFlags.Headful, "headful", false, "Show the browser window")
	serveCmd.Flags().StringVar(&serveFlags.ExportTimeout, "export-timeout", "", "Upper bound for one export (default 30s)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	serveFlags.Verbose = verbose
	cfg, err := resolveConfig(serveConfigFile, serveFlags, os.Getenv)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, closeTemplates, err := openTemplates(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeTemplates()

	m := metrics.Default()
	deps, closeDeps, err := newStudioDeps(ctx, cfg, src, m)
	if err != nil {
		return err
	}
	defer closeDeps()

	if dir, ok := src.(*templates.DirSource); ok && cfg.WatchTemplates {
		go watchTemplates(ctx, dir, deps.Renderer)
	}

	manager, err := studio.NewManager(deps, studio.ManagerOptions{
		MaxSessions: cfg.MaxSessions,
		IdleTTL:     cfg.SessionIdleTTL(),
	})
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}

	srv, err := server.New(server.Config{
		Port:     cfg.Port,
		Sessions: manager,
		Metrics:  m,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// watchTemplates drops compiled templates whenever a template file changes.
func watchTemplates(ctx context.Context, dir *templates.DirSource, renderer *rendering.Renderer) {
	log.Printf("[TEMPLATES] Watching %s", dir.Dir())
	err := dir.Watch(ctx, func(id string) {
		if id != "" {
			log.Printf("[TEMPLATES] %s changed", id)
		}
		renderer.Invalidate()
	})
	if err != nil && ctx.Err() == nil {
		log.Printf("[TEMPLATES] Watcher stopped: %v", err)
	}
}
