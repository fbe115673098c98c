package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jonathan/profile-studio/internal/browser"
	"github.com/jonathan/profile-studio/internal/config"
	"github.com/jonathan/profile-studio/internal/db"
	"github.com/jonathan/profile-studio/internal/enhance"
	"github.com/jonathan/profile-studio/internal/export"
	"github.com/jonathan/profile-studio/internal/fetch"
	"github.com/jonathan/profile-studio/internal/llm"
	"github.com/jonathan/profile-studio/internal/metrics"
	"github.com/jonathan/profile-studio/internal/profile"
	"github.com/jonathan/profile-studio/internal/rendering"
	"github.com/jonathan/profile-studio/internal/schemas"
	"github.com/jonathan/profile-studio/internal/sections"
	"github.com/jonathan/profile-studio/internal/studio"
	"github.com/jonathan/profile-studio/internal/templates"
)

// resolveConfig layers flags over the environment, the optional config file
// and the built-in defaults, in that order.
func resolveConfig(path string, flags config.Config, getenv func(string) string) (config.Config, error) {
	cfg := flags.MergeWithDefaults(config.FromEnv(getenv))
	if path != "" {
		fileCfg, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = cfg.MergeWithDefaults(*fileCfg)
	}
	cfg = cfg.MergeWithDefaults(config.Builtin())
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openTemplates returns the template source for cfg. The returned close
// function releases the database pool, if any.
func openTemplates(ctx context.Context, cfg config.Config) (templates.Source, func(), error) {
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return templates.NewPGSource(database), database.Close, nil
	}
	src, err := templates.NewDirSource(cfg.TemplatesDir)
	if err != nil {
		return nil, nil, err
	}
	return src, func() {}, nil
}

// loadSections reads the section registry override, or returns the built-in
// registry when path is empty.
func loadSections(path string) (*sections.Registry, error) {
	if path == "" {
		return sections.Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sections file: %w", err)
	}
	return sections.Parse(data)
}

// readProfile loads a partial profile from a JSON file after validating it
// against the profile schema.
func readProfile(path string) (profile.Partial, error) {
	var p profile.Partial
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read profile file: %w", err)
	}
	if err := schemas.ValidateProfile(data); err != nil {
		return p, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("failed to parse profile file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// browserOptions maps cfg onto the headless tab settings.
func browserOptions(cfg config.Config) browser.Options {
	opts := browser.DefaultOptions()
	opts.Headless = !cfg.Headful
	opts.ExecPath = cfg.ChromePath
	opts.Verbose = cfg.Verbose
	return opts
}

// newStudioDeps wires the collaborators shared by every session. AI features
// stay disabled when no API key is configured. The returned close function
// releases the LLM client.
func newStudioDeps(ctx context.Context, cfg config.Config, src templates.Source, m *metrics.Metrics) (studio.Deps, func(), error) {
	reg, err := loadSections(cfg.SectionsFile)
	if err != nil {
		return studio.Deps{}, nil, err
	}
	renderer, err := rendering.NewRenderer(rendering.DefaultCacheSize)
	if err != nil {
		return studio.Deps{}, nil, err
	}

	engine := export.NewEngine(fetch.NewCachedFetcher(nil), export.Options{Observer: m})
	deps := studio.Deps{
		Templates:     src,
		Renderer:      renderer,
		Sections:      reg,
		Documents:     studio.ChromeDocuments(browserOptions(cfg)),
		Export:        engine.Export,
		ExportTimeout: cfg.ExportTimeoutDuration(),
		Metrics:       m,
	}

	if cfg.APIKey == "" {
		log.Printf("[AI] GEMINI_API_KEY not set, enhancement and template editing are disabled")
		return deps, func() {}, nil
	}
	client, err := llm.NewClient(ctx, llm.ConfigFromEnv(os.Getenv), cfg.APIKey)
	if err != nil {
		return studio.Deps{}, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	deps.Gateway = m.Gateway(enhance.NewLLMGateway(client, reg))
	deps.Editor = enhance.NewTemplateEditor(client, renderer)
	deps.Importer = enhance.NewImporter(client)
	return deps, func() { _ = client.Close() }, nil
}
