// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults applied by MergeWithDefaults and FromEnv.
const (
	DefaultPort          = 8080
	DefaultTemplatesDir  = "templates"
	DefaultMaxSessions   = 32
	DefaultIdleTTL       = 30 * time.Minute
	DefaultExportTimeout = 30 * time.Second
)

// Config is the studio configuration. It can be loaded from a JSON file,
// from the environment, or both; CLI flags are applied last.
type Config struct {
	// Server
	Port        int    `json:"port,omitempty"`
	MaxSessions int    `json:"max_sessions,omitempty"`
	IdleTTL     string `json:"idle_ttl,omitempty"` // Go duration, e.g. "30m"

	// Templates
	TemplatesDir   string `json:"templates_dir,omitempty"` // Directory of <id>/index.html
	DatabaseURL    string `json:"database_url,omitempty"`  // Serve templates from PostgreSQL instead
	SectionsFile   string `json:"sections_file,omitempty"` // YAML review section registry override
	WatchTemplates bool   `json:"watch_templates,omitempty"`

	// Browser
	ChromePath    string `json:"chrome_path,omitempty"`
	Headful       bool   `json:"headful,omitempty"` // Show the browser window
	ExportTimeout string `json:"export_timeout,omitempty"`

	// AI
	APIKey  string `json:"api_key,omitempty"` // Gemini API key
	Verbose bool   `json:"verbose,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads the configuration from environment variables. getenv is
// usually os.Getenv.
func FromEnv(getenv func(string) string) Config {
	cfg := Config{
		TemplatesDir:  getenv("TEMPLATES_DIR"),
		DatabaseURL:   getenv("DATABASE_URL"),
		SectionsFile:  getenv("SECTIONS_FILE"),
		ChromePath:    getenv("CHROME_PATH"),
		APIKey:        getenv("GEMINI_API_KEY"),
		IdleTTL:       getenv("SESSION_IDLE_TTL"),
		ExportTimeout: getenv("EXPORT_TIMEOUT"),
	}
	if v, err := strconv.Atoi(getenv("PORT")); err == nil {
		cfg.Port = v
	}
	if v, err := strconv.Atoi(getenv("MAX_SESSIONS")); err == nil {
		cfg.MaxSessions = v
	}
	if v, err := strconv.ParseBool(getenv("CHROME_HEADLESS")); err == nil {
		cfg.Headful = !v
	}
	if v, err := strconv.ParseBool(getenv("WATCH_TEMPLATES")); err == nil {
		cfg.WatchTemplates = v
	}
	return cfg
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("config error: 'max_sessions' must be non-negative")
	}
	if _, err := parseDuration(c.IdleTTL); err != nil {
		return fmt.Errorf("config error: 'idle_ttl': %w", err)
	}
	if _, err := parseDuration(c.ExportTimeout); err != nil {
		return fmt.Errorf("config error: 'export_timeout': %w", err)
	}

	if c.DatabaseURL == "" && c.TemplatesDir != "" {
		if info, err := os.Stat(c.TemplatesDir); err != nil || !info.IsDir() {
			return fmt.Errorf("config error: templates directory not found: %s", c.TemplatesDir)
		}
	}
	if c.SectionsFile != "" {
		if _, err := os.Stat(c.SectionsFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: sections file not found: %s", c.SectionsFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.IdleTTL == "" {
		result.IdleTTL = defaults.IdleTTL
	}
	if result.TemplatesDir == "" {
		result.TemplatesDir = defaults.TemplatesDir
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SectionsFile == "" {
		result.SectionsFile = defaults.SectionsFile
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}
	if result.ExportTimeout == "" {
		result.ExportTimeout = defaults.ExportTimeout
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxSessions == 0 {
		result.MaxSessions = defaults.MaxSessions
	}

	// Bool fields can only be switched on by a layer.
	result.Headful = result.Headful || defaults.Headful
	result.WatchTemplates = result.WatchTemplates || defaults.WatchTemplates
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

// Builtin returns the built-in defaults.
func Builtin() Config {
	return Config{
		Port:          DefaultPort,
		TemplatesDir:  DefaultTemplatesDir,
		MaxSessions:   DefaultMaxSessions,
		IdleTTL:       DefaultIdleTTL.String(),
		ExportTimeout: DefaultExportTimeout.String(),
	}
}

// SessionIdleTTL returns IdleTTL, or DefaultIdleTTL when unset.
func (c *Config) SessionIdleTTL() time.Duration {
	if d, err := parseDuration(c.IdleTTL); err == nil && d > 0 {
		return d
	}
	return DefaultIdleTTL
}

// ExportTimeoutDuration returns ExportTimeout, or DefaultExportTimeout when unset.
func (c *Config) ExportTimeoutDuration() time.Duration {
	if d, err := parseDuration(c.ExportTimeout); err == nil && d > 0 {
		return d
	}
	return DefaultExportTimeout
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must be non-negative")
	}
	return d, nil
}
