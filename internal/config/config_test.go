package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"port": 8081,
		"templates_dir": "./templates",
		"max_sessions": 8,
		"idle_ttl": "15m",
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, "./templates", cfg.TemplatesDir)
	assert.Equal(t, 8, cfg.MaxSessions)
	assert.Equal(t, 15*time.Minute, cfg.SessionIdleTTL())
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestFromEnv(t *testing.T) {
	env := map[string]string{
		"PORT":             "9090",
		"TEMPLATES_DIR":    "/srv/templates",
		"DATABASE_URL":     "postgres://localhost/studio",
		"GEMINI_API_KEY":   "key",
		"CHROME_HEADLESS":  "false",
		"MAX_SESSIONS":     "4",
		"SESSION_IDLE_TTL": "5m",
	}
	cfg := FromEnv(func(k string) string { return env[k] })

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/srv/templates", cfg.TemplatesDir)
	assert.Equal(t, "postgres://localhost/studio", cfg.DatabaseURL)
	assert.Equal(t, "key", cfg.APIKey)
	assert.True(t, cfg.Headful)
	assert.Equal(t, 4, cfg.MaxSessions)
	assert.Equal(t, 5*time.Minute, cfg.SessionIdleTTL())
}

func TestFromEnv_Empty(t *testing.T) {
	cfg := FromEnv(func(string) string { return "" })
	assert.Equal(t, Config{}, cfg)
	assert.Equal(t, DefaultIdleTTL, cfg.SessionIdleTTL())
	assert.Equal(t, DefaultExportTimeout, cfg.ExportTimeoutDuration())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"port", Config{Port: 70000}, "port"},
		{"sessions", Config{MaxSessions: -1}, "max_sessions"},
		{"ttl", Config{IdleTTL: "soon"}, "idle_ttl"},
		{"negative timeout", Config{ExportTimeout: "-1s"}, "export_timeout"},
		{"templates dir", Config{TemplatesDir: "/nonexistent/templates"}, "templates directory not found"},
		{"sections file", Config{SectionsFile: "/nonexistent/sections.yaml"}, "sections file not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &Config{
		Port:         8080,
		TemplatesDir: t.TempDir(),
		IdleTTL:      "10m",
	}
	assert.NoError(t, cfg.Validate())

	// The directory is not consulted when templates come from the database.
	cfg = &Config{TemplatesDir: "/nonexistent", DatabaseURL: "postgres://x"}
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{
		Port:    9000,
		APIKey:  "custom",
		Headful: true,
	}

	merged := partial.MergeWithDefaults(Builtin())

	// Custom values should be preserved
	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, "custom", merged.APIKey)
	assert.True(t, merged.Headful)

	// Default values should fill in empty fields
	assert.Equal(t, DefaultTemplatesDir, merged.TemplatesDir)
	assert.Equal(t, DefaultMaxSessions, merged.MaxSessions)
	assert.Equal(t, DefaultIdleTTL, merged.SessionIdleTTL())
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{Port: 1, TemplatesDir: "x"}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, cfg, merged)
}
