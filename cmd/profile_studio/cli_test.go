package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/profile-studio/internal/config"
	"github.com/jonathan/profile-studio/internal/profile"
	"github.com/jonathan/profile-studio/internal/schemas"
	"github.com/jonathan/profile-studio/internal/sections"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestResolveConfig_Layering(t *testing.T) {
	dir := t.TempDir()
	tplDir := filepath.Join(dir, "tpl")
	require.NoError(t, os.Mkdir(tplDir, 0755))
	cfgFile := writeFile(t, dir, "studio.json", `{"port": 9000, "max_sessions": 8, "templates_dir": "`+tplDir+`", "idle_ttl": "5m"}`)

	env := envMap(map[string]string{"PORT": "9100", "CHROME_HEADLESS": "false"})

	cfg, err := resolveConfig(cfgFile, config.Config{MaxSessions: 2}, env)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port, "env beats file")
	assert.Equal(t, 2, cfg.MaxSessions, "flag beats file")
	assert.Equal(t, tplDir, cfg.TemplatesDir)
	assert.Equal(t, "5m", cfg.IdleTTL)
	assert.Equal(t, config.DefaultExportTimeout, cfg.ExportTimeoutDuration())
	assert.True(t, cfg.Headful)
}

func TestResolveConfig_Errors(t *testing.T) {
	_, err := resolveConfig(filepath.Join(t.TempDir(), "missing.json"), config.Config{}, envMap(nil))
	assert.Error(t, err)

	_, err = resolveConfig("", config.Config{TemplatesDir: filepath.Join(t.TempDir(), "nope")}, envMap(nil))
	assert.Error(t, err)

	_, err = resolveConfig("", config.Config{TemplatesDir: t.TempDir(), IdleTTL: "soon"}, envMap(nil))
	assert.Error(t, err)
}

func TestReadProfile(t *testing.T) {
	dir := t.TempDir()

	p, err := readProfile("")
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())

	good := writeFile(t, dir, "good.json", `{"fullName": "Ada Lovelace", "skills": ["Analysis"]}`)
	p, err = readProfile(good)
	require.NoError(t, err)
	require.NotNil(t, p.FullName)
	assert.Equal(t, "Ada Lovelace", *p.FullName)

	bad := writeFile(t, dir, "bad.json", `{"fullName": 42}`)
	_, err = readProfile(bad)
	var verr *schemas.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = readProfile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLoadSections(t *testing.T) {
	reg, err := loadSections("")
	require.NoError(t, err)
	assert.Equal(t, sections.Default().Len(), reg.Len())

	_, err = loadSections(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPrintSections(t *testing.T) {
	reg := sections.Default()
	name := "Ada Lovelace"
	tagline := "Analyst"
	d := profile.Default().With(profile.Partial{FullName: &name, Tagline: &tagline})

	var table bytes.Buffer
	require.NoError(t, printSections(&table, reg, d, false))
	assert.Contains(t, table.String(), "identity")
	assert.Contains(t, table.String(), "DATA")

	var out bytes.Buffer
	require.NoError(t, printSections(&out, reg, d, true))
	var rows []sectionRow
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, reg.Len())
	assert.Equal(t, "identity", rows[0].ID)
	assert.True(t, rows[0].HasData)
}

func TestBrowserOptions(t *testing.T) {
	opts := browserOptions(config.Config{Headful: true, ChromePath: "/opt/chrome"})
	assert.False(t, opts.Headless)
	assert.Equal(t, "/opt/chrome", opts.ExecPath)
	assert.Equal(t, 794, opts.FrameWidth)
}

func TestValidateCommand_Binary(t *testing.T) {
	binaryPath := getBinaryPath(t)
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", `{"fullName": "Ada"}`)
	bad := writeFile(t, dir, "bad.json", `{"fullName": ["Ada"]}`)

	output, err := exec.Command(binaryPath, "validate", good).CombinedOutput()
	require.NoError(t, err, string(output))
	assert.Contains(t, string(output), "is valid")

	output, err = exec.Command(binaryPath, "validate", bad).CombinedOutput()
	assert.Error(t, err)
	assert.Contains(t, string(output), "fullName")
}

func TestRenderCommand_Binary(t *testing.T) {
	binaryPath := getBinaryPath(t)
	dir := t.TempDir()
	writeFile(t, dir, "card/index.html", `<h1>{{fullName}}</h1>`)
	prof := writeFile(t, dir, "profile.json", `{"fullName": "Ada Lovelace"}`)

	output, err := exec.Command(binaryPath, "render",
		"--templates", dir,
		"--template", "card",
		"--profile", prof).CombinedOutput()
	require.NoError(t, err, string(output))
	assert.Contains(t, string(output), "<h1>Ada Lovelace</h1>")
}

func TestRenderCommand_MissingTemplateFlag(t *testing.T) {
	binaryPath := getBinaryPath(t)

	output, err := exec.Command(binaryPath, "render").CombinedOutput()
	assert.Error(t, err)
	assert.Contains(t, string(output), "required flag(s) \"template\" not set")
}
