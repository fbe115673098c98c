package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRecord_Normalize(t *testing.T) {
	r := TemplateRecord{ID: " classic "}
	r.Normalize()

	assert.Equal(t, "classic", r.ID)
	assert.Equal(t, "classic", r.Name)
	assert.Equal(t, DefaultTemplateCategory, r.Category)
	assert.Equal(t, DefaultTemplateWidth, r.Width)
	assert.Equal(t, DefaultTemplateHeight, r.Height)
	assert.NotNil(t, r.Features)
	assert.Empty(t, r.Features)
}

func TestTemplateRecord_NormalizeKeepsValues(t *testing.T) {
	r := TemplateRecord{
		ID:       "bold",
		Name:     "Bold",
		Category: "Creative",
		Features: []string{"photo"},
		Width:    1000,
		Height:   1400,
	}
	r.Normalize()

	assert.Equal(t, "Bold", r.Name)
	assert.Equal(t, "Creative", r.Category)
	assert.Equal(t, []string{"photo"}, r.Features)
	assert.Equal(t, 1000, r.Width)
	assert.Equal(t, 1400, r.Height)
}

func TestTemplatesSchema(t *testing.T) {
	assert.Contains(t, TemplatesSchema, "CREATE TABLE IF NOT EXISTS templates")
	assert.Contains(t, TemplatesSchema, "DEFAULT 794")
	assert.Contains(t, TemplatesSchema, "DEFAULT 1123")
}

func TestPoolConfig(t *testing.T) {
	cfg, err := poolConfig("postgres://u:p@localhost:5432/catalog")
	require.NoError(t, err)
	assert.EqualValues(t, defaultMaxConns, cfg.MaxConns)
	assert.Equal(t, applicationName, cfg.ConnConfig.RuntimeParams["application_name"])

	cfg, err = poolConfig("postgres://u:p@localhost:5432/catalog?pool_max_conns=9&application_name=migrate")
	require.NoError(t, err)
	assert.EqualValues(t, 9, cfg.MaxConns)
	assert.Equal(t, "migrate", cfg.ConnConfig.RuntimeParams["application_name"])

	_, err = poolConfig("postgres://u:p@localhost:notaport/catalog")
	assert.Error(t, err)
}
