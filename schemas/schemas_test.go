package schemas

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func TestProfileSchema_ValidJSON(t *testing.T) {
	data, err := os.ReadFile("profile.schema.json")
	require.NoError(t, err)
	assert.JSONEq(t, string(data), Profile)

	var schemaObj map[string]any
	require.NoError(t, json.Unmarshal(data, &schemaObj))
	assert.Equal(t, "object", schemaObj["type"])
	assert.Contains(t, schemaObj, "$schema")
	assert.Contains(t, schemaObj, "definitions")
}

func TestProfileSchema_Compiles(t *testing.T) {
	_, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(Profile))
	assert.NoError(t, err)
}

func TestProfileSchema_CoversProfileKeys(t *testing.T) {
	var schemaObj struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal([]byte(Profile), &schemaObj))

	for _, key := range []string{
		"fullName", "professionalTitle", "tagline", "profilePhoto", "aboutMe",
		"personalStory30", "topHighlights", "expertiseAreas", "expertiseDescriptions",
		"skills", "awards", "workExperienceType", "impactHeadline", "impactStory",
		"positions", "education", "brands", "socialLinks", "contact",
	} {
		assert.Contains(t, schemaObj.Properties, key)
	}
}
