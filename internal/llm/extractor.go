package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema describes a JSON object the model should fill from
// free text.
type ExtractionSchema struct {
	Name        string // label used in logs
	Description string // task preamble
	Fields      []SchemaField
}

// SchemaField is one key of the extraction output. Type is a JSON sketch
// of the value, such as "string" or [{"name": ""}]; empty means a string.
type SchemaField struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

const extractionRules = `IMPORTANT:
- Extract information directly from the input, do not invent or summarize.
- Omit fields you cannot fill.
- Return ONLY the JSON object, no markdown, no explanation, no code blocks.`

// Shape renders the fields as an annotated JSON skeleton.
func (s ExtractionSchema) Shape() string {
	lines := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		typ := f.Type
		if typ == "" {
			typ = "string"
		}
		line := fmt.Sprintf("  %q: %s", f.Name, typ)
		if f.Required {
			line += " (required)"
		}
		if f.Description != "" {
			line += " // " + f.Description
		}
		if i < len(s.Fields)-1 {
			line += ","
		}
		lines[i] = line
	}
	return "{\n" + strings.Join(lines, "\n") + "\n}"
}

// BuildExtractionPrompt asks the model to fill schema from inputText.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	return fmt.Sprintf("%s\n\nReturn ONLY valid JSON matching this exact structure:\n%s\n\n%s\n\nInput:\n\"\"\"\n%s\n\"\"\"\n",
		schema.Description, schema.Shape(), extractionRules, inputText)
}

// ProfileImportSchema maps a LinkedIn data export onto the profile record.
func ProfileImportSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "LinkedInProfile",
		Description: `You are an expert profile builder. Extract information from the following LinkedIn JSON data and map it to a professional profile structure.`,
		Fields: []SchemaField{
			{Name: "fullName", Type: "\"string\"", Description: "Display name", Required: true},
			{Name: "tagline", Type: "\"string\"", Description: "LinkedIn headline"},
			{Name: "profilePhoto", Type: "\"string\"", Description: "pictureUrl if available"},
			{Name: "aboutMe", Type: "\"string\"", Description: "summary field content"},
			{Name: "expertiseAreas", Type: "[\"string\"]", Description: "up to 5, derived from content and skills"},
			{Name: "topHighlights", Type: "[\"string\"]", Description: "3 key achievement lines from headline or bio (look for numbers, metrics, titles)"},
			{Name: "professionalTitle", Type: "\"string\"", Description: "professional qualifications"},
			{Name: "positions", Type: `[{"title": "", "company": "", "location": "", "duration": "", "description": "", "logo": ""}]`},
			{Name: "education", Type: `[{"schoolName": "", "degreeName": "", "fieldOfStudy": "", "duration": ""}]`},
			{Name: "skills", Type: "[\"string\"]"},
			{Name: "socialLinks", Type: `{"linkedin": "", "website": ""}`},
			{Name: "brands", Type: `[{"name": "", "role": "", "duration": ""}]`, Description: "from positions and companies"},
		},
	}
}
