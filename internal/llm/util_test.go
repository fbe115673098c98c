package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain object", `{"tagline": "Builds teams"}`, `{"tagline": "Builds teams"}`},
		{"json fence", "```json\n{\"tagline\": \"x\"}\n```", `{"tagline": "x"}`},
		{"bare fence", "```\n{\"tagline\": \"x\"}\n```", `{"tagline": "x"}`},
		{"fence with other tag", "```jsonc\n[\"Go\"]\n```", `["Go"]`},
		{"preamble", "Here is the rewritten section:\n\n{\"shortBio\": \"Engineer\"}", `{"shortBio": "Engineer"}`},
		{"inline preamble", "Sure! {\"expertiseAreas\": [\"Go\", \"SQL\"]}", `{"expertiseAreas": ["Go", "SQL"]}`},
		{"array reply", "Highlights:\n[\"Led launch\", \"Grew team\"]", `["Led launch", "Grew team"]`},
		{"trailing chatter", "{\"fullName\": \"Ada\"}\n\nLet me know if you want changes.", `{"fullName": "Ada"}`},
		{"nested", "{\"contact\": {\"emailPrimary\": \"a@b.c\"}} done", `{"contact": {"emailPrimary": "a@b.c"}}`},
		{"braces in strings", `{"tagline": "uses {curly} and [square]"} ok`, `{"tagline": "uses {curly} and [square]"}`},
		{"escaped quote", `{"tagline": "say \"hi\" }"} ok`, `{"tagline": "say \"hi\" }"}`},
		{"unbalanced tail kept", "Result: {\"tagline\": \"cut", `{"tagline": "cut`},
		{"no json", "  I cannot help with that.  ", "I cannot help with that."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`{"a": {"b": [1, 2]}} tail`, `{"a": {"b": [1, 2]}}`},
		{`[[1], {"x": "]"}] tail`, `[[1], {"x": "]"}]`},
		{`{"a": 1`, ""},
		{`x{"a": 1}`, ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractBalanced(tt.input), tt.input)
	}
}

func TestCleanHTMLBlock(t *testing.T) {
	assert.Equal(t, "<div>hi</div>", CleanHTMLBlock("```html\n<div>hi</div>\n```"))
	assert.Equal(t, "<div>hi</div>", CleanHTMLBlock("  <div>hi</div>\n"))
	// A first line that is markup, not a language tag, is kept.
	assert.Equal(t, "<p class=\"a b\">x</p>\n<p>y</p>", CleanHTMLBlock("```<p class=\"a b\">x</p>\n<p>y</p>```"))
}
