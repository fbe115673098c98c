package enhance

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/profile-studio/internal/llm"
	"github.com/jonathan/profile-studio/internal/profile"
	"github.com/jonathan/profile-studio/internal/prompts"
	"github.com/jonathan/profile-studio/internal/rendering"
)

// TemplateEditor rewrites template markup from a free-text instruction.
type TemplateEditor struct {
	client   llm.Client
	renderer *rendering.Renderer
}

// NewTemplateEditor creates an editor. The renderer is used to reject
// replies that are not valid Handlebars.
func NewTemplateEditor(client llm.Client, renderer *rendering.Renderer) *TemplateEditor {
	return &TemplateEditor{client: client, renderer: renderer}
}

// Modify returns html rewritten according to instruction. Placeholders are
// kept unless the instruction says otherwise.
func (e *TemplateEditor) Modify(ctx context.Context, html, instruction string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", &InputError{Field: "html", Message: "must not be empty"}
	}
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return "", &InputError{Field: "prompt", Message: "must not be empty"}
	}

	system, err := prompts.Get(prompts.EditingFile, "modify-template-system")
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(profile.AllFields()))
	for _, f := range profile.AllFields() {
		names = append(names, "{{"+string(f)+"}}")
	}
	prompt, err := prompts.Render(prompts.EditingFile, "modify-template", map[string]string{
		"HTML":         html,
		"Instruction":  instruction,
		"Placeholders": strings.Join(names, ", "),
	})
	if err != nil {
		return "", err
	}

	log.Printf("[ENHANCE] Requesting template edit (%d bytes)", len(html))
	reply, err := e.client.GenerateContent(ctx, llm.Request{
		System: system,
		Prompt: prompt,
		Tier:   llm.TierAdvanced,
	})
	if err != nil {
		return "", fmt.Errorf("failed to edit template: %w", err)
	}

	out := llm.CleanHTMLBlock(reply)
	if out == "" {
		return "", &ResponseError{Message: "empty reply", Raw: reply}
	}
	if e.renderer != nil {
		if err := e.renderer.Check(rendering.Hash(out), out); err != nil {
			return "", &ResponseError{Message: "reply is not a valid template", Raw: reply, Cause: err}
		}
	}
	return out, nil
}
