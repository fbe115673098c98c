// Package enhance turns profile sections and templates into model prompts and
// turns model replies back into typed values.
package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/profile-studio/internal/llm"
	"github.com/jonathan/profile-studio/internal/profile"
	"github.com/jonathan/profile-studio/internal/prompts"
	"github.com/jonathan/profile-studio/internal/sections"
)

// Gateway proposes a rewrite of one section. It has the same shape as the
// review controller's enhancer.
type Gateway interface {
	Enhance(ctx context.Context, sectionID string, current profile.Data, instructions string) (profile.Partial, error)
}

// LLMGateway implements Gateway on top of an llm.Client.
type LLMGateway struct {
	client   llm.Client
	sections *sections.Registry
}

// NewLLMGateway creates a gateway that asks client for section rewrites.
func NewLLMGateway(client llm.Client, reg *sections.Registry) *LLMGateway {
	if reg == nil {
		reg = sections.Default()
	}
	return &LLMGateway{client: client, sections: reg}
}

// Enhance asks the model to rewrite the fields of sectionID. The result only
// carries fields that belong to the section.
func (g *LLMGateway) Enhance(ctx context.Context, sectionID string, current profile.Data, instructions string) (profile.Partial, error) {
	sec, ok := g.sections.Get(sectionID)
	if !ok {
		return profile.Partial{}, &InputError{Field: "section", Message: fmt.Sprintf("unknown section %q", sectionID)}
	}

	system, err := prompts.Get(prompts.EnhanceFile, "enhance-section-system")
	if err != nil {
		return profile.Partial{}, err
	}
	prompt, err := buildSectionPrompt(sec, current, instructions)
	if err != nil {
		return profile.Partial{}, err
	}

	log.Printf("[ENHANCE] Requesting rewrite of section %s (%d fields)", sec.ID, len(sec.Fields))
	reply, err := g.client.GenerateJSON(ctx, llm.Request{
		System: system,
		Prompt: prompt,
		Tier:   llm.TierStandard,
	})
	if err != nil {
		return profile.Partial{}, fmt.Errorf("failed to enhance section %s: %w", sec.ID, err)
	}

	suggestion, err := DecodePartial(reply)
	if err != nil {
		log.Printf("[ENHANCE] Unusable reply for section %s: %v", sec.ID, err)
		return profile.Partial{}, err
	}
	suggestion = suggestion.Restrict(sec.Fields)
	if suggestion.Contact != nil {
		keepVisibility(suggestion.Contact, current.Contact)
	}
	log.Printf("[ENHANCE] Section %s suggestion covers %d fields", sec.ID, len(suggestion.Fields()))
	return suggestion, nil
}

// keepVisibility copies the user's show flags onto a suggested contact.
// Rewrites change contact text only.
func keepVisibility(c *profile.Contact, current profile.Contact) {
	c.EmailShow = current.EmailShow
	c.PhoneShow = current.PhoneShow
	c.WhatsAppShow = current.WhatsAppShow
	c.AddressShow = current.AddressShow
}

func buildSectionPrompt(sec sections.Section, current profile.Data, instructions string) (string, error) {
	values := make(map[profile.Field]any, len(sec.Fields))
	names := make([]string, 0, len(sec.Fields))
	for _, f := range sec.Fields {
		values[f] = current.Value(f)
		names = append(names, string(f))
	}
	currentJSON, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode current values: %w", err)
	}

	var tips strings.Builder
	for _, tip := range sec.Tips {
		tips.WriteString("- ")
		tips.WriteString(tip)
		tips.WriteString("\n")
	}
	var examples strings.Builder
	if len(sec.Examples) > 0 {
		examples.WriteString("\nExamples of strong writing:\n")
		for _, ex := range sec.Examples {
			examples.WriteString("- ")
			examples.WriteString(ex)
			examples.WriteString("\n")
		}
	}

	instructions = strings.TrimSpace(instructions)
	if instructions == "" {
		instructions = "None"
	}

	return prompts.Render(prompts.EnhanceFile, "enhance-section", map[string]string{
		"Label":        sec.Label,
		"Description":  sec.Description,
		"Guidance":     sec.Guidance,
		"Tips":         strings.TrimRight(tips.String(), "\n"),
		"Examples":     examples.String(),
		"Current":      string(currentJSON),
		"Instructions": instructions,
		"Fields":       strings.Join(names, ", "),
	})
}
