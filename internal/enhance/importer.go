package enhance

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/profile-studio/internal/llm"
	"github.com/jonathan/profile-studio/internal/profile"
)

// maxImportBytes bounds the export text sent to the model.
const maxImportBytes = 200_000

// Importer maps a LinkedIn data export onto profile fields.
type Importer struct {
	client llm.Client
	schema llm.ExtractionSchema
}

// NewImporter creates an importer using the LinkedIn profile schema.
func NewImporter(client llm.Client) *Importer {
	return &Importer{client: client, schema: llm.ProfileImportSchema()}
}

// Import extracts profile fields from export. Fields the model leaves out
// are absent from the result.
func (i *Importer) Import(ctx context.Context, export string) (profile.Partial, error) {
	export = strings.TrimSpace(export)
	if export == "" {
		return profile.Partial{}, &InputError{Field: "export", Message: "must not be empty"}
	}
	if len(export) > maxImportBytes {
		return profile.Partial{}, &InputError{Field: "export", Message: fmt.Sprintf("larger than %d bytes", maxImportBytes)}
	}

	log.Printf("[ENHANCE] Importing %s (%d bytes)", i.schema.Name, len(export))
	reply, err := i.client.GenerateJSON(ctx, llm.Request{
		Prompt: llm.BuildExtractionPrompt(i.schema, export),
		Tier:   llm.TierLite,
	})
	if err != nil {
		return profile.Partial{}, fmt.Errorf("failed to import profile: %w", err)
	}
	return DecodePartial(reply)
}
