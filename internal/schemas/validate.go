// Package schemas validates client documents against JSON Schemas.
package schemas

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/profile-studio/schemas"
)

// rootField names the document itself in a FieldError.
const rootField = "(root)"

// FieldError is one schema violation.
type FieldError struct {
	Field   string // dotted path, "(root)" for the document
	Rule    string // keyword that failed, e.g. "required" or "invalid_type"
	Message string
}

// ValidationError lists every violation found in a document, ordered by
// field path.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	parts := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return fmt.Sprintf("validation failed (%d): %s", len(ve.Errors), strings.Join(parts, "; "))
}

// SchemaLoadError reports a schema that could not be read or compiled.
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Schema is a compiled JSON Schema. It is safe for concurrent use.
type Schema struct {
	name     string
	compiled *gojsonschema.Schema
}

// Compile parses src as a JSON Schema. name only labels errors.
func Compile(name string, src []byte) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(src))
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "failed to compile", Cause: err}
	}
	return &Schema{name: name, compiled: compiled}, nil
}

// Load reads and compiles the schema file at path.
func Load(path string) (*Schema, error) {
	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &SchemaLoadError{Path: path, Message: "schema file not found"}
	}
	if err != nil {
		return nil, &SchemaLoadError{Path: path, Message: "failed to read", Cause: err}
	}
	return Compile(path, src)
}

// Validate checks doc. Malformed JSON is reported as a violation at the root.
func (s *Schema) Validate(doc []byte) error {
	result, err := s.compiled.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return &ValidationError{Errors: []FieldError{{
			Field:   rootField,
			Rule:    "syntax",
			Message: fmt.Sprintf("invalid JSON: %v", err),
		}}}
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = rootField
		}
		verr.Errors = append(verr.Errors, FieldError{
			Field:   field,
			Rule:    desc.Type(),
			Message: desc.Description(),
		})
	}
	sort.SliceStable(verr.Errors, func(i, j int) bool {
		return verr.Errors[i].Field < verr.Errors[j].Field
	})
	return verr
}

// ValidateFile validates the JSON document at docPath against the schema
// file at schemaPath.
func ValidateFile(schemaPath, docPath string) error {
	schema, err := Load(schemaPath)
	if err != nil {
		return err
	}
	doc, err := os.ReadFile(docPath)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("JSON file not found: %s", docPath)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", docPath, err)
	}
	return schema.Validate(doc)
}

var profileSchema = sync.OnceValues(func() (*Schema, error) {
	return Compile("profile.schema.json", []byte(schemas.Profile))
})

// ValidateProfile validates a profile import document against the embedded
// profile schema.
func ValidateProfile(doc []byte) error {
	schema, err := profileSchema()
	if err != nil {
		return err
	}
	return schema.Validate(doc)
}

// Locate finds rel relative to the working directory or one of its
// parents, so commands and tests resolve repo paths from any package
// directory. It returns "" when nothing matches.
func Locate(rel string) string {
	if filepath.IsAbs(rel) {
		if _, err := os.Stat(rel); err == nil {
			return rel
		}
		return ""
	}
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, rel)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
