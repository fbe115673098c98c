// Package rendering compiles Handlebars document templates against profile data.
package rendering

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aymerick/raymond"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of parsed templates kept in memory.
const DefaultCacheSize = 64

func init() {
	raymond.RegisterHelper("join", func(items any, sep string) string {
		var parts []string
		switch v := items.(type) {
		case []string:
			parts = v
		case []any:
			for _, item := range v {
				parts = append(parts, raymond.Str(item))
			}
		}
		return strings.Join(parts, sep)
	})
}

// Renderer turns a template plus data into markup. Rendering is pure: the
// same template and data always produce the same output. Parsed templates
// are cached by content hash, so a Renderer is safe for concurrent use.
type Renderer struct {
	cache *lru.Cache[string, *raymond.Template]
}

// NewRenderer creates a renderer caching up to size parsed templates.
func NewRenderer(size int) (*Renderer, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *raymond.Template](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create template cache: %w", err)
	}
	return &Renderer{cache: cache}, nil
}

// Render executes source against data. Placeholders for missing fields
// render as empty text. Malformed syntax returns a *TemplateError.
func (r *Renderer) Render(source string, data map[string]any) (string, error) {
	return r.render(Hash(source), source, data)
}

// RenderNamed is Render with id used as the reference in errors and logs.
func (r *Renderer) RenderNamed(id, source string, data map[string]any) (string, error) {
	return r.render(id, source, data)
}

// RenderFile reads a template from disk and renders it.
func (r *Renderer) RenderFile(path string, data map[string]any) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &TemplateError{Ref: path, Message: "template file not found", Cause: err}
		}
		return "", &TemplateError{Ref: path, Message: "failed to read template file", Cause: err}
	}
	return r.render(path, string(content), data)
}

func (r *Renderer) render(ref, source string, data map[string]any) (string, error) {
	tpl, err := r.parse(ref, source)
	if err != nil {
		log.Printf("[RENDER] %v", err)
		return "", err
	}
	if data == nil {
		data = map[string]any{}
	}
	out, err := tpl.Exec(data)
	if err != nil {
		return "", &RenderError{Ref: ref, Message: "failed to execute template", Cause: err}
	}
	return out, nil
}

func (r *Renderer) parse(ref, source string) (*raymond.Template, error) {
	key := Hash(source)
	if tpl, ok := r.cache.Get(key); ok {
		return tpl, nil
	}
	tpl, err := raymond.Parse(source)
	if err != nil {
		return nil, &TemplateError{Ref: ref, Message: "failed to parse template", Cause: err}
	}
	r.cache.Add(key, tpl)
	return tpl, nil
}

// Check parses source without executing it.
func (r *Renderer) Check(ref, source string) error {
	_, err := r.parse(ref, source)
	return err
}

// Invalidate drops every cached template.
func (r *Renderer) Invalidate() {
	r.cache.Purge()
}

// Cached is the number of parsed templates currently held.
func (r *Renderer) Cached() int {
	return r.cache.Len()
}

// Hash returns the short content hash used to identify anonymous templates.
func Hash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:8])
}
