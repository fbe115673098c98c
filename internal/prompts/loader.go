// Package prompts holds the LLM prompt books. Each book is a YAML file of
// named prompts embedded at compile time.
package prompts

import (
	"embed"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var bookFiles embed.FS

// Prompt books.
const (
	EnhanceFile = "enhance.yaml"
	EditingFile = "editing.yaml"
)

// placeholder matches {{.Name}} but not Handlebars {{name}}.
var placeholder = regexp.MustCompile(`\{\{\.([A-Za-z][A-Za-z0-9]*)\}\}`)

type book map[string]string

// books caches parsed books by filename. Values are func() (book, error)
// so each file is parsed once even under concurrent first use.
var books sync.Map

func load(filename string) (book, error) {
	v, _ := books.LoadOrStore(filename, sync.OnceValues(func() (book, error) {
		data, err := bookFiles.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
		}
		var b book
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
		}
		return b, nil
	}))
	return v.(func() (book, error))()
}

// Get returns the prompt named key in filename.
func Get(filename, key string) (string, error) {
	b, err := load(filename)
	if err != nil {
		return "", err
	}
	prompt, ok := b[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// MustGet is Get for prompts required at startup.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Placeholders lists the distinct {{.Name}} placeholders in template in
// order of first use.
func Placeholders(template string) []string {
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(template, -1) {
		if !slices.Contains(names, m[1]) {
			names = append(names, m[1])
		}
	}
	return names
}

// Format replaces {{.Name}} placeholders with values from data. Handlebars
// placeholders such as {{fullName}} are left alone, as are names missing
// from data. Values are inserted verbatim and never re-scanned.
func Format(template string, data map[string]string) string {
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		if v, ok := data[m[3:len(m)-2]]; ok {
			return v
		}
		return m
	})
}

// Render loads a prompt and fills it. Every placeholder must have a value.
func Render(filename, key string, data map[string]string) (string, error) {
	template, err := Get(filename, key)
	if err != nil {
		return "", err
	}
	var missing []string
	for _, name := range Placeholders(template) {
		if _, ok := data[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %s/%s: no value for %s", filename, key, strings.Join(missing, ", "))
	}
	return Format(template, data), nil
}

// List returns the prompt keys in a book, sorted.
func List(filename string) ([]string, error) {
	b, err := load(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// ClearCache forgets parsed books.
func ClearCache() {
	books.Clear()
}
