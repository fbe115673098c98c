// Package sections holds the fixed list of review sections walked by the
// guided review. Sections are declared in an embedded YAML file and are
// immutable once loaded.
package sections

import (
	"bytes"
	_ "embed"
	"fmt"
	"reflect"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/profile-studio/internal/profile"
)

//go:embed sections.yaml
var defaultYAML []byte

// Check is one has-data test against a profile path.
type Check struct {
	Field     string `yaml:"field" json:"field"`
	MinLength int    `yaml:"min_length,omitempty" json:"min_length,omitempty"`
}

// Rule decides whether a section already has content. A rule with both
// lists set requires all of All and at least one of Any.
type Rule struct {
	Any []Check `yaml:"any,omitempty" json:"any,omitempty"`
	All []Check `yaml:"all,omitempty" json:"all,omitempty"`
}

// Section is one step of the guided review.
type Section struct {
	ID             string          `yaml:"id" json:"id"`
	Label          string          `yaml:"label" json:"label"`
	Description    string          `yaml:"description" json:"description"`
	EmptyPrompt    string          `yaml:"empty_prompt" json:"empty_prompt"`
	Selector       string          `yaml:"selector" json:"selector"`
	ScrollSelector string          `yaml:"scroll_selector,omitempty" json:"scroll_selector,omitempty"`
	Fields         []profile.Field `yaml:"fields" json:"fields"`
	HasDataRule    Rule            `yaml:"has_data" json:"has_data"`
	Guidance       string          `yaml:"guidance" json:"guidance"`
	Tips           []string        `yaml:"tips" json:"tips"`
	Examples       []string        `yaml:"examples,omitempty" json:"examples,omitempty"`
}

// ScrollTarget is the selector brought into view for this section.
func (s Section) ScrollTarget() string {
	if s.ScrollSelector != "" {
		return s.ScrollSelector
	}
	return s.Selector
}

// HasData reports whether d already carries content for the section.
func (s Section) HasData(d profile.Data) bool {
	for _, c := range s.HasDataRule.All {
		if !c.passes(d) {
			return false
		}
	}
	if len(s.HasDataRule.Any) == 0 {
		return len(s.HasDataRule.All) > 0
	}
	for _, c := range s.HasDataRule.Any {
		if c.passes(d) {
			return true
		}
	}
	return false
}

func (c Check) passes(d profile.Data) bool {
	v, ok := d.Lookup(c.Field)
	if !ok || v == nil {
		return false
	}
	need := c.MinLength
	if need <= 0 {
		need = 1
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return utf8.RuneCountInString(rv.String()) >= need
	case reflect.Slice, reflect.Map:
		return rv.Len() >= need
	case reflect.Bool:
		return rv.Bool()
	default:
		return !rv.IsZero()
	}
}

// Status is the has-data state of one section.
type Status struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	HasData bool   `json:"has_data"`
}

// Registry is an ordered, read-only list of sections.
type Registry struct {
	sections []Section
	index    map[string]int
}

// Parse decodes and validates a YAML section list.
func Parse(data []byte) (*Registry, error) {
	var list []Section
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to parse sections: %w", err)
	}
	return newRegistry(list)
}

// Default returns the built-in sections. It panics if the embedded file is
// invalid, which is a build defect.
func Default() *Registry {
	r, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded sections: %v", err))
	}
	return r
}

func newRegistry(list []Section) (*Registry, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("section list is empty")
	}
	probe := profile.Default()
	r := &Registry{index: make(map[string]int, len(list))}
	for i, s := range list {
		if s.ID == "" || s.Selector == "" {
			return nil, fmt.Errorf("section %d: id and selector are required", i)
		}
		if _, dup := r.index[s.ID]; dup {
			return nil, fmt.Errorf("duplicate section id %q", s.ID)
		}
		if len(s.Fields) == 0 {
			return nil, fmt.Errorf("section %q has no fields", s.ID)
		}
		for _, f := range s.Fields {
			if !profile.KnownField(f) {
				return nil, fmt.Errorf("section %q references unknown field %q", s.ID, f)
			}
		}
		for _, c := range append(append([]Check{}, s.HasDataRule.Any...), s.HasDataRule.All...) {
			if _, ok := probe.Lookup(c.Field); !ok {
				return nil, fmt.Errorf("section %q has_data references unknown path %q", s.ID, c.Field)
			}
		}
		r.index[s.ID] = i
		r.sections = append(r.sections, s)
	}
	return r, nil
}

// Len is the number of sections.
func (r *Registry) Len() int { return len(r.sections) }

// At returns the section at position i.
func (r *Registry) At(i int) Section { return r.sections[i] }

// All returns the sections in order.
func (r *Registry) All() []Section {
	return append([]Section(nil), r.sections...)
}

// Get looks a section up by id.
func (r *Registry) Get(id string) (Section, bool) {
	i, ok := r.index[id]
	if !ok {
		return Section{}, false
	}
	return r.sections[i], true
}

// Subset returns a registry containing only ids, in registry order.
func (r *Registry) Subset(ids ...string) (*Registry, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := r.index[id]; !ok {
			return nil, fmt.Errorf("unknown section %q", id)
		}
		want[id] = true
	}
	var list []Section
	for _, s := range r.sections {
		if want[s.ID] {
			list = append(list, s)
		}
	}
	return newRegistry(list)
}

// Progress evaluates HasData for every section against d.
func (r *Registry) Progress(d profile.Data) []Status {
	out := make([]Status, 0, len(r.sections))
	for _, s := range r.sections {
		out = append(out, Status{ID: s.ID, Label: s.Label, HasData: s.HasData(d)})
	}
	return out
}
