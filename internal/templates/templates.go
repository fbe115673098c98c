// Package templates provides the catalog of document templates a studio
// session can be opened with.
package templates

import (
	"context"
	"errors"
	"regexp"
)

// ErrNotFound is returned when no template has the requested id.
var ErrNotFound = errors.New("template not found")

// Template is a document template and its catalog metadata.
type Template struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Features    []string `json:"features"`
	Category    string   `json:"category"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	// Markup is the Handlebars source. List leaves it empty.
	Markup string `json:"markup,omitempty"`
}

// Source looks up templates.
type Source interface {
	Get(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context) ([]Template, error)
}

var validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidID reports whether id can name a template.
func ValidID(id string) bool {
	return validID.MatchString(id)
}
