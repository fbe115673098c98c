package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jonathan/profile-studio/internal/db"
)

// ManifestFile optionally describes the templates of a directory.
const ManifestFile = "templates.json"

// IndexFile is the markup file inside each template directory.
const IndexFile = "index.html"

// DirSource serves templates laid out as <dir>/<id>/index.html. Metadata
// comes from <dir>/templates.json when present. Markup is cached until the
// watcher reports a change.
type DirSource struct {
	dir string

	mu       sync.RWMutex
	manifest map[string]Template
	markup   map[string]string
}

// NewDirSource creates a source rooted at dir.
func NewDirSource(dir string) (*DirSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open templates dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templates path %s is not a directory", dir)
	}
	s := &DirSource{dir: dir, markup: make(map[string]string)}
	if err := s.loadManifest(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the root directory.
func (s *DirSource) Dir() string { return s.dir }

func (s *DirSource) loadManifest() error {
	manifest := make(map[string]Template)
	data, err := os.ReadFile(filepath.Join(s.dir, ManifestFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("failed to read %s: %w", ManifestFile, err)
	default:
		var entries []Template
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("failed to parse %s: %w", ManifestFile, err)
		}
		for _, e := range entries {
			if ValidID(e.ID) {
				manifest[e.ID] = e
			}
		}
	}
	s.mu.Lock()
	s.manifest = manifest
	s.mu.Unlock()
	return nil
}

// Get reads the template id.
func (s *DirSource) Get(_ context.Context, id string) (*Template, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	t := s.describe(id)

	s.mu.RLock()
	markup, ok := s.markup[id]
	s.mu.RUnlock()
	if !ok {
		data, err := os.ReadFile(filepath.Join(s.dir, id, IndexFile))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", id, err)
		}
		markup = string(data)
		s.mu.Lock()
		s.markup[id] = markup
		s.mu.Unlock()
	}
	t.Markup = markup
	return &t, nil
}

// List returns every template directory that has an index file, by name.
func (s *DirSource) List(_ context.Context) ([]Template, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	var out []Template
	for _, e := range entries {
		if !e.IsDir() || !ValidID(e.Name()) {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.dir, e.Name(), IndexFile)); err != nil {
			continue
		}
		out = append(out, s.describe(e.Name()))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// describe returns the manifest entry for id with defaults applied.
func (s *DirSource) describe(id string) Template {
	s.mu.RLock()
	t, ok := s.manifest[id]
	s.mu.RUnlock()
	if !ok {
		t = Template{ID: id}
	}
	rec := db.TemplateRecord{
		ID: id, Name: t.Name, Description: t.Description, Thumbnail: t.Thumbnail,
		Features: t.Features, Category: t.Category, Width: t.Width, Height: t.Height,
	}
	rec.Normalize()
	return fromRecord(rec)
}

// forget drops cached markup for id, or everything when id is empty.
func (s *DirSource) forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		s.markup = make(map[string]string)
		return
	}
	delete(s.markup, id)
}

func (s *DirSource) reloadManifest() {
	if err := s.loadManifest(); err != nil {
		log.Printf("[TEMPLATES] Keeping previous manifest: %v", err)
	}
}
