package studio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jonathan/profile-studio/internal/profile"
	"github.com/jonathan/profile-studio/internal/rendering"
	"github.com/jonathan/profile-studio/internal/sections"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Defaults for ManagerOptions.
const (
	DefaultMaxSessions = 32
	DefaultIdleTTL     = 30 * time.Minute
)

// ManagerOptions bounds the number and lifetime of sessions.
type ManagerOptions struct {
	MaxSessions int
	// IdleTTL closes sessions that have not been touched for this long.
	IdleTTL time.Duration
}

// Manager owns the open sessions. The least recently used session is closed
// when the limit is reached.
type Manager struct {
	deps     Deps
	sessions *expirable.LRU[string, *Session]
}

// NewManager creates a manager. Missing deps get in-process defaults.
func NewManager(deps Deps, opts ManagerOptions) (*Manager, error) {
	if deps.Templates == nil {
		return nil, fmt.Errorf("template source is required")
	}
	if deps.Renderer == nil {
		r, err := rendering.NewRenderer(rendering.DefaultCacheSize)
		if err != nil {
			return nil, err
		}
		deps.Renderer = r
	}
	if deps.Sections == nil {
		deps.Sections = sections.Default()
	}
	if deps.Documents == nil {
		deps.Documents = MemoryDocuments()
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}

	m := &Manager{deps: deps}
	m.sessions = expirable.NewLRU[string, *Session](opts.MaxSessions, func(id string, s *Session) {
		// Eviction runs under the cache lock; closing waits on the document.
		go func() {
			s.Close()
			m.deps.Metrics.SessionClosed()
		}()
	}, opts.IdleTTL)
	return m, nil
}

// Create opens a session on templateID. initial, when given, is validated
// and applied over the default profile.
func (m *Manager) Create(ctx context.Context, templateID string, initial *profile.Partial) (*Session, error) {
	tpl, err := m.deps.Templates.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}
	data := profile.Default()
	if initial != nil {
		if err := initial.Validate(); err != nil {
			return nil, &ImportError{Message: "invalid initial profile", Cause: err}
		}
		data = data.With(*initial)
	}

	s, err := openSession(ctx, uuid.NewString(), tpl, data, m.deps)
	if err != nil {
		return nil, err
	}
	m.sessions.Add(s.ID(), s)
	m.deps.Metrics.SessionOpened()
	return s, nil
}

// Get returns a session and marks it as used.
func (m *Manager) Get(id string) (*Session, error) {
	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	// Re-adding restarts the idle timer.
	m.sessions.Add(id, s)
	return s, nil
}

// Delete closes a session.
func (m *Manager) Delete(id string) error {
	if !m.sessions.Remove(id) {
		return ErrSessionNotFound
	}
	log.Printf("[STUDIO] Session %s deleted", id)
	return nil
}

// Len is the number of open sessions.
func (m *Manager) Len() int {
	return m.sessions.Len()
}

// Deps returns the shared collaborators.
func (m *Manager) Deps() Deps {
	return m.deps
}

// Close closes every session.
func (m *Manager) Close() {
	for _, id := range m.sessions.Keys() {
		if s, ok := m.sessions.Peek(id); ok {
			m.sessions.Remove(id)
			s.Close()
		}
	}
}
