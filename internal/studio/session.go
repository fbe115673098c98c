// Package studio assembles a studio session: profile store, hosted document,
// live preview, highlight tracker and guided review, wired to one bus.
package studio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jonathan/profile-studio/internal/bus"
	"github.com/jonathan/profile-studio/internal/enhance"
	"github.com/jonathan/profile-studio/internal/highlight"
	"github.com/jonathan/profile-studio/internal/host"
	"github.com/jonathan/profile-studio/internal/metrics"
	"github.com/jonathan/profile-studio/internal/preview"
	"github.com/jonathan/profile-studio/internal/profile"
	"github.com/jonathan/profile-studio/internal/rendering"
	"github.com/jonathan/profile-studio/internal/review"
	"github.com/jonathan/profile-studio/internal/sections"
	"github.com/jonathan/profile-studio/internal/templates"
)

var (
	// ErrEditorUnavailable is returned when no template editor is configured.
	ErrEditorUnavailable = errors.New("template editing is not configured")
	// ErrImporterUnavailable is returned when no profile importer is configured.
	ErrImporterUnavailable = errors.New("profile import is not configured")
)

// ImportError reports profile data rejected by validation.
type ImportError struct {
	Message string
	Cause   error
}

func (e *ImportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ImportError) Unwrap() error {
	return e.Cause
}

// TemplateEditor rewrites template markup from an instruction.
type TemplateEditor interface {
	Modify(ctx context.Context, html, instruction string) (string, error)
}

// ProfileImporter extracts profile fields from an export document.
type ProfileImporter interface {
	Import(ctx context.Context, export string) (profile.Partial, error)
}

// Deps are the collaborators shared by every session.
type Deps struct {
	Templates templates.Source
	Renderer  *rendering.Renderer
	Sections  *sections.Registry
	Documents DocumentFactory
	Export    host.ExportFunc
	// ExportTimeout bounds one export; zero uses the host default.
	ExportTimeout time.Duration
	Gateway       enhance.Gateway
	Editor        TemplateEditor
	Importer      ProfileImporter
	Metrics       *metrics.Metrics
	Timing        review.Timing
}

// Session is one user's studio.
type Session struct {
	id       string
	template templates.Template
	created  time.Time
	deps     Deps

	store   *profile.Store
	bus     *bus.Bus
	host    *host.Host
	preview *preview.Preview
	tracker *highlight.Tracker
	review  *review.Controller
	events  *broadcaster

	dirty     chan struct{}
	cancel    context.CancelFunc
	unsubs    []func()
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// View summarizes a session.
type View struct {
	ID       string             `json:"id"`
	Template templates.Template `json:"template"`
	Created  time.Time          `json:"created_at"`
	Reloads  uint64             `json:"reloads"`
	Review   review.View        `json:"review"`
}

func openSession(ctx context.Context, id string, tpl *templates.Template, initial profile.Data, deps Deps) (*Session, error) {
	doc, err := deps.Documents(ctx, tpl.Width, tpl.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}

	b := bus.New()
	h := host.New(doc, b, host.Options{Export: deps.Export, ExportTimeout: deps.ExportTimeout})
	s := &Session{
		id:       id,
		template: *tpl,
		created:  time.Now(),
		deps:     deps,
		store:    profile.NewStore(initial),
		bus:      b,
		host:     h,
		events:   newBroadcaster(),
		dirty:    make(chan struct{}, 1),
	}
	s.template.Markup = ""
	s.preview = preview.New(deps.Renderer, h, b, preview.Options{Observer: deps.Metrics})

	if err := s.preview.SetTemplate(tpl.ID, tpl.Markup); err != nil {
		s.preview.Close()
		_ = h.Close()
		return nil, err
	}

	s.unsubs = append(s.unsubs, b.Subscribe(s.relay))
	s.tracker = highlight.New(doc, highlight.Options{
		OnChange: func(sp highlight.Spotlight) {
			s.events.publish(Event{Name: EventSpotlight, Data: sp})
		},
	})

	var enhancer review.Enhancer
	if deps.Gateway != nil {
		enhancer = deps.Metrics.Gateway(deps.Gateway)
	}
	s.review = review.New(deps.Sections, s.store, review.Options{
		Timing:    deps.Timing,
		Highlight: s.tracker,
		Enhancer:  enhancer,
		OnChange: func(v review.View) {
			s.events.publish(Event{Name: EventReview, Data: v})
		},
	})

	// Subscribers run under the review lock; only signal here.
	s.unsubs = append(s.unsubs, s.store.Subscribe(func(profile.Data) {
		select {
		case s.dirty <- struct{}{}:
		default:
		}
	}))

	if err := s.preview.Sync(ctx, s.store.Get()); err != nil {
		s.Close()
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.renderLoop(runCtx)
	}()
	go func() {
		defer s.wg.Done()
		if err := s.tracker.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[STUDIO] Session %s highlight stopped: %v", s.id, err)
		}
	}()

	s.review.Start()
	log.Printf("[STUDIO] Session %s opened with template %s", s.id, tpl.ID)
	return s, nil
}

// relay forwards bus traffic to subscribers in its wire form.
func (s *Session) relay(m bus.Message) {
	raw, err := bus.Marshal(m)
	if err != nil {
		log.Printf("[STUDIO] Failed to encode %s: %v", m.Kind(), err)
		return
	}
	s.events.publish(Event{Name: EventMessage, Data: json.RawMessage(raw)})
}

func (s *Session) renderLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.dirty:
		}
		data := s.store.Get()
		s.events.publish(Event{Name: EventProfile, Data: data})
		if err := s.preview.Sync(ctx, data); err != nil && ctx.Err() == nil {
			log.Printf("[STUDIO] Session %s preview sync failed: %v", s.id, err)
			s.events.publish(Event{Name: EventError, Data: map[string]string{"error": err.Error()}})
		}
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Template returns the template metadata the session was opened with.
func (s *Session) Template() templates.Template { return s.template }

// Profile returns the current profile.
func (s *Session) Profile() profile.Data { return s.store.Get() }

// Review returns the guided review controller.
func (s *Session) Review() *review.Controller { return s.review }

// Preview returns the live preview.
func (s *Session) Preview() *preview.Preview { return s.preview }

// View summarizes the session.
func (s *Session) View() View {
	return View{
		ID:       s.id,
		Template: s.template,
		Created:  s.created,
		Reloads:  s.preview.Reloads(),
		Review:   s.review.View(),
	}
}

// Import validates p and merges it into the profile.
func (s *Session) Import(p profile.Partial) error {
	if err := p.Validate(); err != nil {
		return &ImportError{Message: "invalid profile import", Cause: err}
	}
	s.store.Merge(p)
	return nil
}

// ImportExport extracts fields from a LinkedIn export and merges them.
func (s *Session) ImportExport(ctx context.Context, export string) (profile.Partial, error) {
	if s.deps.Importer == nil {
		return profile.Partial{}, ErrImporterUnavailable
	}
	p, err := s.deps.Importer.Import(ctx, export)
	if err != nil {
		return profile.Partial{}, err
	}
	s.store.Merge(p)
	return p, nil
}

// EditTemplate asks the editor to rewrite the current document source and
// loads the result.
func (s *Session) EditTemplate(ctx context.Context, instruction string) (string, error) {
	if s.deps.Editor == nil {
		return "", ErrEditorUnavailable
	}
	out, err := s.deps.Editor.Modify(ctx, s.preview.Source(), instruction)
	if err != nil {
		return "", err
	}
	if err := s.preview.SetTemplate(s.template.ID, out); err != nil {
		return "", err
	}
	if err := s.preview.Sync(ctx, s.store.Get()); err != nil {
		return "", err
	}
	return out, nil
}

// ApplyEdit replays an edit made in a client copy of the document.
func (s *Session) ApplyEdit(ctx context.Context, html string) error {
	return s.preview.ApplyEdit(ctx, html)
}

// Download produces the document in format.
func (s *Session) Download(ctx context.Context, format bus.Format, fileName string) (*preview.Download, error) {
	return s.preview.Download(ctx, format, fileName)
}

// Flush recompiles the preview against the current profile now.
func (s *Session) Flush(ctx context.Context) error {
	return s.preview.Sync(ctx, s.store.Get())
}

// Subscribe streams session events until cancel is called or the session
// closes.
func (s *Session) Subscribe() (<-chan Event, func()) {
	return s.events.subscribe()
}

// Close stops the session and releases its document.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		s.review.Close()
		for _, unsub := range s.unsubs {
			unsub()
		}
		s.preview.Close()
		if err := s.host.Close(); err != nil {
			log.Printf("[STUDIO] Session %s document close: %v", s.id, err)
		}
		s.wg.Wait()
		s.events.close()
		log.Printf("[STUDIO] Session %s closed", s.id)
	})
}
