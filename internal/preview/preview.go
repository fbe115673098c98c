// Package preview keeps the hosted document in step with the template and
// profile data, and turns export results into downloadable files.
package preview

import (
	"context"
	"log"
	"sync"

	"github.com/jonathan/profile-studio/internal/bus"
	"github.com/jonathan/profile-studio/internal/host"
	"github.com/jonathan/profile-studio/internal/profile"
	"github.com/jonathan/profile-studio/internal/rendering"
)

// Observer receives preview events.
type Observer interface {
	Reloaded()
	Downloaded(format string, err error)
}

// Options configures a Preview.
type Options struct {
	Observer Observer
}

// Preview compiles the current template against profile data and loads the
// result into the host. It skips the reload when nothing would change.
type Preview struct {
	renderer *rendering.Renderer
	host     *host.Host
	bus      *bus.Bus
	observer Observer

	// syncMu serializes compile+load so loads reach the host in order.
	syncMu sync.Mutex

	mu           sync.Mutex
	ref          string
	source       string
	lastSent     string
	lastReceived string
	current      string
	reloads      uint64
	exporting    bool

	unsub func()
}

// New creates a preview driving h. HTML_UPDATE messages on b make the edited
// document the new template source.
func New(renderer *rendering.Renderer, h *host.Host, b *bus.Bus, opts Options) *Preview {
	p := &Preview{
		renderer: renderer,
		host:     h,
		bus:      b,
		observer: opts.Observer,
	}
	p.unsub = b.Subscribe(func(m bus.Message) {
		if u, ok := m.(bus.HTMLUpdate); ok {
			p.received(u.HTML)
		}
	}, bus.KindHTMLUpdate)
	return p
}

func (p *Preview) received(html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastReceived = html
	p.source = html
	p.current = html
}

// SetTemplate replaces the template source. ref names it in errors. The
// next Sync compiles it.
func (p *Preview) SetTemplate(ref, source string) error {
	if err := p.renderer.Check(ref, source); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ref = ref
	p.source = source
	return nil
}

// Source returns the current template source.
func (p *Preview) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

// Sync compiles the template against data and loads it into the host. The
// load is skipped when the source is the document's own last snapshot or
// when the compiled markup equals what was last sent. A template error
// leaves the hosted document untouched.
func (p *Preview) Sync(ctx context.Context, data profile.Data) error {
	p.syncMu.Lock()
	defer p.syncMu.Unlock()

	p.mu.Lock()
	ref, source, lastSent, lastReceived := p.ref, p.source, p.lastSent, p.lastReceived
	p.mu.Unlock()

	if source == "" {
		return ErrNoTemplate
	}
	if source == lastReceived {
		return nil
	}
	compiled, err := p.renderer.RenderNamed(ref, source, data.DisplayData())
	if err != nil {
		return err
	}
	if compiled == lastSent {
		return nil
	}
	if err := p.host.Load(ctx, compiled); err != nil {
		return err
	}

	p.mu.Lock()
	p.lastSent = compiled
	p.current = compiled
	p.reloads++
	n := p.reloads
	p.mu.Unlock()

	log.Printf("[PREVIEW] Reloaded document (%d bytes, reload #%d)", len(compiled), n)
	if p.observer != nil {
		p.observer.Reloaded()
	}
	return nil
}

// ApplyEdit replays an edit made in a client copy of the document.
func (p *Preview) ApplyEdit(ctx context.Context, html string) error {
	return p.host.ApplyEdit(ctx, html)
}

// Markup returns the markup currently shown by the hosted document.
func (p *Preview) Markup() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Reloads counts the loads performed by Sync.
func (p *Preview) Reloads() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloads
}

// Close stops listening for document edits. The host is owned by the caller.
func (p *Preview) Close() {
	p.unsub()
}
