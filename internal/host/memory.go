package host

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// frameInterval approximates a 60Hz redraw for documents without a renderer.
const frameInterval = 16 * time.Millisecond

// MemoryDocument keeps the document as parsed markup with no layout engine.
// It is used when no browser is available: geometry is never found and
// capture fails with ErrCaptureUnavailable.
type MemoryDocument struct {
	mu     sync.Mutex
	doc    *goquery.Document
	onEdit func(string)
	scroll float64
	closed bool
}

// NewMemoryDocument creates an empty in-process document.
func NewMemoryDocument() *MemoryDocument {
	d := &MemoryDocument{}
	d.doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	return d
}

func (d *MemoryDocument) Load(ctx context.Context, markup string) error {
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.doc = parsed
	d.scroll = 0
	return nil
}

func (d *MemoryDocument) Snapshot(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return "", ErrClosed
	}
	return goquery.OuterHtml(d.doc.Selection)
}

func (d *MemoryDocument) Blur(ctx context.Context) error { return nil }

func (d *MemoryDocument) Capture(ctx context.Context, scale float64) (*Image, error) {
	return nil, ErrCaptureUnavailable
}

func (d *MemoryDocument) Rect(ctx context.Context, selector string) (*Rect, error) {
	return nil, nil
}

func (d *MemoryDocument) ScrollArea(ctx context.Context) (*Rect, error) {
	return nil, nil
}

func (d *MemoryDocument) ScrollBy(ctx context.Context, dy float64) error {
	d.mu.Lock()
	d.scroll += dy
	d.mu.Unlock()
	return nil
}

func (d *MemoryDocument) AwaitFrame(ctx context.Context) error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return ErrClosed
	}
	t := time.NewTimer(frameInterval)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *MemoryDocument) OnEdit(fn func(html string)) {
	d.mu.Lock()
	d.onEdit = fn
	d.mu.Unlock()
}

// Edit replaces the text of the first leaf element matching selector, the
// same edit a user makes by clicking into the document, and reports the new
// snapshot to the edit callback.
func (d *MemoryDocument) Edit(selector, text string) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		d.mu.Unlock()
		return fmt.Errorf("no element matches %q", selector)
	}
	if sel.Children().Length() > 0 {
		d.mu.Unlock()
		return fmt.Errorf("element %q is not a text leaf", selector)
	}
	sel.SetText(text)
	html, err := goquery.OuterHtml(d.doc.Selection)
	fn := d.onEdit
	d.mu.Unlock()

	if err != nil {
		return err
	}
	if fn != nil {
		fn(html)
	}
	return nil
}

func (d *MemoryDocument) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}
