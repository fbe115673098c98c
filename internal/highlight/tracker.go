// Package highlight tracks the on-screen geometry of the section under review
// inside the hosted document.
package highlight

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jonathan/profile-studio/internal/host"
)

const (
	// Padding is added on every side of the target element's rect.
	Padding = 8
	// EdgeMargin is how close to the scroll area's edges an element may sit
	// before ScrollTo moves it.
	EdgeMargin = 20
	// ScrollLead leaves this much room above the element after scrolling.
	ScrollLead = 60
	// DefaultSettle is how long ScrollTo waits for a smooth scroll to finish.
	DefaultSettle = 500 * time.Millisecond
)

// Mode is how the overlay should render a spotlight.
type Mode string

const (
	// ModeDim covers the whole viewport, used when the target is not found.
	ModeDim Mode = "dim"
	// ModeFocus draws a ring around Rect.
	ModeFocus Mode = "focus"
)

// Spotlight is the published highlight state. A nil Rect means the target
// selector matched nothing.
type Spotlight struct {
	Rect    *host.Rect `json:"rect"`
	Visible bool       `json:"visible"`
}

// Mode reports how the overlay renders s.
func (s Spotlight) Mode() Mode {
	if s.Rect == nil {
		return ModeDim
	}
	return ModeFocus
}

func (s Spotlight) equal(o Spotlight) bool {
	if s.Visible != o.Visible {
		return false
	}
	if s.Rect == nil || o.Rect == nil {
		return s.Rect == nil && o.Rect == nil
	}
	return *s.Rect == *o.Rect
}

// Options configures a Tracker.
type Options struct {
	// Settle bounds the wait after a smooth scroll before recomputing.
	Settle time.Duration
	// OnChange receives every distinct spotlight. It is called without the
	// tracker's lock held.
	OnChange func(Spotlight)
}

// Tracker recomputes the target's rect on every redraw of the document.
type Tracker struct {
	doc      host.Document
	settle   time.Duration
	onChange func(Spotlight)

	mu       sync.Mutex
	selector string
	current  Spotlight
}

// New creates a tracker for doc. The spotlight starts hidden with no target.
func New(doc host.Document, opts Options) *Tracker {
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	return &Tracker{doc: doc, settle: opts.Settle, onChange: opts.OnChange}
}

// SetTarget changes the tracked selector. The next tick picks it up.
func (t *Tracker) SetTarget(selector string) {
	t.mu.Lock()
	t.selector = selector
	t.mu.Unlock()
}

// Target returns the tracked selector.
func (t *Tracker) Target() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selector
}

// Hide fades the spotlight out while keeping its geometry.
func (t *Tracker) Hide() { t.setVisible(false) }

// Show fades the spotlight back in.
func (t *Tracker) Show() { t.setVisible(true) }

func (t *Tracker) setVisible(v bool) {
	t.mu.Lock()
	next := t.current
	next.Visible = v
	t.mu.Unlock()
	t.publish(next)
}

// Current returns the last published spotlight.
func (t *Tracker) Current() Spotlight {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Compute measures the target once and publishes the result. A missing
// element is not an error: the spotlight's Rect becomes nil.
func (t *Tracker) Compute(ctx context.Context) (*host.Rect, error) {
	selector := t.Target()
	var rect *host.Rect
	if selector != "" {
		r, err := t.doc.Rect(ctx, selector)
		if err != nil {
			return nil, err
		}
		if r != nil {
			padded := r.Pad(Padding)
			rect = &padded
		}
	}

	t.mu.Lock()
	if selector != t.selector {
		// Target changed while measuring; the next tick will catch up.
		t.mu.Unlock()
		return rect, nil
	}
	next := t.current
	next.Rect = rect
	t.mu.Unlock()
	t.publish(next)
	return rect, nil
}

func (t *Tracker) publish(next Spotlight) {
	t.mu.Lock()
	if t.current.equal(next) {
		t.mu.Unlock()
		return
	}
	t.current = next
	fn := t.onChange
	t.mu.Unlock()
	if fn != nil {
		fn(next)
	}
}

// Run recomputes the spotlight after every frame until ctx is done or the
// document closes. Measurement errors are logged and the loop continues.
func (t *Tracker) Run(ctx context.Context) error {
	for {
		if err := t.doc.AwaitFrame(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, host.ErrClosed) {
				return nil
			}
			log.Printf("[HIGHLIGHT] frame wait failed: %v", err)
			if !sleep(ctx, t.settle) {
				return ctx.Err()
			}
			continue
		}
		if _, err := t.Compute(ctx); err != nil && ctx.Err() == nil {
			if errors.Is(err, host.ErrClosed) {
				return nil
			}
			log.Printf("[HIGHLIGHT] measuring %q failed: %v", t.Target(), err)
		}
	}
}

// ScrollTo brings the element matching scrollSelector into the scroll area
// when it is not already comfortably visible, then recomputes the spotlight
// once the scroll has had time to settle. It is a no-op when the element or
// the scroll area cannot be found.
func (t *Tracker) ScrollTo(ctx context.Context, scrollSelector string) error {
	el, err := t.doc.Rect(ctx, scrollSelector)
	if err != nil {
		return err
	}
	area, err := t.doc.ScrollArea(ctx)
	if err != nil {
		return err
	}
	if el == nil || area == nil {
		return nil
	}

	if el.Top < area.Top+EdgeMargin || el.Bottom() > area.Bottom()-EdgeMargin {
		if err := t.doc.ScrollBy(ctx, el.Top-area.Top-ScrollLead); err != nil {
			return err
		}
	}

	if !sleep(ctx, t.settle) {
		return ctx.Err()
	}
	_, err = t.Compute(ctx)
	return err
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
