// Package host runs the isolated context that holds the rendered document.
// The host application only talks to it through Document calls and bus
// messages.
package host

import (
	"context"
	"encoding/base64"
	"errors"
)

var (
	// ErrCaptureUnavailable is returned by documents that cannot rasterize.
	ErrCaptureUnavailable = errors.New("capture unavailable in this document context")
	// ErrClosed is returned after the host or document has been closed.
	ErrClosed = errors.New("document host closed")
)

// Rect is an element's box in viewport coordinates.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bottom is Top + Height.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Pad grows the rect by p on every side.
func (r Rect) Pad(p float64) Rect {
	return Rect{Top: r.Top - p, Left: r.Left - p, Width: r.Width + 2*p, Height: r.Height + 2*p}
}

// Image is a captured PNG and its pixel dimensions.
type Image struct {
	PNG    []byte
	Width  int
	Height int
}

// DataURL encodes the image as a data: URL.
func (i *Image) DataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(i.PNG)
}

// Document is the isolated rendering context. Implementations must be safe
// for concurrent use.
type Document interface {
	// Load replaces the whole document with markup and re-arms editing.
	Load(ctx context.Context, markup string) error
	// Snapshot serializes the full current document.
	Snapshot(ctx context.Context) (string, error)
	// Blur clears focus and selection.
	Blur(ctx context.Context) error
	// Capture rasterizes the document body at scale times CSS pixels.
	Capture(ctx context.Context, scale float64) (*Image, error)
	// Rect returns the first element matching selector, or nil if none.
	Rect(ctx context.Context, selector string) (*Rect, error)
	// ScrollArea returns the box of the scroll container around the document.
	ScrollArea(ctx context.Context) (*Rect, error)
	// ScrollBy smooth-scrolls the scroll container by dy pixels.
	ScrollBy(ctx context.Context, dy float64) error
	// AwaitFrame blocks until the document's next redraw.
	AwaitFrame(ctx context.Context) error
	// OnEdit registers fn to receive a full snapshot after each user edit.
	OnEdit(fn func(html string))
	Close() error
}
