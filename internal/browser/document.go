// Package browser provides a host.Document backed by a headless Chrome tab.
// Requires Chrome/Chromium to be installed on the system.
package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"math"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/profile-studio/internal/bus"
	"github.com/jonathan/profile-studio/internal/host"
)

const bindingName = "__studioEmit"

// Options configures the headless tab.
type Options struct {
	Headless bool
	ExecPath string
	// Frame is the document size in CSS pixels (A4 at 96dpi by default).
	FrameWidth  int
	FrameHeight int
	// LoadSettle bounds how long Load waits for subresources.
	LoadSettle time.Duration
	Verbose    bool
}

// DefaultOptions returns an A4 portrait frame in a headless browser.
func DefaultOptions() Options {
	return Options{
		Headless:    true,
		FrameWidth:  794,
		FrameHeight: 1123,
		LoadSettle:  5 * time.Second,
	}
}

// Document is a host.Document rendered by Chrome.
type Document struct {
	opts        Options
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc

	events chan string
	mu     sync.Mutex
	onEdit func(string)
	closed bool
	done   chan struct{}

	// screenshot grabs clip from the tab; tests swap it.
	screenshot func(ctx context.Context, clip *page.Viewport) ([]byte, error)
}

var _ host.Document = (*Document)(nil)

// Launch starts a browser, opens the shell page and installs the edit relay.
func Launch(ctx context.Context, opts Options) (*Document, error) {
	if opts.FrameWidth <= 0 || opts.FrameHeight <= 0 {
		opts.FrameWidth, opts.FrameHeight = 794, 1123
	}
	if opts.LoadSettle <= 0 {
		opts.LoadSettle = 5 * time.Second
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(opts.FrameWidth+160, opts.FrameHeight+120),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	// The tab outlives the caller's ctx; only Close ends it.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	d := &Document{
		opts:        opts,
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		events:      make(chan string, 64),
		done:        make(chan struct{}),
		screenshot:  captureScreenshot,
	}

	chromedp.ListenTarget(tabCtx, func(ev any) {
		e, ok := ev.(*runtime.EventBindingCalled)
		if !ok || e.Name != bindingName {
			return
		}
		select {
		case d.events <- e.Payload:
		default:
			log.Printf("[BROWSER] edit relay full, dropping update")
		}
	})

	startCtx, cancel := context.WithTimeout(tabCtx, 30*time.Second)
	defer cancel()
	err := chromedp.Run(startCtx,
		runtime.AddBinding(bindingName),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, shellHTML).Do(ctx)
		}),
		chromedp.Evaluate(fmt.Sprintf(bootstrapJS, bindingName), nil),
		chromedp.Evaluate(fmt.Sprintf("window.__studioResize(%d, %d)", opts.FrameWidth, opts.FrameHeight), nil),
	)
	if err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("browser launch failed: %w", err)
	}

	go d.relay()
	if opts.Verbose {
		log.Printf("[BROWSER] Document ready (%dx%d)", opts.FrameWidth, opts.FrameHeight)
	}
	return d, nil
}

func (d *Document) relay() {
	for {
		select {
		case payload := <-d.events:
			msg, err := bus.Unmarshal([]byte(payload))
			if err != nil {
				log.Printf("[BROWSER] ignoring message from document: %v", err)
				continue
			}
			update, ok := msg.(bus.HTMLUpdate)
			if !ok {
				continue
			}
			d.mu.Lock()
			fn := d.onEdit
			d.mu.Unlock()
			if fn != nil {
				fn(update.HTML)
			}
		case <-d.done:
			return
		}
	}
}

// run executes actions on the tab, bounded by the caller's ctx.
func (d *Document) run(ctx context.Context, actions ...chromedp.Action) error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return host.ErrClosed
	}
	tabCtx, cancel := context.WithCancel(d.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(tabCtx, actions...)
}

func jsArg(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

func (d *Document) Load(ctx context.Context, markup string) error {
	expr := fmt.Sprintf("window.__studioLoad(%s, %d)", jsArg(markup), d.opts.LoadSettle.Milliseconds())
	return d.run(ctx, chromedp.Evaluate(expr, nil, awaitPromise))
}

// SetFrameSize resizes the document frame, e.g. for a template's dimensions.
func (d *Document) SetFrameSize(ctx context.Context, width, height int) error {
	return d.run(ctx, chromedp.Evaluate(fmt.Sprintf("window.__studioResize(%d, %d)", width, height), nil))
}

func (d *Document) Snapshot(ctx context.Context) (string, error) {
	var html string
	err := d.run(ctx, chromedp.Evaluate("window.__studioSnapshot()", &html))
	return html, err
}

func (d *Document) Blur(ctx context.Context) error {
	return d.run(ctx, chromedp.Evaluate("window.__studioBlur()", nil))
}

func (d *Document) Capture(ctx context.Context, scale float64) (*host.Image, error) {
	if scale <= 0 {
		scale = 1
	}
	var box host.Rect
	var buf []byte
	err := d.run(ctx,
		chromedp.Evaluate("window.__studioCaptureBox()", &box),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, err = d.screenshot(ctx, &page.Viewport{
				X:      box.Left,
				Y:      box.Top,
				Width:  box.Width,
				Height: math.Ceil(box.Height),
				Scale:  scale,
			})
			return err
		}),
	)
	// The capture box reflows the shell; undo it even when the screenshot fails.
	if derr := d.run(context.WithoutCancel(ctx), chromedp.Evaluate("window.__studioCaptureDone()", nil)); derr != nil {
		log.Printf("[BROWSER] Failed to restore layout after capture: %v", derr)
	}
	if err != nil {
		return nil, fmt.Errorf("capture failed: %w", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("capture returned an invalid image: %w", err)
	}
	return &host.Image{PNG: buf, Width: cfg.Width, Height: cfg.Height}, nil
}

func captureScreenshot(ctx context.Context, clip *page.Viewport) ([]byte, error) {
	return page.CaptureScreenshot().
		WithFormat(page.CaptureScreenshotFormatPng).
		WithCaptureBeyondViewport(true).
		WithClip(clip).
		Do(ctx)
}

func (d *Document) Rect(ctx context.Context, selector string) (*host.Rect, error) {
	var r *host.Rect
	err := d.run(ctx, chromedp.Evaluate(fmt.Sprintf("window.__studioRect(%s)", jsArg(selector)), &r))
	return r, err
}

func (d *Document) ScrollArea(ctx context.Context) (*host.Rect, error) {
	var r *host.Rect
	err := d.run(ctx, chromedp.Evaluate("window.__studioArea()", &r))
	return r, err
}

func (d *Document) ScrollBy(ctx context.Context, dy float64) error {
	return d.run(ctx, chromedp.Evaluate(fmt.Sprintf("window.__studioScrollBy(%f)", dy), nil))
}

func (d *Document) AwaitFrame(ctx context.Context) error {
	return d.run(ctx, chromedp.Evaluate("window.__studioFrame()", nil, awaitPromise))
}

func (d *Document) OnEdit(fn func(html string)) {
	d.mu.Lock()
	d.onEdit = fn
	d.mu.Unlock()
}

// Close shuts the tab and the browser process.
func (d *Document) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	close(d.done)
	d.cancelTab()
	d.cancelAlloc()
	return nil
}
