// Package export serializes the hosted document into a PNG raster and
// paginates rasters into PDF.
package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/profile-studio/internal/fetch"
	"github.com/jonathan/profile-studio/internal/host"
)

// PixelRatio is the capture density relative to CSS pixels.
const PixelRatio = 2

// DefaultFetchTimeout bounds each stylesheet fetch.
const DefaultFetchTimeout = 10 * time.Second

// maxConcurrentFetches bounds parallel stylesheet requests.
const maxConcurrentFetches = 8

// Fetcher retrieves a stylesheet.
type Fetcher interface {
	FetchWith(ctx context.Context, urlStr string, opts *fetch.Options) (*fetch.CachedResult, error)
}

// Observer receives export events. All methods may be nil-safe no-ops.
type Observer interface {
	AssetFailed(url string)
	Exported(d time.Duration, err error)
}

// Engine rasterizes a hosted document. Stylesheets are inlined first so the
// capture never depends on cross-origin resources.
type Engine struct {
	fetcher      Fetcher
	fetchTimeout time.Duration
	observer     Observer
}

// Options configures an Engine.
type Options struct {
	FetchTimeout time.Duration
	Observer     Observer
}

// NewEngine creates an export engine using fetcher for stylesheets.
func NewEngine(fetcher Fetcher, opts Options) *Engine {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	return &Engine{fetcher: fetcher, fetchTimeout: opts.FetchTimeout, observer: opts.Observer}
}

// Export inlines styles, reloads doc with the rewritten markup, clears focus
// and captures it at PixelRatio. The rewrite is destructive: the hosted
// document keeps the inlined head afterwards.
func (e *Engine) Export(ctx context.Context, doc host.Document) (img *host.Image, err error) {
	start := time.Now()
	defer func() {
		if e.observer != nil {
			e.observer.Exported(time.Since(start), err)
		}
	}()

	markup, err := doc.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot document: %w", err)
	}

	hrefs, err := Stylesheets(markup)
	if err != nil {
		return nil, err
	}
	sheets := e.fetchAll(ctx, hrefs)

	inlined, err := InlineStyles(markup, sheets)
	if err != nil {
		return nil, err
	}
	if err := doc.Load(ctx, inlined); err != nil {
		return nil, fmt.Errorf("failed to reload inlined document: %w", err)
	}
	if err := doc.Blur(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear focus: %w", err)
	}

	img, err = doc.Capture(ctx, PixelRatio)
	if err != nil {
		if errors.Is(err, host.ErrCaptureUnavailable) {
			return nil, &ExportUnavailableError{Message: "document context cannot capture", Cause: err}
		}
		return nil, fmt.Errorf("failed to capture document: %w", err)
	}
	log.Printf("[EXPORT] captured %dx%d (%d/%d stylesheets inlined) in %s",
		img.Width, img.Height, countNonEmpty(sheets), len(hrefs), time.Since(start).Round(time.Millisecond))
	return img, nil
}

// fetchAll fetches every href concurrently and returns their text in the
// same order. Failed fetches are logged and yield "".
func (e *Engine) fetchAll(ctx context.Context, hrefs []string) []string {
	out := make([]string, len(hrefs))
	if len(hrefs) == 0 || e.fetcher == nil {
		return out
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	opts := fetch.DefaultOptions().WithTimeout(e.fetchTimeout)
	for i, href := range hrefs {
		g.Go(func() error {
			res, err := e.fetcher.FetchWith(gctx, href, opts)
			if err != nil {
				log.Printf("[EXPORT] %v", &AssetFetchError{URL: href, Cause: err})
				if e.observer != nil {
					e.observer.AssetFailed(href)
				}
				return nil
			}
			out[i] = res.Text()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func countNonEmpty(list []string) int {
	n := 0
	for _, s := range list {
		if s != "" {
			n++
		}
	}
	return n
}
