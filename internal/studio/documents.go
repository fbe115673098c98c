package studio

import (
	"context"
	"log"

	"github.com/jonathan/profile-studio/internal/browser"
	"github.com/jonathan/profile-studio/internal/host"
)

// DocumentFactory opens a hosted document sized width x height CSS pixels.
type DocumentFactory func(ctx context.Context, width, height int) (host.Document, error)

// MemoryDocuments opens in-process documents. They cannot rasterize.
func MemoryDocuments() DocumentFactory {
	return func(context.Context, int, int) (host.Document, error) {
		return host.NewMemoryDocument(), nil
	}
}

// ChromeDocuments opens a headless Chrome tab per session. When Chrome
// cannot be started the session falls back to an in-process document.
func ChromeDocuments(opts browser.Options) DocumentFactory {
	return func(ctx context.Context, width, height int) (host.Document, error) {
		o := opts
		if width > 0 && height > 0 {
			o.FrameWidth, o.FrameHeight = width, height
		}
		doc, err := browser.Launch(ctx, o)
		if err != nil {
			log.Printf("[STUDIO] Chrome unavailable, using in-process document: %v", err)
			return host.NewMemoryDocument(), nil
		}
		return doc, nil
	}
}
