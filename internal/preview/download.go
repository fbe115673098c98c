package preview

import (
	"context"
	"encoding/base64"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/profile-studio/internal/bus"
	"github.com/jonathan/profile-studio/internal/export"
)

const pngDataPrefix = "data:image/png;base64,"

// Download is a finished file.
type Download struct {
	ID          string
	Format      bus.Format
	FileName    string
	ContentType string
	Data        []byte
	Width       int
	Height      int
}

// Download produces the current document as format. HTML is the markup as
// shown; PNG and PDF go through the host's export and wait for its reply.
// Only one download runs at a time.
func (p *Preview) Download(ctx context.Context, format bus.Format, fileName string) (dl *Download, err error) {
	p.mu.Lock()
	if p.exporting {
		p.mu.Unlock()
		return nil, ErrExportInProgress
	}
	p.exporting = true
	markup := p.current
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.exporting = false
		p.mu.Unlock()
		if p.observer != nil {
			p.observer.Downloaded(string(format), err)
		}
	}()

	if _, err := bus.ParseFormat(string(format)); err != nil {
		return nil, err
	}
	if markup == "" {
		return nil, ErrNoTemplate
	}

	id := uuid.NewString()
	if format == bus.FormatHTML {
		return &Download{
			ID:          id,
			Format:      format,
			FileName:    export.FileName(fileName, "html"),
			ContentType: "text/html; charset=utf-8",
			Data:        []byte(markup),
		}, nil
	}

	ready, err := p.requestExport(ctx, bus.GenerateDownload{ID: id, Format: format, FileName: fileName})
	// The export rewrites the document; put the preview back.
	if rerr := p.restore(ctx); rerr != nil {
		log.Printf("[PREVIEW] Failed to restore document after export: %v", rerr)
	}
	if err != nil {
		return nil, err
	}

	png, err := decodeDataURL(ready.DataURL)
	if err != nil {
		return nil, err
	}
	dl = &Download{ID: id, Format: format, Width: ready.Width, Height: ready.Height}
	switch format {
	case bus.FormatPDF:
		pdf, err := export.Paginate(png, strings.TrimSuffix(fileName, ".pdf"))
		if err != nil {
			return nil, err
		}
		dl.FileName = export.FileName(fileName, "pdf")
		dl.ContentType = "application/pdf"
		dl.Data = pdf
	default:
		dl.FileName = export.FileName(fileName, "png")
		dl.ContentType = "image/png"
		dl.Data = png
	}
	log.Printf("[PREVIEW] Download %s ready: %s (%d bytes)", id, dl.FileName, len(dl.Data))
	return dl, nil
}

func (p *Preview) requestExport(ctx context.Context, req bus.GenerateDownload) (bus.DownloadReady, error) {
	waiter := p.bus.Expect(func(m bus.Message) bool {
		switch v := m.(type) {
		case bus.DownloadReady:
			return v.ID == req.ID
		case bus.DownloadError:
			return v.ID == req.ID
		}
		return false
	}, bus.KindDownloadReady, bus.KindDownloadError)

	p.bus.Publish(req)
	msg, err := waiter.Wait(ctx)
	if err != nil {
		return bus.DownloadReady{}, err
	}
	if failed, ok := msg.(bus.DownloadError); ok {
		return bus.DownloadReady{}, &DownloadError{ID: failed.ID, Message: failed.Error}
	}
	return msg.(bus.DownloadReady), nil
}

// restore reloads the current markup without counting it as a preview
// reload. A Sync that ran during the export has already replaced current,
// so the newer markup wins.
func (p *Preview) restore(ctx context.Context) error {
	p.syncMu.Lock()
	defer p.syncMu.Unlock()
	p.mu.Lock()
	markup := p.current
	p.mu.Unlock()
	return p.host.Load(context.WithoutCancel(ctx), markup)
}

func decodeDataURL(s string) ([]byte, error) {
	if !strings.HasPrefix(s, pngDataPrefix) {
		return nil, &DecodeError{Message: "expected a PNG data URL"}
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, pngDataPrefix))
	if err != nil {
		return nil, &DecodeError{Message: "bad base64", Cause: err}
	}
	return data, nil
}
