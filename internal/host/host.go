package host

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jonathan/profile-studio/internal/bus"
)

// DefaultExportTimeout bounds one export inside the hosted context.
const DefaultExportTimeout = 60 * time.Second

// ExportFunc rasterizes doc. It may rewrite the document destructively.
type ExportFunc func(ctx context.Context, doc Document) (*Image, error)

type command struct {
	ctx   context.Context
	run   func(ctx context.Context) error
	reply chan error
}

// Host owns a Document and serializes every operation on it through one
// event loop goroutine. Results are reported on the bus.
type Host struct {
	doc     Document
	bus     *bus.Bus
	export  ExportFunc
	timeout time.Duration

	cmds   chan command
	stop   chan struct{}
	done   chan struct{}
	unsub  func()
	seq    uint64
	closed bool
	mu     sync.Mutex
}

// Options configures a Host.
type Options struct {
	Export        ExportFunc
	ExportTimeout time.Duration
}

// New starts the event loop for doc. Edits inside the document are published
// as HTML_UPDATE and GENERATE_DOWNLOAD messages on b trigger exports.
func New(doc Document, b *bus.Bus, opts Options) *Host {
	if opts.ExportTimeout <= 0 {
		opts.ExportTimeout = DefaultExportTimeout
	}
	h := &Host{
		doc:     doc,
		bus:     b,
		export:  opts.Export,
		timeout: opts.ExportTimeout,
		cmds:    make(chan command, 16),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	doc.OnEdit(func(html string) {
		b.Publish(bus.HTMLUpdate{HTML: html})
	})
	h.unsub = b.Subscribe(func(m bus.Message) {
		if req, ok := m.(bus.GenerateDownload); ok {
			h.RequestExport(req)
		}
	}, bus.KindGenerateDownload)

	go h.loop()
	return h
}

// Document returns the hosted document for read-only queries.
func (h *Host) Document() Document { return h.doc }

func (h *Host) loop() {
	defer close(h.done)
	for {
		select {
		case cmd := <-h.cmds:
			err := cmd.run(cmd.ctx)
			if cmd.reply != nil {
				cmd.reply <- err
			}
		case <-h.stop:
			return
		}
	}
}

func (h *Host) enqueue(cmd command) error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return ErrClosed
	}
	select {
	case h.cmds <- cmd:
		return nil
	case <-h.stop:
		return ErrClosed
	case <-cmd.ctx.Done():
		return cmd.ctx.Err()
	}
}

// Load replaces the document with markup and waits until the hosted context
// acknowledges it. A load message is published on success.
func (h *Host) Load(ctx context.Context, markup string) error {
	return h.Do(ctx, func(ctx context.Context, doc Document) error {
		if err := doc.Load(ctx, markup); err != nil {
			return fmt.Errorf("failed to load document: %w", err)
		}
		h.seq++
		h.bus.Publish(bus.Load{Seq: h.seq})
		return nil
	})
}

// ApplyEdit loads an edited snapshot made in a client copy of the document
// and relays it as an HTML_UPDATE, as if the edit happened here.
func (h *Host) ApplyEdit(ctx context.Context, html string) error {
	return h.Do(ctx, func(ctx context.Context, doc Document) error {
		if err := doc.Load(ctx, html); err != nil {
			return fmt.Errorf("failed to apply edit: %w", err)
		}
		h.bus.Publish(bus.HTMLUpdate{HTML: html})
		return nil
	})
}

// Do runs fn on the event loop and waits for it to finish.
func (h *Host) Do(ctx context.Context, fn func(ctx context.Context, doc Document) error) error {
	reply := make(chan error, 1)
	err := h.enqueue(command{
		ctx:   ctx,
		run:   func(ctx context.Context) error { return fn(ctx, h.doc) },
		reply: reply,
	})
	if err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrClosed
	}
}

// RequestExport queues an export and returns immediately. The outcome is
// published as DOWNLOAD_READY or DOWNLOAD_ERROR carrying req.ID.
func (h *Host) RequestExport(req bus.GenerateDownload) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		h.bus.Publish(bus.DownloadError{ID: req.ID, Error: ErrClosed.Error()})
		return
	}
	run := func(ctx context.Context) error {
		img, err := h.runExport(ctx)
		if err != nil {
			log.Printf("[HOST] export %s failed: %v", req.ID, err)
			h.bus.Publish(bus.DownloadError{ID: req.ID, Error: err.Error()})
			return nil
		}
		h.bus.Publish(bus.DownloadReady{
			ID:       req.ID,
			Format:   req.Format,
			DataURL:  img.DataURL(),
			FileName: req.FileName,
			Width:    img.Width,
			Height:   img.Height,
		})
		return nil
	}
	cmd := command{ctx: context.Background(), run: run}
	select {
	case h.cmds <- cmd:
		return
	default:
	}
	// Queue full: never block the publisher.
	go func() {
		if err := h.enqueue(cmd); err != nil {
			h.bus.Publish(bus.DownloadError{ID: req.ID, Error: err.Error()})
		}
	}()
}

func (h *Host) runExport(ctx context.Context) (*Image, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	if h.export == nil {
		return h.doc.Capture(ctx, 2)
	}
	return h.export(ctx, h.doc)
}

// Close stops the event loop and closes the document.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	h.unsub()
	close(h.stop)
	<-h.done
	return h.doc.Close()
}
