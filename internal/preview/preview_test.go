package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/profile-studio/internal/bus"
	"github.com/jonathan/profile-studio/internal/export"
	"github.com/jonathan/profile-studio/internal/fetch"
	"github.com/jonathan/profile-studio/internal/host"
	"github.com/jonathan/profile-studio/internal/profile"
	"github.com/jonathan/profile-studio/internal/rendering"
)

// pngDoc is a memory document that can rasterize and counts loads.
type pngDoc struct {
	*host.MemoryDocument
	mu    sync.Mutex
	loads []string
}

func newPNGDoc() *pngDoc {
	return &pngDoc{MemoryDocument: host.NewMemoryDocument()}
}

func (d *pngDoc) Load(ctx context.Context, markup string) error {
	d.mu.Lock()
	d.loads = append(d.loads, markup)
	d.mu.Unlock()
	return d.MemoryDocument.Load(ctx, markup)
}

func (d *pngDoc) Capture(ctx context.Context, scale float64) (*host.Image, error) {
	w, h := int(100*scale), int(140*scale)
	var buf bytes.Buffer
	_ = png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)))
	return &host.Image{PNG: buf.Bytes(), Width: w, Height: h}, nil
}

func (d *pngDoc) loadCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.loads)
}

type fixture struct {
	doc     *pngDoc
	bus     *bus.Bus
	host    *host.Host
	preview *Preview
}

func newFixture(t *testing.T, opts host.Options) *fixture {
	t.Helper()
	renderer, err := rendering.NewRenderer(8)
	require.NoError(t, err)
	doc := newPNGDoc()
	b := bus.New()
	h := host.New(doc, b, opts)
	p := New(renderer, h, b, Options{})
	t.Cleanup(func() {
		p.Close()
		_ = h.Close()
	})
	return &fixture{doc: doc, bus: b, host: h, preview: p}
}

func named(name string) profile.Data {
	d := profile.Default()
	d.FullName = name
	return d
}

func TestSync_NoOpRecompilation(t *testing.T) {
	f := newFixture(t, host.Options{})
	ctx := context.Background()
	require.NoError(t, f.preview.SetTemplate("card", "<h1>{{fullName}}</h1>"))

	require.NoError(t, f.preview.Sync(ctx, named("Ada")))
	assert.Equal(t, uint64(1), f.preview.Reloads())
	assert.Equal(t, "<h1>Ada</h1>", f.preview.Markup())

	// Same template and data: nothing to send.
	require.NoError(t, f.preview.Sync(ctx, named("Ada")))
	assert.Equal(t, uint64(1), f.preview.Reloads())

	// Data that does not change the output.
	d := named("Ada")
	d.Skills = []string{"Go"}
	require.NoError(t, f.preview.Sync(ctx, d))
	assert.Equal(t, uint64(1), f.preview.Reloads())

	require.NoError(t, f.preview.Sync(ctx, named("Grace")))
	assert.Equal(t, uint64(2), f.preview.Reloads())
	assert.Equal(t, 2, f.doc.loadCount())
}

func TestSync_SkipsDocumentsOwnSnapshot(t *testing.T) {
	f := newFixture(t, host.Options{})
	ctx := context.Background()
	require.NoError(t, f.preview.SetTemplate("card", "<h1>{{fullName}}</h1>"))
	require.NoError(t, f.preview.Sync(ctx, named("Ada")))

	edited := "<html><head></head><body><h1>Ada L.</h1></body></html>"
	waiter := f.bus.Expect(nil, bus.KindHTMLUpdate)
	require.NoError(t, f.preview.ApplyEdit(ctx, edited))
	_, err := waiter.Wait(ctx)
	require.NoError(t, err)

	assert.Equal(t, edited, f.preview.Source())
	assert.Equal(t, edited, f.preview.Markup())
	reloads := f.preview.Reloads()

	// The edited snapshot is now the source; a data change must not clobber it.
	require.NoError(t, f.preview.Sync(ctx, named("Grace")))
	assert.Equal(t, reloads, f.preview.Reloads())
	assert.Equal(t, edited, f.preview.Markup())
}

func TestSync_TemplateErrorLeavesDocument(t *testing.T) {
	f := newFixture(t, host.Options{})
	ctx := context.Background()

	err := f.preview.SetTemplate("bad", "<h1>{{#if fullName}}</h1>")
	var te *rendering.TemplateError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "bad", te.Ref)

	assert.ErrorIs(t, f.preview.Sync(ctx, named("Ada")), ErrNoTemplate)
	assert.Equal(t, 0, f.doc.loadCount())
}

func TestDownload_HTML(t *testing.T) {
	f := newFixture(t, host.Options{})
	ctx := context.Background()
	require.NoError(t, f.preview.SetTemplate("card", "<p>{{tagline}}</p>"))
	require.NoError(t, f.preview.Sync(ctx, profile.Default()))

	dl, err := f.preview.Download(ctx, bus.FormatHTML, "me")
	require.NoError(t, err)
	assert.Equal(t, "me.html", dl.FileName)
	assert.Equal(t, "<p>Your Professional Title</p>", string(dl.Data))
	assert.Contains(t, dl.ContentType, "text/html")
	assert.NotEmpty(t, dl.ID)
}

func TestDownload_NoTemplateAndBadFormat(t *testing.T) {
	f := newFixture(t, host.Options{})
	_, err := f.preview.Download(context.Background(), bus.FormatPNG, "x")
	assert.ErrorIs(t, err, ErrNoTemplate)

	_, err = f.preview.Download(context.Background(), bus.Format("docx"), "x")
	assert.Error(t, err)
}

func cssServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.css":
			w.Header().Set("Content-Type", "text/css")
			fmt.Fprint(w, ".a{color:red}")
		case "/b.css":
			w.Header().Set("Content-Type", "text/css")
			fmt.Fprint(w, ".b{color:blue}")
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownload_BestEffortStylesheets(t *testing.T) {
	srv := cssServer(t)
	engine := export.NewEngine(fetch.NewCachedFetcher(nil), export.Options{FetchTimeout: 2 * time.Second})
	f := newFixture(t, host.Options{Export: engine.Export})
	ctx := context.Background()

	tpl := fmt.Sprintf(`<html><head>
<link rel="stylesheet" href="%[1]s/a.css">
<link rel="stylesheet" href="%[1]s/missing.css">
<link rel="stylesheet" href="%[1]s/b.css">
</head><body><h1>{{fullName}}</h1></body></html>`, srv.URL)
	require.NoError(t, f.preview.SetTemplate("styled", tpl))
	require.NoError(t, f.preview.Sync(ctx, named("Ada")))
	compiled := f.preview.Markup()

	var (
		mu    sync.Mutex
		ready []bus.DownloadReady
	)
	cancel := f.bus.Subscribe(func(m bus.Message) {
		mu.Lock()
		ready = append(ready, m.(bus.DownloadReady))
		mu.Unlock()
	}, bus.KindDownloadReady)
	defer cancel()

	dl, err := f.preview.Download(ctx, bus.FormatPNG, "ada")
	require.NoError(t, err)
	assert.Equal(t, "ada.png", dl.FileName)
	assert.Equal(t, 200, dl.Width)
	assert.Equal(t, 280, dl.Height)
	assert.True(t, bytes.HasPrefix(dl.Data, []byte("\x89PNG")))

	mu.Lock()
	require.Len(t, ready, 1)
	assert.Equal(t, dl.ID, ready[0].ID)
	mu.Unlock()

	// The export loaded one inlined document with both good sheets.
	f.doc.mu.Lock()
	var inlined string
	for _, l := range f.doc.loads {
		if strings.Contains(l, ".a{color:red}") {
			inlined = l
		}
	}
	last := f.doc.loads[len(f.doc.loads)-1]
	f.doc.mu.Unlock()
	require.NotEmpty(t, inlined)
	assert.Contains(t, inlined, ".b{color:blue}")
	assert.NotContains(t, inlined, "missing.css")

	// Afterwards the preview markup is back in the document.
	assert.Equal(t, compiled, last)
	assert.Equal(t, uint64(1), f.preview.Reloads())
}

func TestDownload_PDF(t *testing.T) {
	f := newFixture(t, host.Options{})
	ctx := context.Background()
	require.NoError(t, f.preview.SetTemplate("card", "<h1>{{fullName}}</h1>"))
	require.NoError(t, f.preview.Sync(ctx, named("Ada")))

	dl, err := f.preview.Download(ctx, bus.FormatPDF, "ada.pdf")
	require.NoError(t, err)
	assert.Equal(t, "ada.pdf", dl.FileName)
	assert.Equal(t, "application/pdf", dl.ContentType)
	assert.True(t, bytes.HasPrefix(dl.Data, []byte("%PDF-")))
}

// blockingDoc holds every capture until released.
type blockingDoc struct {
	*pngDoc
	started chan struct{}
	release chan struct{}
}

func (d *blockingDoc) Capture(ctx context.Context, scale float64) (*host.Image, error) {
	d.started <- struct{}{}
	<-d.release
	return d.pngDoc.Capture(ctx, scale)
}

func TestDownload_OneAtATime(t *testing.T) {
	renderer, err := rendering.NewRenderer(8)
	require.NoError(t, err)
	doc := &blockingDoc{pngDoc: newPNGDoc(), started: make(chan struct{}, 1), release: make(chan struct{})}
	b := bus.New()
	h := host.New(doc, b, host.Options{})
	p := New(renderer, h, b, Options{})
	defer func() {
		p.Close()
		_ = h.Close()
	}()

	ctx := context.Background()
	require.NoError(t, p.SetTemplate("card", "<h1>{{fullName}}</h1>"))
	require.NoError(t, p.Sync(ctx, named("Ada")))

	errs := make(chan error, 1)
	go func() {
		_, err := p.Download(ctx, bus.FormatPNG, "a")
		errs <- err
	}()
	<-doc.started

	_, err = p.Download(ctx, bus.FormatPNG, "b")
	assert.ErrorIs(t, err, ErrExportInProgress)

	close(doc.release)
	require.NoError(t, <-errs)

	_, err = p.Download(ctx, bus.FormatHTML, "c")
	assert.NoError(t, err)
}

func (d *pngDoc) lastLoad() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.loads) == 0 {
		return ""
	}
	return d.loads[len(d.loads)-1]
}

func TestDownload_KeepsSyncDuringExport(t *testing.T) {
	renderer, err := rendering.NewRenderer(8)
	require.NoError(t, err)
	doc := &blockingDoc{pngDoc: newPNGDoc(), started: make(chan struct{}, 1), release: make(chan struct{})}
	b := bus.New()
	h := host.New(doc, b, host.Options{})
	p := New(renderer, h, b, Options{})
	defer func() {
		p.Close()
		_ = h.Close()
	}()

	ctx := context.Background()
	require.NoError(t, p.SetTemplate("card", "<h1>{{fullName}}</h1>"))
	require.NoError(t, p.Sync(ctx, named("Ada")))

	downloaded := make(chan error, 1)
	go func() {
		_, err := p.Download(ctx, bus.FormatPNG, "a")
		downloaded <- err
	}()
	<-doc.started

	// The load queues behind the capture on the host.
	synced := make(chan error, 1)
	go func() { synced <- p.Sync(ctx, named("Grace")) }()
	time.Sleep(50 * time.Millisecond)

	close(doc.release)
	require.NoError(t, <-downloaded)
	require.NoError(t, <-synced)
	require.NoError(t, p.Sync(ctx, named("Grace")))

	assert.Equal(t, "<h1>Grace</h1>", p.Markup())
	assert.Equal(t, "<h1>Grace</h1>", doc.lastLoad())
}

// failingDoc cannot rasterize.
type failingDoc struct{ *pngDoc }

func (failingDoc) Capture(context.Context, float64) (*host.Image, error) {
	return nil, host.ErrCaptureUnavailable
}

func TestDownload_ErrorMessage(t *testing.T) {
	renderer, err := rendering.NewRenderer(8)
	require.NoError(t, err)
	b := bus.New()
	h := host.New(failingDoc{newPNGDoc()}, b, host.Options{})
	p := New(renderer, h, b, Options{})
	defer func() {
		p.Close()
		_ = h.Close()
	}()

	ctx := context.Background()
	require.NoError(t, p.SetTemplate("card", "<h1>{{fullName}}</h1>"))
	require.NoError(t, p.Sync(ctx, named("Ada")))

	_, err = p.Download(ctx, bus.FormatPNG, "a")
	var de *DownloadError
	require.True(t, errors.As(err, &de))
	assert.Contains(t, de.Message, "capture unavailable")
}
