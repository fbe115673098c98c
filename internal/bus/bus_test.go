package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_FiltersByKind(t *testing.T) {
	b := New()

	var updates, all []Kind
	b.Subscribe(func(m Message) { updates = append(updates, m.Kind()) }, KindHTMLUpdate)
	b.Subscribe(func(m Message) { all = append(all, m.Kind()) })

	b.Publish(Load{})
	b.Publish(HTMLUpdate{HTML: "<p>x</p>"})

	assert.Equal(t, []Kind{KindHTMLUpdate}, updates)
	assert.Equal(t, []Kind{KindLoad, KindHTMLUpdate}, all)
}

func TestSubscribe_Cancel(t *testing.T) {
	b := New()
	count := 0
	cancel := b.Subscribe(func(Message) { count++ })

	b.Publish(Load{})
	cancel()
	cancel()
	b.Publish(Load{})

	assert.Equal(t, 1, count)
}

func TestExpect_CorrelatesByID(t *testing.T) {
	b := New()
	w := b.Expect(func(m Message) bool {
		switch v := m.(type) {
		case DownloadReady:
			return v.ID == "b"
		case DownloadError:
			return v.ID == "b"
		}
		return false
	}, KindDownloadReady, KindDownloadError)

	go func() {
		b.Publish(DownloadReady{ID: "a"})
		b.Publish(DownloadError{ID: "b", Error: "boom"})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	m, err := w.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, DownloadError{ID: "b", Error: "boom"}, m)
}

func TestExpect_ContextDone(t *testing.T) {
	b := New()
	w := b.Expect(nil, KindLoad)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := w.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMarshal_FlatEnvelope(t *testing.T) {
	raw, err := Marshal(GenerateDownload{ID: "x1", Format: FormatPNG, FileName: "jane.png"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"GENERATE_DOWNLOAD","id":"x1","format":"png","fileName":"jane.png"}`, string(raw))

	m, err := Unmarshal(raw)
	require.NoError(t, err)
	assert.Equal(t, GenerateDownload{ID: "x1", Format: FormatPNG, FileName: "jane.png"}, m)
}

func TestUnmarshal_UnknownType(t *testing.T) {
	_, err := Unmarshal([]byte(`{"type":"RESIZE"}`))
	assert.Error(t, err)

	_, err = Unmarshal([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = ParseFormat("docx")
	assert.Error(t, err)
}
