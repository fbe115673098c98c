package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/profile-studio/internal/export"
	"github.com/jonathan/profile-studio/internal/preview"
	"github.com/jonathan/profile-studio/internal/profile"
)

var (
	_ export.Observer  = (*Metrics)(nil)
	_ preview.Observer = (*Metrics)(nil)
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)
	return m
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestDefault_IsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestRecorders(t *testing.T) {
	m := newTestMetrics(t)

	m.AssetFailed("https://fonts.example/a.css")
	m.AssetFailed("https://fonts.example/b.css")
	m.Exported(time.Second, nil)
	m.Reloaded()
	m.Downloaded("png", nil)
	m.Downloaded("pdf", errors.New("boom"))
	m.Downloaded("pdf", context.Canceled)
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.HTTPRequest("GET", 200, 10*time.Millisecond)
	m.RateLimited("/sessions/*/review/enhance")
	m.RateLimited("")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.assetFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reloads))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.downloads.WithLabelValues("png", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.downloads.WithLabelValues("pdf", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.downloads.WithLabelValues("pdf", "canceled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited.WithLabelValues("/sessions/*/review/enhance")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited.WithLabelValues("blocked")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AssetFailed("x")
		m.Exported(time.Second, nil)
		m.Reloaded()
		m.Downloaded("png", nil)
		m.SessionOpened()
		m.SessionClosed()
		m.HTTPRequest("GET", 200, time.Millisecond)
		m.RateLimited("/templates")
	})
}

type stubGateway struct{ err error }

func (s stubGateway) Enhance(context.Context, string, profile.Data, string) (profile.Partial, error) {
	return profile.Partial{}, s.err
}

func TestGateway_Timed(t *testing.T) {
	m := newTestMetrics(t)
	g := m.Gateway(stubGateway{err: errors.New("quota")})

	_, err := g.Enhance(context.Background(), "story", profile.Default(), "")
	assert.EqualError(t, err, "quota")
	assert.Equal(t, 1, testutil.CollectAndCount(m.enhanceLatency))

	var nilMetrics *Metrics
	inner := stubGateway{}
	assert.Equal(t, inner, nilMetrics.Gateway(inner))
}

func TestHandler(t *testing.T) {
	m := newTestMetrics(t)
	m.Reloaded()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "profile_studio_preview_reloads_total 1")
}
