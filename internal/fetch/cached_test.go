package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCachedFetcherConfig(t *testing.T) {
	config := DefaultCachedFetcherConfig()
	require.NotNil(t, config)
	assert.Equal(t, 24*time.Hour, config.CacheTTL)
	assert.NotNil(t, config.Options)
}

func TestCachedFetcher_CachesSuccess(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("img"))
	}))
	defer server.Close()

	f := NewCachedFetcher(nil)
	first, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, "img", second.Text())
	assert.Equal(t, int32(1), hits.Load())

	f.InvalidateCache()
	assert.Equal(t, 0, f.Len())
}

func TestCachedFetcher_DoesNotCacheFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f := NewCachedFetcher(nil)
	for i := 0; i < 2; i++ {
		res, err := f.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		require.NotNil(t, res)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestCachedFetcher_SkipCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	f := NewCachedFetcher(&CachedFetcherConfig{SkipCache: true})
	_, _ = f.Fetch(context.Background(), server.URL)
	_, _ = f.Fetch(context.Background(), server.URL)
	assert.Equal(t, int32(2), hits.Load())
}
