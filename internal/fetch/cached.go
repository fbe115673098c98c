package fetch

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultCacheTTL matches the Cache-Control lifetime of proxied assets.
const DefaultCacheTTL = 24 * time.Hour

// DefaultCacheSize is the number of responses kept in memory.
const DefaultCacheSize = 256

// CachedFetcher wraps URL fetching with an in-memory expiring cache.
// Only successful responses are cached.
type CachedFetcher struct {
	cache     *expirable.LRU[string, *Result]
	options   *Options
	skipCache bool
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL  time.Duration
	CacheSize int
	SkipCache bool
	Options   *Options
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL:  DefaultCacheTTL,
		CacheSize: DefaultCacheSize,
		Options:   DefaultOptions(),
	}
}

// NewCachedFetcher creates a new cached fetcher.
func NewCachedFetcher(config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	if config.CacheSize <= 0 {
		config.CacheSize = DefaultCacheSize
	}
	return &CachedFetcher{
		cache:     expirable.NewLRU[string, *Result](config.CacheSize, nil, config.CacheTTL),
		options:   config.Options,
		skipCache: config.SkipCache,
	}
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache bool
}

// Fetch retrieves a URL with the fetcher's default options.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedResult, error) {
	return f.FetchWith(ctx, urlStr, f.options)
}

// FetchWith retrieves a URL, returning a cached copy while it is fresh.
func (f *CachedFetcher) FetchWith(ctx context.Context, urlStr string, opts *Options) (*CachedResult, error) {
	if !f.skipCache {
		if cached, ok := f.cache.Get(urlStr); ok {
			return &CachedResult{Result: cached, FromCache: true}, nil
		}
	}

	result, err := URL(ctx, urlStr, opts)
	if err != nil {
		if result != nil {
			return &CachedResult{Result: result}, err
		}
		return nil, err
	}

	if !f.skipCache {
		f.cache.Add(urlStr, result)
	}
	return &CachedResult{Result: result}, nil
}

// InvalidateCache drops every cached response.
func (f *CachedFetcher) InvalidateCache() {
	f.cache.Purge()
}

// Len is the number of cached responses.
func (f *CachedFetcher) Len() int {
	return f.cache.Len()
}
