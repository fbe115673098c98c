// Package ratelimit limits requests per client and endpoint pattern with
// token buckets.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	defaultMaxBuckets = 10000
	defaultBucketTTL  = time.Hour
)

// Info describes the outcome of one Allow call. Limit is zero when the
// request was not metered.
type Info struct {
	Allowed    bool
	Pattern    string
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled       bool
	DefaultLimit  int
	DefaultWindow time.Duration
	// BucketTTL drops buckets idle for this long. It never drops a bucket
	// sooner than the longest configured window.
	BucketTTL  time.Duration
	MaxBuckets int
	Whitelist  map[string]bool
	Blacklist  map[string]bool

	EndpointConfigs []EndpointConfig
}

func defaultConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		BucketTTL:     defaultBucketTTL,
		Whitelist:     map[string]bool{},
		Blacklist:     map[string]bool{},
	}
}

// bucket pairs a token bucket with the shape it was built from.
type bucket struct {
	lim   *rate.Limiter
	limit int
	burst int
}

// Limiter meters clients against per-pattern token buckets.
type Limiter struct {
	config *Config

	mu      sync.Mutex // serializes get-or-create on buckets
	buckets *expirable.LRU[string, *bucket]
}

// NewLimiter creates a limiter. A nil config meters every endpoint at
// 1000 requests per minute.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = defaultConfig()
	}

	ttl := config.BucketTTL
	if ttl <= 0 {
		ttl = defaultBucketTTL
	}
	ttl = max(ttl, config.DefaultWindow)
	for _, ec := range config.EndpointConfigs {
		ttl = max(ttl, ec.Window)
	}
	size := config.MaxBuckets
	if size <= 0 {
		size = defaultMaxBuckets
	}

	return &Limiter{
		config:  config,
		buckets: expirable.NewLRU[string, *bucket](size, nil, ttl),
	}
}

// Allow takes one token for clientID on the endpoint pattern matching
// path and method. Requests on one pattern share a bucket regardless of
// the session id in the path.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	switch {
	case !l.config.Enabled, l.config.Whitelist[clientID]:
		return true, Info{Allowed: true}
	case l.config.Blacklist[clientID]:
		return false, Info{}
	}

	ec := MatchEndpoint(path, method, l.config.EndpointConfigs)
	pattern := path
	if ec == nil {
		ec = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
		}
	} else {
		pattern = ec.Path
	}
	if ec.Limit <= 0 {
		return true, Info{Allowed: true, Pattern: pattern}
	}

	b := l.bucket(clientID+" "+method+" "+pattern, ec)
	now := time.Now()
	allowed := b.lim.AllowN(now, 1)
	info := b.status(now)
	info.Allowed = allowed
	info.Pattern = pattern
	if !allowed {
		info.RetryAfter = b.wait(now, 1)
	}
	return allowed, info
}

// bucket returns the bucket for key, creating it from ec on first use.
// Every access renews its TTL.
func (l *Limiter) bucket(key string, ec *EndpointConfig) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets.Get(key)
	if !ok {
		burst := ec.Burst
		if burst <= 0 {
			burst = ec.Limit
		}
		window := ec.Window
		if window <= 0 {
			window = time.Minute
		}
		b = &bucket{
			lim:   rate.NewLimiter(rate.Limit(float64(ec.Limit)/window.Seconds()), burst),
			limit: ec.Limit,
			burst: burst,
		}
	}
	l.buckets.Add(key, b)
	return b
}

func (b *bucket) status(now time.Time) Info {
	tokens := b.lim.TokensAt(now)
	return Info{
		Limit:     b.limit,
		Remaining: max(0, int(math.Floor(tokens))),
		ResetTime: now.Add(b.wait(now, float64(b.burst))),
	}
}

// wait is how long until the bucket holds n tokens.
func (b *bucket) wait(now time.Time, n float64) time.Duration {
	missing := n - b.lim.TokensAt(now)
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / float64(b.lim.Limit()) * float64(time.Second))
}

// Buckets reports how many client buckets are live.
func (l *Limiter) Buckets() int {
	return l.buckets.Len()
}

// Stop drops every bucket.
func (l *Limiter) Stop() {
	l.buckets.Purge()
}
