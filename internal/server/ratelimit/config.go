package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit applied to requests matching Path and Method.
type EndpointConfig struct {
	Path   string        // Path pattern; "*" matches one path segment
	Method string        // HTTP method
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	enabled := env("RATE_LIMIT_ENABLED", true, strconv.ParseBool)
	if !enabled {
		return &Config{}
	}

	return &Config{
		Enabled:         enabled,
		DefaultLimit:    env("RATE_LIMIT_DEFAULT_LIMIT", 1000, strconv.Atoi),
		DefaultWindow:   env("RATE_LIMIT_DEFAULT_WINDOW", time.Minute, time.ParseDuration),
		BucketTTL:       env("RATE_LIMIT_BUCKET_TTL", defaultBucketTTL, time.ParseDuration),
		MaxBuckets:      env("RATE_LIMIT_MAX_BUCKETS", defaultMaxBuckets, strconv.Atoi),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(env("RATE_LIMIT_AI_LIMIT", 30, strconv.Atoi)),
	}
}

// DefaultEndpointConfigs returns the endpoint limits. aiLimit caps the
// model-backed endpoints per hour.
func DefaultEndpointConfigs(aiLimit int) []EndpointConfig {
	return []EndpointConfig{
		// Model calls
		{Path: "/sessions/*/review/enhance", Method: "POST", Limit: aiLimit, Window: time.Hour, Burst: 5},
		{Path: "/sessions/*/template/ai-edit", Method: "POST", Limit: aiLimit, Window: time.Hour, Burst: 5},
		{Path: "/sessions/*/import", Method: "POST", Limit: aiLimit, Window: time.Hour, Burst: 5},

		// Browser work
		{Path: "/sessions", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},
		{Path: "/sessions/*/downloads", Method: "POST", Limit: 120, Window: time.Hour, Burst: 10},
		{Path: "/proxy-image", Method: "GET", Limit: 300, Window: time.Minute, Burst: 50},

		// Everything else falls through to the default limit.
	}
}

// env returns parse(os.Getenv(key)), or def when the variable is unset or
// does not parse.
func env[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
