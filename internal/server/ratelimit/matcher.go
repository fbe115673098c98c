package ratelimit

import (
	"path"
)

// unlimited paths bypass the limiter for GET.
var unlimited = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// MatchEndpoint returns the configuration whose pattern matches the request,
// or nil when none does. Patterns are matched with path.Match, so "*" stands
// for exactly one segment: "/sessions/*/downloads" matches
// "/sessions/abc/downloads" but not "/sessions/abc/x/downloads".
func MatchEndpoint(p string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == "GET" && unlimited[p] {
		return &EndpointConfig{Path: p}
	}

	for i := range configs {
		config := &configs[i]
		if config.Method != method {
			continue
		}
		if ok, err := path.Match(config.Path, p); err == nil && ok {
			return config
		}
	}
	return nil
}
