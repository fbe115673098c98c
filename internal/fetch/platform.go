// Package fetch - platform.go recognizes image CDNs that refuse hotlinking
// and builds the request headers they expect.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known image host.
type Platform string

const (
	// PlatformLinkedIn is the LinkedIn media CDN
	PlatformLinkedIn Platform = "linkedin"
	// PlatformUnknown is an unrecognized host
	PlatformUnknown Platform = "unknown"
)

// linkedInHosts are the CDN hosts profile photos and logos are served from.
var linkedInHosts = []string{
	"media.licdn.com",
	"media-exp1.licdn.com",
	"media-exp2.licdn.com",
	"static.licdn.com",
}

// browserUserAgent mimics a desktop browser to avoid CDN blocks.
const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DetectPlatform identifies the image host of a URL. Only https and http
// URLs on an exact host or a subdomain of one are recognized.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil || (parsed.Scheme != "https" && parsed.Scheme != "http") {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Hostname())
	for _, allowed := range linkedInHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return PlatformLinkedIn
		}
	}
	return PlatformUnknown
}

// PlatformOptions returns fetch options that the platform's CDN accepts.
func PlatformOptions(platform Platform) *Options {
	opts := DefaultOptions()
	switch platform {
	case PlatformLinkedIn:
		opts.UserAgent = browserUserAgent
		opts.Headers = map[string]string{
			"Accept":  "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8",
			"Referer": "https://www.linkedin.com/",
		}
	}
	return opts
}
