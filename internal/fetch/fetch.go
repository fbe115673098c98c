// Package fetch provides bounded HTTP fetching for document assets
// (stylesheets, images) pulled in by templates.
package fetch

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultMaxBytes caps a response body.
const DefaultMaxBytes = 10 << 20

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ProfileStudio/1.0)"

// Result holds the body and metadata of a fetched URL.
type Result struct {
	URL         string
	Body        []byte
	ContentType string
	StatusCode  int
}

// Text returns the body as a string.
func (r *Result) Text() string {
	return string(r.Body)
}

// Error represents an error during URL fetching.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	MaxBytes  int64
	Client    *http.Client
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		MaxBytes:  DefaultMaxBytes,
	}
}

// WithTimeout returns a copy of o with a different timeout.
func (o *Options) WithTimeout(d time.Duration) *Options {
	c := *o
	c.Timeout = d
	return &c
}

// URL retrieves the content at urlStr. Only http and https are allowed.
// On a non-200 status the partial result is returned together with an *Error.
// A missing or generic Content-Type is replaced by one sniffed from the body.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	fail := func(msg string, cause error) *Error {
		return &Error{URL: urlStr, Message: msg, Cause: cause}
	}

	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fail("invalid URL", err)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fail("failed to create request", err)
	}
	req.Header.Set("User-Agent", cmp.Or(opts.UserAgent, DefaultUserAgent))
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fail("HTTP request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, fail("failed to read response body", err)
	}
	if int64(len(body)) > maxBytes {
		return nil, fail(fmt.Sprintf("response exceeds %d bytes", maxBytes), nil)
	}

	result := &Result{
		URL:         urlStr,
		Body:        body,
		ContentType: contentType(resp.Header.Get("Content-Type"), body),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		e := fail(fmt.Sprintf("HTTP status %d", resp.StatusCode), nil)
		e.StatusCode = resp.StatusCode
		return result, e
	}
	return result, nil
}

// contentType keeps a specific declared type and otherwise sniffs body.
func contentType(declared string, body []byte) string {
	mediaType, _, _ := strings.Cut(declared, ";")
	switch strings.TrimSpace(strings.ToLower(mediaType)) {
	case "", "application/octet-stream", "binary/octet-stream":
		if len(body) == 0 {
			return declared
		}
		return mimetype.Detect(body).String()
	}
	return declared
}
