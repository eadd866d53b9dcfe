package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

const (
	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 10 * time.Second
	// DefaultUserAgent identifies as a desktop browser so bot filters let the request through.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	// DefaultMaxBodyBytes caps how much of a response body is read.
	DefaultMaxBodyBytes = 5 << 20
)

// Fetcher retrieves the raw HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Response, error)
}

// FetchOptions tunes an HTTPFetcher.
type FetchOptions struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	Robots       *RobotsPolicy
}

// HTTPFetcher fetches pages with a plain HTTP GET.
type HTTPFetcher struct {
	client       *http.Client
	userAgent    string
	timeout      time.Duration
	maxBodyBytes int64
	robots       *RobotsPolicy
}

// NewHTTPFetcher builds a fetcher around the given client. A nil client gets
// a pooled transport like the one the analyzer used to own.
func NewHTTPFetcher(client *http.Client, opts FetchOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}
	return &HTTPFetcher{
		client:       client,
		userAgent:    opts.UserAgent,
		timeout:      opts.Timeout,
		maxBodyBytes: opts.MaxBodyBytes,
		robots:       opts.Robots,
	}
}

// UserAgent returns the User-Agent header sent with every request.
func (f *HTTPFetcher) UserAgent() string { return f.userAgent }

// Fetch performs one GET. Every failure comes back as a *ValidationError or
// a *FetchError; nothing panics past this point.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}
	rawURL = target.String()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if f.robots != nil && !f.robots.Allowed(ctx, target, f.userAgent) {
		return nil, &FetchError{URL: rawURL, Err: ErrDisallowed}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(raw)) > f.maxBodyBytes {
		return nil, &FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, f.maxBodyBytes),
		}
	}

	body := raw
	if reader, err := charset.NewReader(bytes.NewReader(raw), contentType); err == nil {
		if decoded, err := io.ReadAll(reader); err == nil {
			body = decoded
		}
	}

	return &Response{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
		Duration:    time.Since(start),
	}, nil
}

// ValidateURL checks that rawURL is a usable absolute http(s) URL.
func ValidateURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, &ValidationError{Field: "url", Message: ErrEmptyURL.Error()}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &ValidationError{Field: "url", Message: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &ValidationError{Field: "url", Message: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return nil, &ValidationError{Field: "url", Message: "missing host"}
	}
	return u, nil
}
