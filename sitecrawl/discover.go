// Package sitecrawl finds the internal pages of a site and audits them.
package sitecrawl

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly"

	"github.com/seo-optimizer/auditor/crawler"
)

const (
	DefaultMaxPages    = 20
	DefaultMaxDepth    = 2
	DefaultConcurrency = 4
)

// Links to these never lead to an auditable page.
var assetExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".svg": true, ".webp": true,
	".ico": true, ".css": true, ".js": true, ".pdf": true, ".zip": true, ".mp4": true,
	".mp3": true, ".xml": true, ".json": true, ".woff": true, ".woff2": true,
}

// DiscoverOptions bounds a discovery crawl. MaxDepth counts link hops from
// the seed.
type DiscoverOptions struct {
	MaxPages      int
	MaxDepth      int
	Parallelism   int
	UserAgent     string
	Timeout       time.Duration
	RespectRobots bool
}

func (o DiscoverOptions) withDefaults() DiscoverOptions {
	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}
	if o.MaxDepth < 0 {
		o.MaxDepth = 0
	}
	if o.Parallelism <= 0 {
		o.Parallelism = DefaultConcurrency
	}
	if o.UserAgent == "" {
		o.UserAgent = crawler.DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = crawler.DefaultTimeout
	}
	return o
}

// normalize strips the fragment and keeps only same-host http(s) page links.
func normalize(raw string, host string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	if !strings.EqualFold(u.Host, host) {
		return "", false
	}
	if assetExtensions[strings.ToLower(path.Ext(u.Path))] {
		return "", false
	}
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), true
}

// Discover crawls outward from seed and returns the sorted URLs of the
// same-host HTML pages it reached, seed included.
func Discover(ctx context.Context, seed string, opts DiscoverOptions) ([]string, error) {
	opts = opts.withDefaults()

	target, err := crawler.ValidateURL(seed)
	if err != nil {
		return nil, err
	}
	start, ok := normalize(target.String(), target.Host)
	if !ok {
		return nil, &crawler.ValidationError{Field: "url", Message: fmt.Sprintf("%s is not an HTML page", target)}
	}

	c := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.MaxDepth(opts.MaxDepth+1),
		colly.Async(true),
	)
	c.IgnoreRobotsTxt = !opts.RespectRobots
	c.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: opts.Timeout}).DialContext,
		TLSHandshakeTimeout:   opts.Timeout,
		ResponseHeaderTimeout: opts.Timeout,
		MaxIdleConnsPerHost:   opts.Parallelism,
	})
	if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: opts.Parallelism}); err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		queued = map[string]bool{start: true}
		found  []string
	)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	c.OnResponse(func(r *colly.Response) {
		ct := strings.ToLower(r.Headers.Get("Content-Type"))
		if ct != "" && !strings.Contains(ct, "html") {
			return
		}
		mu.Lock()
		found = append(found, r.Request.URL.String())
		mu.Unlock()
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		if e.Request.Depth > opts.MaxDepth {
			return
		}
		link, ok := normalize(e.Request.AbsoluteURL(e.Attr("href")), target.Host)
		if !ok {
			return
		}

		mu.Lock()
		if queued[link] || len(queued) >= opts.MaxPages {
			mu.Unlock()
			return
		}
		queued[link] = true
		mu.Unlock()

		// Depth and revisit errors are expected here.
		e.Request.Visit(link)
	})

	if err := c.Visit(start); err != nil {
		return nil, &crawler.FetchError{URL: start, Err: err}
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Strings(found)
	if len(found) == 0 {
		return []string{start}, nil
	}
	return found, nil
}
