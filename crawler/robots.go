package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/seo-optimizer/auditor/logging"
)

// A robots.txt that failed to load is retried after this long at most.
const robotsFailureTTL = time.Minute

type robotsEntry struct {
	data    *robotstxt.RobotsData
	expires time.Time
}

// RobotsPolicy answers whether a path may be fetched, caching robots.txt per host.
type RobotsPolicy struct {
	client *http.Client
	ttl    time.Duration
	logger *logging.Logger
	now    func() time.Time
	mu     sync.RWMutex
	hosts  map[string]robotsEntry
}

// NewRobotsPolicy caches a loaded robots.txt for ttl (an hour when zero). A
// nil logger discards load failures.
func NewRobotsPolicy(client *http.Client, ttl time.Duration, logger *logging.Logger) *RobotsPolicy {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &RobotsPolicy{
		client: client,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		hosts:  make(map[string]robotsEntry),
	}
}

// Allowed reports whether agent may fetch u. A robots.txt that cannot be
// loaded or parsed allows everything.
func (p *RobotsPolicy) Allowed(ctx context.Context, u *url.URL, agent string) bool {
	data := p.lookup(ctx, u)
	if data == nil {
		return true
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return data.TestAgent(path, agent)
}

// lookup returns the cached robots.txt for u's origin, loading it when absent
// or expired. A failed load is cached only briefly, and not at all when ctx
// ended, so the next request tries again.
func (p *RobotsPolicy) lookup(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	key := u.Scheme + "://" + u.Host

	p.mu.RLock()
	entry, found := p.hosts[key]
	p.mu.RUnlock()
	if found && p.now().Before(entry.expires) {
		return entry.data
	}

	data, err := p.load(ctx, key)
	if err != nil {
		if ctx.Err() != nil {
			p.logger.Debug("robots.txt for %s not loaded: %v", key, err)
			return nil
		}
		p.logger.Warn("robots.txt for %s ignored: %v", key, err)
	}

	ttl := p.ttl
	if data == nil && ttl > robotsFailureTTL {
		ttl = robotsFailureTTL
	}
	p.mu.Lock()
	p.hosts[key] = robotsEntry{data: data, expires: p.now().Add(ttl)}
	p.mu.Unlock()
	return data
}

func (p *RobotsPolicy) load(ctx context.Context, origin string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	return data, nil
}
