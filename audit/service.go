// Package audit runs the fetch, extract, analyze and report pipeline for
// single pages and keeps recent results in a TTL cache.
package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/seo-optimizer/auditor/analyzer"
	"github.com/seo-optimizer/auditor/crawler"
	"github.com/seo-optimizer/auditor/history"
	"github.com/seo-optimizer/auditor/inventory"
	"github.com/seo-optimizer/auditor/keywords"
	"github.com/seo-optimizer/auditor/logging"
	"github.com/seo-optimizer/auditor/report"
	"github.com/seo-optimizer/auditor/stats"
)

const (
	DefaultCacheTTL        = 30 * time.Minute
	DefaultCacheSize       = 1000
	DefaultCleanupInterval = 5 * time.Minute
)

// ServiceOptions configures a Service. The Service takes ownership of Stats
// and History and releases them in Shutdown.
type ServiceOptions struct {
	Rules           analyzer.Rules // zero value selects analyzer.DefaultRules
	StopWords       keywords.Set   // nil selects the built-in table
	CacheTTL        time.Duration  // zero disables the cache
	CacheSize       int
	CleanupInterval time.Duration
	Stats           *stats.Storage
	History         history.Recorder
	Logger          *logging.Logger
	Now             func() time.Time
}

// Service audits pages. It is safe for concurrent use.
type Service struct {
	fetcher   crawler.Fetcher
	rules     analyzer.Rules
	stopWords keywords.Set
	cache     *resultCache
	stats     *stats.Storage
	history   history.Recorder
	logger    *logging.Logger
	now       func() time.Time

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New builds a Service and starts its cache cleanup loop.
func New(fetcher crawler.Fetcher, opts ServiceOptions) (*Service, error) {
	if fetcher == nil {
		return nil, errors.New("audit: fetcher is required")
	}
	rules := opts.Rules
	if rules == (analyzer.Rules{}) {
		rules = analyzer.DefaultRules()
	}
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("audit: invalid rules: %w", err)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.History == nil {
		opts.History = history.Nop{}
	}
	if opts.StopWords == nil {
		opts.StopWords = keywords.DefaultStopWords()
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = DefaultCleanupInterval
	}

	s := &Service{
		fetcher:   fetcher,
		rules:     rules,
		stopWords: opts.StopWords,
		cache:     newResultCache(opts.CacheTTL, opts.CacheSize, opts.Now),
		stats:     opts.Stats,
		history:   opts.History,
		logger:    opts.Logger,
		now:       opts.Now,
		done:      make(chan struct{}),
	}

	if s.cache.enabled() {
		s.wg.Add(1)
		go s.periodicCleanup(opts.CleanupInterval)
	}
	return s, nil
}

func (s *Service) periodicCleanup(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.cache.cleanup(); n > 0 {
				s.logger.Debug("evicted %d cached audits", n)
			}
		case <-s.done:
			return
		}
	}
}

// Rules returns the thresholds audits are scored against.
func (s *Service) Rules() analyzer.Rules { return s.rules }

func (s *Service) count(d stats.Delta) {
	if s.stats != nil {
		s.stats.Increment(d)
	}
}

// ErrorKind names the pipeline stage an error came from.
func ErrorKind(err error) string {
	switch {
	case crawler.IsValidation(err):
		return "validation"
	case crawler.IsFetch(err):
		return "fetch"
	case crawler.IsParse(err):
		return "parse"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}

func (s *Service) failed(url string, err error) error {
	kind := ErrorKind(err)
	if kind == "validation" {
		s.logger.Debug("rejected %q: %v", url, err)
		return err
	}
	s.logger.Error("%s error for %s: %v", kind, url, err)
	s.count(stats.Delta{AuditsFailed: 1})
	return err
}

// fetch retrieves rawURL and parses the body once.
func (s *Service) fetch(ctx context.Context, rawURL string) (*crawler.Response, *goquery.Document, error) {
	resp, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, nil, err
	}
	s.count(stats.Delta{PagesCrawled: 1})

	doc, err := crawler.ParseDocument(resp.Body)
	if err != nil {
		var pe *crawler.ParseError
		if errors.As(err, &pe) {
			pe.URL = resp.URL
		}
		return nil, nil, err
	}
	return resp, doc, nil
}

// snapshot fetches rawURL and builds its PageSnapshot.
func (s *Service) snapshot(ctx context.Context, rawURL string) (*crawler.PageSnapshot, error) {
	resp, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	s.count(stats.Delta{PagesCrawled: 1})
	return crawler.Snapshot(resp)
}

// plan is a validated audit request.
type plan struct {
	url   string
	kw    keywords.Options
	rules analyzer.Rules
	key   string
}

func (s *Service) plan(rawURL string, opts Options) (plan, error) {
	target, err := crawler.ValidateURL(rawURL)
	if err != nil {
		return plan{url: rawURL}, err
	}
	p := plan{url: target.String()}
	if p.kw, err = opts.keywordOptions(s.stopWords); err != nil {
		return p, err
	}
	if p.rules, err = opts.rules(s.rules); err != nil {
		return p, err
	}
	p.key = cacheKey(p.url, Options{
		MinKeywordLength:  p.kw.MinLength,
		TopKeywordCount:   p.kw.TopN,
		MinParagraphWords: p.rules.ParagraphMinWords,
	})
	return p, nil
}

// Audit runs the whole pipeline for rawURL. Errors are *crawler.ValidationError,
// *crawler.FetchError or *crawler.ParseError, or the context's error.
func (s *Service) Audit(ctx context.Context, rawURL string, opts Options) (*Audit, error) {
	p, err := s.plan(rawURL, opts)
	if err != nil {
		return nil, s.failed(p.url, err)
	}
	url := p.url

	if !opts.SkipCache {
		if cached, ok := s.cache.get(p.key); ok {
			s.count(stats.Delta{CacheHits: 1})
			hit := *cached
			hit.Cached = true
			return &hit, nil
		}
		if s.cache.enabled() {
			s.count(stats.Delta{CacheMisses: 1})
		}
	}

	start := s.now()
	snap, err := s.snapshot(ctx, url)
	if err != nil {
		return nil, s.failed(url, err)
	}

	kws := keywords.FromSnapshot(snap, p.kw)
	res := analyzer.Analyze(snap, kws, p.rules)

	a := &Audit{
		ID:              uuid.NewString(),
		URL:             url,
		SEOScore:        res.SEOScore,
		TotalChecks:     res.TotalChecks,
		PassedChecks:    res.PassedChecks,
		Issues:          res.Issues,
		Recommendations: res.Recommendations,
		PassedTests:     analyzer.PassedTests(res),
		Keywords:        kws,
		Report:          report.Render(res, kws, report.Options{}),
		PageInfo:        pageInfo(snap),
		Details:         res.Details,
		FetchedAt:       snap.FetchedAt,
		Duration:        s.now().Sub(start),
	}

	s.cache.put(p.key, a)
	s.count(stats.Delta{AuditsCompleted: 1})
	s.record(ctx, a)

	s.logger.Info("audited %s: score %d (%d/%d checks)", url, a.SEOScore, a.PassedChecks, a.TotalChecks)
	return a, nil
}

func (s *Service) record(ctx context.Context, a *Audit) {
	top := make([]string, 0, 5)
	for i, kw := range a.Keywords {
		if i == 5 {
			break
		}
		top = append(top, kw.Word)
	}
	err := s.history.Record(ctx, history.Entry{
		ID:           a.ID,
		URL:          a.URL,
		Score:        a.SEOScore,
		TotalChecks:  a.TotalChecks,
		PassedChecks: a.PassedChecks,
		IssueCount:   len(a.Issues),
		TopKeywords:  top,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn("history: %v", err)
	}
}

// History returns recent audits of url, or of every page when url is empty.
func (s *Service) History(ctx context.Context, url string, limit int) ([]history.Entry, error) {
	return s.history.Recent(ctx, url, limit)
}

// Keywords fetches rawURL and ranks its top count keywords.
func (s *Service) Keywords(ctx context.Context, rawURL string, count int) (*KeywordsResult, error) {
	target, err := crawler.ValidateURL(rawURL)
	if err != nil {
		return nil, s.failed(rawURL, err)
	}
	url := target.String()

	kwOpts, err := Options{TopKeywordCount: count}.keywordOptions(s.stopWords)
	if err != nil {
		return nil, s.failed(url, err)
	}

	snap, err := s.snapshot(ctx, url)
	if err != nil {
		return nil, s.failed(url, err)
	}

	kws := keywords.FromSnapshot(snap, kwOpts)
	return &KeywordsResult{
		URL:        url,
		Keywords:   kws,
		TotalWords: snap.WordCount,
		PageTitle:  snap.Title,
		Summary:    fmt.Sprintf("%d keywords extracted", len(kws)),
	}, nil
}

// Inventory fetches rawURL and catalogs its headings, paragraphs and divisions.
func (s *Service) Inventory(ctx context.Context, rawURL string) (*InventoryResult, error) {
	target, err := crawler.ValidateURL(rawURL)
	if err != nil {
		return nil, s.failed(rawURL, err)
	}
	url := target.String()

	_, doc, err := s.fetch(ctx, url)
	if err != nil {
		return nil, s.failed(url, err)
	}

	inv := inventory.Extract(doc)
	return &InventoryResult{
		URL:       url,
		Inventory: inv,
		Report:    inventory.Render(url, inv, time.Time{}),
	}, nil
}

// InventoryTags fetches rawURL and catalogs only the requested tag types.
func (s *Service) InventoryTags(ctx context.Context, rawURL string, tags []string) (*TagsResult, error) {
	target, err := crawler.ValidateURL(rawURL)
	if err != nil {
		return nil, s.failed(rawURL, err)
	}
	url := target.String()
	if len(tags) == 0 {
		return nil, s.failed(url, &crawler.ValidationError{Field: "tags", Message: "at least one tag is required"})
	}

	_, doc, err := s.fetch(ctx, url)
	if err != nil {
		return nil, s.failed(url, err)
	}

	return &TagsResult{URL: url, TagSelection: inventory.ExtractTags(doc, tags)}, nil
}

// IsCached reports whether an audit of rawURL with opts would be served
// from the cache.
func (s *Service) IsCached(rawURL string, opts Options) bool {
	p, err := s.plan(rawURL, opts)
	if err != nil {
		return false
	}
	return s.cache.contains(p.key)
}

// ClearCache drops every cached audit.
func (s *Service) ClearCache() {
	s.cache.clear()
}

func (s *Service) CacheStats() CacheStats {
	return CacheStats{
		Entries: s.cache.len(),
		MaxSize: s.cache.maxSize,
		TTL:     s.cache.ttl,
		Hits:    s.cache.hits.Load(),
		Misses:  s.cache.misses.Load(),
		Enabled: s.cache.enabled(),
	}
}

// Shutdown stops the cleanup loop, flushes statistics and closes the
// history recorder. Later calls are no-ops.
func (s *Service) Shutdown() error {
	var errs []error
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		if s.stats != nil {
			if err := s.stats.Shutdown(); err != nil {
				errs = append(errs, err)
			}
		}
		if err := s.history.Close(); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}
