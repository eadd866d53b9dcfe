// Package stats keeps per-month audit counters and persists them as JSON.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/seo-optimizer/auditor/logging"
)

const (
	monthLayout   = "2006-01"
	flushInterval = 5 * time.Minute
	// Increment asks for a write at most this often; the ticker covers the rest.
	writeThrottle = time.Minute
)

// MonthlyStats holds the audit counters for one calendar month.
type MonthlyStats struct {
	CacheHits       int       `json:"cache_hits"`
	CacheMisses     int       `json:"cache_misses"`
	AuditsCompleted int       `json:"audits_completed"`
	AuditsFailed    int       `json:"audits_failed"`
	PagesCrawled    int       `json:"pages_crawled"`
	LastUpdated     time.Time `json:"last_updated"`
}

// CacheHitRate is the share of cache lookups that hit, as a percentage.
func (m MonthlyStats) CacheHitRate() float64 {
	lookups := m.CacheHits + m.CacheMisses
	if lookups == 0 {
		return 0
	}
	return float64(m.CacheHits) / float64(lookups) * 100
}

func (m *MonthlyStats) add(d Delta) {
	m.CacheHits += d.CacheHits
	m.CacheMisses += d.CacheMisses
	m.AuditsCompleted += d.AuditsCompleted
	m.AuditsFailed += d.AuditsFailed
	m.PagesCrawled += d.PagesCrawled
}

// Delta is added to the current month's counters.
type Delta struct {
	CacheHits       int
	CacheMisses     int
	AuditsCompleted int
	AuditsFailed    int
	PagesCrawled    int
}

// MonthSummary is one row of Summaries.
type MonthSummary struct {
	Month        string  `json:"month"`
	CacheHitRate float64 `json:"cacheHitRate"`
	MonthlyStats
}

// Storage keeps monthly counters in memory and persists them to
// DATA_DIR/stats.json from a background writer.
type Storage struct {
	mu       sync.RWMutex
	months   map[string]*MonthlyStats // "YYYY-MM"
	path     string
	logger   *logging.Logger
	now      func() time.Time
	lastSave time.Time

	flush     chan struct{}
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewStorage loads dataDir/stats.json if present and starts the writer. A
// nil logger discards write failures.
func NewStorage(dataDir string, logger *logging.Logger) (*Storage, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	s := &Storage{
		months:  make(map[string]*MonthlyStats),
		path:    filepath.Join(dataDir, "stats.json"),
		logger:  logger,
		now:     time.Now,
		flush:   make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	go s.writer()

	return s, nil
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return json.Unmarshal(data, &s.months)
}

// save writes to a temp file and renames it over the real one.
func (s *Storage) save() error {
	s.mu.RLock()
	data, err := json.Marshal(s.months)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

func (s *Storage) writer() {
	defer close(s.stopped)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.flush:
		case <-ticker.C:
		case <-s.done:
			return
		}
		if err := s.save(); err != nil {
			s.logger.Warn("persist monthly stats: %v", err)
		}
	}
}

func (s *Storage) month() string {
	return s.now().Format(monthLayout)
}

// requestWrite signals the writer without blocking; one pending request is enough.
func (s *Storage) requestWrite() {
	select {
	case s.flush <- struct{}{}:
	default:
	}
}

// Increment adds d to the current month.
func (s *Storage) Increment(d Delta) {
	now := s.now()
	key := now.Format(monthLayout)

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.months[key]
	if !ok {
		m = &MonthlyStats{}
		s.months[key] = m
	}
	m.add(d)
	m.LastUpdated = now

	if now.Sub(s.lastSave) > writeThrottle {
		s.requestWrite()
		s.lastSave = now
	}
}

// GetCurrentStats returns a copy of this month's counters.
func (s *Storage) GetCurrentStats() MonthlyStats {
	stats, _ := s.GetMonthlyStats(s.month())
	return stats
}

// GetMonthlyStats returns the counters for a "YYYY-MM" month.
func (s *Storage) GetMonthlyStats(yearMonth string) (MonthlyStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m, ok := s.months[yearMonth]; ok {
		return *m, true
	}
	return MonthlyStats{}, false
}

// GetAllMonths lists months with statistics, newest first.
func (s *Storage) GetAllMonths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedMonths()
}

func (s *Storage) sortedMonths() []string {
	keys := make([]string, 0, len(s.months))
	for k := range s.months {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}

// Summaries returns up to n months, newest first, with their hit rates.
func (s *Storage) Summaries(n int) []MonthSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := s.sortedMonths()
	if n > 0 && len(keys) > n {
		keys = keys[:n]
	}
	out := make([]MonthSummary, 0, len(keys))
	for _, k := range keys {
		m := *s.months[k]
		out = append(out, MonthSummary{Month: k, CacheHitRate: m.CacheHitRate(), MonthlyStats: m})
	}
	return out
}

// Totals sums every stored month. LastUpdated is the most recent update.
func (s *Storage) Totals() MonthlyStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total MonthlyStats
	for _, m := range s.months {
		total.add(Delta{
			CacheHits:       m.CacheHits,
			CacheMisses:     m.CacheMisses,
			AuditsCompleted: m.AuditsCompleted,
			AuditsFailed:    m.AuditsFailed,
			PagesCrawled:    m.PagesCrawled,
		})
		if m.LastUpdated.After(total.LastUpdated) {
			total.LastUpdated = m.LastUpdated
		}
	}
	return total
}

// Cleanup drops every month older than the newest retainMonths months,
// counting the current one.
func (s *Storage) Cleanup(retainMonths int) {
	if retainMonths < 1 {
		retainMonths = 1
	}
	now := s.now()
	keep := make(map[string]bool, retainMonths)
	for i := 0; i < retainMonths; i++ {
		keep[now.AddDate(0, -i, 0).Format(monthLayout)] = true
	}

	s.mu.Lock()
	dropped := 0
	for k := range s.months {
		if !keep[k] {
			delete(s.months, k)
			dropped++
		}
	}
	s.mu.Unlock()

	if dropped > 0 {
		s.requestWrite()
		s.logger.Info("dropped %d months of statistics, keeping %d", dropped, retainMonths)
	}
}

// Shutdown stops the background writer and flushes to disk. It is safe to
// call more than once.
func (s *Storage) Shutdown() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		<-s.stopped
		err = s.save()
	})
	return err
}
