package logging

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Statistics collects request-level counters for the HTTP surface.
type Statistics struct {
	UniqueVisitors  map[string]time.Time `json:"uniqueVisitors"` // IP -> last visit
	AuditRequests   int                  `json:"auditRequests"`
	ErrorCount      int                  `json:"errorCount"`
	PopularURLs     map[string]int       `json:"popularUrls"`
	AverageDuration float64              `json:"averageDuration"` // milliseconds
	TotalDuration   float64              `json:"totalDuration"`
	LastPersisted   time.Time            `json:"lastPersisted"`

	filePath string
	devMode  bool
	now      func() time.Time
	mutex    sync.RWMutex
}

// URLCount is one row of the popular URL ranking.
type URLCount struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// NewStatistics loads dataDir/statistics.json when present. With devMode
// the snapshot also exposes the popular URL ranking.
func NewStatistics(dataDir string, devMode bool) (*Statistics, error) {
	s := &Statistics{
		UniqueVisitors: make(map[string]time.Time),
		PopularURLs:    make(map[string]int),
		devMode:        devMode,
		now:            time.Now,
	}
	if dataDir == "" {
		return s, nil
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create data directory: %w", err)
	}
	s.filePath = filepath.Join(dataDir, "statistics.json")
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// TrackVisitor records a visit from ip.
func (s *Statistics) TrackVisitor(ip string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.UniqueVisitors[ip] = s.now()
}

// cleanURL reduces an audited URL to scheme://host/path. Local and API
// addresses are not tracked.
func cleanURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}

	if strings.Contains(u.Host, "localhost") ||
		strings.Contains(u.Host, "127.0.0.1") ||
		strings.Contains(strings.ToLower(u.Path), "/api/") {
		return ""
	}

	clean := u.Scheme + "://" + u.Host
	if u.Path != "" && u.Path != "/" {
		clean += u.Path
	}
	return strings.TrimSuffix(clean, "/")
}

// TrackAudit records one audit request for target.
func (s *Statistics) TrackAudit(target string, duration time.Duration, hasError bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.AuditRequests++
	if cleaned := cleanURL(target); cleaned != "" {
		s.PopularURLs[cleaned]++
	}
	if hasError {
		s.ErrorCount++
	}

	s.TotalDuration += float64(duration.Milliseconds())
	s.AverageDuration = s.TotalDuration / float64(s.AuditRequests)
}

// Requests returns the number of tracked audit requests.
func (s *Statistics) Requests() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.AuditRequests
}

// UniqueVisitorsCount counts visitors seen in the last 24 hours.
func (s *Statistics) UniqueVisitorsCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.uniqueVisitors()
}

func (s *Statistics) uniqueVisitors() int {
	cutoff := s.now().Add(-24 * time.Hour)
	count := 0
	for _, lastVisit := range s.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}
	return count
}

// TopURLs returns the n most audited URLs, highest count first, ties by URL.
func (s *Statistics) TopURLs(n int) []URLCount {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.topURLs(n)
}

func (s *Statistics) topURLs(n int) []URLCount {
	ranked := make([]URLCount, 0, len(s.PopularURLs))
	for u, count := range s.PopularURLs {
		ranked = append(ranked, URLCount{URL: u, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].URL < ranked[j].URL
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// ErrorRate is the share of failed audit requests in percent.
func (s *Statistics) ErrorRate() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.errorRate()
}

func (s *Statistics) errorRate() float64 {
	if s.AuditRequests == 0 {
		return 0
	}
	return float64(s.ErrorCount) / float64(s.AuditRequests) * 100
}

// Snapshot returns the public view of the statistics.
func (s *Statistics) Snapshot() map[string]any {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := map[string]any{
		"uniqueVisitors24h": s.uniqueVisitors(),
		"totalRequests":     s.AuditRequests,
		"errorRate":         s.errorRate(),
		"averageDuration":   s.AverageDuration,
	}
	if s.devMode {
		out["popularUrls"] = s.topURLs(5)
	}
	return out
}

// Save persists the statistics. It is a no-op without a data directory.
func (s *Statistics) Save() error {
	if s.filePath == "" {
		return nil
	}

	s.mutex.Lock()
	s.LastPersisted = s.now()
	data, err := json.Marshal(s)
	s.mutex.Unlock()
	if err != nil {
		return fmt.Errorf("could not encode statistics: %w", err)
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("could not write statistics file: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not replace statistics file: %w", err)
	}
	return nil
}

// Load reads the statistics file; a missing file is not an error.
func (s *Statistics) Load() error {
	if s.filePath == "" {
		return nil
	}
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not open statistics file: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("could not decode statistics: %w", err)
	}
	if s.UniqueVisitors == nil {
		s.UniqueVisitors = make(map[string]time.Time)
	}
	if s.PopularURLs == nil {
		s.PopularURLs = make(map[string]int)
	}
	return nil
}
