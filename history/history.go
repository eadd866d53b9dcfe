// Package history records completed audits so score changes can be tracked
// over time.
package history

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Entry is the stored summary of one audit.
type Entry struct {
	ID           string    `json:"id" bson:"_id"`
	URL          string    `json:"url" bson:"url"`
	Score        int       `json:"score" bson:"score"`
	TotalChecks  int       `json:"totalChecks" bson:"total_checks"`
	PassedChecks int       `json:"passedChecks" bson:"passed_checks"`
	IssueCount   int       `json:"issueCount" bson:"issue_count"`
	TopKeywords  []string  `json:"topKeywords" bson:"top_keywords"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
}

// Recorder stores audit entries. Recent returns newest first; an empty url
// matches every page.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, url string, limit int) ([]Entry, error)
	Close() error
}

// Backends accepted by Open.
const (
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendNone     = "none"
)

// Settings selects and configures a backend.
type Settings struct {
	Backend        string
	MongoURI       string
	MongoDatabase  string
	PostgresDSN    string
	MemoryCapacity int
}

// Open builds the recorder named by s.Backend.
func Open(ctx context.Context, s Settings) (Recorder, error) {
	switch s.Backend {
	case BackendMemory, "":
		return NewMemoryRecorder(s.MemoryCapacity), nil
	case BackendMongo:
		return NewMongoRecorder(ctx, s.MongoURI, s.MongoDatabase)
	case BackendPostgres:
		return NewPostgresRecorder(ctx, s.PostgresDSN)
	case BackendNone:
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", s.Backend)
	}
}

// DefaultMemoryCapacity bounds the in-process history.
const DefaultMemoryCapacity = 500

// MemoryRecorder keeps the newest entries in a ring buffer.
type MemoryRecorder struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
}

func NewMemoryRecorder(capacity int) *MemoryRecorder {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryRecorder{entries: make([]Entry, capacity)}
}

func (m *MemoryRecorder) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.TopKeywords = append([]string(nil), e.TopKeywords...)
	m.entries[m.next] = e
	m.next = (m.next + 1) % len(m.entries)
	if m.next == 0 {
		m.full = true
	}
	return nil
}

func (m *MemoryRecorder) Recent(_ context.Context, url string, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	size := m.next
	if m.full {
		size = len(m.entries)
	}

	var out []Entry
	for i := 1; i <= size; i++ {
		e := m.entries[(m.next-i+len(m.entries))%len(m.entries)]
		if url != "" && e.URL != url {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryRecorder) Close() error { return nil }

// Nop discards every entry.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error                  { return nil }
func (Nop) Recent(context.Context, string, int) ([]Entry, error) { return nil, nil }
func (Nop) Close() error                                         { return nil }
