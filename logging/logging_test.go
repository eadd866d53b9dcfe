package logging

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
}

func TestLogger(t *testing.T) {
	var out, errOut bytes.Buffer
	l := New(&out, &errOut, "audit")
	l.now = fixedClock

	l.Info("fetched %s", "https://example.com")
	l.Warn("slow")
	l.Debug("hidden")
	l.Error("failed: %v", "boom")

	assert.Equal(t,
		"[2024-05-06 07:08:09] INFO  [audit] fetched https://example.com\n"+
			"[2024-05-06 07:08:09] WARN  [audit] slow\n",
		out.String())
	assert.Equal(t, "[2024-05-06 07:08:09] ERROR [audit] failed: boom\n", errOut.String())

	out.Reset()
	l.SetDebug(true)
	l.Debug("visible")
	assert.Contains(t, out.String(), "DEBUG [audit] visible")

	out.Reset()
	l.With("cache").Debug("child")
	assert.Contains(t, out.String(), "[audit.cache] child")
}

func TestStatistics(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStatistics(dir, true)
	require.NoError(t, err)

	s.TrackVisitor("10.0.0.1")
	s.TrackVisitor("10.0.0.2")
	s.TrackVisitor("10.0.0.1")

	s.TrackAudit("https://example.com/a/", 100*time.Millisecond, false)
	s.TrackAudit("https://example.com/a", 300*time.Millisecond, true)
	s.TrackAudit("https://example.org", 200*time.Millisecond, false)
	s.TrackAudit("http://localhost:8082/api/analyze", 0, false)

	t.Run("Counters", func(t *testing.T) {
		assert.Equal(t, 2, s.UniqueVisitorsCount())
		assert.Equal(t, 4, s.Requests())
		assert.InDelta(t, 25.0, s.ErrorRate(), 1e-9)
		assert.InDelta(t, 150.0, s.AverageDuration, 1e-9)
	})

	t.Run("TopURLs", func(t *testing.T) {
		assert.Equal(t, []URLCount{
			{URL: "https://example.com/a", Count: 2},
			{URL: "https://example.org", Count: 1},
		}, s.TopURLs(5))
		assert.Len(t, s.TopURLs(1), 1)
	})

	t.Run("Snapshot", func(t *testing.T) {
		snap := s.Snapshot()
		assert.Equal(t, 4, snap["totalRequests"])
		assert.Contains(t, snap, "popularUrls")

		prod, err := NewStatistics("", false)
		require.NoError(t, err)
		assert.NotContains(t, prod.Snapshot(), "popularUrls")
	})

	t.Run("Persistence", func(t *testing.T) {
		require.NoError(t, s.Save())

		reloaded, err := NewStatistics(dir, false)
		require.NoError(t, err)
		assert.Equal(t, 4, reloaded.Requests())
		assert.Equal(t, 2, reloaded.PopularURLs["https://example.com/a"])
	})
}

func TestCleanURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/", "https://example.com"},
		{"https://example.com/blog/?q=1", "https://example.com/blog"},
		{"http://127.0.0.1:8080/x", ""},
		{"https://example.com/api/analyze", ""},
		{"not a url", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := cleanURL(tt.in); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
