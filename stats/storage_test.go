package stats

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	storage, err := NewStorage(t.TempDir(), nil)
	require.NoError(t, err)
	defer storage.Shutdown()

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	storage.now = func() time.Time { return now }

	t.Run("Increment", func(t *testing.T) {
		storage.Increment(Delta{CacheHits: 1, CacheMisses: 2, AuditsCompleted: 3, AuditsFailed: 4, PagesCrawled: 5})
		stats := storage.GetCurrentStats()

		assert.Equal(t, 1, stats.CacheHits)
		assert.Equal(t, 2, stats.CacheMisses)
		assert.Equal(t, 3, stats.AuditsCompleted)
		assert.Equal(t, 4, stats.AuditsFailed)
		assert.Equal(t, 5, stats.PagesCrawled)
		assert.Equal(t, now, stats.LastUpdated)
		assert.InDelta(t, 33.33, stats.CacheHitRate(), 0.01)
	})

	t.Run("Summaries", func(t *testing.T) {
		now = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		storage.Increment(Delta{CacheHits: 3, CacheMisses: 1})

		assert.Equal(t, []string{"2024-06", "2024-05"}, storage.GetAllMonths())

		rows := storage.Summaries(1)
		require.Len(t, rows, 1)
		assert.Equal(t, "2024-06", rows[0].Month)
		assert.Equal(t, 75.0, rows[0].CacheHitRate)

		total := storage.Totals()
		assert.Equal(t, 4, total.CacheHits)
		assert.Equal(t, 3, total.AuditsCompleted)
		assert.Equal(t, now, total.LastUpdated)
	})

	t.Run("Cleanup", func(t *testing.T) {
		storage.mu.Lock()
		storage.months["2024-01"] = &MonthlyStats{CacheHits: 100}
		storage.mu.Unlock()

		storage.Cleanup(2)

		_, exists := storage.GetMonthlyStats("2024-01")
		assert.False(t, exists)
		assert.Equal(t, []string{"2024-06", "2024-05"}, storage.GetAllMonths())

		storage.Cleanup(0)
		assert.Equal(t, []string{"2024-06"}, storage.GetAllMonths())
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		before := storage.GetCurrentStats().CacheHits

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					storage.Increment(Delta{CacheHits: 1})
					storage.GetCurrentStats()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1000, storage.GetCurrentStats().CacheHits-before)
	})
}

func TestStoragePersistence(t *testing.T) {
	dir := t.TempDir()

	storage, err := NewStorage(dir, nil)
	require.NoError(t, err)
	storage.Increment(Delta{AuditsCompleted: 7})

	require.NoError(t, storage.Shutdown())
	require.NoError(t, storage.Shutdown())

	info, err := os.Stat(filepath.Join(dir, "stats.json"))
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(1024))

	reloaded, err := NewStorage(dir, nil)
	require.NoError(t, err)
	defer reloaded.Shutdown()

	assert.Equal(t, 7, reloaded.GetCurrentStats().AuditsCompleted)
}

func TestStorageCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stats.json"), []byte("{not json"), 0644))

	_, err := NewStorage(dir, nil)
	assert.Error(t, err)
}
