package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/auditor/analyzer"
	"github.com/seo-optimizer/auditor/crawler"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "FETCH_TIMEOUT", "FETCH_MODE", "HISTORY_BACKEND", "AUDIT_CACHE_TTL", "RATE_LIMIT_RPS"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8082", cfg.Port)
	assert.Equal(t, crawler.DefaultTimeout, cfg.FetchTimeout)
	assert.Equal(t, FetchHTTP, cfg.FetchMode)
	assert.Equal(t, "memory", cfg.HistoryBackend)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 2.0, cfg.RateLimitRPS)
	assert.Equal(t, crawler.DefaultUserAgent, cfg.FetchOptions().UserAgent)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("FETCH_TIMEOUT", "15")
	t.Setenv("AUDIT_CACHE_TTL", "2m")
	t.Setenv("FETCH_MODE", "Browser")
	t.Setenv("RESPECT_ROBOTS", "true")
	t.Setenv("SITE_MAX_PAGES", "not-a-number")
	t.Setenv("HISTORY_BACKEND", "none")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, FetchBrowser, cfg.FetchMode)
	assert.True(t, cfg.RespectRobots)
	assert.Equal(t, 20, cfg.SiteMaxPages)
	assert.Equal(t, "none", cfg.History().Backend)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad fetch mode", map[string]string{"FETCH_MODE": "carrier-pigeon"}},
		{"zero timeout", map[string]string{"FETCH_TIMEOUT": "0s"}},
		{"unknown history", map[string]string{"HISTORY_BACKEND": "redis"}},
		{"mongo without uri", map[string]string{"HISTORY_BACKEND": "mongo", "MONGO_URI": ""}},
		{"postgres without dsn", map[string]string{"HISTORY_BACKEND": "postgres", "POSTGRES_DSN": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadRules(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		rs, err := LoadRules("")
		require.NoError(t, err)
		assert.Equal(t, analyzer.DefaultRules(), rs.Rules)
	})

	t.Run("yaml keeps unset defaults", func(t *testing.T) {
		path := writeFile(t, "rules.yaml", "rules:\n  title_max: 70\n  internal_links_min: 5\nextra_stop_words: [Shop, ' cart ']\n")
		rs, err := LoadRules(path)
		require.NoError(t, err)

		want := analyzer.DefaultRules()
		want.TitleMax = 70
		want.InternalLinksMin = 5
		assert.Equal(t, want, rs.Rules)

		stop := rs.StopWords()
		assert.True(t, stop.Has("shop"))
		assert.True(t, stop.Has("cart"))
		assert.True(t, stop.Has("the"))
	})

	t.Run("toml", func(t *testing.T) {
		path := writeFile(t, "rules.toml", "extra_stop_words = [\"mug\"]\n\n[rules]\ncontent_min_words = 500\ncontent_long_words = 1500\n")
		rs, err := LoadRules(path)
		require.NoError(t, err)
		assert.Equal(t, 500, rs.Rules.ContentMinWords)
		assert.Equal(t, 60, rs.Rules.TitleMax)
		assert.True(t, rs.StopWords().Has("mug"))
	})

	t.Run("example file", func(t *testing.T) {
		rs, err := LoadRules(filepath.Join("..", "rules.example.yaml"))
		require.NoError(t, err)
		assert.Equal(t, analyzer.DefaultRules(), rs.Rules)
		assert.Equal(t, []string{"shop", "cart"}, rs.ExtraStopWords)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := LoadRules(writeFile(t, "rules.json", "{}"))
		assert.Error(t, err)

		_, err = LoadRules(writeFile(t, "bad.yaml", "rules:\n  title_min: 80\n"))
		assert.Error(t, err)

		_, err = LoadRules(writeFile(t, "typo.yaml", "rules:\n  titel_max: 80\n"))
		assert.Error(t, err)

		_, err = LoadRules(writeFile(t, "typo.toml", "[rules]\ntitel_max = 80\n"))
		assert.Error(t, err)

		_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestNewFetcher(t *testing.T) {
	cfg := &Config{FetchMode: FetchHTTP, UserAgent: "seoaudit-test/1.0", FetchTimeout: time.Second, MaxBodyBytes: 1024}
	f, ok := cfg.NewFetcher(nil).(*crawler.HTTPFetcher)
	require.True(t, ok)
	assert.Equal(t, "seoaudit-test/1.0", f.UserAgent())

	cfg.FetchMode = FetchBrowser
	_, ok = cfg.NewFetcher(nil).(*crawler.BrowserFetcher)
	assert.True(t, ok)
}
