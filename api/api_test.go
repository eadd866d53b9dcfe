package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/auditor/audit"
	"github.com/seo-optimizer/auditor/crawler"
	"github.com/seo-optimizer/auditor/history"
	"github.com/seo-optimizer/auditor/logging"
	"github.com/seo-optimizer/auditor/middleware"
	"github.com/seo-optimizer/auditor/sitecrawl"
	"github.com/seo-optimizer/auditor/stats"
)

const page = `<html><head><title>Handmade ceramic mugs for coffee lovers</title>
<meta name="description" content="Mugs"></head>
<body><h1>Mugs</h1><h2>Glazes</h2><p>Ceramic mugs glazed by hand.</p><div id="main"><p>More mugs.</p></div></body></html>`

type stubFetcher struct{}

func (stubFetcher) Fetch(_ context.Context, rawURL string) (*crawler.Response, error) {
	switch rawURL {
	case "https://example.com/":
		return &crawler.Response{URL: rawURL, StatusCode: 200, Body: []byte(page)}, nil
	case "https://example.com/slow":
		return nil, context.DeadlineExceeded
	default:
		return nil, &crawler.FetchError{URL: rawURL, StatusCode: 404, Err: errors.New("unexpected status 404 Not Found")}
	}
}

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(t *testing.T) (*gin.Engine, *logging.Statistics) {
	t.Helper()
	svc, err := audit.New(stubFetcher{}, audit.ServiceOptions{
		CacheTTL: time.Minute,
		History:  history.NewMemoryRecorder(10),
	})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Shutdown() })

	requests, err := logging.NewStatistics("", true)
	require.NoError(t, err)

	h := NewHandler(Deps{
		Audits:   svc,
		SiteOpts: sitecrawl.Options{Discover: sitecrawl.DiscoverOptions{MaxPages: 5, MaxDepth: 1}},
		Requests: requests,
	})
	r := NewRouter(h, middleware.ErrorHandler(logging.Discard()), middleware.RequestStats(requests, logging.Discard(), 0, AuditPaths...))
	return r, requests
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r, _ := setup(t)
	w := do(r, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAnalyze(t *testing.T) {
	r, requests := setup(t)

	t.Run("json", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/analyze", `{"url":"https://example.com/"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var got audit.Audit
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "https://example.com/", got.URL)
		assert.Positive(t, got.TotalChecks)
		assert.Contains(t, got.Report, "SEO Technical Audit Report")
		assert.Equal(t, 1, got.PageInfo.HeadingsCount["h2"])
		assert.Empty(t, got.Error)
	})

	t.Run("text", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/analyze", `{"url":"https://example.com/","format":"text"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Body.String(), "SEO Technical Audit Report\n"))
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			body string
			code int
		}{
			{`{}`, http.StatusBadRequest},
			{`{"url":"   "}`, http.StatusBadRequest},
			{`{"url":"ftp://example.com"}`, http.StatusBadRequest},
			{`{"url":"https://example.com/","topKeywordCount":-2}`, http.StatusBadRequest},
			{`{"url":"https://example.com/missing"}`, http.StatusBadGateway},
			{`{"url":"https://example.com/slow"}`, http.StatusGatewayTimeout},
		}
		for _, tt := range tests {
			w := do(r, http.MethodPost, "/api/analyze", tt.body)
			assert.Equal(t, tt.code, w.Code, tt.body)
		}

		w := do(r, http.MethodPost, "/api/analyze", `{"url":"https://example.com/missing"}`)
		var failed audit.Audit
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failed))
		assert.Contains(t, failed.Error, "Error fetching web page https://example.com/missing: HTTP 404")
	})

	assert.Equal(t, 9, requests.Requests())
}

func TestKeywordsAndExtract(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodPost, "/api/keywords", `{"url":"https://example.com/","keywordCount":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	var kw audit.KeywordsResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &kw))
	assert.Len(t, kw.Keywords, 2)
	assert.Equal(t, "mugs", kw.Keywords[0].Word)

	w = do(r, http.MethodPost, "/api/extract", `{"url":"https://example.com/","tags":"h2, p"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var tags audit.TagsResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tags))
	assert.Equal(t, []string{"h2", "p"}, tags.RequestedTags)
	assert.Equal(t, 3, tags.TotalElements)

	w = do(r, http.MethodPost, "/api/extract", `{"url":"https://example.com/","format":"text"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "HTML Content Extraction Report")
}

func TestHistoryAndCache(t *testing.T) {
	r, _ := setup(t)

	do(r, http.MethodPost, "/api/analyze", `{"url":"https://example.com/"}`)
	do(r, http.MethodPost, "/api/analyze", `{"url":"https://example.com/"}`)

	w := do(r, http.MethodGet, "/api/history?url=https://example.com/&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	var hist struct {
		Count   int             `json:"count"`
		Entries []history.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hist))
	assert.Equal(t, 1, hist.Count)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/history?limit=zero", "").Code)

	w = do(r, http.MethodGet, "/api/cache", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cs audit.CacheStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cs))
	assert.Equal(t, 1, cs.Entries)
	assert.Equal(t, int64(1), cs.Hits)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/cache", "").Code)

	w = do(r, http.MethodGet, "/api/statistics", "")
	require.Equal(t, http.StatusOK, w.Code)
	var st map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Contains(t, st, "cache")
	assert.Contains(t, st, "requests")
	assert.NotContains(t, st, "month")
}

func TestSiteAuditValidation(t *testing.T) {
	r, _ := setup(t)
	w := do(r, http.MethodPost, "/api/site-audit", `{"url":"notaurl"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(&crawler.ParseError{Err: errors.New("bad")}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

func TestStatisticsWithMonthly(t *testing.T) {
	monthly, err := stats.NewStorage(t.TempDir(), nil)
	require.NoError(t, err)
	svc, err := audit.New(stubFetcher{}, audit.ServiceOptions{CacheTTL: time.Minute, Stats: monthly})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Shutdown() })

	r := NewRouter(NewHandler(Deps{Audits: svc, Monthly: monthly}))
	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/analyze", `{"url":"https://example.com/"}`).Code)

	w := do(r, http.MethodGet, "/api/statistics", "")
	require.Equal(t, http.StatusOK, w.Code)
	var st struct {
		Month   stats.MonthlyStats   `json:"month"`
		Months  []stats.MonthSummary `json:"months"`
		AllTime stats.MonthlyStats   `json:"allTime"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, 1, st.Month.AuditsCompleted)
	assert.Equal(t, 1, st.Month.CacheMisses)
	require.Len(t, st.Months, 1)
	assert.Equal(t, 1, st.AllTime.AuditsCompleted)
}
