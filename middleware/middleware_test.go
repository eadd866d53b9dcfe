package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/auditor/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "192.0.2.1:1234"
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(logging.Discard()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := perform(r, http.MethodGet, "/panic")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"An unexpected error occurred"}`, w.Body.String())
}

func TestErrorHandlerContextErrors(t *testing.T) {
	var logs bytes.Buffer
	r := gin.New()
	r.Use(ErrorHandler(logging.New(&logs, &logs, "http")))
	r.GET("/silent", func(c *gin.Context) {
		c.Set(AuditURLKey, "https://example.com/")
		c.Error(errors.New("history unavailable"))
	})
	r.GET("/written", func(c *gin.Context) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream"})
		c.Error(errors.New("fetch failed"))
	})

	w := perform(r, http.MethodGet, "/silent")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, logs.String(), "GET /silent (https://example.com/): history unavailable")

	w = perform(r, http.MethodGet, "/written")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"upstream"}`, w.Body.String())
	assert.Contains(t, logs.String(), "fetch failed")
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2)
	rl.now = func() time.Time { return now }

	t.Run("Bucket", func(t *testing.T) {
		assert.True(t, rl.Allow("a"))
		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))
		assert.True(t, rl.Allow("b"))

		now = now.Add(time.Second)
		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))
	})

	t.Run("Middleware", func(t *testing.T) {
		r := gin.New()
		r.Use(rl.RateLimit())
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		now = now.Add(time.Hour)
		assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/").Code)
		assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/").Code)
		assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodGet, "/").Code)
	})

	t.Run("Prune", func(t *testing.T) {
		now = now.Add(2 * time.Hour)
		assert.Equal(t, 3, rl.Prune(time.Hour))
		assert.True(t, rl.Allow("a"))
	})
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodOptions, "/x")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(r, http.MethodGet, "/x")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestStats(t *testing.T) {
	stats, err := logging.NewStatistics("", false)
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestStats(stats, logging.Discard(), 0, "/api/analyze"))
	r.POST("/api/analyze", func(c *gin.Context) {
		c.Set(AuditURLKey, "https://example.com/page")
		c.Status(http.StatusOK)
	})
	r.POST("/api/fail", func(c *gin.Context) { c.Status(http.StatusBadGateway) })
	r.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, http.MethodPost, "/api/analyze")
	perform(r, http.MethodPost, "/api/fail")
	perform(r, http.MethodGet, "/api/health")

	assert.Equal(t, 1, stats.Requests())
	assert.Equal(t, 1, stats.UniqueVisitorsCount())
	assert.Equal(t, []logging.URLCount{{URL: "https://example.com/page", Count: 1}}, stats.TopURLs(5))
}
