// Package api exposes the audit service over HTTP.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/auditor/audit"
	"github.com/seo-optimizer/auditor/inventory"
	"github.com/seo-optimizer/auditor/logging"
	"github.com/seo-optimizer/auditor/middleware"
	"github.com/seo-optimizer/auditor/sitecrawl"
	"github.com/seo-optimizer/auditor/stats"
)

// Handler serves the /api routes.
type Handler struct {
	audits   *audit.Service
	site     *sitecrawl.Auditor
	siteOpts sitecrawl.Options
	requests *logging.Statistics
	monthly  *stats.Storage
	logger   *logging.Logger
}

// Deps collects what the handlers need. Monthly may be nil.
type Deps struct {
	Audits   *audit.Service
	Site     *sitecrawl.Auditor
	SiteOpts sitecrawl.Options
	Requests *logging.Statistics
	Monthly  *stats.Storage
	Logger   *logging.Logger
}

func NewHandler(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	if d.Site == nil {
		d.Site = sitecrawl.NewAuditor(d.Audits, d.Logger)
	}
	return &Handler{
		audits:   d.Audits,
		site:     d.Site,
		siteOpts: d.SiteOpts,
		requests: d.Requests,
		monthly:  d.Monthly,
		logger:   d.Logger,
	}
}

// statusFor maps a pipeline error to an HTTP status.
func statusFor(err error) int {
	switch audit.ErrorKind(err) {
	case "validation":
		return http.StatusBadRequest
	case "fetch":
		return http.StatusBadGateway
	case "parse":
		return http.StatusUnprocessableEntity
	case "canceled":
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, url string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.Error(err)
	}
	c.JSON(status, audit.Failed(url, err))
}

func (h *Handler) health(c *gin.Context) {
	h.logger.Debug("health check from %s", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type analyzeRequest struct {
	URL               string `json:"url" binding:"required"`
	MinKeywordLength  int    `json:"minKeywordLength"`
	TopKeywordCount   int    `json:"topKeywordCount"`
	MinParagraphWords int    `json:"minParagraphWords"`
	SkipCache         bool   `json:"skipCache"`
	Format            string `json:"format"`
}

func (h *Handler) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL provided"})
		return
	}
	c.Set(middleware.AuditURLKey, req.URL)

	a, err := h.audits.Audit(c.Request.Context(), req.URL, audit.Options{
		MinKeywordLength:  req.MinKeywordLength,
		TopKeywordCount:   req.TopKeywordCount,
		MinParagraphWords: req.MinParagraphWords,
		SkipCache:         req.SkipCache,
	})
	if err != nil {
		h.fail(c, req.URL, err)
		return
	}

	if req.Format == "text" {
		c.String(http.StatusOK, a.Report)
		return
	}
	c.JSON(http.StatusOK, a)
}

type keywordsRequest struct {
	URL          string `json:"url" binding:"required"`
	KeywordCount int    `json:"keywordCount"`
}

func (h *Handler) keywords(c *gin.Context) {
	var req keywordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL provided"})
		return
	}
	c.Set(middleware.AuditURLKey, req.URL)

	res, err := h.audits.Keywords(c.Request.Context(), req.URL, req.KeywordCount)
	if err != nil {
		h.fail(c, req.URL, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type extractRequest struct {
	URL    string `json:"url" binding:"required"`
	Tags   string `json:"tags"`
	Format string `json:"format"`
}

func (h *Handler) extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL provided"})
		return
	}
	c.Set(middleware.AuditURLKey, req.URL)

	if req.Tags != "" {
		res, err := h.audits.InventoryTags(c.Request.Context(), req.URL, inventory.ParseTagList(req.Tags))
		if err != nil {
			h.fail(c, req.URL, err)
			return
		}
		c.JSON(http.StatusOK, res)
		return
	}

	res, err := h.audits.Inventory(c.Request.Context(), req.URL)
	if err != nil {
		h.fail(c, req.URL, err)
		return
	}
	if req.Format == "text" {
		c.String(http.StatusOK, res.Report)
		return
	}
	c.JSON(http.StatusOK, res)
}

type siteAuditRequest struct {
	URL      string `json:"url" binding:"required"`
	MaxPages int    `json:"maxPages"`
	MaxDepth *int   `json:"maxDepth"`
}

func (h *Handler) siteAudit(c *gin.Context) {
	var req siteAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL provided"})
		return
	}
	c.Set(middleware.AuditURLKey, req.URL)

	opts := h.siteOpts
	if req.MaxPages > 0 && (opts.Discover.MaxPages == 0 || req.MaxPages < opts.Discover.MaxPages) {
		opts.Discover.MaxPages = req.MaxPages
	}
	if req.MaxDepth != nil && *req.MaxDepth >= 0 && *req.MaxDepth < opts.Discover.MaxDepth {
		opts.Discover.MaxDepth = *req.MaxDepth
	}

	rep, err := h.site.Run(c.Request.Context(), req.URL, opts)
	if err != nil {
		h.fail(c, req.URL, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *Handler) history(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	if limit > 100 {
		limit = 100
	}

	entries, err := h.audits.History(c.Request.Context(), c.Query("url"), limit)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

func (h *Handler) statistics(c *gin.Context) {
	out := gin.H{"cache": h.audits.CacheStats()}
	if h.requests != nil {
		out["requests"] = h.requests.Snapshot()
	}
	if h.monthly != nil {
		out["month"] = h.monthly.GetCurrentStats()
		out["months"] = h.monthly.Summaries(12)
		out["allTime"] = h.monthly.Totals()
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) cacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.audits.CacheStats())
}

func (h *Handler) clearCache(c *gin.Context) {
	h.audits.ClearCache()
	c.Status(http.StatusNoContent)
}
