package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/auditor/logging"
)

// AuditURLKey is the gin context key under which audit handlers store the
// URL they audited, so RequestStats can attribute the request.
const AuditURLKey = "auditURL"

// RequestStats tracks visitors on every request and audit requests on the
// given POST paths. Statistics are saved every saveEvery audit requests.
func RequestStats(stats *logging.Statistics, logger *logging.Logger, saveEvery int, auditPaths ...string) gin.HandlerFunc {
	tracked := make(map[string]bool, len(auditPaths))
	for _, p := range auditPaths {
		tracked[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		stats.TrackVisitor(c.ClientIP())

		c.Next()

		if c.Request.Method != "POST" || !tracked[c.FullPath()] {
			return
		}

		stats.TrackAudit(c.GetString(AuditURLKey), time.Since(start), c.Writer.Status() >= 400)

		if saveEvery > 0 && stats.Requests()%saveEvery == 0 {
			go func() {
				if err := stats.Save(); err != nil {
					logger.Warn("saving statistics: %v", err)
				}
			}()
		}
	}
}
