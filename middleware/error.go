package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/auditor/logging"
)

const genericError = "An unexpected error occurred"

// ErrorHandler recovers from panics in later handlers and answers 500. Errors
// attached with c.Error by a handler that wrote no response are logged and
// answered the same way.
func ErrorHandler(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic on %s %s%s: %v\n%s", c.Request.Method, c.Request.URL.Path, auditSuffix(c), err, debug.Stack())
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": genericError})
			}
		}()

		c.Next()

		if last := c.Errors.Last(); last != nil {
			logger.Error("%s %s%s: %v", c.Request.Method, c.Request.URL.Path, auditSuffix(c), last.Err)
			if !c.Writer.Written() {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": genericError})
			}
		}
	}
}

func auditSuffix(c *gin.Context) string {
	if u := c.GetString(AuditURLKey); u != "" {
		return " (" + u + ")"
	}
	return ""
}
