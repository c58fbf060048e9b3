package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jjm-manufacturing/core1-backend/internal/logging"
)

// HTTPMetrics receives one observation per request.
type HTTPMetrics interface {
	ObserveHTTP(route, method string, status int, duration time.Duration)
}

// RequestLogger logs every request with logrus and feeds metrics when set.
func RequestLogger(logger logrus.FieldLogger, metrics HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		logging.LogAPIRequest(logger, c.Request.Method, c.Request.URL.Path, status, elapsed.Milliseconds(), AccountIDFromContext(c))

		if metrics != nil {
			metrics.ObserveHTTP(c.FullPath(), c.Request.Method, status, elapsed)
		}
	}
}

// Recovery turns panics into a logged 500 instead of gin's plain text response.
func Recovery(logger logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"panic":  recovered,
		}).Error("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}
