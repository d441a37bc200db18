package httpx

import (
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/dmitrijs2005/kubelearn/internal/logging"
	"github.com/gin-gonic/gin"
)

// AccessLog logs one line per request. Query strings are left out: the
// login error code is harmless but nothing else belongs in logs.
func AccessLog(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", RequestIDFromContext(ctx),
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Warn(ctx, "request", args...)
		default:
			logger.Debug(ctx, "request", args...)
		}
	}
}

// Recovery turns a panic into a bare 500 without leaking any detail.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Error(c.Request.Context(), "panic recovered",
			"path", c.Request.URL.Path,
			"panic", recovered,
			"request_id", RequestIDFromContext(c.Request.Context()),
		)
		AbortError(c, http.StatusInternalServerError, common.CodeInternal, "internal error")
	})
}

// NewEngine returns a gin engine with the common middleware chain installed.
func NewEngine(logger logging.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Recovery(logger), AccessLog(logger))
	return r
}

// Health answers liveness probes.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
