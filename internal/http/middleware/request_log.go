package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/tickethub-backend/internal/pkg/ctxutil"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
)

// RequestLogger runs outermost, so it reads the caller from the context the
// auth middleware left on c.Request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}

		// SSE streams are logged by the realtime handler when they close.
		if c.FullPath() == StreamRoute && c.Writer.Status() < 400 {
			return
		}

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"route", route,
			"path", c.Request.URL.Path,
			"status", status,
			"bytes", c.Writer.Size(),
			"client_ip", c.ClientIP(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		ctx := c.Request.Context()
		if td := ctxutil.GetTraceData(ctx); td != nil {
			fields = appendNonEmpty(fields, "trace_id", td.TraceID)
			fields = appendNonEmpty(fields, "request_id", td.RequestID)
		}
		if rd := ctxutil.GetRequestData(ctx); rd != nil && rd.UserID != uuid.Nil {
			fields = append(fields, "user_id", rd.UserID.String(), "role", string(rd.Role))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func appendNonEmpty(fields []interface{}, key, val string) []interface{} {
	if val == "" {
		return fields
	}
	return append(fields, key, val)
}
