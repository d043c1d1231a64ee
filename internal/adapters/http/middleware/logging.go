package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rafaelleal24/catalog/internal/core/logger"
)

func levelFor(statusCode int) logger.LogLevel {
	switch {
	case statusCode >= 500:
		return logger.LogLevelError
	case statusCode >= 400:
		return logger.LogLevelWarn
	default:
		return logger.LogLevelInfo
	}
}

func logHTTPRequest(ctx context.Context, method, path, route string, statusCode int, duration time.Duration, extraAttributes map[string]any) {
	attrs := map[string]any{
		"http.method":      method,
		"http.path":        path,
		"http.route":       route,
		"http.status_code": statusCode,
		"http.duration_ms": duration.Milliseconds(),
	}

	for key, value := range extraAttributes {
		attrs[key] = value
	}

	logger.Log(ctx, logger.LogEntry{
		Level:      levelFor(statusCode),
		Message:    "HTTP Request",
		Attributes: attrs,
		Timestamp:  time.Now(),
	})
}

// LogRequest writes one access log record per request once the handler
// chain has finished.
func LogRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		extraAttributes := map[string]any{
			"http.client_ip": c.ClientIP(),
		}
		if c.Request.ContentLength > 0 {
			extraAttributes["http.request_size"] = c.Request.ContentLength
		}
		if size := c.Writer.Size(); size > 0 {
			extraAttributes["http.response_size"] = size
		}
		if contentType := c.Writer.Header().Get("Content-Type"); contentType != "" {
			extraAttributes["http.response_content_type"] = contentType
		}
		if len(c.Errors) > 0 {
			extraAttributes["http.errors"] = c.Errors.String()
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		logHTTPRequest(
			c.Request.Context(),
			c.Request.Method,
			c.Request.URL.Path,
			route,
			c.Writer.Status(),
			time.Since(start),
			extraAttributes,
		)
	}
}
