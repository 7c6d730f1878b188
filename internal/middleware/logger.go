package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Logger logs one line per request. Bodies are never logged since they carry
// patient and owner data.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		statusCode := c.Writer.Status()
		l := LoggerFrom(c.Request.Context())
		var evt *zerolog.Event
		msg := "Request processed"
		switch {
		case statusCode >= 500:
			evt = l.Error()
			msg = "Server error"
		case statusCode >= 400:
			evt = l.Warn()
			msg = "Client error"
		default:
			evt = l.Info()
		}

		evt.
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Int("size", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Str("user_agent", c.Request.UserAgent()).
			Msg(msg)
	}
}
