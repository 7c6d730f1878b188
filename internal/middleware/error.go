package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
	"github.com/jwalitptl/vet-admin-api/pkg/httputil"
)

// ErrorHandler logs the errors handlers attached with c.Error. Server-side
// failures are logged at error level with their cause, client errors at
// debug. A handler that attached an error without answering gets a JSON error
// body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		l := LoggerFrom(c.Request.Context())
		for _, e := range c.Errors {
			status := http.StatusInternalServerError
			if appErr, ok := apperrors.As(e.Err); ok {
				status = appErr.StatusCode()
			}
			evt := l.Debug()
			if status >= http.StatusInternalServerError {
				evt = l.Error()
			}
			evt.Err(e.Err).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Int("status", status).
				Msg("Request error")
		}

		if !c.Writer.Written() {
			httputil.RespondWithError(c, c.Errors.Last().Err)
		}
	}
}
