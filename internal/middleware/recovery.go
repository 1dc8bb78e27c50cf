package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apierrors "github.com/yukikurage/site-services-api/internal/errors"
)

// Recovery turns a panic into SERVER_ERROR and logs the stack.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(c.Request.Context(), "panic recovered",
					"panic", rec,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				if !c.Writer.Written() {
					apierrors.Abort(c, http.StatusInternalServerError, apierrors.NewAPIError(apierrors.ErrCodeServerError, "Internal server error"))
					return
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
