package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/yukikurage/site-services-api/internal/errors"
	"github.com/yukikurage/site-services-api/internal/models"
)

// PermissionChecker answers role × action questions.
type PermissionChecker interface {
	Allowed(role models.Role, action string) (bool, error)
}

// RequirePermission aborts with FORBIDDEN unless the user's role may perform action.
// It must run after RequireAuth.
func RequirePermission(checker PermissionChecker, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			apierrors.Abort(c, http.StatusUnauthorized, apierrors.NewAPIError(apierrors.ErrCodeUnauthorized, "Authentication required"))
			return
		}

		allowed, err := checker.Allowed(user.Role, action)
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "permission check failed", "error", err, "action", action)
			apierrors.Abort(c, http.StatusInternalServerError, apierrors.NewAPIError(apierrors.ErrCodeServerError, "Internal server error"))
			return
		}
		if !allowed {
			apierrors.Abort(c, http.StatusForbidden, apierrors.NewAPIError(apierrors.ErrCodeForbidden, "Access denied"))
			return
		}

		c.Next()
	}
}
