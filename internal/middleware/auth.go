package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yukikurage/site-services-api/internal/constants"
	apierrors "github.com/yukikurage/site-services-api/internal/errors"
	"github.com/yukikurage/site-services-api/internal/models"
	"github.com/yukikurage/site-services-api/internal/services"
)

// SessionResolver maps a session token to its user.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth resolves the session token stored in the cookie session and
// loads the user into the gin context.
func RequireAuth(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)

		user, err := resolver.ResolveSession(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUnauthenticated):
				apierrors.Abort(c, http.StatusUnauthorized, apierrors.NewAPIError(apierrors.ErrCodeUnauthorized, "Authentication required"))
			case errors.Is(err, services.ErrAccountDisabled):
				apierrors.Abort(c, http.StatusForbidden, apierrors.NewAPIError(apierrors.ErrCodeAccountDisabled, "Account is disabled"))
			default:
				slog.ErrorContext(c.Request.Context(), "failed to resolve session", "error", err)
				apierrors.Abort(c, http.StatusInternalServerError, apierrors.NewAPIError(apierrors.ErrCodeServerError, "Internal server error"))
			}
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// SessionToken returns the token held by the cookie session, or "".
func SessionToken(c *gin.Context) string {
	session := sessions.Default(c)
	token, _ := session.Get(constants.SessionKeyToken).(string)
	return token
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetUser retrieves the authenticated user from context
func GetUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
