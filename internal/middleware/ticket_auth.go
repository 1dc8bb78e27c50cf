package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/site-services-api/internal/constants"
	apierrors "github.com/yukikurage/site-services-api/internal/errors"
	"github.com/yukikurage/site-services-api/internal/models"
	"github.com/yukikurage/site-services-api/internal/services"
)

// TicketLoader loads a ticket on behalf of an actor.
type TicketLoader interface {
	Get(ctx context.Context, actor *models.User, id uint64) (*models.Ticket, error)
}

// RequireTicketAccess loads the ticket named by :id. A missing ticket yields
// NOT_FOUND before any ownership check; otherwise the actor must be an admin,
// the assigned staff member or the filing resident.
func RequireTicketAccess(loader TicketLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		ticketID, err := ParseID(c.Param("id"))
		if err != nil {
			apierrors.Abort(c, http.StatusBadRequest, apierrors.NewAPIError(apierrors.ErrCodeInvalidID, "Invalid ticket id"))
			return
		}

		user, ok := GetUser(c)
		if !ok {
			apierrors.Abort(c, http.StatusUnauthorized, apierrors.NewAPIError(apierrors.ErrCodeUnauthorized, "Authentication required"))
			return
		}

		ticket, err := loader.Get(c.Request.Context(), user, ticketID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTicketNotFound):
				apierrors.Abort(c, http.StatusNotFound, apierrors.NewAPIError(apierrors.ErrCodeNotFound, "Ticket not found"))
			case errors.Is(err, services.ErrForbidden):
				apierrors.Abort(c, http.StatusForbidden, apierrors.NewAPIError(apierrors.ErrCodeForbidden, "Access denied"))
			default:
				slog.ErrorContext(c.Request.Context(), "failed to load ticket", "error", err, "ticket_id", ticketID)
				apierrors.Abort(c, http.StatusInternalServerError, apierrors.NewAPIError(apierrors.ErrCodeServerError, "Internal server error"))
			}
			return
		}

		c.Set(constants.ContextKeyTicket, ticket)
		c.Next()
	}
}

// GetTicket returns the ticket loaded by RequireTicketAccess
func GetTicket(c *gin.Context) (*models.Ticket, bool) {
	v, exists := c.Get(constants.ContextKeyTicket)
	if !exists {
		return nil, false
	}
	ticket, ok := v.(*models.Ticket)
	return ticket, ok
}

// ParseID parses a positive numeric path id
func ParseID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, errors.New("id must be positive")
	}
	return id, nil
}
