package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/site-services-api/internal/dto"
	apierrors "github.com/yukikurage/site-services-api/internal/errors"
	"github.com/yukikurage/site-services-api/internal/middleware"
	"github.com/yukikurage/site-services-api/internal/models"
	"github.com/yukikurage/site-services-api/internal/services"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{services.ErrUnauthenticated, http.StatusUnauthorized, apierrors.ErrCodeUnauthorized, "Authentication required"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, apierrors.ErrCodeInvalidCredentials, "Invalid email or password"},
	{services.ErrAccountDisabled, http.StatusForbidden, apierrors.ErrCodeAccountDisabled, "Account is disabled"},
	{services.ErrForbidden, http.StatusForbidden, apierrors.ErrCodeForbidden, "Access denied"},
	{services.ErrTicketNotFound, http.StatusNotFound, apierrors.ErrCodeNotFound, "Ticket not found"},
	{services.ErrUserNotFound, http.StatusNotFound, apierrors.ErrCodeNotFound, "User not found"},
	{services.ErrMissingFields, http.StatusBadRequest, apierrors.ErrCodeMissingFields, "Required fields are missing"},
	{services.ErrInvalidID, http.StatusBadRequest, apierrors.ErrCodeInvalidID, "Invalid id"},
	{services.ErrInvalidStatus, http.StatusBadRequest, apierrors.ErrCodeInvalidStatus, "Invalid status"},
	{services.ErrInvalidPriority, http.StatusBadRequest, apierrors.ErrCodeInvalidPriority, "Invalid priority"},
	{services.ErrInvalidAssignee, http.StatusBadRequest, apierrors.ErrCodeInvalidAssignee, "Assignee must be an existing staff user"},
	{services.ErrInvalidStars, http.StatusBadRequest, apierrors.ErrCodeInvalidStars, "Stars must be between 1 and 5"},
	{services.ErrInvalidRole, http.StatusBadRequest, apierrors.ErrCodeInvalidRole, "Invalid role"},
	{services.ErrWeakPassword, http.StatusBadRequest, apierrors.ErrCodeWeakPassword, "Password is too short"},
	{services.ErrNoFile, http.StatusBadRequest, apierrors.ErrCodeNoFile, "No file uploaded"},
	{services.ErrFileTooLarge, http.StatusRequestEntityTooLarge, apierrors.ErrCodeFileTooLarge, "File is too large"},
	{services.ErrEmailExists, http.StatusConflict, apierrors.ErrCodeEmailExists, "Email is already registered"},
	{services.ErrCannotDelete, http.StatusBadRequest, apierrors.ErrCodeCannotDelete, "Resolved tickets cannot be deleted"},
	{services.ErrCannotEditSelf, http.StatusBadRequest, apierrors.ErrCodeCannotEditSelf, "You cannot edit your own account"},
	{services.ErrNotResolved, http.StatusBadRequest, apierrors.ErrCodeNotResolved, "Ticket is not resolved yet"},
}

var codeStatus = map[string]int{
	apierrors.ErrCodeInvalidAssignee: http.StatusBadRequest,
	apierrors.ErrCodeInvalidStars:    http.StatusBadRequest,
	apierrors.ErrCodeInvalidID:       http.StatusBadRequest,
	apierrors.ErrCodeMissingFields:   http.StatusBadRequest,
}

// respondError translates a service error into the API error body.
// Anything unrecognised is logged and reported as SERVER_ERROR.
func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			apierrors.RespondWithError(c, m.status, apierrors.NewAPIError(m.code, m.message))
			return
		}
	}

	var invalid *dto.InvalidValueError
	if errors.As(err, &invalid) {
		status, ok := codeStatus[invalid.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		apierrors.RespondWithError(c, status, apierrors.NewAPIError(invalid.Code, invalid.Error()))
		return
	}

	slog.ErrorContext(c.Request.Context(), "request failed",
		"error", err,
		"method", c.Request.Method,
		"path", c.FullPath(),
	)
	apierrors.InternalError(c, "")
}

// bindJSON decodes the request body. An empty body leaves req untouched.
// Malformed bodies are reported as MISSING_FIELDS unless a field decoder names a code.
func bindJSON(c *gin.Context, req any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(req); err != nil {
		var invalid *dto.InvalidValueError
		if errors.As(err, &invalid) {
			respondError(c, err)
			return false
		}
		apierrors.BadRequest(c, apierrors.ErrCodeMissingFields, "Invalid request body")
		return false
	}
	return true
}

// currentUser returns the authenticated user or writes 401.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return nil, false
	}
	return user, true
}

// pathID parses :id or writes INVALID_ID.
func pathID(c *gin.Context) (uint64, bool) {
	id, err := middleware.ParseID(c.Param("id"))
	if err != nil {
		apierrors.InvalidID(c)
		return 0, false
	}
	return id, true
}
