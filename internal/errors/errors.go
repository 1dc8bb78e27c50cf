package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeAccountDisabled    = "ACCOUNT_DISABLED"

	// Authorization errors
	ErrCodeForbidden = "FORBIDDEN"

	// Validation errors
	ErrCodeMissingFields   = "MISSING_FIELDS"
	ErrCodeInvalidID       = "INVALID_ID"
	ErrCodeInvalidStatus   = "INVALID_STATUS"
	ErrCodeInvalidPriority = "INVALID_PRIORITY"
	ErrCodeInvalidAssignee = "INVALID_ASSIGNEE"
	ErrCodeInvalidStars    = "INVALID_STARS"
	ErrCodeInvalidRole     = "INVALID_ROLE"
	ErrCodeWeakPassword    = "WEAK_PASSWORD"
	ErrCodeNoFile          = "NO_FILE"
	ErrCodeFileTooLarge    = "FILE_TOO_LARGE"

	// Resource errors
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeEmailExists = "EMAIL_EXISTS"

	// Business rule errors
	ErrCodeCannotDelete   = "CANNOT_DELETE"
	ErrCodeCannotEditSelf = "CANNOT_EDIT_SELF"
	ErrCodeNotResolved    = "NOT_RESOLVED"

	// Service errors
	ErrCodeRateLimited = "RATE_LIMITED"
	ErrCodeServerError = "SERVER_ERROR"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// Abort sends an error response and stops the handler chain.
func Abort(c *gin.Context, statusCode int, err *APIError) {
	c.AbortWithStatusJSON(statusCode, err)
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response with the given code
func BadRequest(c *gin.Context, code, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(code, message))
}

// InvalidID sends a 400 response for a malformed path id
func InvalidID(c *gin.Context) {
	BadRequest(c, ErrCodeInvalidID, "Invalid id")
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, code, message string) {
	RespondWithError(c, http.StatusConflict, NewAPIError(code, message))
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *gin.Context) {
	RespondWithError(c, http.StatusTooManyRequests, NewAPIError(ErrCodeRateLimited, "Too many requests"))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeServerError, message))
}
