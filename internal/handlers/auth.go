package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yukikurage/site-services-api/internal/constants"
	"github.com/yukikurage/site-services-api/internal/dto"
	apierrors "github.com/yukikurage/site-services-api/internal/errors"
	"github.com/yukikurage/site-services-api/internal/middleware"
	"github.com/yukikurage/site-services-api/internal/models"
	"github.com/yukikurage/site-services-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates an account and signs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, session, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if !h.startSession(c, session) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": dto.ToUserDTO(*user)})
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, session, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if !h.startSession(c, session) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": dto.ToUserDTO(*user)})
}

// Logout removes the server-side session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.SessionToken(c)
	if token != "" {
		if err := h.authService.Logout(c.Request.Context(), token); err != nil {
			respondError(c, err)
			return
		}
	}

	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true})
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": dto.ToUserDTO(*user)})
}

func (h *AuthHandler) startSession(c *gin.Context, s *models.Session) bool {
	session := sessions.Default(c)
	session.Set(constants.SessionKeyToken, s.Token)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return false
	}
	return true
}
