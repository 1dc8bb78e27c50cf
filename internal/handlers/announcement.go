package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/site-services-api/internal/dto"
	apierrors "github.com/yukikurage/site-services-api/internal/errors"
	"github.com/yukikurage/site-services-api/internal/services"
)

// AnnouncementHandler serves community announcements.
type AnnouncementHandler struct {
	announcementService *services.AnnouncementService
	maxBytes            int64
}

func NewAnnouncementHandler(announcementService *services.AnnouncementService, maxBytes int64) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService, maxBytes: maxBytes}
}

// ListAnnouncements returns everything to admins and visible announcements to others.
func (h *AnnouncementHandler) ListAnnouncements(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	announcements, err := h.announcementService.List(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": announcements})
}

// ListPublicAnnouncements needs no session.
func (h *AnnouncementHandler) ListPublicAnnouncements(c *gin.Context) {
	announcements, err := h.announcementService.ListPublic(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": announcements})
}

// CreateAnnouncement accepts JSON, or multipart with an optional "image" part.
func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input services.CreateAnnouncementInput
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
		if err := c.Request.ParseMultipartForm(h.maxBytes); err != nil {
			respondUploadError(c, err)
			return
		}
		input.Title = c.PostForm("title")
		input.Body = c.PostForm("body")
		hours, err := dto.ParseFlexInt(c.PostForm("expiresHours"), apierrors.ErrCodeMissingFields, "expiresHours")
		if err != nil {
			respondError(c, err)
			return
		}
		input.ExpiresHours = hours

		header, err := c.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			respondUploadError(c, err)
			return
		default:
			file, err := header.Open()
			if err != nil {
				respondError(c, err)
				return
			}
			defer file.Close()
			input.Image = &services.ImageUpload{Name: header.Filename, Reader: file}
		}
	} else {
		var req dto.CreateAnnouncementRequest
		if !bindJSON(c, &req) {
			return
		}
		input.Title = req.Title
		input.Body = req.Body
		input.ExpiresHours = int(req.ExpiresHours)
	}

	announcement, err := h.announcementService.Create(c.Request.Context(), user, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcement": announcement})
}

// DeleteAnnouncement removes an announcement; unknown ids still succeed.
func (h *AnnouncementHandler) DeleteAnnouncement(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.announcementService.Delete(c.Request.Context(), user, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
