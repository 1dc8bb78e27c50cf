package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/yukikurage/site-services-api/internal/errors"
	"github.com/yukikurage/site-services-api/internal/services"
)

// multipartOverhead is the allowance for boundaries and part headers on top of the file limit.
const multipartOverhead = 64 * 1024

// AttachmentHandler serves ticket attachments.
type AttachmentHandler struct {
	attachmentService *services.AttachmentService
	maxBytes          int64
}

func NewAttachmentHandler(attachmentService *services.AttachmentService, maxBytes int64) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService, maxBytes: maxBytes}
}

// ListAttachments returns a ticket's attachments.
// GET /api/tickets/:id/attachments
func (h *AttachmentHandler) ListAttachments(c *gin.Context) {
	ticket, ok := ticketFromContext(c)
	if !ok {
		return
	}

	attachments, err := h.attachmentService.List(c.Request.Context(), ticket.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attachments": attachments})
}

// UploadAttachment stores the multipart "file" field against the ticket.
// POST /api/tickets/:id/attachments
func (h *AttachmentHandler) UploadAttachment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	ticket, ok := ticketFromContext(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	header, err := c.FormFile("file")
	if err != nil {
		respondUploadError(c, err)
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	attachment, err := h.attachmentService.Upload(c.Request.Context(), user, ticket, header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attachment": attachment})
}

// respondUploadError maps multipart parsing failures to NO_FILE or FILE_TOO_LARGE.
func respondUploadError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(c, services.ErrFileTooLarge)
		return
	}
	apierrors.BadRequest(c, apierrors.ErrCodeNoFile, "No file uploaded")
}
