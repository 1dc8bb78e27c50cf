package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/site-services-api/internal/dto"
	apierrors "github.com/yukikurage/site-services-api/internal/errors"
	"github.com/yukikurage/site-services-api/internal/middleware"
	"github.com/yukikurage/site-services-api/internal/models"
	"github.com/yukikurage/site-services-api/internal/services"
)

// TicketHandler handles ticket-related HTTP requests
type TicketHandler struct {
	ticketService *services.TicketService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(ticketService *services.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// ListTickets returns the tickets visible to the current user.
// GET /api/tickets?status=OPEN
func (h *TicketHandler) ListTickets(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	tickets, err := h.ticketService.List(c.Request.Context(), user, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// CreateTicket files a new ticket.
// POST /api/tickets
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateTicketRequest
	if !bindJSON(c, &req) {
		return
	}

	ticket, err := h.ticketService.Create(c.Request.Context(), user, services.CreateTicketInput{
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// GetTicket returns the ticket loaded by RequireTicketAccess.
// GET /api/tickets/:id
func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticket, ok := ticketFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// UpdateTicket applies an assignment, status or resolution note change.
// PATCH /api/tickets/:id
func (h *TicketHandler) UpdateTicket(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	ticket, ok := ticketFromContext(c)
	if !ok {
		return
	}

	var req dto.UpdateTicketRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, _, err := h.ticketService.Update(c.Request.Context(), user, ticket.ID, req.ToPatch())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": updated})
}

// DeleteTicket removes an unresolved ticket filed by the current user.
// DELETE /api/tickets/:id
func (h *TicketHandler) DeleteTicket(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	ticket, ok := ticketFromContext(c)
	if !ok {
		return
	}

	if err := h.ticketService.Delete(c.Request.Context(), user, ticket.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListEvents returns the ticket timeline, oldest first.
// GET /api/tickets/:id/events
func (h *TicketHandler) ListEvents(c *gin.Context) {
	ticket, ok := ticketFromContext(c)
	if !ok {
		return
	}
	h.writeEvents(c, ticket.ID)
}

// ListEventsByQuery serves GET /api/events?ticketId=, applying the same access rule.
func (h *TicketHandler) ListEventsByQuery(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := middleware.ParseID(c.Query("ticketId"))
	if err != nil {
		apierrors.InvalidID(c)
		return
	}

	if _, err := h.ticketService.Get(c.Request.Context(), user, id); err != nil {
		respondError(c, err)
		return
	}
	h.writeEvents(c, id)
}

// SearchTickets matches q within the current user's ticket scope.
// GET /api/search/tickets?q=
func (h *TicketHandler) SearchTickets(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	tickets, err := h.ticketService.Search(c.Request.Context(), user, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

func (h *TicketHandler) writeEvents(c *gin.Context, ticketID uint64) {
	events, err := h.ticketService.Events(c.Request.Context(), ticketID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func ticketFromContext(c *gin.Context) (*models.Ticket, bool) {
	ticket, ok := middleware.GetTicket(c)
	if !ok {
		apierrors.InternalError(c, "Ticket not loaded")
		return nil, false
	}
	return ticket, true
}
