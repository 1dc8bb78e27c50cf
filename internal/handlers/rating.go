package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/site-services-api/internal/dto"
	"github.com/yukikurage/site-services-api/internal/services"
)

// RatingHandler serves resident satisfaction ratings.
type RatingHandler struct {
	ratingService *services.RatingService
}

func NewRatingHandler(ratingService *services.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

// ListRatings returns the current user's ratings.
func (h *RatingHandler) ListRatings(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	ratings, err := h.ratingService.ListMine(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratings": ratings})
}

// SaveRating creates or replaces the current user's rating of a ticket.
func (h *RatingHandler) SaveRating(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.SaveRatingRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	rating, err := h.ratingService.Save(c.Request.Context(), user, services.SaveRatingInput{
		TicketID: uint64(req.TicketID),
		Stars:    int(req.Stars),
		Note:     req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rating": rating})
}
