package dto

import (
	apierrors "github.com/yukikurage/site-services-api/internal/errors"
	"github.com/yukikurage/site-services-api/internal/services"
)

// CreateTicketRequest is the body of POST /api/tickets
type CreateTicketRequest struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// UpdateTicketRequest is the body of PATCH /api/tickets/:id
type UpdateTicketRequest struct {
	AssignedTo   NullableID `json:"assignedTo"`
	Status       *string    `json:"status"`
	ResolvedNote *string    `json:"resolvedNote"`
}

// ToPatch converts the request into a state machine patch
func (r UpdateTicketRequest) ToPatch() services.TicketPatch {
	return services.TicketPatch{
		HasAssignedTo: r.AssignedTo.Set,
		AssignedTo:    r.AssignedTo.Value,
		Status:        r.Status,
		ResolvedNote:  r.ResolvedNote,
	}
}

// SaveRatingRequest is the body of POST /api/ratings
type SaveRatingRequest struct {
	TicketID FlexID    `json:"ticketId"`
	Stars    FlexStars `json:"stars"`
	Note     string    `json:"note"`
}

// Validate reports malformed numbers before the service sees them
func (r SaveRatingRequest) Validate() error {
	if r.TicketID < 0 {
		return &InvalidValueError{Code: apierrors.ErrCodeInvalidID, Field: "ticketId"}
	}
	return nil
}

// CreateAnnouncementRequest is the JSON body of POST /api/announcements
type CreateAnnouncementRequest struct {
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	ExpiresHours FlexHours `json:"expiresHours"`
}
