package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/site-services-api/internal/models"
)

var (
	ErrInvalidStatus   = errors.New("invalid ticket status")
	ErrInvalidAssignee = errors.New("assignee must be an existing staff user")
)

type ticketField int

const (
	fieldAssignedTo ticketField = iota
	fieldStatus
	fieldResolvedNote
)

// ticketCapability is what one role may change through PATCH /api/tickets/:id.
// A nil statuses set means any valid status.
type ticketCapability struct {
	fields   map[ticketField]bool
	statuses map[models.TicketStatus]bool
}

var ticketCapabilities = map[models.Role]ticketCapability{
	models.RoleAdmin: {
		fields: map[ticketField]bool{fieldAssignedTo: true, fieldStatus: true, fieldResolvedNote: true},
	},
	models.RoleStaff: {
		fields: map[ticketField]bool{fieldStatus: true, fieldResolvedNote: true},
		statuses: map[models.TicketStatus]bool{
			models.TicketStatusInReview: true,
			models.TicketStatusResolved: true,
		},
	},
}

// TicketPatch is a partial update. HasAssignedTo distinguishes an omitted
// assignee from an explicit unassign (AssignedTo nil).
type TicketPatch struct {
	HasAssignedTo bool
	AssignedTo    *uint64
	Status        *string
	ResolvedNote  *string

	// Assignee is the user record for AssignedTo, nil when it does not exist.
	Assignee *models.User
}

// TicketChange is the planned next snapshot and the timeline events it implies.
type TicketChange struct {
	Next            models.Ticket
	Events          []models.TicketEvent
	StatusChanged   bool
	AssigneeChanged bool
}

// PlanTicketChange validates patch against the actor's role and computes the
// next ticket state. It performs no I/O.
func PlanTicketChange(actor *models.User, current *models.Ticket, patch TicketPatch, now time.Time) (TicketChange, error) {
	capability, ok := ticketCapabilities[actor.Role]
	if !ok || len(capability.fields) == 0 {
		return TicketChange{}, ErrForbidden
	}
	if !capability.fields[fieldAssignedTo] {
		patch.HasAssignedTo = false
		patch.AssignedTo = nil
		patch.Assignee = nil
	}

	next := *current

	statusSupplied := patch.Status != nil && strings.TrimSpace(*patch.Status) != ""
	if statusSupplied {
		status, ok := models.ParseTicketStatus(*patch.Status)
		if !ok {
			return TicketChange{}, ErrInvalidStatus
		}
		if capability.statuses != nil && !capability.statuses[status] {
			return TicketChange{}, ErrInvalidStatus
		}
		next.Status = status
	}

	if patch.HasAssignedTo {
		if patch.AssignedTo == nil {
			next.AssignedTo = nil
		} else {
			if patch.Assignee == nil || patch.Assignee.ID != *patch.AssignedTo || patch.Assignee.Role != models.RoleStaff {
				return TicketChange{}, ErrInvalidAssignee
			}
			id := *patch.AssignedTo
			next.AssignedTo = &id
		}
	}

	if patch.ResolvedNote != nil {
		next.ResolvedNote = *patch.ResolvedNote
	}

	assigneeChanged := !sameAssignee(current.AssignedTo, next.AssignedTo)
	if assigneeChanged && next.AssignedTo != nil && !statusSupplied {
		next.Status = models.TicketStatusAssigned
	}

	statusChanged := next.Status != current.Status
	if next.Status.IsResolved() && (statusChanged || next.ResolvedAt == nil) {
		resolvedAt := now
		next.ResolvedAt = &resolvedAt
	}
	next.UpdatedAt = now

	change := TicketChange{
		Next:            next,
		StatusChanged:   statusChanged,
		AssigneeChanged: assigneeChanged,
	}

	actorID := actor.ID
	appendEvent := func(eventType models.EventType, message string) {
		change.Events = append(change.Events, models.TicketEvent{
			TicketID:  current.ID,
			ActorID:   &actorID,
			Type:      eventType,
			Message:   message,
			CreatedAt: now,
		})
	}

	if assigneeChanged {
		if next.AssignedTo == nil {
			appendEvent(models.EventTypeAssign, "Unassigned")
		} else {
			appendEvent(models.EventTypeAssign, fmt.Sprintf("Assigned to %s (ID: %d)", patch.Assignee.FullName, *next.AssignedTo))
		}
	}
	if statusChanged {
		appendEvent(models.EventTypeStatus, StatusMessage(next.Status))
	}
	if next.ResolvedNote != "" && next.ResolvedNote != current.ResolvedNote {
		appendEvent(models.EventTypeComment, "Resolution note: "+next.ResolvedNote)
	}

	return change, nil
}

// StatusMessage is the timeline text for a status transition.
func StatusMessage(status models.TicketStatus) string {
	return "Status: " + string(status)
}

// CanAccessTicket reports whether actor may see ticket: admins always,
// staff when assigned, residents when they filed it.
func CanAccessTicket(actor *models.User, ticket *models.Ticket) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleStaff:
		return ticket.AssignedTo != nil && *ticket.AssignedTo == actor.ID
	case models.RoleResident:
		return ticket.CreatedBy == actor.ID
	}
	return false
}

func sameAssignee(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
