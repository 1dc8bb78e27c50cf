package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/site-services-api/internal/database"
	"github.com/yukikurage/site-services-api/internal/metrics"
	"github.com/yukikurage/site-services-api/internal/models"
	"github.com/yukikurage/site-services-api/internal/notify"
	"github.com/yukikurage/site-services-api/internal/repository"
	"github.com/yukikurage/site-services-api/internal/utils"
)

var (
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrInvalidPriority = errors.New("invalid ticket priority")
	ErrCannotDelete    = errors.New("resolved or closed tickets cannot be deleted")
)

// Publisher delivers committed facts to real-time listeners.
type Publisher interface {
	Publish(name string, payload any)
}

// TicketService handles the ticket lifecycle
type TicketService struct {
	txm          *database.TransactionManager
	ticketRepo   repository.TicketRepository
	eventRepo    repository.EventRepository
	userRepo     repository.UserRepository
	auditRepo    repository.AuditRepository
	publisher    Publisher
	metrics      metrics.MetricsCollector
	numberPrefix string
	now          func() time.Time
}

// NewTicketService creates a new TicketService
func NewTicketService(
	txm *database.TransactionManager,
	ticketRepo repository.TicketRepository,
	eventRepo repository.EventRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	publisher Publisher,
	collector metrics.MetricsCollector,
	numberPrefix string,
) *TicketService {
	return &TicketService{
		txm:          txm,
		ticketRepo:   ticketRepo,
		eventRepo:    eventRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		publisher:    publisher,
		metrics:      collector,
		numberPrefix: numberPrefix,
		now:          time.Now,
	}
}

// CreateTicketInput represents input for filing a ticket
type CreateTicketInput struct {
	Category    string
	Title       string
	Description string
	Priority    string
}

// Create files a new OPEN ticket with its number, first timeline event and audit row.
// Text fields are stored as submitted, trimmed; escaping is left to the renderer.
func (s *TicketService) Create(ctx context.Context, actor *models.User, input CreateTicketInput) (*models.Ticket, error) {
	category := strings.TrimSpace(input.Category)
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if category == "" || title == "" || description == "" || strings.TrimSpace(input.Priority) == "" {
		return nil, ErrMissingFields
	}
	priority, ok := models.ParseTicketPriority(input.Priority)
	if !ok {
		return nil, ErrInvalidPriority
	}

	now := s.now()
	ticket := &models.Ticket{
		CreatedBy:   actor.ID,
		Category:    category,
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      models.TicketStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	actorID := actor.ID
	var events []models.TicketEvent
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.ticketRepo.Create(ctx, ticket); err != nil {
			return fmt.Errorf("failed to create ticket: %w", err)
		}

		ticketNo := utils.FormatTicketNo(s.numberPrefix, ticket.CreatedAt, ticket.ID)
		if err := s.ticketRepo.SetTicketNo(ctx, ticket.ID, ticketNo); err != nil {
			return fmt.Errorf("failed to set ticket number: %w", err)
		}
		ticket.TicketNo = &ticketNo

		events = []models.TicketEvent{{
			TicketID:  ticket.ID,
			ActorID:   &actorID,
			Type:      models.EventTypeStatus,
			Message:   StatusMessage(models.TicketStatusOpen),
			CreatedAt: now,
		}}
		if err := s.eventRepo.Append(ctx, events); err != nil {
			return fmt.Errorf("failed to record ticket event: %w", err)
		}

		return s.auditRepo.Record(ctx, models.NewAuditLog(models.AuditTicketCreate, &actorID,
			map[string]any{"ticketId": ticket.ID}, now))
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTicketCreated()
	for _, event := range events {
		s.publisher.Publish(notify.EventCreated, event)
	}
	s.publisher.Publish(notify.TicketCreated, ticket)

	return ticket, nil
}

// Get returns a ticket the actor may see
func (s *TicketService) Get(ctx context.Context, actor *models.User, id uint64) (*models.Ticket, error) {
	ticket, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccessTicket(actor, ticket) {
		return nil, ErrForbidden
	}
	return ticket, nil
}

// Update applies a role-checked patch and commits ticket columns, events and audit together.
func (s *TicketService) Update(ctx context.Context, actor *models.User, id uint64, patch TicketPatch) (*models.Ticket, []models.TicketEvent, error) {
	var change TicketChange
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		if !CanAccessTicket(actor, current) {
			return ErrForbidden
		}

		if patch.HasAssignedTo && patch.AssignedTo != nil {
			assignee, err := s.userRepo.FindByID(ctx, *patch.AssignedTo)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to load assignee: %w", err)
			}
			patch.Assignee = assignee
		}

		change, err = PlanTicketChange(actor, current, patch, s.now())
		if err != nil {
			return err
		}

		if err := s.ticketRepo.SaveState(ctx, &change.Next); err != nil {
			return fmt.Errorf("failed to update ticket: %w", err)
		}
		if len(change.Events) > 0 {
			if err := s.eventRepo.Append(ctx, change.Events); err != nil {
				return fmt.Errorf("failed to record ticket events: %w", err)
			}
		}

		actorID := actor.ID
		return s.auditRepo.Record(ctx, models.NewAuditLog(models.AuditTicketUpdate, &actorID,
			map[string]any{"ticketId": id}, change.Next.UpdatedAt))
	})
	if err != nil {
		return nil, nil, err
	}

	if change.StatusChanged {
		s.metrics.RecordTicketTransition(string(change.Next.Status))
	}
	for _, event := range change.Events {
		s.publisher.Publish(notify.EventCreated, event)
	}
	s.publisher.Publish(notify.TicketUpdated, change.Next)

	return &change.Next, change.Events, nil
}

// Delete hard-deletes an unresolved ticket filed by the actor.
func (s *TicketService) Delete(ctx context.Context, actor *models.User, id uint64) error {
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		ticket, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		if ticket.CreatedBy != actor.ID {
			return ErrForbidden
		}
		if ticket.Status.IsResolved() {
			return ErrCannotDelete
		}

		if err := s.ticketRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete ticket: %w", err)
		}

		actorID := actor.ID
		return s.auditRepo.Record(ctx, models.NewAuditLog(models.AuditTicketDelete, &actorID,
			map[string]any{"ticketId": id}, s.now()))
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(notify.TicketDeleted, map[string]uint64{"id": id})
	return nil
}

// List returns the tickets visible to the actor, newest first. status is optional.
func (s *TicketService) List(ctx context.Context, actor *models.User, status string) ([]models.Ticket, error) {
	filter := scopeFor(actor)
	if strings.TrimSpace(status) != "" {
		parsed, ok := models.ParseTicketStatus(status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		filter.Status = &parsed
	}

	tickets, err := s.ticketRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

// Search matches q against ticket number, title, description and category within the actor's scope.
func (s *TicketService) Search(ctx context.Context, actor *models.User, q string) ([]models.Ticket, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.Ticket{}, nil
	}

	filter := scopeFor(actor)
	filter.Query = q
	tickets, err := s.ticketRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search tickets: %w", err)
	}
	return tickets, nil
}

// Events returns the timeline of a ticket the caller already has access to
func (s *TicketService) Events(ctx context.Context, ticketID uint64) ([]models.TicketEvent, error) {
	events, err := s.eventRepo.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket events: %w", err)
	}
	return events, nil
}

func (s *TicketService) find(ctx context.Context, id uint64) (*models.Ticket, error) {
	ticket, err := s.ticketRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}
	return ticket, nil
}

func scopeFor(actor *models.User) repository.TicketFilter {
	var filter repository.TicketFilter
	id := actor.ID
	switch actor.Role {
	case models.RoleStaff:
		filter.AssignedTo = &id
	case models.RoleResident:
		filter.CreatedBy = &id
	}
	return filter
}
