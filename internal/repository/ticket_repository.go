package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/site-services-api/internal/database"
	"github.com/yukikurage/site-services-api/internal/models"
)

// GormTicketRepository is a GORM implementation of TicketRepository
type GormTicketRepository struct {
	db *gorm.DB
}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &GormTicketRepository{db: db}
}

// Create inserts a ticket row
func (r *GormTicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	return database.GetTxFromContext(ctx, r.db).Create(ticket).Error
}

// SetTicketNo writes the ticket number
func (r *GormTicketRepository) SetTicketNo(ctx context.Context, id uint64, ticketNo string) error {
	return database.GetTxFromContext(ctx, r.db).
		Model(&models.Ticket{}).
		Where("id = ?", id).
		Update("ticket_no", ticketNo).Error
}

// FindByID finds a ticket by ID
func (r *GormTicketRepository) FindByID(ctx context.Context, id uint64) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := database.GetTxFromContext(ctx, r.db).First(&ticket, id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

// List retrieves tickets matching the filter, newest first
func (r *GormTicketRepository) List(ctx context.Context, filter TicketFilter) ([]models.Ticket, error) {
	tickets := []models.Ticket{}
	query := database.GetTxFromContext(ctx, r.db).Model(&models.Ticket{})

	if filter.CreatedBy != nil {
		query = query.Where("tickets.created_by = ?", *filter.CreatedBy)
	}
	if filter.AssignedTo != nil {
		query = query.Where("tickets.assigned_to = ?", *filter.AssignedTo)
	}
	if filter.Status != nil {
		query = query.Where("tickets.status = ?", *filter.Status)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where(
			"tickets.ticket_no LIKE ? OR tickets.title LIKE ? OR tickets.description LIKE ? OR tickets.category LIKE ?",
			like, like, like, like,
		)
	}

	if err := query.Scopes(database.NewestFirst("tickets")).Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

// SaveState writes assigned_to, status, resolved_at, resolved_note and updated_at
func (r *GormTicketRepository) SaveState(ctx context.Context, ticket *models.Ticket) error {
	return database.GetTxFromContext(ctx, r.db).
		Model(&models.Ticket{ID: ticket.ID}).
		Select("assigned_to", "status", "resolved_at", "resolved_note", "updated_at").
		Updates(ticket).Error
}

// Delete hard-deletes a ticket. Events, attachments and ratings are left in place.
func (r *GormTicketRepository) Delete(ctx context.Context, id uint64) error {
	return database.GetTxFromContext(ctx, r.db).Delete(&models.Ticket{}, id).Error
}
