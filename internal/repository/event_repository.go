package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/site-services-api/internal/database"
	"github.com/yukikurage/site-services-api/internal/models"
)

// GormEventRepository is a GORM implementation of EventRepository
type GormEventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &GormEventRepository{db: db}
}

// Append inserts events one by one so ids follow slice order
func (r *GormEventRepository) Append(ctx context.Context, events []models.TicketEvent) error {
	tx := database.GetTxFromContext(ctx, r.db)
	for i := range events {
		if err := tx.Create(&events[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// ListByTicket returns the timeline of a ticket
func (r *GormEventRepository) ListByTicket(ctx context.Context, ticketID uint64) ([]models.TicketEvent, error) {
	events := []models.TicketEvent{}
	if err := database.GetTxFromContext(ctx, r.db).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
