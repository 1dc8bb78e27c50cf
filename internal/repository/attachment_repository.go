package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/site-services-api/internal/database"
	"github.com/yukikurage/site-services-api/internal/models"
)

type GormAttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &GormAttachmentRepository{db: db}
}

func (r *GormAttachmentRepository) Create(ctx context.Context, attachment *models.Attachment) error {
	return database.GetTxFromContext(ctx, r.db).Create(attachment).Error
}

func (r *GormAttachmentRepository) ListByTicket(ctx context.Context, ticketID uint64) ([]models.Attachment, error) {
	attachments := []models.Attachment{}
	if err := database.GetTxFromContext(ctx, r.db).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}
