package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/site-services-api/internal/database"
	"github.com/yukikurage/site-services-api/internal/models"
	"github.com/yukikurage/site-services-api/internal/utils"
)

type GormAuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &GormAuditRepository{db: db}
}

// Record appends an audit row
func (r *GormAuditRepository) Record(ctx context.Context, entry *models.AuditLog) error {
	return database.GetTxFromContext(ctx, r.db).Create(entry).Error
}

// List returns audit rows newest first
func (r *GormAuditRepository) List(ctx context.Context, offset, limit int) ([]models.AuditLog, error) {
	entries := []models.AuditLog{}
	if err := database.GetTxFromContext(ctx, r.db).
		Scopes(database.NewestFirst("audit_logs"), database.Paginate(utils.PaginationParams{Offset: offset, Limit: limit})).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
