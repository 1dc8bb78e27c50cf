package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/site-services-api/internal/database"
	"github.com/yukikurage/site-services-api/internal/models"
)

type GormReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &GormReportRepository{db: db}
}

// TicketTimes loads status and timestamps for every ticket
func (r *GormReportRepository) TicketTimes(ctx context.Context) ([]TicketTimes, error) {
	rows := []TicketTimes{}
	if err := database.GetTxFromContext(ctx, r.db).
		Model(&models.Ticket{}).
		Select("status", "created_at", "resolved_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TopStaff aggregates ratings by the assignee of the rated ticket
func (r *GormReportRepository) TopStaff(ctx context.Context, limit int) ([]StaffRating, error) {
	rows := []StaffRating{}
	err := database.GetTxFromContext(ctx, r.db).
		Table("ratings").
		Select("users.id AS id, users.full_name AS full_name, users.email AS email, COUNT(ratings.id) AS ratings_count, AVG(ratings.stars) AS avg_stars").
		Joins("JOIN tickets ON tickets.id = ratings.ticket_id").
		Joins("JOIN users ON users.id = tickets.assigned_to").
		Where("users.role = ?", models.RoleStaff).
		Group("users.id, users.full_name, users.email").
		Order("avg_stars DESC").
		Order("ratings_count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
