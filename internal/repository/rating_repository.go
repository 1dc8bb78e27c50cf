package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/site-services-api/internal/database"
	"github.com/yukikurage/site-services-api/internal/models"
)

type GormRatingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &GormRatingRepository{db: db}
}

// Upsert inserts the rating or overwrites stars, note and timestamps of the existing one
func (r *GormRatingRepository) Upsert(ctx context.Context, rating *models.Rating) error {
	return database.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticket_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"stars", "note", "created_at", "updated_at"}),
		}).
		Create(rating).Error
}

func (r *GormRatingRepository) FindByTicketAndUser(ctx context.Context, ticketID, userID uint64) (*models.Rating, error) {
	var rating models.Rating
	if err := database.GetTxFromContext(ctx, r.db).
		Where("ticket_id = ? AND user_id = ?", ticketID, userID).
		First(&rating).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *GormRatingRepository) ListByUser(ctx context.Context, userID uint64) ([]models.Rating, error) {
	ratings := []models.Rating{}
	if err := database.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Scopes(database.NewestFirst("ratings")).
		Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}
