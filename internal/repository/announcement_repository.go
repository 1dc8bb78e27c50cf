package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/site-services-api/internal/database"
	"github.com/yukikurage/site-services-api/internal/models"
)

type GormAnnouncementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &GormAnnouncementRepository{db: db}
}

func (r *GormAnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	return database.GetTxFromContext(ctx, r.db).Create(announcement).Error
}

func (r *GormAnnouncementRepository) FindByID(ctx context.Context, id uint64) (*models.Announcement, error) {
	var announcement models.Announcement
	if err := database.GetTxFromContext(ctx, r.db).First(&announcement, id).Error; err != nil {
		return nil, err
	}
	return &announcement, nil
}

// List returns announcements newest first
func (r *GormAnnouncementRepository) List(ctx context.Context, publishedOnly bool) ([]models.Announcement, error) {
	announcements := []models.Announcement{}
	query := database.GetTxFromContext(ctx, r.db).Model(&models.Announcement{})
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	if err := query.Scopes(database.NewestFirst("announcements")).Find(&announcements).Error; err != nil {
		return nil, err
	}
	return announcements, nil
}

// Delete removes an announcement; missing ids are not an error
func (r *GormAnnouncementRepository) Delete(ctx context.Context, id uint64) error {
	return database.GetTxFromContext(ctx, r.db).Delete(&models.Announcement{}, id).Error
}
