package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/site-services-api/internal/database"
	"github.com/yukikurage/site-services-api/internal/models"
)

// GormSessionRepository is a GORM implementation of SessionRepository
type GormSessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &GormSessionRepository{db: db}
}

// Create stores a new session
func (r *GormSessionRepository) Create(ctx context.Context, session *models.Session) error {
	return database.GetTxFromContext(ctx, r.db).Omit("User").Create(session).Error
}

// FindByToken finds a session by token and preloads its user
func (r *GormSessionRepository) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	if err := database.GetTxFromContext(ctx, r.db).
		Preload("User").
		Where("token = ?", token).
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteByToken removes a session by token
func (r *GormSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	return database.GetTxFromContext(ctx, r.db).Where("token = ?", token).Delete(&models.Session{}).Error
}

// DeleteExpired removes every session whose expiry is before now
func (r *GormSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := database.GetTxFromContext(ctx, r.db).Where("expires_at < ?", now).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}
