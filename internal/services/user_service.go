package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/site-services-api/internal/database"
	"github.com/yukikurage/site-services-api/internal/models"
	"github.com/yukikurage/site-services-api/internal/notify"
	"github.com/yukikurage/site-services-api/internal/repository"
)

var ErrCannotEditSelf = errors.New("admins cannot change their own account")

// UserService handles admin user management
type UserService struct {
	txm       *database.TransactionManager
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
	publisher Publisher
	now       func() time.Time
}

func NewUserService(txm *database.TransactionManager, userRepo repository.UserRepository, auditRepo repository.AuditRepository, publisher Publisher) *UserService {
	return &UserService{
		txm:       txm,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// SetActive enables or disables another user's account. A nil active leaves it unchanged.
func (s *UserService) SetActive(ctx context.Context, actor *models.User, id uint64, active *bool) (*models.User, error) {
	if id == actor.ID {
		return nil, ErrCannotEditSelf
	}

	var updated *models.User
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to find user: %w", err)
		}

		next := user.Active
		if active != nil {
			next = *active
		}
		if err := s.userRepo.SetActive(ctx, id, next); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		user.Active = next
		updated = user

		actorID := actor.ID
		return s.auditRepo.Record(ctx, models.NewAuditLog(models.AuditUserUpdate, &actorID,
			map[string]any{"targetId": id, "is_active": next}, s.now()))
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(notify.UserUpdated, updated)
	return updated, nil
}
