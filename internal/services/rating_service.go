package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/site-services-api/internal/constants"
	"github.com/yukikurage/site-services-api/internal/database"
	"github.com/yukikurage/site-services-api/internal/models"
	"github.com/yukikurage/site-services-api/internal/repository"
)

var (
	ErrInvalidStars = errors.New("stars must be between 1 and 5")
	ErrNotResolved  = errors.New("ticket is not resolved")
)

// RatingService handles resident satisfaction ratings
type RatingService struct {
	txm        *database.TransactionManager
	ratingRepo repository.RatingRepository
	ticketRepo repository.TicketRepository
	auditRepo  repository.AuditRepository
	now        func() time.Time
}

func NewRatingService(txm *database.TransactionManager, ratingRepo repository.RatingRepository, ticketRepo repository.TicketRepository, auditRepo repository.AuditRepository) *RatingService {
	return &RatingService{
		txm:        txm,
		ratingRepo: ratingRepo,
		ticketRepo: ticketRepo,
		auditRepo:  auditRepo,
		now:        time.Now,
	}
}

// SaveRatingInput represents a rating submission
type SaveRatingInput struct {
	TicketID uint64
	Stars    int
	Note     string
}

// Save creates or replaces the actor's rating of a resolved ticket they filed.
func (s *RatingService) Save(ctx context.Context, actor *models.User, input SaveRatingInput) (*models.Rating, error) {
	if input.TicketID == 0 || input.Stars == 0 {
		return nil, ErrMissingFields
	}
	if input.Stars < constants.MinStars || input.Stars > constants.MaxStars {
		return nil, ErrInvalidStars
	}

	var saved *models.Rating
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		ticket, err := s.ticketRepo.FindByID(ctx, input.TicketID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}
			return fmt.Errorf("failed to find ticket: %w", err)
		}
		if ticket.CreatedBy != actor.ID {
			return ErrForbidden
		}
		if !ticket.Status.IsResolved() {
			return ErrNotResolved
		}

		now := s.now()
		rating := &models.Rating{
			TicketID:  input.TicketID,
			UserID:    actor.ID,
			Stars:     input.Stars,
			Note:      strings.TrimSpace(input.Note),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.ratingRepo.Upsert(ctx, rating); err != nil {
			return fmt.Errorf("failed to save rating: %w", err)
		}

		saved, err = s.ratingRepo.FindByTicketAndUser(ctx, input.TicketID, actor.ID)
		if err != nil {
			return fmt.Errorf("failed to reload rating: %w", err)
		}

		actorID := actor.ID
		return s.auditRepo.Record(ctx, models.NewAuditLog(models.AuditRatingSave, &actorID,
			map[string]any{"ticketId": input.TicketID, "stars": input.Stars}, now))
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// ListMine returns the actor's own ratings, newest first
func (s *RatingService) ListMine(ctx context.Context, actor *models.User) ([]models.Rating, error) {
	ratings, err := s.ratingRepo.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	return ratings, nil
}
