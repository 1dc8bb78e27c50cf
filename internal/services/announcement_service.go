package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/site-services-api/internal/constants"
	"github.com/yukikurage/site-services-api/internal/database"
	"github.com/yukikurage/site-services-api/internal/models"
	"github.com/yukikurage/site-services-api/internal/notify"
	"github.com/yukikurage/site-services-api/internal/repository"
	"github.com/yukikurage/site-services-api/internal/storage"
)

// AnnouncementView is an announcement with its rendered body.
type AnnouncementView struct {
	models.Announcement
	BodyHTML string  `json:"bodyHtml"`
	ImageURL *string `json:"imageUrl"`
}

// AnnouncementService handles community announcements
type AnnouncementService struct {
	txm                *database.TransactionManager
	announcementRepo   repository.AnnouncementRepository
	auditRepo          repository.AuditRepository
	blobs              *storage.BlobStore
	renderer           *MarkdownRenderer
	publisher          Publisher
	defaultExpiryHours int
	now                func() time.Time
}

func NewAnnouncementService(
	txm *database.TransactionManager,
	announcementRepo repository.AnnouncementRepository,
	auditRepo repository.AuditRepository,
	blobs *storage.BlobStore,
	renderer *MarkdownRenderer,
	publisher Publisher,
	defaultExpiryHours int,
) *AnnouncementService {
	if defaultExpiryHours < constants.MinAnnouncementExpiryHours {
		defaultExpiryHours = constants.DefaultAnnouncementExpiryHours
	}
	return &AnnouncementService{
		txm:                txm,
		announcementRepo:   announcementRepo,
		auditRepo:          auditRepo,
		blobs:              blobs,
		renderer:           renderer,
		publisher:          publisher,
		defaultExpiryHours: defaultExpiryHours,
		now:                time.Now,
	}
}

// ImageUpload is an optional file attached to a new announcement
type ImageUpload struct {
	Name   string
	Reader io.Reader
}

// CreateAnnouncementInput represents input for publishing an announcement.
// ExpiresHours of zero means the configured default; values below one are raised to one.
type CreateAnnouncementInput struct {
	Title        string
	Body         string
	ExpiresHours int
	Image        *ImageUpload
}

func (s *AnnouncementService) Create(ctx context.Context, actor *models.User, input CreateAnnouncementInput) (*AnnouncementView, error) {
	title := strings.TrimSpace(input.Title)
	body := strings.TrimSpace(input.Body)
	if title == "" || body == "" {
		return nil, ErrMissingFields
	}

	hours := input.ExpiresHours
	if hours == 0 {
		hours = s.defaultExpiryHours
	}
	if hours < constants.MinAnnouncementExpiryHours {
		hours = constants.MinAnnouncementExpiryHours
	}

	now := s.now()
	announcement := &models.Announcement{
		Title:     title,
		Body:      body,
		CreatedBy: actor.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(hours) * time.Hour),
		Published: true,
	}

	if input.Image != nil {
		blob, err := s.blobs.Save(input.Image.Reader, input.Image.Name, now)
		if err != nil {
			if errors.Is(err, storage.ErrTooLarge) {
				return nil, ErrFileTooLarge
			}
			return nil, fmt.Errorf("failed to store announcement image: %w", err)
		}
		announcement.ImagePath = &blob.Name
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.announcementRepo.Create(ctx, announcement); err != nil {
			return fmt.Errorf("failed to create announcement: %w", err)
		}
		actorID := actor.ID
		return s.auditRepo.Record(ctx, models.NewAuditLog(models.AuditAnnouncementCreate, &actorID,
			map[string]any{"announcementId": announcement.ID}, now))
	})
	if err != nil {
		if announcement.ImagePath != nil {
			_ = s.blobs.Remove(*announcement.ImagePath)
		}
		return nil, err
	}

	view := s.view(*announcement)
	s.publisher.Publish(notify.AnnouncementCreated, view)
	return &view, nil
}

// List returns what actor may see: admins get everything, others only visible announcements.
func (s *AnnouncementService) List(ctx context.Context, actor *models.User) ([]AnnouncementView, error) {
	if actor.Role == models.RoleAdmin {
		announcements, err := s.announcementRepo.List(ctx, false)
		if err != nil {
			return nil, fmt.Errorf("failed to list announcements: %w", err)
		}
		return s.views(announcements, time.Time{}), nil
	}
	return s.ListPublic(ctx)
}

// ListPublic returns published, unexpired announcements.
func (s *AnnouncementService) ListPublic(ctx context.Context) ([]AnnouncementView, error) {
	announcements, err := s.announcementRepo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	return s.views(announcements, s.now()), nil
}

// Delete removes an announcement and its image. Unknown ids succeed silently.
func (s *AnnouncementService) Delete(ctx context.Context, actor *models.User, id uint64) error {
	var imagePath *string
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.announcementRepo.FindByID(ctx, id)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to find announcement: %w", err)
		}
		if existing != nil {
			imagePath = existing.ImagePath
		}

		if err := s.announcementRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete announcement: %w", err)
		}
		actorID := actor.ID
		return s.auditRepo.Record(ctx, models.NewAuditLog(models.AuditAnnouncementDelete, &actorID,
			map[string]any{"announcementId": id}, s.now()))
	})
	if err != nil {
		return err
	}

	if imagePath != nil {
		if err := s.blobs.Remove(*imagePath); err != nil {
			slog.Warn("failed to remove announcement image", "announcement_id", id, "error", err)
		}
	}
	s.publisher.Publish(notify.AnnouncementDeleted, map[string]uint64{"id": id})
	return nil
}

// views renders announcements; a non-zero visibleAt drops the ones not visible then.
func (s *AnnouncementService) views(announcements []models.Announcement, visibleAt time.Time) []AnnouncementView {
	views := make([]AnnouncementView, 0, len(announcements))
	for _, a := range announcements {
		if !visibleAt.IsZero() && !a.VisibleAt(visibleAt) {
			continue
		}
		views = append(views, s.view(a))
	}
	return views
}

func (s *AnnouncementService) view(a models.Announcement) AnnouncementView {
	view := AnnouncementView{Announcement: a, BodyHTML: s.renderer.Render(a.Body)}
	if a.ImagePath != nil {
		url := constants.UploadsURLPath + "/" + *a.ImagePath
		view.ImageURL = &url
	}
	return view
}
