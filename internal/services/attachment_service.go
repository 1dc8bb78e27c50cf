package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/yukikurage/site-services-api/internal/database"
	"github.com/yukikurage/site-services-api/internal/models"
	"github.com/yukikurage/site-services-api/internal/notify"
	"github.com/yukikurage/site-services-api/internal/repository"
	"github.com/yukikurage/site-services-api/internal/storage"
)

var (
	ErrNoFile       = errors.New("no file uploaded")
	ErrFileTooLarge = errors.New("file too large")
)

// AttachmentService stores files against tickets
type AttachmentService struct {
	txm            *database.TransactionManager
	attachmentRepo repository.AttachmentRepository
	auditRepo      repository.AuditRepository
	blobs          *storage.BlobStore
	publisher      Publisher
	now            func() time.Time
}

func NewAttachmentService(
	txm *database.TransactionManager,
	attachmentRepo repository.AttachmentRepository,
	auditRepo repository.AuditRepository,
	blobs *storage.BlobStore,
	publisher Publisher,
) *AttachmentService {
	return &AttachmentService{
		txm:            txm,
		attachmentRepo: attachmentRepo,
		auditRepo:      auditRepo,
		blobs:          blobs,
		publisher:      publisher,
		now:            time.Now,
	}
}

// Upload writes the file to the blob store, then records its metadata.
// The blob is removed again if the database write fails.
func (s *AttachmentService) Upload(ctx context.Context, actor *models.User, ticket *models.Ticket, originalName string, r io.Reader) (*models.Attachment, error) {
	if r == nil {
		return nil, ErrNoFile
	}

	now := s.now()
	blob, err := s.blobs.Save(r, originalName, now)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, ErrFileTooLarge
		}
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}

	attachment := &models.Attachment{
		TicketID:     ticket.ID,
		UploadedBy:   actor.ID,
		OriginalName: originalName,
		FileName:     blob.Name,
		Mime:         blob.Mime,
		Size:         blob.Size,
		CreatedAt:    now,
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
			return fmt.Errorf("failed to create attachment: %w", err)
		}
		actorID := actor.ID
		return s.auditRepo.Record(ctx, models.NewAuditLog(models.AuditAttachmentUpload, &actorID,
			map[string]any{"ticketId": ticket.ID, "attachmentId": attachment.ID}, now))
	})
	if err != nil {
		_ = s.blobs.Remove(blob.Name)
		return nil, err
	}

	s.publisher.Publish(notify.AttachmentCreated, map[string]any{
		"ticketId":   ticket.ID,
		"attachment": attachment,
	})
	return attachment, nil
}

// List returns a ticket's attachments in upload order
func (s *AttachmentService) List(ctx context.Context, ticketID uint64) ([]models.Attachment, error) {
	attachments, err := s.attachmentRepo.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	return attachments, nil
}
