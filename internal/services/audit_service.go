package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/site-services-api/internal/models"
	"github.com/yukikurage/site-services-api/internal/repository"
	"github.com/yukikurage/site-services-api/internal/utils"
)

type AuditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// List returns audit entries newest first
func (s *AuditService) List(ctx context.Context, params utils.PaginationParams) ([]models.AuditLog, error) {
	entries, err := s.auditRepo.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log: %w", err)
	}
	return entries, nil
}
