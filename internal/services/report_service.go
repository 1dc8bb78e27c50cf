package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/site-services-api/internal/constants"
	"github.com/yukikurage/site-services-api/internal/models"
	"github.com/yukikurage/site-services-api/internal/repository"
)

const topStaffLimit = 5

// Summary is the admin dashboard overview
type Summary struct {
	Total              int                         `json:"total"`
	Open               int                         `json:"open"`
	Assigned           int                         `json:"assigned"`
	Done               int                         `json:"done"`
	Cancelled          int                         `json:"cancelled"`
	ByStatus           map[models.TicketStatus]int `json:"byStatus"`
	AvgResolutionHours *float64                    `json:"avgResolutionHours"`
	SLAOk              int                         `json:"slaOk"`
	SLATotal           int                         `json:"slaTotal"`
	Overdue            int                         `json:"overdue"`
}

type ReportService struct {
	reportRepo repository.ReportRepository
	now        func() time.Time
}

func NewReportService(reportRepo repository.ReportRepository) *ReportService {
	return &ReportService{reportRepo: reportRepo, now: time.Now}
}

// Summary aggregates ticket counts, resolution time and SLA compliance
func (s *ReportService) Summary(ctx context.Context) (*Summary, error) {
	rows, err := s.reportRepo.TicketTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tickets for report: %w", err)
	}
	return summarize(rows, s.now()), nil
}

// TopStaff ranks staff by average rating on their tickets
func (s *ReportService) TopStaff(ctx context.Context) ([]repository.StaffRating, error) {
	staff, err := s.reportRepo.TopStaff(ctx, topStaffLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load staff ratings: %w", err)
	}
	return staff, nil
}

func summarize(rows []repository.TicketTimes, now time.Time) *Summary {
	summary := &Summary{
		Total:    len(rows),
		ByStatus: map[models.TicketStatus]int{},
	}

	var hoursSum float64
	for _, row := range rows {
		summary.ByStatus[row.Status]++

		switch row.Status {
		case models.TicketStatusOpen, models.TicketStatusInReview:
			summary.Open++
		case models.TicketStatusAssigned:
			summary.Assigned++
		case models.TicketStatusResolved, models.TicketStatusClosed:
			summary.Done++
		case models.TicketStatusCancelled:
			summary.Cancelled++
		}

		if row.Status.IsResolved() && row.ResolvedAt != nil {
			elapsed := row.ResolvedAt.Sub(row.CreatedAt)
			if elapsed >= 0 {
				hoursSum += elapsed.Hours()
				summary.SLATotal++
				if elapsed <= constants.SLAThreshold {
					summary.SLAOk++
				}
			}
		}

		if !row.Status.IsResolved() && row.Status != models.TicketStatusCancelled &&
			now.Sub(row.CreatedAt) > constants.SLAThreshold {
			summary.Overdue++
		}
	}

	if summary.SLATotal > 0 {
		avg := hoursSum / float64(summary.SLATotal)
		summary.AvgResolutionHours = &avg
	}

	return summary
}
