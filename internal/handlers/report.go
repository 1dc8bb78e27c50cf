package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/site-services-api/internal/services"
	"github.com/yukikurage/site-services-api/internal/utils"
)

// ReportHandler serves admin reporting and the audit trail.
type ReportHandler struct {
	reportService *services.ReportService
	auditService  *services.AuditService
}

func NewReportHandler(reportService *services.ReportService, auditService *services.AuditService) *ReportHandler {
	return &ReportHandler{reportService: reportService, auditService: auditService}
}

// Summary returns ticket counts, resolution time and SLA figures.
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.reportService.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// TopStaff returns the best rated staff members.
func (h *ReportHandler) TopStaff(c *gin.Context) {
	staff, err := h.reportService.TopStaff(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": staff})
}

// Audit returns the most recent audit entries. GET /api/audit?limit=&page=
func (h *ReportHandler) Audit(c *gin.Context) {
	items, err := h.auditService.List(c.Request.Context(), utils.GetPaginationParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
