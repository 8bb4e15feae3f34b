package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/silvercare-health/adherence-backend/internal/audit"
	"github.com/silvercare-health/adherence-backend/internal/service"
	"go.uber.org/zap"
)

// AnalyticsHandler implements the medication analytics endpoints
type AnalyticsHandler struct {
	service     *service.AnalyticsService
	reports     *service.ReportService
	auditLogger *audit.Logger
	logger      *zap.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(service *service.AnalyticsService, reports *service.ReportService, auditLogger *audit.Logger, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:     service,
		reports:     reports,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// analyticsRequest mirrors the request shape of the analytics endpoint
type analyticsRequest struct {
	ElderlyPersonID            string `json:"elderly_person_id" binding:"required,uuid"`
	PeriodDays                 int    `json:"period_days"`
	IncludeDailyBreakdown      *bool  `json:"include_daily_breakdown"`
	IncludeMedicationBreakdown *bool  `json:"include_medication_breakdown"`
}

// PostMedicationAnalytics computes the adherence report for one person
func (h *AnalyticsHandler) PostMedicationAnalytics(c *gin.Context) {
	var req analyticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "Invalid analytics request",
			Details: stringPtr(err.Error()),
		})
		return
	}

	opts := service.DefaultReportOptions()
	if req.IncludeDailyBreakdown != nil {
		opts.IncludeDailyBreakdown = *req.IncludeDailyBreakdown
	}
	if req.IncludeMedicationBreakdown != nil {
		opts.IncludeMedicationBreakdown = *req.IncludeMedicationBreakdown
	}

	report, err := h.service.GetMedicationAnalytics(c.Request.Context(), req.ElderlyPersonID, req.PeriodDays, opts)
	if err != nil {
		h.logger.Error("failed to compute medication analytics",
			zap.Error(err),
			zap.String("elderly_person_id", req.ElderlyPersonID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to compute medication analytics",
			Details: stringPtr(err.Error()),
		})
		return
	}

	h.auditReportAccess(c, req.ElderlyPersonID)

	c.JSON(http.StatusOK, report)
}

// GetAdherenceReportPDF renders the adherence report as a PDF download
func (h *AnalyticsHandler) GetAdherenceReportPDF(c *gin.Context) {
	personID := c.Query("elderly_person_id")
	if personID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "elderly_person_id is required",
		})
		return
	}

	periodDays := 0
	if raw := c.Query("period_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    "INVALID_REQUEST",
				Message: "period_days must be an integer",
				Details: stringPtr(err.Error()),
			})
			return
		}
		periodDays = parsed
	}

	personName := c.Query("person_name")

	pdfBytes, err := h.reports.GenerateAdherencePDF(c.Request.Context(), personID, personName, periodDays)
	if err != nil {
		h.logger.Error("failed to generate adherence PDF",
			zap.Error(err),
			zap.String("elderly_person_id", personID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to generate adherence report",
			Details: stringPtr(err.Error()),
		})
		return
	}

	h.auditReportAccess(c, personID)

	c.Header("Content-Disposition", "attachment; filename=adherence-report.pdf")
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// auditReportAccess records a caregiver reading a person's analytics report.
// Audit failures are logged but never fail the request.
func (h *AnalyticsHandler) auditReportAccess(c *gin.Context, personID string) {
	actor := c.GetString("user_id")
	if actor == "" {
		actor = "anonymous"
	}
	err := h.auditLogger.LogRead(c.Request.Context(), actor, audit.ResourceAnalyticsReport, personID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.logger.Warn("failed to audit analytics report access",
			zap.Error(err),
			zap.String("elderly_person_id", personID),
		)
	}
}
