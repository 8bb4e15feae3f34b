package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/silvercare-health/adherence-backend/internal/audit"
	"github.com/silvercare-health/adherence-backend/internal/service"
	"github.com/silvercare-health/adherence-backend/pkg/model"
	"go.uber.org/zap"
)

// AdherenceHandler implements the dose-event endpoints
type AdherenceHandler struct {
	service     *service.AdherenceService
	auditLogger *audit.Logger
	logger      *zap.Logger
}

// NewAdherenceHandler creates a new AdherenceHandler
func NewAdherenceHandler(service *service.AdherenceService, auditLogger *audit.Logger, logger *zap.Logger) *AdherenceHandler {
	return &AdherenceHandler{
		service:     service,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// doseEventRequest is the request body for recording a dose event
type doseEventRequest struct {
	ScheduleID         string     `json:"schedule_id" binding:"required,uuid"`
	ScheduledTime      string     `json:"scheduled_time" binding:"required"`
	Timestamp          *time.Time `json:"timestamp"`
	Status             string     `json:"status" binding:"required"`
	DispenserConfirmed bool       `json:"dispenser_confirmed"`
	CaregiverAlerted   bool       `json:"caregiver_alerted"`
	Notes              *string    `json:"notes"`
}

// PostDoseEvent records one scheduled-dose event
func (h *AdherenceHandler) PostDoseEvent(c *gin.Context) {
	var req doseEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "Invalid dose event",
			Details: stringPtr(err.Error()),
		})
		return
	}

	entry := &model.AdherenceLogEntry{
		ScheduleID:         req.ScheduleID,
		ScheduledTime:      req.ScheduledTime,
		Status:             model.AdherenceStatus(req.Status),
		DispenserConfirmed: req.DispenserConfirmed,
		CaregiverAlerted:   req.CaregiverAlerted,
		Notes:              req.Notes,
	}
	if req.Timestamp != nil {
		entry.Timestamp = *req.Timestamp
	}

	if err := h.service.LogDose(c.Request.Context(), entry); err != nil {
		h.logger.Error("failed to record dose event",
			zap.Error(err),
			zap.String("schedule_id", req.ScheduleID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to record dose event",
			Details: stringPtr(err.Error()),
		})
		return
	}

	actor := c.GetString("user_id")
	if actor == "" {
		actor = "anonymous"
	}
	if err := h.auditLogger.LogCreate(c.Request.Context(), actor, audit.ResourceAdherenceLog, entry.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		h.logger.Warn("failed to audit dose event creation",
			zap.Error(err),
			zap.String("log_id", entry.ID),
		)
	}

	c.JSON(http.StatusCreated, entry)
}

// GetDoseHistory lists the dose events for one schedule, newest first
func (h *AdherenceHandler) GetDoseHistory(c *gin.Context) {
	scheduleID := c.Param("scheduleId")

	entries, err := h.service.GetDoseHistory(c.Request.Context(), scheduleID)
	if err != nil {
		h.logger.Error("failed to get dose history",
			zap.Error(err),
			zap.String("schedule_id", scheduleID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to get dose history",
			Details: stringPtr(err.Error()),
		})
		return
	}

	if entries == nil {
		entries = []model.AdherenceLogEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"schedule_id": scheduleID,
		"entries":     entries,
	})
}
