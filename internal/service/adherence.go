package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/silvercare-health/adherence-backend/pkg/model"
	"go.uber.org/zap"
)

// AdherenceWriteRepositoryInterface defines the data access needed to record
// and list dose events
type AdherenceWriteRepositoryInterface interface {
	Insert(ctx context.Context, entry *model.AdherenceLogEntry) error
	FindByScheduleID(ctx context.Context, scheduleID string) ([]model.AdherenceLogEntry, error)
}

// ScheduleLookupInterface resolves a schedule by its identifier
type ScheduleLookupInterface interface {
	FindByID(ctx context.Context, scheduleID string) (*model.MedicationSchedule, error)
}

// AdherenceService handles recording of dose events. Entries are immutable
// once written; analytics only ever aggregates over them.
type AdherenceService struct {
	repo         AdherenceWriteRepositoryInterface
	scheduleRepo ScheduleLookupInterface
	logger       *zap.Logger
}

// NewAdherenceService creates a new AdherenceService
func NewAdherenceService(repo AdherenceWriteRepositoryInterface, scheduleRepo ScheduleLookupInterface, logger *zap.Logger) *AdherenceService {
	return &AdherenceService{
		repo:         repo,
		scheduleRepo: scheduleRepo,
		logger:       logger,
	}
}

// LogDose records one scheduled-dose event against an existing schedule
func (s *AdherenceService) LogDose(ctx context.Context, entry *model.AdherenceLogEntry) error {
	if entry.ScheduleID == "" {
		return fmt.Errorf("schedule ID is required")
	}
	if entry.ScheduledTime == "" {
		return fmt.Errorf("scheduled time is required")
	}
	switch entry.Status {
	case model.AdherenceStatusTaken, model.AdherenceStatusMissed, model.AdherenceStatusLate, model.AdherenceStatusPending:
	default:
		return fmt.Errorf("invalid adherence status: %q", entry.Status)
	}

	schedule, err := s.scheduleRepo.FindByID(ctx, entry.ScheduleID)
	if err != nil {
		s.logger.Error("failed to resolve schedule for dose event",
			zap.Error(err),
			zap.String("schedule_id", entry.ScheduleID),
		)
		return fmt.Errorf("schedule not found: %w", err)
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.ElderlyPersonID = schedule.ElderlyPersonID
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	entry.CreatedAt = time.Now().UTC()

	if err := s.repo.Insert(ctx, entry); err != nil {
		s.logger.Error("failed to log dose event",
			zap.Error(err),
			zap.String("schedule_id", entry.ScheduleID),
		)
		return fmt.Errorf("failed to log dose event: %w", err)
	}

	s.logger.Info("dose event logged",
		zap.String("log_id", entry.ID),
		zap.String("schedule_id", entry.ScheduleID),
		zap.String("status", string(entry.Status)),
		zap.Bool("dispenser_confirmed", entry.DispenserConfirmed),
	)

	return nil
}

// GetDoseHistory retrieves all dose events for one schedule, newest first
func (s *AdherenceService) GetDoseHistory(ctx context.Context, scheduleID string) ([]model.AdherenceLogEntry, error) {
	if scheduleID == "" {
		return nil, fmt.Errorf("schedule ID is required")
	}

	entries, err := s.repo.FindByScheduleID(ctx, scheduleID)
	if err != nil {
		s.logger.Error("failed to get dose history",
			zap.Error(err),
			zap.String("schedule_id", scheduleID),
		)
		return nil, fmt.Errorf("failed to get dose history: %w", err)
	}

	s.logger.Info("dose history retrieved",
		zap.String("schedule_id", scheduleID),
		zap.Int("count", len(entries)),
	)

	return entries, nil
}
