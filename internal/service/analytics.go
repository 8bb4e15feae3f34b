package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/silvercare-health/adherence-backend/pkg/model"
	"go.uber.org/zap"
)

// ScheduleRepositoryInterface defines the schedule data access needed by the
// analytics service
type ScheduleRepositoryInterface interface {
	FindActiveByPersonID(ctx context.Context, personID string) ([]model.MedicationSchedule, error)
}

// AdherenceRepositoryInterface defines the adherence-log data access needed
// by the analytics service
type AdherenceRepositoryInterface interface {
	FindByPersonIDInPeriod(ctx context.Context, personID string, from, to time.Time) ([]model.AdherenceLogEntry, error)
}

// AnalyticsService fetches a person's schedules and adherence logs and runs
// the analytics engine over them
type AnalyticsService struct {
	scheduleRepo  ScheduleRepositoryInterface
	adherenceRepo AdherenceRepositoryInterface
	engine        *AnalyticsEngine
	defaultPeriod int
	maxPeriod     int
	logger        *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(
	scheduleRepo ScheduleRepositoryInterface,
	adherenceRepo AdherenceRepositoryInterface,
	engine *AnalyticsEngine,
	defaultPeriodDays int,
	maxPeriodDays int,
	logger *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		scheduleRepo:  scheduleRepo,
		adherenceRepo: adherenceRepo,
		engine:        engine,
		defaultPeriod: defaultPeriodDays,
		maxPeriod:     maxPeriodDays,
		logger:        logger,
	}
}

// GetMedicationAnalytics computes the adherence report for one person over
// the trailing period. A non-positive period falls back to the configured
// default; periods beyond the configured maximum are clamped.
func (s *AnalyticsService) GetMedicationAnalytics(ctx context.Context, personID string, periodDays int, opts ReportOptions) (*model.AnalyticsReport, error) {
	if personID == "" {
		return nil, fmt.Errorf("person ID is required")
	}
	if _, err := uuid.Parse(personID); err != nil {
		return nil, fmt.Errorf("invalid person ID: %w", err)
	}

	if periodDays <= 0 {
		s.logger.Warn("non-positive period, using default",
			zap.Int("period_days", periodDays),
			zap.Int("default", s.defaultPeriod),
		)
		periodDays = s.defaultPeriod
	}
	if periodDays > s.maxPeriod {
		s.logger.Warn("period exceeds maximum, clamping",
			zap.Int("period_days", periodDays),
			zap.Int("max", s.maxPeriod),
		)
		periodDays = s.maxPeriod
	}

	s.logger.Info("computing medication analytics",
		zap.String("elderly_person_id", personID),
		zap.Int("period_days", periodDays),
	)

	now := time.Now().UTC()
	from := now.Add(-time.Duration(periodDays) * 24 * time.Hour)

	schedules, err := s.scheduleRepo.FindActiveByPersonID(ctx, personID)
	if err != nil {
		s.logger.Error("failed to get medication schedules",
			zap.Error(err),
			zap.String("elderly_person_id", personID),
		)
		return nil, fmt.Errorf("failed to get medication schedules: %w", err)
	}

	logs, err := s.adherenceRepo.FindByPersonIDInPeriod(ctx, personID, from, now)
	if err != nil {
		s.logger.Error("failed to get adherence logs",
			zap.Error(err),
			zap.String("elderly_person_id", personID),
		)
		return nil, fmt.Errorf("failed to get adherence logs: %w", err)
	}

	report, err := s.engine.BuildReport(schedules, logs, periodDays, now, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build analytics report: %w", err)
	}

	s.logger.Info("medication analytics computed",
		zap.String("elderly_person_id", personID),
		zap.Int("period_days", periodDays),
		zap.Int("log_count", len(logs)),
		zap.Int("overall_compliance_rate", report.Summary.OverallComplianceRate),
	)

	return report, nil
}
