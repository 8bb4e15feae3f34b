package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/silvercare-health/adherence-backend/pkg/model"
	"go.uber.org/zap"
)

// Mock implementations for testing

type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) FindActiveByPersonID(ctx context.Context, personID string) ([]model.MedicationSchedule, error) {
	args := m.Called(ctx, personID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MedicationSchedule), args.Error(1)
}

func (m *MockScheduleRepository) FindByID(ctx context.Context, scheduleID string) (*model.MedicationSchedule, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MedicationSchedule), args.Error(1)
}

type MockAdherenceRepository struct {
	mock.Mock
}

func (m *MockAdherenceRepository) FindByPersonIDInPeriod(ctx context.Context, personID string, from, to time.Time) ([]model.AdherenceLogEntry, error) {
	args := m.Called(ctx, personID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AdherenceLogEntry), args.Error(1)
}

func (m *MockAdherenceRepository) FindByScheduleID(ctx context.Context, scheduleID string) ([]model.AdherenceLogEntry, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AdherenceLogEntry), args.Error(1)
}

func (m *MockAdherenceRepository) Insert(ctx context.Context, entry *model.AdherenceLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func newTestAnalyticsService(scheduleRepo *MockScheduleRepository, adherenceRepo *MockAdherenceRepository) *AnalyticsService {
	logger := zap.NewNop()
	return NewAnalyticsService(scheduleRepo, adherenceRepo, NewAnalyticsEngine(logger), 30, 365, logger)
}

const testPersonID = "b7e2a3c4-5d6f-4a8b-9c0d-1e2f3a4b5c6d"

func TestGetMedicationAnalytics_ValidationErrors(t *testing.T) {
	service := newTestAnalyticsService(&MockScheduleRepository{}, &MockAdherenceRepository{})
	ctx := context.Background()

	tests := []struct {
		name        string
		personID    string
		expectedErr string
	}{
		{"empty person ID", "", "person ID is required"},
		{"malformed person ID", "not-a-uuid", "invalid person ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := service.GetMedicationAnalytics(ctx, tt.personID, 30, DefaultReportOptions())
			assert.Nil(t, report)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func TestGetMedicationAnalytics_Success(t *testing.T) {
	scheduleRepo := &MockScheduleRepository{}
	adherenceRepo := &MockAdherenceRepository{}
	service := newTestAnalyticsService(scheduleRepo, adherenceRepo)
	ctx := context.Background()

	schedules := []model.MedicationSchedule{testSchedule("med-1", "Aspirin", 100)}
	logs := []model.AdherenceLogEntry{
		testLog("med-1", 0, "08:00", model.AdherenceStatusTaken),
		testLog("med-1", 1, "08:00", model.AdherenceStatusMissed),
	}

	scheduleRepo.On("FindActiveByPersonID", ctx, testPersonID).Return(schedules, nil)
	adherenceRepo.On("FindByPersonIDInPeriod", ctx, testPersonID, mock.Anything, mock.Anything).Return(logs, nil)

	report, err := service.GetMedicationAnalytics(ctx, testPersonID, 30, DefaultReportOptions())
	require.NoError(t, err)
	assert.Equal(t, 30, report.PeriodDays)
	assert.Equal(t, 2, report.Summary.TotalScheduledDoses)
	assert.Equal(t, 50, report.Summary.OverallComplianceRate)

	scheduleRepo.AssertExpectations(t)
	adherenceRepo.AssertExpectations(t)
}

func TestGetMedicationAnalytics_DefaultsNonPositivePeriod(t *testing.T) {
	scheduleRepo := &MockScheduleRepository{}
	adherenceRepo := &MockAdherenceRepository{}
	service := newTestAnalyticsService(scheduleRepo, adherenceRepo)
	ctx := context.Background()

	scheduleRepo.On("FindActiveByPersonID", ctx, testPersonID).Return([]model.MedicationSchedule{}, nil)
	adherenceRepo.On("FindByPersonIDInPeriod", ctx, testPersonID, mock.Anything, mock.Anything).Return([]model.AdherenceLogEntry{}, nil)

	for _, period := range []int{0, -7} {
		report, err := service.GetMedicationAnalytics(ctx, testPersonID, period, DefaultReportOptions())
		require.NoError(t, err)
		assert.Equal(t, 30, report.PeriodDays, "period %d falls back to the default", period)
		assert.Len(t, report.DailyStats, 30)
	}
}

func TestGetMedicationAnalytics_ClampsOversizedPeriod(t *testing.T) {
	scheduleRepo := &MockScheduleRepository{}
	adherenceRepo := &MockAdherenceRepository{}
	service := newTestAnalyticsService(scheduleRepo, adherenceRepo)
	ctx := context.Background()

	scheduleRepo.On("FindActiveByPersonID", ctx, testPersonID).Return([]model.MedicationSchedule{}, nil)
	adherenceRepo.On("FindByPersonIDInPeriod", ctx, testPersonID, mock.Anything, mock.Anything).Return([]model.AdherenceLogEntry{}, nil)

	report, err := service.GetMedicationAnalytics(ctx, testPersonID, 1000, DefaultReportOptions())
	require.NoError(t, err)
	assert.Equal(t, 365, report.PeriodDays)
}

func TestGetMedicationAnalytics_RepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("schedule lookup fails", func(t *testing.T) {
		scheduleRepo := &MockScheduleRepository{}
		adherenceRepo := &MockAdherenceRepository{}
		service := newTestAnalyticsService(scheduleRepo, adherenceRepo)

		scheduleRepo.On("FindActiveByPersonID", ctx, testPersonID).Return(nil, fmt.Errorf("connection refused"))

		report, err := service.GetMedicationAnalytics(ctx, testPersonID, 30, DefaultReportOptions())
		assert.Nil(t, report)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get medication schedules")
	})

	t.Run("adherence lookup fails", func(t *testing.T) {
		scheduleRepo := &MockScheduleRepository{}
		adherenceRepo := &MockAdherenceRepository{}
		service := newTestAnalyticsService(scheduleRepo, adherenceRepo)

		scheduleRepo.On("FindActiveByPersonID", ctx, testPersonID).Return([]model.MedicationSchedule{}, nil)
		adherenceRepo.On("FindByPersonIDInPeriod", ctx, testPersonID, mock.Anything, mock.Anything).Return(nil, fmt.Errorf("connection refused"))

		report, err := service.GetMedicationAnalytics(ctx, testPersonID, 30, DefaultReportOptions())
		assert.Nil(t, report)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get adherence logs")
	})
}

func TestGetMedicationAnalytics_QueryWindowMatchesPeriod(t *testing.T) {
	scheduleRepo := &MockScheduleRepository{}
	adherenceRepo := &MockAdherenceRepository{}
	service := newTestAnalyticsService(scheduleRepo, adherenceRepo)
	ctx := context.Background()

	scheduleRepo.On("FindActiveByPersonID", ctx, testPersonID).Return([]model.MedicationSchedule{}, nil)
	adherenceRepo.On("FindByPersonIDInPeriod", ctx, testPersonID,
		mock.MatchedBy(func(from time.Time) bool {
			return time.Since(from) > 6*24*time.Hour
		}),
		mock.MatchedBy(func(to time.Time) bool {
			return time.Since(to) < time.Minute
		}),
	).Return([]model.AdherenceLogEntry{}, nil)

	_, err := service.GetMedicationAnalytics(ctx, testPersonID, 7, DefaultReportOptions())
	require.NoError(t, err)
	adherenceRepo.AssertExpectations(t)
}
