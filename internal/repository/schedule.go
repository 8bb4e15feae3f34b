package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/silvercare-health/adherence-backend/pkg/model"
	"go.uber.org/zap"
)

// ScheduleRepository manages medication schedule data
type ScheduleRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewScheduleRepository creates a new ScheduleRepository
func NewScheduleRepository(db *pgxpool.Pool, logger *zap.Logger) *ScheduleRepository {
	return &ScheduleRepository{
		db:     db,
		logger: logger,
	}
}

// FindActiveByPersonID retrieves all active medication schedules for a person
func (r *ScheduleRepository) FindActiveByPersonID(ctx context.Context, personID string) ([]model.MedicationSchedule, error) {
	query := `
		SELECT
			id, elderly_person_id, medication_name, dosage_mg, dosage_unit,
			frequency, times, start_date, end_date, instructions, is_active,
			created_at, updated_at
		FROM medication_schedules
		WHERE elderly_person_id = $1 AND is_active = true
		ORDER BY medication_name
	`

	rows, err := r.db.Query(ctx, query, personID)
	if err != nil {
		r.logger.Error("failed to find schedules", zap.Error(err), zap.String("elderly_person_id", personID))
		return nil, fmt.Errorf("failed to find schedules: %w", err)
	}
	defer rows.Close()

	var schedules []model.MedicationSchedule
	for rows.Next() {
		var schedule model.MedicationSchedule
		err := rows.Scan(
			&schedule.ID,
			&schedule.ElderlyPersonID,
			&schedule.MedicationName,
			&schedule.DosageMg,
			&schedule.DosageUnit,
			&schedule.Frequency,
			&schedule.Times,
			&schedule.StartDate,
			&schedule.EndDate,
			&schedule.Instructions,
			&schedule.IsActive,
			&schedule.CreatedAt,
			&schedule.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan schedule", zap.Error(err))
			continue
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating schedules", zap.Error(err))
		return nil, fmt.Errorf("error iterating schedules: %w", err)
	}

	return schedules, nil
}

// FindByID retrieves a medication schedule by ID
func (r *ScheduleRepository) FindByID(ctx context.Context, scheduleID string) (*model.MedicationSchedule, error) {
	query := `
		SELECT
			id, elderly_person_id, medication_name, dosage_mg, dosage_unit,
			frequency, times, start_date, end_date, instructions, is_active,
			created_at, updated_at
		FROM medication_schedules
		WHERE id = $1
	`

	var schedule model.MedicationSchedule
	err := r.db.QueryRow(ctx, query, scheduleID).Scan(
		&schedule.ID,
		&schedule.ElderlyPersonID,
		&schedule.MedicationName,
		&schedule.DosageMg,
		&schedule.DosageUnit,
		&schedule.Frequency,
		&schedule.Times,
		&schedule.StartDate,
		&schedule.EndDate,
		&schedule.Instructions,
		&schedule.IsActive,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("schedule not found: %s", scheduleID)
		}
		r.logger.Error("failed to find schedule", zap.Error(err), zap.String("schedule_id", scheduleID))
		return nil, fmt.Errorf("failed to find schedule: %w", err)
	}

	return &schedule, nil
}
