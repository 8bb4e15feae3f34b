package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/silvercare-health/adherence-backend/pkg/model"
	"go.uber.org/zap"
)

// AdherenceRepository manages medication adherence log data
type AdherenceRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewAdherenceRepository creates a new AdherenceRepository
func NewAdherenceRepository(db *pgxpool.Pool, logger *zap.Logger) *AdherenceRepository {
	return &AdherenceRepository{
		db:     db,
		logger: logger,
	}
}

const adherenceColumns = `
	id, elderly_person_id, schedule_id, scheduled_time, timestamp,
	status, dispenser_confirmed, caregiver_alerted, notes, created_at
`

// FindByPersonIDInPeriod retrieves adherence logs for a person within the
// given time window, newest first
func (r *AdherenceRepository) FindByPersonIDInPeriod(ctx context.Context, personID string, from, to time.Time) ([]model.AdherenceLogEntry, error) {
	query := `
		SELECT ` + adherenceColumns + `
		FROM medication_adherence_logs
		WHERE elderly_person_id = $1
		  AND timestamp >= $2
		  AND timestamp <= $3
		ORDER BY timestamp DESC
	`

	rows, err := r.db.Query(ctx, query, personID, from, to)
	if err != nil {
		r.logger.Error("failed to find adherence logs",
			zap.Error(err),
			zap.String("elderly_person_id", personID),
		)
		return nil, fmt.Errorf("failed to find adherence logs: %w", err)
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

// FindByScheduleID retrieves all adherence logs for one schedule, newest first
func (r *AdherenceRepository) FindByScheduleID(ctx context.Context, scheduleID string) ([]model.AdherenceLogEntry, error) {
	query := `
		SELECT ` + adherenceColumns + `
		FROM medication_adherence_logs
		WHERE schedule_id = $1
		ORDER BY timestamp DESC
	`

	rows, err := r.db.Query(ctx, query, scheduleID)
	if err != nil {
		r.logger.Error("failed to find adherence logs for schedule",
			zap.Error(err),
			zap.String("schedule_id", scheduleID),
		)
		return nil, fmt.Errorf("failed to find adherence logs for schedule: %w", err)
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

// Insert stores one adherence log entry
func (r *AdherenceRepository) Insert(ctx context.Context, entry *model.AdherenceLogEntry) error {
	query := `
		INSERT INTO medication_adherence_logs (
			id, elderly_person_id, schedule_id, scheduled_time, timestamp,
			status, dispenser_confirmed, caregiver_alerted, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.ElderlyPersonID,
		entry.ScheduleID,
		entry.ScheduledTime,
		entry.Timestamp,
		entry.Status,
		entry.DispenserConfirmed,
		entry.CaregiverAlerted,
		entry.Notes,
	)

	if err != nil {
		r.logger.Error("failed to insert adherence log",
			zap.Error(err),
			zap.String("log_id", entry.ID),
			zap.String("schedule_id", entry.ScheduleID),
		)
		return fmt.Errorf("failed to insert adherence log: %w", err)
	}

	return nil
}

// scanEntries reads adherence log rows into model values, skipping rows that
// fail to scan rather than aborting the whole read
func (r *AdherenceRepository) scanEntries(rows pgx.Rows) ([]model.AdherenceLogEntry, error) {
	var entries []model.AdherenceLogEntry
	for rows.Next() {
		var entry model.AdherenceLogEntry
		err := rows.Scan(
			&entry.ID,
			&entry.ElderlyPersonID,
			&entry.ScheduleID,
			&entry.ScheduledTime,
			&entry.Timestamp,
			&entry.Status,
			&entry.DispenserConfirmed,
			&entry.CaregiverAlerted,
			&entry.Notes,
			&entry.CreatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan adherence log", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating adherence logs", zap.Error(err))
		return nil, fmt.Errorf("error iterating adherence logs: %w", err)
	}

	return entries, nil
}
