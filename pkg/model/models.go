package model

import "time"

// AdherenceStatus represents the outcome of one scheduled dose
type AdherenceStatus string

const (
	AdherenceStatusTaken   AdherenceStatus = "taken"
	AdherenceStatusMissed  AdherenceStatus = "missed"
	AdherenceStatusLate    AdherenceStatus = "late"
	AdherenceStatusPending AdherenceStatus = "pending"
)

// Counted reports whether the status counts toward the compliance rate
// (doses taken on time or late).
func (s AdherenceStatus) Counted() bool {
	return s == AdherenceStatusTaken || s == AdherenceStatusLate
}

// ComplianceTrend classifies the direction of compliance over a period
type ComplianceTrend string

const (
	TrendImproving ComplianceTrend = "improving"
	TrendDeclining ComplianceTrend = "declining"
	TrendStable    ComplianceTrend = "stable"
)

// MedicationSchedule represents one active prescription for a person.
// Schedules are owned by the scheduling subsystem; the analytics engine
// only ever reads them.
type MedicationSchedule struct {
	ID              string     `json:"id"`
	ElderlyPersonID string     `json:"elderly_person_id"`
	MedicationName  string     `json:"medication_name"`
	DosageMg        *float64   `json:"dosage_mg,omitempty"`
	DosageUnit      *string    `json:"dosage_unit,omitempty"`
	Frequency       string     `json:"frequency"`
	Times           []string   `json:"times"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Instructions    *string    `json:"instructions,omitempty"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// AdherenceLogEntry represents one scheduled-dose event. Entries are
// immutable once written by the logging subsystem.
type AdherenceLogEntry struct {
	ID                 string          `json:"id"`
	ElderlyPersonID    string          `json:"elderly_person_id"`
	ScheduleID         string          `json:"schedule_id"`
	ScheduledTime      string          `json:"scheduled_time"` // HH:MM clock time
	Timestamp          time.Time       `json:"timestamp"`
	Status             AdherenceStatus `json:"status"`
	DispenserConfirmed bool            `json:"dispenser_confirmed"`
	CaregiverAlerted   bool            `json:"caregiver_alerted"`
	Notes              *string         `json:"notes,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// DailyStat aggregates adherence for one calendar day
type DailyStat struct {
	Date           string `json:"date"` // ISO date, no time component
	TotalScheduled int    `json:"total_scheduled"`
	Taken          int    `json:"taken"`
	Missed         int    `json:"missed"`
	Late           int    `json:"late"`
	Pending        int    `json:"pending"`
	ComplianceRate int    `json:"compliance_rate"`
}

// MedicationStat aggregates adherence for one medication schedule
type MedicationStat struct {
	MedicationID        string `json:"medication_id"`
	MedicationName      string `json:"medication_name"`
	Dosage              string `json:"dosage"`
	Frequency           string `json:"frequency"`
	TotalDoses          int    `json:"total_doses"`
	Taken               int    `json:"taken"`
	Missed              int    `json:"missed"`
	Late                int    `json:"late"`
	ComplianceRate      int    `json:"compliance_rate"`
	AverageDelayMinutes *int   `json:"average_delay_minutes"` // not yet computed, kept for shape compatibility
	StreakCurrent       int    `json:"streak_current"`
	StreakBest          int    `json:"streak_best"`
}

// TimeSlotStat aggregates adherence for one circadian time slot
type TimeSlotStat struct {
	TimeSlot       string `json:"time_slot"`
	Total          int    `json:"total"`
	Taken          int    `json:"taken"`
	Missed         int    `json:"missed"`
	ComplianceRate int    `json:"compliance_rate"`
}

// WeeklyPatternStat aggregates adherence for one day of the week
type WeeklyPatternStat struct {
	Day            string `json:"day"`
	ComplianceRate int    `json:"compliance_rate"`
	Total          int    `json:"total"`
}

// AnalyticsSummary holds the top-line counts and rates for a period
type AnalyticsSummary struct {
	TotalScheduledDoses       int             `json:"total_scheduled_doses"`
	TotalTaken                int             `json:"total_taken"`
	TotalMissed               int             `json:"total_missed"`
	TotalLate                 int             `json:"total_late"`
	TotalPending              int             `json:"total_pending"`
	OverallComplianceRate     int             `json:"overall_compliance_rate"`
	OnTimeRate                int             `json:"on_time_rate"`
	DispenserConfirmationRate int             `json:"dispenser_confirmation_rate"`
	CaregiverAlertCount       int             `json:"caregiver_alert_count"`
	ActiveMedications         int             `json:"active_medications"`
	ComplianceTrend           ComplianceTrend `json:"compliance_trend"`
	ComplianceChange          int             `json:"compliance_change"`
}

// RecentActivityEntry is one row of the trimmed recent-activity view
type RecentActivityEntry struct {
	Timestamp          time.Time       `json:"timestamp"`
	MedicationName     string          `json:"medication_name"`
	Dosage             string          `json:"dosage"`
	ScheduledTime      string          `json:"scheduled_time"`
	Status             AdherenceStatus `json:"status"`
	DispenserConfirmed bool            `json:"dispenser_confirmed"`
}

// ILQImpact holds the wellness-impact sub-scores consumed by the
// independence-quality index. All scores are clamped to [0, 100].
type ILQImpact struct {
	CognitiveScoreContribution int `json:"cognitive_score_contribution"`
	MedicationRoutineScore     int `json:"medication_routine_score"`
	AdherenceConsistencyScore  int `json:"adherence_consistency_score"`
}

// AnalyticsReport is the full adherence report for one person and period
type AnalyticsReport struct {
	PeriodDays      int                   `json:"period_days"`
	Summary         AnalyticsSummary      `json:"summary"`
	DailyStats      []DailyStat           `json:"daily_stats"`
	MedicationStats []MedicationStat      `json:"medication_stats"`
	TimeSlotStats   []TimeSlotStat        `json:"time_slot_stats"`
	WeeklyPattern   []WeeklyPatternStat   `json:"weekly_pattern"`
	RecentActivity  []RecentActivityEntry `json:"recent_activity"`
	Insights        []string              `json:"insights"`
	ILQImpact       ILQImpact             `json:"ilq_impact"`
}
