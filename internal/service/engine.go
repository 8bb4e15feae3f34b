package service

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/silvercare-health/adherence-backend/pkg/model"
	"go.uber.org/zap"
)

// ErrNegativePeriod is returned when a caller passes a negative period length.
// A zero-length period is degenerate but valid and yields an all-empty report.
var ErrNegativePeriod = errors.New("period days must not be negative")

// ReportOptions controls which optional breakdowns are computed
type ReportOptions struct {
	IncludeDailyBreakdown      bool
	IncludeMedicationBreakdown bool
}

// DefaultReportOptions returns the options used when the caller does not
// specify any.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		IncludeDailyBreakdown:      true,
		IncludeMedicationBreakdown: true,
	}
}

// AnalyticsEngine computes adherence analytics from an already-fetched batch
// of schedules and logs. It holds no state besides a logger (used only to
// report malformed entries that were skipped), so a single engine may be
// shared across concurrent requests.
type AnalyticsEngine struct {
	logger *zap.Logger
}

// NewAnalyticsEngine creates a new AnalyticsEngine
func NewAnalyticsEngine(logger *zap.Logger) *AnalyticsEngine {
	return &AnalyticsEngine{
		logger: logger,
	}
}

// BuildReport computes the full adherence report for one person and period.
// The caller supplies the active schedules and the logs already filtered to
// the [now - periodDays, now] window; now is explicit so results are
// deterministic and testable.
func (e *AnalyticsEngine) BuildReport(
	schedules []model.MedicationSchedule,
	logs []model.AdherenceLogEntry,
	periodDays int,
	now time.Time,
	opts ReportOptions,
) (*model.AnalyticsReport, error) {
	if periodDays < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativePeriod, periodDays)
	}

	now = now.UTC()

	summary := e.summarize(schedules, logs)
	summary.ComplianceTrend, summary.ComplianceChange = e.detectTrend(logs, periodDays, now)

	dailyStats := []model.DailyStat{}
	if opts.IncludeDailyBreakdown {
		dailyStats = e.dailyStats(logs, periodDays, now)
	}

	// When the medication breakdown is disabled the medication-dependent
	// insights evaluate over an empty list.
	medicationStats := []model.MedicationStat{}
	if opts.IncludeMedicationBreakdown {
		medicationStats = e.medicationStats(schedules, logs)
	}

	timeSlotStats := e.timeSlotStats(logs)
	weeklyPattern := e.weeklyPattern(logs)

	return &model.AnalyticsReport{
		PeriodDays:      periodDays,
		Summary:         summary,
		DailyStats:      dailyStats,
		MedicationStats: medicationStats,
		TimeSlotStats:   timeSlotStats,
		WeeklyPattern:   weeklyPattern,
		RecentActivity:  e.recentActivity(schedules, logs),
		Insights:        e.generateInsights(summary, timeSlotStats, weeklyPattern, medicationStats),
		ILQImpact:       e.ilqImpact(summary.OverallComplianceRate, summary.OnTimeRate, summary.ComplianceTrend, logs),
	}, nil
}

// summarize computes the top-line counts and rates over the full log set
func (e *AnalyticsEngine) summarize(schedules []model.MedicationSchedule, logs []model.AdherenceLogEntry) model.AnalyticsSummary {
	summary := model.AnalyticsSummary{
		TotalScheduledDoses: len(logs),
		ActiveMedications:   len(schedules),
	}

	dispenserConfirmed := 0
	for _, entry := range logs {
		switch entry.Status {
		case model.AdherenceStatusTaken:
			summary.TotalTaken++
		case model.AdherenceStatusMissed:
			summary.TotalMissed++
		case model.AdherenceStatusLate:
			summary.TotalLate++
		case model.AdherenceStatusPending:
			summary.TotalPending++
		}
		if entry.DispenserConfirmed {
			dispenserConfirmed++
		}
		if entry.CaregiverAlerted {
			summary.CaregiverAlertCount++
		}
	}

	summary.OverallComplianceRate = roundedRate(summary.TotalTaken+summary.TotalLate, len(logs))
	summary.OnTimeRate = roundedRate(summary.TotalTaken, len(logs))
	summary.DispenserConfirmationRate = roundedRate(dispenserConfirmed, len(logs))

	return summary
}

// detectTrend splits the period at its midpoint and compares compliance
// between the two halves. This is a coarse two-window comparison, not a
// regression; with fewer than 10 logs there is not enough data to call a
// direction and the trend is reported as stable.
func (e *AnalyticsEngine) detectTrend(logs []model.AdherenceLogEntry, periodDays int, now time.Time) (model.ComplianceTrend, int) {
	if len(logs) < 10 {
		return model.TrendStable, 0
	}

	midpoint := now.Add(-time.Duration(periodDays) * 24 * time.Hour / 2)

	var recentTotal, recentCounted, olderTotal, olderCounted int
	for _, entry := range logs {
		if entry.Timestamp.Before(midpoint) {
			olderTotal++
			if entry.Status.Counted() {
				olderCounted++
			}
		} else {
			recentTotal++
			if entry.Status.Counted() {
				recentCounted++
			}
		}
	}

	recentCompliance := percentage(recentCounted, recentTotal)
	olderCompliance := percentage(olderCounted, olderTotal)
	change := int(math.Round(recentCompliance - olderCompliance))

	switch {
	case change > 5:
		return model.TrendImproving, change
	case change < -5:
		return model.TrendDeclining, change
	default:
		return model.TrendStable, change
	}
}

// dailyStats buckets logs by calendar day. Every day of the period is
// present in the output, even days with no logged activity; entries whose
// date falls outside the period window are dropped.
func (e *AnalyticsEngine) dailyStats(logs []model.AdherenceLogEntry, periodDays int, now time.Time) []model.DailyStat {
	buckets := make(map[string]*model.DailyStat, periodDays)
	for i := 0; i < periodDays; i++ {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		buckets[date] = &model.DailyStat{Date: date}
	}

	for _, entry := range logs {
		day, ok := buckets[entry.Timestamp.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		day.TotalScheduled++
		switch entry.Status {
		case model.AdherenceStatusTaken:
			day.Taken++
		case model.AdherenceStatusMissed:
			day.Missed++
		case model.AdherenceStatusLate:
			day.Late++
		case model.AdherenceStatusPending:
			day.Pending++
		}
	}

	stats := make([]model.DailyStat, 0, len(buckets))
	for _, day := range buckets {
		day.ComplianceRate = roundedRate(day.Taken+day.Late, day.TotalScheduled)
		stats = append(stats, *day)
	}

	// ISO date strings sort correctly as plain strings
	sort.Slice(stats, func(i, j int) bool { return stats[i].Date < stats[j].Date })

	return stats
}

// medicationStats buckets logs by schedule and computes per-medication rates
// and streaks. Every active schedule gets a stat record so that streaks are
// computed against the current medication set, but schedules with no logged
// doses are filtered from the returned list.
func (e *AnalyticsEngine) medicationStats(schedules []model.MedicationSchedule, logs []model.AdherenceLogEntry) []model.MedicationStat {
	statsByID := make(map[string]*model.MedicationStat, len(schedules))
	for _, schedule := range schedules {
		statsByID[schedule.ID] = &model.MedicationStat{
			MedicationID:   schedule.ID,
			MedicationName: schedule.MedicationName,
			Dosage:         dosageLabel(schedule.DosageMg, schedule.DosageUnit),
			Frequency:      schedule.Frequency,
		}
	}

	// Group per schedule; orphaned entries have no matching schedule and
	// are skipped here (summary-level counts are unaffected).
	logsByScheduleID := make(map[string][]model.AdherenceLogEntry)
	for _, entry := range logs {
		stat, ok := statsByID[entry.ScheduleID]
		if !ok {
			e.logger.Debug("adherence log references unknown schedule, skipping",
				zap.String("log_id", entry.ID),
				zap.String("schedule_id", entry.ScheduleID),
			)
			continue
		}
		stat.TotalDoses++
		switch entry.Status {
		case model.AdherenceStatusTaken:
			stat.Taken++
		case model.AdherenceStatusMissed:
			stat.Missed++
		case model.AdherenceStatusLate:
			stat.Late++
		}
		logsByScheduleID[entry.ScheduleID] = append(logsByScheduleID[entry.ScheduleID], entry)
	}

	stats := make([]model.MedicationStat, 0, len(schedules))
	for _, schedule := range schedules {
		stat := statsByID[schedule.ID]
		if stat.TotalDoses == 0 {
			continue
		}
		stat.ComplianceRate = roundedRate(stat.Taken+stat.Late, stat.TotalDoses)
		stat.StreakCurrent, stat.StreakBest = computeStreaks(logsByScheduleID[schedule.ID])
		stats = append(stats, *stat)
	}

	return stats
}

// computeStreaks scans one medication's logs newest-first and returns the
// current streak (length of the most-recent consecutive taken/late run) and
// the best streak seen anywhere in the period.
func computeStreaks(medLogs []model.AdherenceLogEntry) (current, best int) {
	sorted := make([]model.AdherenceLogEntry, len(medLogs))
	copy(sorted, medLogs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	temp := 0
	currentSet := false
	for _, entry := range sorted {
		if entry.Status.Counted() {
			temp++
			if temp > best {
				best = temp
			}
		} else {
			// First break ends the current streak; missed/pending
			// entries further back only reset the running count.
			if !currentSet {
				current = temp
				currentSet = true
			}
			temp = 0
		}
	}
	if !currentSet {
		current = temp
	}

	return current, best
}

var timeSlotOrder = []string{
	"Morning (6-12)",
	"Afternoon (12-18)",
	"Evening (18-22)",
	"Night (22-6)",
}

// timeSlotStats buckets logs into the four fixed circadian windows derived
// from the scheduled clock hour, not the actual event time. Only slots with
// at least one dose are returned.
//
// The slot rate intentionally counts only on-time doses in its numerator,
// unlike the taken+late convention used everywhere else; the dashboard
// depends on these exact numbers.
func (e *AnalyticsEngine) timeSlotStats(logs []model.AdherenceLogEntry) []model.TimeSlotStat {
	type slotAccum struct {
		stat   model.TimeSlotStat
		onTime int
	}

	slots := make(map[string]*slotAccum, len(timeSlotOrder))
	for _, name := range timeSlotOrder {
		slots[name] = &slotAccum{stat: model.TimeSlotStat{TimeSlot: name}}
	}

	for _, entry := range logs {
		hour, err := scheduledHour(entry.ScheduledTime)
		if err != nil {
			e.logger.Warn("unparsable scheduled time, excluding from time-slot stats",
				zap.String("log_id", entry.ID),
				zap.String("scheduled_time", entry.ScheduledTime),
				zap.Error(err),
			)
			continue
		}

		var slot *slotAccum
		switch {
		case hour >= 6 && hour < 12:
			slot = slots["Morning (6-12)"]
		case hour >= 12 && hour < 18:
			slot = slots["Afternoon (12-18)"]
		case hour >= 18 && hour < 22:
			slot = slots["Evening (18-22)"]
		default:
			slot = slots["Night (22-6)"] // wraps past midnight
		}

		slot.stat.Total++
		if entry.Status.Counted() {
			slot.stat.Taken++
		} else if entry.Status == model.AdherenceStatusMissed {
			slot.stat.Missed++
		}
		if entry.Status == model.AdherenceStatusTaken {
			slot.onTime++
		}
	}

	stats := make([]model.TimeSlotStat, 0, len(timeSlotOrder))
	for _, name := range timeSlotOrder {
		slot := slots[name]
		if slot.stat.Total == 0 {
			continue
		}
		slot.stat.ComplianceRate = roundedRate(slot.onTime, slot.stat.Total)
		stats = append(stats, slot.stat)
	}

	return stats
}

var weekdayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// weeklyPattern buckets logs by day of week of the actual event timestamp.
// All seven days are always returned, zero-total days with rate 0.
func (e *AnalyticsEngine) weeklyPattern(logs []model.AdherenceLogEntry) []model.WeeklyPatternStat {
	totals := make([]int, 7)
	counted := make([]int, 7)
	for _, entry := range logs {
		day := int(entry.Timestamp.UTC().Weekday())
		totals[day]++
		if entry.Status.Counted() {
			counted[day]++
		}
	}

	stats := make([]model.WeeklyPatternStat, 7)
	for i, name := range weekdayNames {
		stats[i] = model.WeeklyPatternStat{
			Day:            name,
			Total:          totals[i],
			ComplianceRate: roundedRate(counted[i], totals[i]),
		}
	}

	return stats
}

// recentActivityLimit caps the recent-activity view; all aggregates still
// scan the full input.
const recentActivityLimit = 20

// recentActivity returns the most recent dose events with their schedule
// display fields resolved. Orphaned entries keep an "Unknown" medication
// name rather than being dropped.
func (e *AnalyticsEngine) recentActivity(schedules []model.MedicationSchedule, logs []model.AdherenceLogEntry) []model.RecentActivityEntry {
	schedulesByID := make(map[string]model.MedicationSchedule, len(schedules))
	for _, schedule := range schedules {
		schedulesByID[schedule.ID] = schedule
	}

	sorted := make([]model.AdherenceLogEntry, len(logs))
	copy(sorted, logs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	if len(sorted) > recentActivityLimit {
		sorted = sorted[:recentActivityLimit]
	}

	activity := make([]model.RecentActivityEntry, 0, len(sorted))
	for _, entry := range sorted {
		name := "Unknown"
		dosage := ""
		if schedule, ok := schedulesByID[entry.ScheduleID]; ok {
			name = schedule.MedicationName
			dosage = dosageLabel(schedule.DosageMg, schedule.DosageUnit)
		}
		activity = append(activity, model.RecentActivityEntry{
			Timestamp:          entry.Timestamp,
			MedicationName:     name,
			Dosage:             dosage,
			ScheduledTime:      entry.ScheduledTime,
			Status:             entry.Status,
			DispenserConfirmed: entry.DispenserConfirmed,
		})
	}

	return activity
}

// dosageLabel formats "{amount} {unit}" with mg as the default unit, or an
// empty string when no amount is recorded.
func dosageLabel(amount *float64, unit *string) string {
	if amount == nil {
		return ""
	}
	u := "mg"
	if unit != nil && *unit != "" {
		u = *unit
	}
	return strconv.FormatFloat(*amount, 'f', -1, 64) + " " + u
}

// scheduledHour extracts the hour component from an HH:MM clock time
func scheduledHour(scheduledTime string) (int, error) {
	part, _, _ := strings.Cut(scheduledTime, ":")
	hour, err := strconv.Atoi(strings.TrimSpace(part))
	if err != nil {
		return 0, fmt.Errorf("invalid scheduled time %q: %w", scheduledTime, err)
	}
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid scheduled hour %d", hour)
	}
	return hour, nil
}

// roundedRate returns round(100 * part / total), or 0 for an empty bucket
func roundedRate(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// percentage returns 100 * part / total without rounding, 0 for empty input
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
