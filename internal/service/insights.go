package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/silvercare-health/adherence-backend/pkg/model"
)

// Guard thresholds for the insight rules. Low-sample buckets are suppressed
// so a single missed dose does not generate a targeted message.
const (
	worstSlotMinRate    = 70
	worstSlotMinSample  = 5
	worstDayMinRate     = 70
	worstDayMinSample   = 3
	problemMedMaxRate   = 60
	problemMedMinSample = 5
	streakInsightMin    = 7
)

// generateInsights evaluates an ordered list of independent rules over the
// aggregates and returns the human-readable messages whose guard conditions
// hold. Rules are not mutually exclusive; absence of data only means fewer
// messages, never an error.
func (e *AnalyticsEngine) generateInsights(
	summary model.AnalyticsSummary,
	timeSlotStats []model.TimeSlotStat,
	weeklyPattern []model.WeeklyPatternStat,
	medicationStats []model.MedicationStat,
) []string {
	insights := []string{}

	// 1. Overall compliance
	switch {
	case summary.OverallComplianceRate >= 90:
		insights = append(insights, "Excellent medication adherence! Keep up the great work.")
	case summary.OverallComplianceRate >= 70:
		insights = append(insights, "Good medication adherence. There's room for minor improvement.")
	case summary.OverallComplianceRate >= 50:
		insights = append(insights, "Moderate medication adherence. Consider setting additional reminders.")
	default:
		insights = append(insights, "Medication adherence needs attention. Please consult with your caregiver.")
	}

	// 2. Trend (stable emits nothing)
	switch summary.ComplianceTrend {
	case model.TrendImproving:
		insights = append(insights, "Great news! Your medication compliance is improving over time.")
	case model.TrendDeclining:
		insights = append(insights, "Your medication compliance has been declining. Let's work on improving it.")
	}

	// 3. Worst circadian slot
	if worst := worstTimeSlot(timeSlotStats); worst != nil &&
		worst.ComplianceRate < worstSlotMinRate && worst.Total >= worstSlotMinSample {
		insights = append(insights, fmt.Sprintf(
			"%s doses tend to be missed more often. Consider adjusting reminders for this time.",
			worst.TimeSlot,
		))
	}

	// 4. Worst day of the week
	if worst := worstWeekday(weeklyPattern); worst != nil && worst.ComplianceRate < worstDayMinRate {
		insights = append(insights, fmt.Sprintf(
			"%ss have lower compliance. This might be related to routine changes.",
			worst.Day,
		))
	}

	// 5. Problematic medications
	var problematic []string
	for _, stat := range medicationStats {
		if stat.ComplianceRate < problemMedMaxRate && stat.TotalDoses >= problemMedMinSample {
			problematic = append(problematic, stat.MedicationName)
		}
	}
	if len(problematic) > 0 {
		insights = append(insights, fmt.Sprintf(
			"Some medications need more attention: %s.",
			strings.Join(problematic, ", "),
		))
	}

	// 6. Best streak across all medications
	bestStreak := 0
	for _, stat := range medicationStats {
		if stat.StreakBest > bestStreak {
			bestStreak = stat.StreakBest
		}
	}
	if bestStreak >= streakInsightMin {
		insights = append(insights, fmt.Sprintf(
			"Impressive! You've had a streak of %d consecutive doses taken on time.",
			bestStreak,
		))
	}

	return insights
}

// worstTimeSlot returns the minimum-rate slot, or nil when no slot had doses
func worstTimeSlot(stats []model.TimeSlotStat) *model.TimeSlotStat {
	var worst *model.TimeSlotStat
	for i := range stats {
		if worst == nil || stats[i].ComplianceRate < worst.ComplianceRate {
			worst = &stats[i]
		}
	}
	return worst
}

// worstWeekday returns the minimum-rate day among days with enough samples
func worstWeekday(stats []model.WeeklyPatternStat) *model.WeeklyPatternStat {
	var worst *model.WeeklyPatternStat
	for i := range stats {
		if stats[i].Total < worstDayMinSample {
			continue
		}
		if worst == nil || stats[i].ComplianceRate < worst.ComplianceRate {
			worst = &stats[i]
		}
	}
	return worst
}

// ilqImpact combines the period's rates, trend and daily dispersion into the
// three bounded wellness-impact sub-scores consumed by the ILQ index.
func (e *AnalyticsEngine) ilqImpact(overallCompliance, onTimeRate int, trend model.ComplianceTrend, logs []model.AdherenceLogEntry) model.ILQImpact {
	trendBonus := 0.0
	switch trend {
	case model.TrendImproving:
		trendBonus = 10
	case model.TrendDeclining:
		trendBonus = -10
	}

	cognitive := int(math.Round(float64(overallCompliance)*0.6 + float64(onTimeRate)*0.3 + trendBonus))

	return model.ILQImpact{
		CognitiveScoreContribution: clampScore(cognitive),
		MedicationRoutineScore:     clampScore(onTimeRate),
		AdherenceConsistencyScore:  clampScore(consistencyScore(logs)),
	}
}

// consistencyScore measures the dispersion of day-to-day compliance. Days
// without any logged activity carry no signal and are excluded; with fewer
// than two active days there is not enough variance to penalize and the
// score is a fixed 100.
func consistencyScore(logs []model.AdherenceLogEntry) int {
	type dayCount struct {
		counted int
		total   int
	}
	days := make(map[string]*dayCount)
	for _, entry := range logs {
		date := entry.Timestamp.UTC().Format("2006-01-02")
		day, ok := days[date]
		if !ok {
			day = &dayCount{}
			days[date] = day
		}
		day.total++
		if entry.Status.Counted() {
			day.counted++
		}
	}

	rates := make([]float64, 0, len(days))
	for _, day := range days {
		rates = append(rates, percentage(day.counted, day.total))
	}

	if len(rates) < 2 {
		return 100
	}

	mean := 0.0
	for _, r := range rates {
		mean += r
	}
	mean /= float64(len(rates))

	variance := 0.0
	for _, r := range rates {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(rates))

	stdDev := math.Sqrt(variance)

	return int(math.Round(math.Max(0, 100-stdDev)))
}

// clampScore bounds a sub-score to [0, 100]
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
