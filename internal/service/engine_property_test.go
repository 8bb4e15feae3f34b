package service

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/silvercare-health/adherence-backend/pkg/model"
)

var allStatuses = []model.AdherenceStatus{
	model.AdherenceStatusTaken,
	model.AdherenceStatusMissed,
	model.AdherenceStatusLate,
	model.AdherenceStatusPending,
}

// logsFromSeeds deterministically expands a slice of status indexes into log
// entries spread across the period, one entry per seed.
func logsFromSeeds(seeds []int, periodDays int) []model.AdherenceLogEntry {
	logs := make([]model.AdherenceLogEntry, 0, len(seeds))
	for i, seed := range seeds {
		daysAgo := 0
		if periodDays > 0 {
			daysAgo = i % periodDays
		}
		hour := (i * 5) % 24
		logs = append(logs, model.AdherenceLogEntry{
			ID:            fmt.Sprintf("log-%d", i),
			ScheduleID:    "med-1",
			ScheduledTime: fmt.Sprintf("%02d:00", hour),
			Timestamp:     testNow.AddDate(0, 0, -daysAgo),
			Status:        allStatuses[seed%len(allStatuses)],
		})
	}
	return logs
}

func TestProperty_SummaryCountConservation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Every log lands in exactly one status bucket", prop.ForAll(
		func(seeds []int) bool {
			engine := newTestEngine()
			logs := logsFromSeeds(seeds, 30)

			summary := engine.summarize(nil, logs)

			counted := summary.TotalTaken + summary.TotalMissed + summary.TotalLate + summary.TotalPending
			if counted != summary.TotalScheduledDoses {
				t.Logf("status buckets sum to %d, want %d", counted, summary.TotalScheduledDoses)
				return false
			}
			return summary.TotalScheduledDoses == len(logs)
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.Property("All summary rates stay within 0 and 100", prop.ForAll(
		func(seeds []int) bool {
			engine := newTestEngine()
			summary := engine.summarize(nil, logsFromSeeds(seeds, 30))

			for _, rate := range []int{summary.OverallComplianceRate, summary.OnTimeRate, summary.DispenserConfirmationRate} {
				if rate < 0 || rate > 100 {
					t.Logf("rate %d out of range", rate)
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}

func TestProperty_DailyStatsShape(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Daily breakdown always has one bucket per period day", prop.ForAll(
		func(seeds []int, periodDays int) bool {
			engine := newTestEngine()
			logs := logsFromSeeds(seeds, periodDays)

			stats := engine.dailyStats(logs, periodDays, testNow)
			if len(stats) != periodDays {
				t.Logf("got %d daily buckets, want %d", len(stats), periodDays)
				return false
			}

			// All generated timestamps fall inside the window, so none are dropped
			total := 0
			for _, day := range stats {
				total += day.TotalScheduled
			}
			return total == len(logs)
		},
		gen.SliceOf(gen.IntRange(0, 3)),
		gen.IntRange(1, 90),
	))

	properties.TestingRun(t)
}

func TestProperty_WeeklyAndSlotShapes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Weekly pattern always covers exactly seven days", prop.ForAll(
		func(seeds []int) bool {
			engine := newTestEngine()
			logs := logsFromSeeds(seeds, 30)

			stats := engine.weeklyPattern(logs)
			if len(stats) != 7 {
				return false
			}

			total := 0
			for _, day := range stats {
				total += day.Total
			}
			return total == len(logs)
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.Property("Time slots never exceed four and conserve valid entries", prop.ForAll(
		func(seeds []int) bool {
			engine := newTestEngine()
			logs := logsFromSeeds(seeds, 30)

			stats := engine.timeSlotStats(logs)
			if len(stats) > 4 {
				return false
			}

			total := 0
			for _, slot := range stats {
				if slot.Total == 0 {
					t.Log("empty slots must be filtered out")
					return false
				}
				if slot.ComplianceRate < 0 || slot.ComplianceRate > 100 {
					return false
				}
				total += slot.Total
			}
			return total == len(logs)
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}

func TestProperty_StreakBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Current streak never exceeds best streak or log count", prop.ForAll(
		func(seeds []int) bool {
			logs := logsFromSeeds(seeds, 90)

			current, best := computeStreaks(logs)
			if current < 0 || best < 0 {
				return false
			}
			if current > best {
				t.Logf("current streak %d exceeds best %d", current, best)
				return false
			}
			return best <= len(logs)
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}

func TestProperty_ILQScoresBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	trendGen := gen.OneConstOf(model.TrendImproving, model.TrendDeclining, model.TrendStable)

	properties.Property("All wellness sub-scores stay within 0 and 100", prop.ForAll(
		func(overall, onTime int, trend model.ComplianceTrend, seeds []int) bool {
			engine := newTestEngine()
			logs := logsFromSeeds(seeds, 30)

			impact := engine.ilqImpact(overall, onTime, trend, logs)
			for _, score := range []int{
				impact.CognitiveScoreContribution,
				impact.MedicationRoutineScore,
				impact.AdherenceConsistencyScore,
			} {
				if score < 0 || score > 100 {
					t.Logf("score %d out of range", score)
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 100),
		gen.IntRange(0, 100),
		trendGen,
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}

func TestProperty_TrendRequiresEnoughData(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	// The property only accepts slices shorter than ten entries; cap the
	// generator size accordingly so the SuchThat filter does not discard
	// enough candidates to abort the run.
	parameters.MaxSize = 9
	properties := gopter.NewProperties(parameters)

	properties.Property("Fewer than ten logs always reads as a stable trend", prop.ForAll(
		func(seeds []int) bool {
			engine := newTestEngine()
			logs := logsFromSeeds(seeds, 30)

			trend, change := engine.detectTrend(logs, 30, testNow)
			return trend == model.TrendStable && change == 0
		},
		gen.SliceOf(gen.IntRange(0, 3)).SuchThat(func(seeds []int) bool { return len(seeds) < 10 }),
	))

	properties.TestingRun(t)
}
