package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/silvercare-health/adherence-backend/pkg/model"
	"go.uber.org/zap"
)

// PDFGenerator renders caregiver-facing adherence reports
type PDFGenerator struct {
	logger *zap.Logger
}

// NewPDFGenerator creates a new PDFGenerator
func NewPDFGenerator(logger *zap.Logger) *PDFGenerator {
	return &PDFGenerator{
		logger: logger,
	}
}

// ReportData contains all data needed for report generation
type ReportData struct {
	PersonName string
	DateRange  string
	Report     *model.AnalyticsReport
}

// Generate creates a PDF rendering of an adherence analytics report
func (g *PDFGenerator) Generate(data *ReportData) ([]byte, error) {
	g.logger.Info("generating adherence PDF report",
		zap.String("person_name", data.PersonName),
		zap.String("date_range", data.DateRange),
	)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	pdf.AddPage()

	g.addTitle(pdf, "Medication Adherence Report", data.PersonName, data.DateRange)

	report := data.Report
	g.addSummary(pdf, report.Summary)
	g.addMedicationBreakdown(pdf, report.MedicationStats)
	g.addTimeSlotBreakdown(pdf, report.TimeSlotStats)
	g.addWeeklyPattern(pdf, report.WeeklyPattern)
	g.addInsights(pdf, report.Insights)
	g.addWellnessImpact(pdf, report.ILQImpact)
	g.addRecentActivity(pdf, report.RecentActivity)

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		g.logger.Error("failed to generate PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	g.logger.Info("adherence PDF report generated successfully",
		zap.Int("size_bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

// addTitle adds the report title and header information
func (g *PDFGenerator) addTitle(pdf *gofpdf.Fpdf, title, personName, dateRange string) {
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Person: %s", personName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Period: %s", dateRange), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(10)
}

// addSectionHeader adds a section header
func (g *PDFGenerator) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 10, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
}

// addSummary adds the top-line compliance summary section
func (g *PDFGenerator) addSummary(pdf *gofpdf.Fpdf, summary model.AnalyticsSummary) {
	g.addSectionHeader(pdf, "Summary")

	pdf.CellFormat(0, 6, fmt.Sprintf("Overall compliance: %d%%", summary.OverallComplianceRate), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("On-time rate: %d%%", summary.OnTimeRate), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Scheduled doses: %d (taken %d, late %d, missed %d, pending %d)",
		summary.TotalScheduledDoses, summary.TotalTaken, summary.TotalLate, summary.TotalMissed, summary.TotalPending), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Dispenser confirmations: %d%%", summary.DispenserConfirmationRate), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Caregiver alerts: %d", summary.CaregiverAlertCount), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Active medications: %d", summary.ActiveMedications), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Trend: %s (%+d%%)", summary.ComplianceTrend, summary.ComplianceChange), "", 1, "L", false, 0, "")
	pdf.Ln(5)
}

// addMedicationBreakdown adds the per-medication section
func (g *PDFGenerator) addMedicationBreakdown(pdf *gofpdf.Fpdf, stats []model.MedicationStat) {
	g.addSectionHeader(pdf, "Medications")

	if len(stats) == 0 {
		pdf.CellFormat(0, 8, "No dose events recorded during this period.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	for _, stat := range stats {
		pdf.SetFont("Arial", "B", 10)
		name := stat.MedicationName
		if stat.Dosage != "" {
			name = fmt.Sprintf("%s (%s)", stat.MedicationName, stat.Dosage)
		}
		pdf.CellFormat(0, 6, name, "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 5, fmt.Sprintf("  Frequency: %s", stat.Frequency), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("  Compliance: %d%% of %d doses (taken %d, late %d, missed %d)",
			stat.ComplianceRate, stat.TotalDoses, stat.Taken, stat.Late, stat.Missed), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("  Streak: %d current, %d best", stat.StreakCurrent, stat.StreakBest), "", 1, "L", false, 0, "")
		pdf.Ln(3)
	}
	pdf.Ln(5)
}

// addTimeSlotBreakdown adds the circadian time-slot section
func (g *PDFGenerator) addTimeSlotBreakdown(pdf *gofpdf.Fpdf, stats []model.TimeSlotStat) {
	g.addSectionHeader(pdf, "Time of Day")

	if len(stats) == 0 {
		pdf.CellFormat(0, 8, "No scheduled doses during this period.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	for _, slot := range stats {
		pdf.CellFormat(0, 6, fmt.Sprintf("%s: %d%% of %d doses, %d missed",
			slot.TimeSlot, slot.ComplianceRate, slot.Total, slot.Missed), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

// addWeeklyPattern adds the day-of-week section
func (g *PDFGenerator) addWeeklyPattern(pdf *gofpdf.Fpdf, stats []model.WeeklyPatternStat) {
	g.addSectionHeader(pdf, "Weekly Pattern")

	for _, day := range stats {
		if day.Total == 0 {
			pdf.CellFormat(0, 6, fmt.Sprintf("%s: no doses", day.Day), "", 1, "L", false, 0, "")
			continue
		}
		pdf.CellFormat(0, 6, fmt.Sprintf("%s: %d%% of %d doses",
			day.Day, day.ComplianceRate, day.Total), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

// addInsights adds the generated insight messages
func (g *PDFGenerator) addInsights(pdf *gofpdf.Fpdf, insights []string) {
	g.addSectionHeader(pdf, "Insights")

	if len(insights) == 0 {
		pdf.CellFormat(0, 8, "No insights for this period.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	for _, insight := range insights {
		pdf.MultiCell(0, 5, fmt.Sprintf("- %s", insight), "", "L", false)
	}
	pdf.Ln(5)
}

// addWellnessImpact adds the ILQ impact sub-scores
func (g *PDFGenerator) addWellnessImpact(pdf *gofpdf.Fpdf, impact model.ILQImpact) {
	g.addSectionHeader(pdf, "Wellness Impact")

	pdf.CellFormat(0, 6, fmt.Sprintf("Cognitive score contribution: %d/100", impact.CognitiveScoreContribution), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Medication routine score: %d/100", impact.MedicationRoutineScore), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Adherence consistency score: %d/100", impact.AdherenceConsistencyScore), "", 1, "L", false, 0, "")
	pdf.Ln(5)
}

// addRecentActivity adds the most recent dose events
func (g *PDFGenerator) addRecentActivity(pdf *gofpdf.Fpdf, activity []model.RecentActivityEntry) {
	g.addSectionHeader(pdf, "Recent Activity")

	if len(activity) == 0 {
		pdf.CellFormat(0, 8, "No dose events recorded during this period.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	for _, entry := range activity {
		confirmed := ""
		if entry.DispenserConfirmed {
			confirmed = " (dispenser confirmed)"
		}
		pdf.CellFormat(0, 5, fmt.Sprintf("%s  %s at %s: %s%s",
			entry.Timestamp.Format("2006-01-02 15:04"),
			entry.MedicationName,
			entry.ScheduledTime,
			entry.Status,
			confirmed), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}
