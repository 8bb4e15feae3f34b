package service

import (
	"context"
	"fmt"
	"time"

	"github.com/silvercare-health/adherence-backend/internal/pdf"
	"go.uber.org/zap"
)

// ReportService renders adherence analytics as caregiver-facing PDF reports
type ReportService struct {
	analytics *AnalyticsService
	pdfGen    *pdf.PDFGenerator
	logger    *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(analytics *AnalyticsService, pdfGen *pdf.PDFGenerator, logger *zap.Logger) *ReportService {
	return &ReportService{
		analytics: analytics,
		pdfGen:    pdfGen,
		logger:    logger,
	}
}

// GenerateAdherencePDF computes the analytics report for a person and
// renders it as a PDF document
func (s *ReportService) GenerateAdherencePDF(ctx context.Context, personID, personName string, periodDays int) ([]byte, error) {
	s.logger.Info("generating adherence PDF",
		zap.String("elderly_person_id", personID),
		zap.Int("period_days", periodDays),
	)

	report, err := s.analytics.GetMedicationAnalytics(ctx, personID, periodDays, DefaultReportOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to compute analytics for PDF: %w", err)
	}

	now := time.Now().UTC()
	from := now.Add(-time.Duration(report.PeriodDays) * 24 * time.Hour)
	dateRange := fmt.Sprintf("%s to %s", from.Format("2006-01-02"), now.Format("2006-01-02"))

	if personName == "" {
		personName = "Unknown"
	}

	pdfBytes, err := s.pdfGen.Generate(&pdf.ReportData{
		PersonName: personName,
		DateRange:  dateRange,
		Report:     report,
	})
	if err != nil {
		s.logger.Error("failed to render adherence PDF",
			zap.Error(err),
			zap.String("elderly_person_id", personID),
		)
		return nil, fmt.Errorf("failed to render adherence PDF: %w", err)
	}

	s.logger.Info("adherence PDF generated",
		zap.String("elderly_person_id", personID),
		zap.Int("size_bytes", len(pdfBytes)),
	)

	return pdfBytes, nil
}
