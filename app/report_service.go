package app

import (
	"context"
	"fmt"
	"log"

	"pricebench/domain/core"
	"pricebench/domain/research"
	"pricebench/ports"
)

// ReportFormat selects the rendition of a consolidated report
type ReportFormat string

const (
	FormatXLSX     ReportFormat = "xlsx"
	FormatMarkdown ReportFormat = "markdown"
	FormatHTML     ReportFormat = "html"
)

// ReportService builds consolidated reports and renders them through the
// registered writers
type ReportService struct {
	repo    ports.ResearchRepository
	writers map[ReportFormat]ports.ReportWriter
}

// NewReportService creates a report service with one writer per format
func NewReportService(repo ports.ResearchRepository, writers map[ReportFormat]ports.ReportWriter) *ReportService {
	return &ReportService{
		repo:    repo,
		writers: writers,
	}
}

// Consolidate builds the consolidated report for a research without rendering
// it. Unevaluated items and unjustified problems block the report.
func (s *ReportService) Consolidate(ctx context.Context, id core.ResearchID) (*research.ConsolidatedReport, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return research.Consolidate(res)
}

// Render builds the consolidated report and renders it in the requested
// format, returning the document bytes and their content type
func (s *ReportService) Render(ctx context.Context, id core.ResearchID, format ReportFormat) ([]byte, string, error) {
	writer, ok := s.writers[format]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", core.ErrUnsupportedReportKind, format)
	}

	report, err := s.Consolidate(ctx, id)
	if err != nil {
		return nil, "", err
	}

	data, contentType, err := writer.WriteConsolidated(report)
	if err != nil {
		return nil, "", err
	}

	log.Printf("[ReportService] Report rendered (research=%s, format=%s, %d bytes)", id, format, len(data))
	return data, contentType, nil
}
