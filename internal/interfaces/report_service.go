package interfaces

import (
	"context"

	"github.com/spectrumbridge/bridge/internal/models"
)

// ReportService renders orchestration results into PDF reports.
type ReportService interface {
	// BuildMarkdown composes the report body for an orchestration result.
	BuildMarkdown(result *models.OrchestrationResult) string

	// ConvertMarkdownToPDF converts markdown content to a PDF byte slice
	ConvertMarkdownToPDF(markdown, title string) ([]byte, error)

	// GenerateReport renders the result to a PDF on disk and records it.
	GenerateReport(ctx context.Context, result *models.OrchestrationResult) (*models.ReportRecord, error)

	// ListReports returns all stored report records, newest first.
	ListReports(ctx context.Context) ([]*models.ReportRecord, error)

	// GetReport returns one report record by ID.
	GetReport(ctx context.Context, id string) (*models.ReportRecord, error)
}
