// Package report renders orchestration results into PDF reports. The report
// body is composed as markdown and converted to PDF through a goldmark AST
// walk over an fpdf document.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/common"
	"github.com/spectrumbridge/bridge/internal/interfaces"
	"github.com/spectrumbridge/bridge/internal/models"
)

const reportTitle = "Autism Education Report"

// Top sources listed in the report, regardless of how many were retrieved.
const maxReportSources = 5

// Service implements interfaces.ReportService.
type Service struct {
	storage   interfaces.ReportStorage
	events    interfaces.EventService
	outputDir string
	logger    arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.ReportService = (*Service)(nil)

// NewService creates a report service writing PDFs to outputDir. The event
// service may be nil.
func NewService(storage interfaces.ReportStorage, events interfaces.EventService, outputDir string, logger arbor.ILogger) *Service {
	return &Service{
		storage:   storage,
		events:    events,
		outputDir: outputDir,
		logger:    logger,
	}
}

// BuildMarkdown composes the report body for an orchestration result.
func (s *Service) BuildMarkdown(result *models.OrchestrationResult) string {
	var b strings.Builder

	b.WriteString("# " + reportTitle + "\n\n")
	b.WriteString("## Question\n\n")
	b.WriteString(result.Question + "\n\n")

	if task := result.Task(models.TaskSimplification); task != nil && task.Simplification != nil {
		simp := task.Simplification
		b.WriteString("## Simplified Answer\n\n")
		if simp.Success {
			b.WriteString(simp.SimplifiedText + "\n\n")
			writeMetrics(&b, simp.Metrics)
		} else {
			b.WriteString("*Simplification unavailable: " + simp.Error + "*\n\n")
		}
	}

	if task := result.Task(models.TaskRetrieval); task != nil && task.Retrieval != nil && task.Retrieval.Success {
		writeSources(&b, task.Retrieval.Passages)
	}

	if task := result.Task(models.TaskStory); task != nil && task.Story != nil && task.Story.Success {
		story := task.Story
		b.WriteString("## Social Story\n\n")
		if story.Title != "" {
			b.WriteString("**" + story.Title + "**\n\n")
		}
		b.WriteString(story.Story + "\n\n")
	}

	if task := result.Task(models.TaskImage); task != nil && task.Image != nil && task.Image.Success {
		img := task.Image
		b.WriteString("## Generated Image\n\n")
		b.WriteString("Saved to `" + img.ImagePath + "`")
		if img.Placeholder {
			b.WriteString(" (placeholder, image model unavailable)")
		}
		b.WriteString("\n\n")
	}

	b.WriteString("---\n\n")
	b.WriteString(fmt.Sprintf("Generated %s in %.2f seconds.\n",
		result.Timestamp.Format("2006-01-02 15:04:05"), result.TotalSeconds))

	return b.String()
}

func writeMetrics(b *strings.Builder, m models.ReadabilityMetrics) {
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	fmt.Fprintf(b, "| Words | %d |\n", m.WordCount)
	fmt.Fprintf(b, "| Sentences | %d |\n", m.SentenceCount)
	fmt.Fprintf(b, "| Avg words/sentence | %.1f |\n", m.AvgWordsPerSentence)
	fmt.Fprintf(b, "| Avg syllables/word | %.1f |\n", m.AvgSyllablesPerWord)
	fmt.Fprintf(b, "| Estimated level | %s |\n", m.EstimatedGradeLevel)
	fmt.Fprintf(b, "| Grade-2 compliant | %v |\n", m.MeetsGrade2Threshold)
	b.WriteString("\n")
}

func writeSources(b *strings.Builder, passages []models.Passage) {
	if len(passages) == 0 {
		return
	}
	if len(passages) > maxReportSources {
		passages = passages[:maxReportSources]
	}

	b.WriteString("## Sources\n\n")
	b.WriteString("| Source | Relevance |\n")
	b.WriteString("| --- | --- |\n")
	for _, p := range passages {
		fmt.Fprintf(b, "| %s | %.2f |\n", p.Source, p.Score)
	}
	b.WriteString("\n")
}

// GenerateReport renders the result to a PDF on disk and records it.
func (s *Service) GenerateReport(ctx context.Context, result *models.OrchestrationResult) (*models.ReportRecord, error) {
	if result == nil {
		return nil, fmt.Errorf("orchestration result is required")
	}

	markdown := s.BuildMarkdown(result)
	pdfBytes, err := s.ConvertMarkdownToPDF(markdown, reportTitle)
	if err != nil {
		return nil, fmt.Errorf("failed to render report PDF: %w", err)
	}

	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}

	filename := fmt.Sprintf("report_%s.pdf", time.Now().Format("20060102_150405"))
	path := filepath.Join(s.outputDir, filename)
	if err := os.WriteFile(path, pdfBytes, 0644); err != nil {
		return nil, fmt.Errorf("failed to write report PDF: %w", err)
	}

	record := &models.ReportRecord{
		ID:          common.NewReportID(),
		Question:    result.Question,
		Path:        path,
		SizeBytes:   int64(len(pdfBytes)),
		GeneratedAt: time.Now(),
	}
	if err := s.storage.SaveReport(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save report record: %w", err)
	}

	s.logger.Info().
		Str("report_id", record.ID).
		Str("path", path).
		Int64("size_bytes", record.SizeBytes).
		Msg("Report generated")

	if s.events != nil {
		if err := s.events.Publish(ctx, interfaces.Event{
			Type: interfaces.EventReportGenerated,
			Payload: map[string]interface{}{
				"report_id": record.ID,
				"question":  result.Question,
				"path":      path,
			},
		}); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to publish report event")
		}
	}

	return record, nil
}

// ListReports returns all stored report records, newest first.
func (s *Service) ListReports(ctx context.Context) ([]*models.ReportRecord, error) {
	return s.storage.ListReports(ctx)
}

// GetReport returns one report record by ID.
func (s *Service) GetReport(ctx context.Context, id string) (*models.ReportRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("report ID is required")
	}
	return s.storage.GetReport(ctx, id)
}
