package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/spectrumbridge/bridge/internal/interfaces"
	"github.com/spectrumbridge/bridge/internal/models"
)

// ReportStorage implements the ReportStorage interface for Badger
type ReportStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewReportStorage creates a new ReportStorage instance
func NewReportStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ReportStorage {
	return &ReportStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ReportStorage) SaveReport(ctx context.Context, report *models.ReportRecord) error {
	if report.ID == "" {
		return fmt.Errorf("report ID is required")
	}

	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now()
	}

	if err := s.db.Store().Upsert(report.ID, report); err != nil {
		return fmt.Errorf("failed to save report record: %w", err)
	}
	return nil
}

func (s *ReportStorage) GetReport(ctx context.Context, id string) (*models.ReportRecord, error) {
	var report models.ReportRecord
	if err := s.db.Store().Get(id, &report); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("report not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get report record: %w", err)
	}
	return &report, nil
}

// ListReports returns all report records, newest first
func (s *ReportStorage) ListReports(ctx context.Context) ([]*models.ReportRecord, error) {
	var reports []models.ReportRecord
	err := s.db.Store().Find(&reports, badgerhold.Where("ID").Ne("").SortBy("GeneratedAt").Reverse())
	if err != nil {
		return nil, fmt.Errorf("failed to list report records: %w", err)
	}

	result := make([]*models.ReportRecord, len(reports))
	for i := range reports {
		result[i] = &reports[i]
	}
	return result, nil
}

func (s *ReportStorage) DeleteReport(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.ReportRecord{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete report record: %w", err)
	}
	return nil
}
