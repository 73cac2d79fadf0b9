package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/interfaces"
)

// ReportHandler serves stored report records and their PDF files.
type ReportHandler struct {
	reports interfaces.ReportService
	logger  arbor.ILogger
}

func NewReportHandler(reports interfaces.ReportService, logger arbor.ILogger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		logger:  logger,
	}
}

// ListHandler returns all report records, newest first.
// GET /api/reports
func (h *ReportHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	records, err := h.reports.ListReports(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Report listing failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reports": records,
		"count":   len(records),
	})
}

// DownloadHandler streams a report PDF by record ID.
// GET /api/reports/{id}/download
func (h *ReportHandler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	// Extract report ID from path: /api/reports/{id}/download
	id := strings.TrimPrefix(r.URL.Path, "/api/reports/")
	id = strings.TrimSuffix(id, "/download")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusBadRequest, "report id is required")
		return
	}

	record, err := h.reports.GetReport(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("report not found: %s", id))
		return
	}

	data, err := os.ReadFile(record.Path)
	if err != nil {
		h.logger.Error().Err(err).Str("path", record.Path).Msg("Report file read failed")
		WriteError(w, http.StatusInternalServerError, "report file is missing")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(record.Path)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
