package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/interfaces"
)

// OrchestrationHandler serves the multi-agent pipeline endpoint.
type OrchestrationHandler struct {
	orchestrator interfaces.Orchestrator
	reports      interfaces.ReportService
	logger       arbor.ILogger
}

func NewOrchestrationHandler(orchestrator interfaces.Orchestrator, reports interfaces.ReportService, logger arbor.ILogger) *OrchestrationHandler {
	return &OrchestrationHandler{
		orchestrator: orchestrator,
		reports:      reports,
		logger:       logger,
	}
}

type orchestrateRequest struct {
	Question       string `json:"question" validate:"required"`
	IncludeStory   bool   `json:"include_story"`
	IncludeImage   bool   `json:"include_image"`
	ChildName      string `json:"child_name"`
	StorySituation string `json:"story_situation"`
	TopK           int    `json:"top_k" validate:"gte=0,lte=50"`
	GenerateReport bool   `json:"generate_report"`
}

// OrchestrateHandler runs the full pipeline for one question.
// POST /api/orchestrate
func (h *OrchestrationHandler) OrchestrateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req orchestrateRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	result := h.orchestrator.Orchestrate(r.Context(), interfaces.OrchestrationRequest{
		Question:       req.Question,
		IncludeStory:   req.IncludeStory,
		IncludeImage:   req.IncludeImage,
		ChildName:      req.ChildName,
		StorySituation: req.StorySituation,
		TopK:           req.TopK,
	})

	response := map[string]interface{}{
		"result": result,
	}

	// Report rendering rides on the same request; a render failure does not
	// discard the orchestration result.
	if req.GenerateReport {
		record, err := h.reports.GenerateReport(r.Context(), result)
		if err != nil {
			h.logger.Error().Err(err).Msg("Report generation failed")
			response["report_error"] = err.Error()
		} else {
			response["report"] = record
		}
	}

	WriteJSON(w, http.StatusOK, response)
}
