package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/interfaces"
)

// AgentHandler exposes the individual agents as standalone endpoints so each
// capability can be used without running the full pipeline.
type AgentHandler struct {
	simplifier interfaces.Simplifier
	story      interfaces.StoryGenerator
	image      interfaces.ImageGenerator
	answer     interfaces.AnswerService
	logger     arbor.ILogger
}

func NewAgentHandler(
	simplifier interfaces.Simplifier,
	story interfaces.StoryGenerator,
	image interfaces.ImageGenerator,
	answer interfaces.AnswerService,
	logger arbor.ILogger,
) *AgentHandler {
	return &AgentHandler{
		simplifier: simplifier,
		story:      story,
		image:      image,
		answer:     answer,
		logger:     logger,
	}
}

type simplifyRequest struct {
	Text    string `json:"text" validate:"required"`
	AgeBand string `json:"age_band"`
}

// SimplifyHandler rewrites text at an early-grade reading level. When an age
// band is given the text is treated as a topic to explain for that age.
// POST /api/simplify
func (h *AgentHandler) SimplifyHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req simplifyRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	if req.AgeBand != "" {
		WriteJSON(w, http.StatusOK, h.simplifier.ExplainForAge(r.Context(), req.Text, req.AgeBand))
		return
	}
	WriteJSON(w, http.StatusOK, h.simplifier.Simplify(r.Context(), req.Text))
}

type storyRequest struct {
	Situation    string `json:"situation" validate:"required"`
	ChildName    string `json:"child_name"`
	ReadingLevel string `json:"reading_level"`
}

// StoryHandler generates a social story.
// POST /api/story
func (h *AgentHandler) StoryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req storyRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	WriteJSON(w, http.StatusOK, h.story.GenerateStory(r.Context(), req.Situation, req.ChildName, req.ReadingLevel))
}

// SituationsHandler lists the built-in social situation catalog.
// GET /api/story/situations
func (h *AgentHandler) SituationsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"situations": h.story.CommonSituations(),
	})
}

type imageRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// ImageHandler renders one educational illustration. Generation is
// synchronous and can take tens of seconds.
// POST /api/image
func (h *AgentHandler) ImageHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req imageRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	WriteJSON(w, http.StatusOK, h.image.GenerateImage(r.Context(), req.Prompt))
}

type answerRequest struct {
	Question string `json:"question" validate:"required"`
	TopK     int    `json:"top_k" validate:"gte=0,lte=50"`
}

// AnswerHandler answers a question grounded in the knowledge store.
// POST /api/answer
func (h *AgentHandler) AnswerHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req answerRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.answer.Answer(r.Context(), req.Question, req.TopK)
	if err != nil {
		h.logger.Error().Err(err).Str("question", req.Question).Msg("Answer failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, result)
}
