package llm

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/spectrumbridge/bridge/internal/common"
	"github.com/spectrumbridge/bridge/internal/interfaces"
)

// NewLLMService creates the appropriate LLM service implementation based on
// the configured default provider. Failures from the returned service are
// terminal per call; there is no retry or fallback between providers.
func NewLLMService(cfg *common.Config, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) (interfaces.LLMService, error) {
	provider := cfg.LLM.DefaultProvider
	if provider == "" {
		provider = common.LLMProviderGemini
	}

	logger.Info().Str("provider", string(provider)).Msg("Initializing LLM service")

	switch provider {
	case common.LLMProviderClaude:
		return NewClaudeService(&cfg.Claude, kvStorage, logger)
	case common.LLMProviderGemini:
		return NewGeminiService(&cfg.Gemini, kvStorage, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider '%s': must be 'gemini' or 'claude'", provider)
	}
}

// newCallLimiter builds a rate limiter from a duration string such as "4s"
// (one call per four seconds). An empty string disables throttling.
func newCallLimiter(rateLimit string) (*rate.Limiter, error) {
	if rateLimit == "" {
		return rate.NewLimiter(rate.Inf, 1), nil
	}
	interval, err := time.ParseDuration(rateLimit)
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1), nil
	}
	return rate.NewLimiter(rate.Every(interval), 1), nil
}
