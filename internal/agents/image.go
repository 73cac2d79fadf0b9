package agents

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/common"
	"github.com/spectrumbridge/bridge/internal/interfaces"
	"github.com/spectrumbridge/bridge/internal/models"
	"github.com/spectrumbridge/bridge/internal/services/image"
)

const (
	// promptSuffix steers the local model toward clean educational output.
	promptSuffix = ", high quality, professional, educational, detailed, vibrant"

	// negativePrompt suppresses the usual failure modes of small local models.
	negativePrompt = "watermark, text, signature, blurry, ugly, low quality"

	maxFilenamePromptLen = 40
)

// ImageAgent renders educational illustrations through the local image model
// and saves them to the output directory. When the model is unreachable it
// writes a labeled placeholder instead, so downstream report rendering always
// has a file to reference.
type ImageAgent struct {
	client    interfaces.ImageClient
	config    *common.ImageConfig
	outputDir string
	logger    arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.ImageGenerator = (*ImageAgent)(nil)

// NewImageAgent creates an image agent writing PNGs under outputDir.
func NewImageAgent(client interfaces.ImageClient, config *common.ImageConfig, outputDir string, logger arbor.ILogger) *ImageAgent {
	os.MkdirAll(outputDir, 0755)

	return &ImageAgent{
		client:    client,
		config:    config,
		outputDir: outputDir,
		logger:    logger,
	}
}

// GenerateImage renders one image for the prompt and saves it as a PNG. A
// failed generation call falls back to a placeholder and still succeeds;
// only a file-write failure fails the task.
func (a *ImageAgent) GenerateImage(ctx context.Context, prompt string) *models.ImageResult {
	start := time.Now()
	prompt = strings.TrimSpace(prompt)

	result := &models.ImageResult{
		Prompt:         prompt,
		NegativePrompt: negativePrompt,
		Width:          a.config.Width,
		Height:         a.config.Height,
		Steps:          a.config.Steps,
		Guidance:       a.config.GuidanceScale,
	}

	if prompt == "" {
		result.Error = "prompt cannot be empty"
		return result
	}

	data, err := a.client.Generate(ctx, interfaces.ImageRequest{
		Prompt:         prompt + promptSuffix,
		NegativePrompt: negativePrompt,
		Width:          a.config.Width,
		Height:         a.config.Height,
		Steps:          a.config.Steps,
		GuidanceScale:  a.config.GuidanceScale,
	})
	if err != nil {
		a.logger.Warn().Err(err).Msg("Image model unavailable, using placeholder")
		data, err = image.Placeholder(a.config.Width, a.config.Height)
		if err != nil {
			result.Error = fmt.Sprintf("placeholder rendering failed: %v", err)
			return result
		}
		result.Placeholder = true
	}

	filename := fmt.Sprintf("%s_%s.png", start.Format("20060102_150405"), sanitizePrompt(prompt))
	path := filepath.Join(a.outputDir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		result.Error = fmt.Sprintf("failed to save image: %v", err)
		return result
	}

	result.Success = true
	result.ImagePath = path
	result.Seconds = round2(time.Since(start).Seconds())

	a.logger.Debug().
		Str("path", path).
		Bool("placeholder", result.Placeholder).
		Float64("seconds", result.Seconds).
		Msg("Image generated")

	return result
}

// GenerateBatch renders images sequentially, one result per prompt.
func (a *ImageAgent) GenerateBatch(ctx context.Context, prompts []string) []*models.ImageResult {
	results := make([]*models.ImageResult, 0, len(prompts))
	for _, prompt := range prompts {
		results = append(results, a.GenerateImage(ctx, prompt))
	}
	return results
}

// sanitizePrompt turns a prompt into a filesystem-safe filename fragment.
func sanitizePrompt(prompt string) string {
	mapped := strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, prompt)

	if len(mapped) > maxFilenamePromptLen {
		mapped = mapped[:maxFilenamePromptLen]
	}
	mapped = strings.Trim(mapped, "_")
	if mapped == "" {
		return "image"
	}
	return mapped
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
