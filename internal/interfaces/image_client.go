package interfaces

import "context"

// ImageRequest describes one text-to-image generation call.
type ImageRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Steps          int     `json:"steps"`
	GuidanceScale  float64 `json:"cfg_scale"`
}

// ImageClient talks to a local Stable-Diffusion-compatible HTTP endpoint.
// Generation is synchronous; a single call can take tens of seconds.
type ImageClient interface {
	// Generate renders one image. The returned bytes are PNG-encoded.
	Generate(ctx context.Context, req ImageRequest) ([]byte, error)

	// HealthCheck probes the backend without generating an image.
	HealthCheck(ctx context.Context) error
}
