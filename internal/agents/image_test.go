package agents

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/common"
)

func testImageConfig() *common.ImageConfig {
	return &common.ImageConfig{
		Width:         64,
		Height:        48,
		Steps:         15,
		GuidanceScale: 7.5,
	}
}

func TestGenerateImage(t *testing.T) {
	dir := t.TempDir()
	client := &stubImageClient{data: []byte("fake-png-bytes")}
	agent := NewImageAgent(client, testImageConfig(), dir, arbor.NewLogger())

	result := agent.GenerateImage(context.Background(), "Child at the Doctor!")

	require.True(t, result.Success, result.Error)
	assert.False(t, result.Placeholder)
	assert.Equal(t, "Child at the Doctor!", result.Prompt)
	assert.Equal(t, "watermark, text, signature, blurry, ugly, low quality", result.NegativePrompt)
	assert.Equal(t, 64, result.Width)
	assert.Equal(t, 48, result.Height)
	assert.Equal(t, 15, result.Steps)
	assert.InDelta(t, 7.5, result.Guidance, 0.001)
	assert.GreaterOrEqual(t, result.Seconds, 0.0)

	assert.True(t, strings.HasSuffix(client.req.Prompt, ", high quality, professional, educational, detailed, vibrant"))
	assert.True(t, strings.HasPrefix(client.req.Prompt, "Child at the Doctor!"))
	assert.Equal(t, 64, client.req.Width)
	assert.Equal(t, 48, client.req.Height)

	saved, err := os.ReadFile(result.ImagePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake-png-bytes"), saved)

	name := filepath.Base(result.ImagePath)
	assert.Regexp(t, regexp.MustCompile(`^\d{8}_\d{6}_child_at_the_doctor\.png$`), name)
}

func TestGenerateImagePlaceholderFallback(t *testing.T) {
	dir := t.TempDir()
	client := &stubImageClient{err: fmt.Errorf("connection refused")}
	agent := NewImageAgent(client, testImageConfig(), dir, arbor.NewLogger())

	result := agent.GenerateImage(context.Background(), "sensory toys")

	require.True(t, result.Success, result.Error)
	assert.True(t, result.Placeholder)
	require.NotEmpty(t, result.ImagePath)

	data, err := os.ReadFile(result.ImagePath)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())
}

func TestGenerateImageEmptyPrompt(t *testing.T) {
	client := &stubImageClient{data: []byte("unused")}
	agent := NewImageAgent(client, testImageConfig(), t.TempDir(), arbor.NewLogger())

	result := agent.GenerateImage(context.Background(), "   ")

	assert.False(t, result.Success)
	assert.Equal(t, "prompt cannot be empty", result.Error)
	assert.Zero(t, client.calls)
}

func TestGenerateImageWriteFailure(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "blocked")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	client := &stubImageClient{data: []byte("fake")}
	agent := NewImageAgent(client, testImageConfig(), filepath.Join(blocker, "images"), arbor.NewLogger())

	result := agent.GenerateImage(context.Background(), "a quiet classroom")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "failed to save image")
}

func TestGenerateBatch(t *testing.T) {
	dir := t.TempDir()
	client := &stubImageClient{data: []byte("fake")}
	agent := NewImageAgent(client, testImageConfig(), dir, arbor.NewLogger())

	results := agent.GenerateBatch(context.Background(), []string{"calm corner", "visual schedule"})

	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.True(t, results[1].Success)
	assert.Equal(t, 2, client.calls)
	assert.NotEqual(t, results[0].ImagePath, results[1].ImagePath)
}

func TestSanitizePrompt(t *testing.T) {
	tests := []struct {
		prompt string
		want   string
	}{
		{"Child at the Doctor!", "child_at_the_doctor"},
		{"sensory toys", "sensory_toys"},
		{"ABC 123", "abc_123"},
		{"Crème brûlée", "cr_me_br_l_e"},
		{"!!!", "image"},
		{"", "image"},
		{strings.Repeat("a", 50), strings.Repeat("a", 40)},
	}

	for _, tt := range tests {
		if got := sanitizePrompt(tt.prompt); got != tt.want {
			t.Errorf("sanitizePrompt(%q) = %q, want %q", tt.prompt, got, tt.want)
		}
	}
}
