package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectrumbridge/bridge/internal/interfaces"
)

func TestClientGenerate(t *testing.T) {
	fakePNG := []byte{0x89, 'P', 'N', 'G', 1, 2, 3, 4}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sdapi/v1/txt2img", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a calm classroom", body["prompt"])
		assert.Equal(t, "blurry", body["negative_prompt"])
		assert.Equal(t, float64(512), body["width"])
		assert.Equal(t, float64(15), body["steps"])
		assert.Equal(t, 7.5, body["cfg_scale"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"images": []string{base64.StdEncoding.EncodeToString(fakePNG)},
		})
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	got, err := client.Generate(context.Background(), interfaces.ImageRequest{
		Prompt:         "a calm classroom",
		NegativePrompt: "blurry",
		Width:          512,
		Height:         512,
		Steps:          15,
		GuidanceScale:  7.5,
	})
	require.NoError(t, err)
	assert.Equal(t, fakePNG, got)
}

func TestClientGenerateErrors(t *testing.T) {
	t.Run("server error surfaces as APIError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewClient(WithBaseURL(srv.URL))
		_, err := client.Generate(context.Background(), interfaces.ImageRequest{Prompt: "x"})
		require.Error(t, err)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	})

	t.Run("empty image list is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"images": []string{}})
		}))
		defer srv.Close()

		client := NewClient(WithBaseURL(srv.URL))
		_, err := client.Generate(context.Background(), interfaces.ImageRequest{Prompt: "x"})
		assert.Error(t, err)
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		client := NewClient(WithBaseURL(srv.URL))
		_, err := client.Generate(context.Background(), interfaces.ImageRequest{Prompt: "x"})
		assert.Error(t, err)
	})
}

func TestClientHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sdapi/v1/progress", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	assert.NoError(t, client.HealthCheck(context.Background()))

	srv.Close()
	assert.Error(t, client.HealthCheck(context.Background()))
}

func TestPlaceholder(t *testing.T) {
	data, err := Placeholder(512, 512)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, 512, bounds.Dx())
	assert.Equal(t, 512, bounds.Dy())

	// Top-left is the soft blue gradient start, the exact center sits inside
	// the white label box.
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(232), r>>8)
	assert.Equal(t, uint32(244), g>>8)
	assert.Equal(t, uint32(248), b>>8)

	r, g, b, _ = img.At(256, 256).RGBA()
	assert.Equal(t, uint32(255), r>>8)
	assert.Equal(t, uint32(255), g>>8)
	assert.Equal(t, uint32(255), b>>8)

	// Zero dimensions fall back to 512x512.
	data, err = Placeholder(0, 0)
	require.NoError(t, err)
	img, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 512, img.Bounds().Dx())
}
