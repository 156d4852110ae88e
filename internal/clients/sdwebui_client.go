package clients

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spacesedan/postsmith/internal/models"
)

// StableDiffusionClient talks to a Stable Diffusion WebUI started with --api.
type StableDiffusionClient struct {
	Client  *http.Client
	BaseURL string
}

func NewStableDiffusionClient(baseURL string, timeout time.Duration) *StableDiffusionClient {
	return &StableDiffusionClient{
		Client:  &http.Client{Timeout: timeout},
		BaseURL: baseURL,
	}
}

func (s *StableDiffusionClient) Name() string { return "sdwebui" }

// Available asks the WebUI for its memory report and requires a CUDA
// device to be present.
func (s *StableDiffusionClient) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/sdapi/v1/memory", nil)
	if err != nil {
		return false
	}
	res, err := doRequest(s.Client, "sdwebui", req)
	if err != nil {
		slog.Warn("[StableDiffusionClient] Health check failed", slog.String("error", err.Error()))
		return false
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		slog.Warn("[StableDiffusionClient] Health check returned non-200", slog.Int("statusCode", res.StatusCode))
		return false
	}

	var mem models.SDMemoryResponse
	if err := json.NewDecoder(res.Body).Decode(&mem); err != nil {
		slog.Warn("[StableDiffusionClient] Failed to parse memory report", slog.String("error", err.Error()))
		return false
	}
	if mem.Cuda.Error != "" || mem.Cuda.System.Total <= 0 {
		slog.Warn("[StableDiffusionClient] CUDA not available", slog.String("reason", mem.Cuda.Error))
		return false
	}
	return true
}

func (s *StableDiffusionClient) Generate(ctx context.Context, prompt string, params models.ImageParams) ([]byte, error) {
	payload, err := json.Marshal(models.Txt2ImgRequest{
		Prompt:    prompt,
		Steps:     params.Steps,
		CfgScale:  params.Guidance,
		Width:     params.Width,
		Height:    params.Height,
		BatchSize: 1,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/sdapi/v1/txt2img", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	slog.Info("[StableDiffusionClient] Generating image",
		slog.Int("steps", params.Steps),
		slog.Float64("guidance", params.Guidance))

	res, err := doRequest(s.Client, "sdwebui", req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, rejected("txt2img", res)
	}

	var out models.Txt2ImgResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("txt2img: decode response: %w", err)
	}
	if len(out.Images) == 0 || out.Images[0] == "" {
		return nil, fmt.Errorf("txt2img: %w", models.ErrEmptyResult)
	}

	data, err := base64.StdEncoding.DecodeString(out.Images[0])
	if err != nil {
		return nil, fmt.Errorf("txt2img: decode image: %w", err)
	}
	return data, nil
}
