package clients

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spacesedan/postsmith/internal/models"
)

// OpenAIImageClient generates images through the OpenAI Images API.
type OpenAIImageClient struct {
	Client *openai.Client
	Model  string
	apiKey string
}

func NewOpenAIImageClient(apiKey, baseURL, model string, timeout time.Duration) *OpenAIImageClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = string(openai.ImageModelDallE3)
	}
	return &OpenAIImageClient{
		Client: openai.NewClient(opts...),
		Model:  model,
		apiKey: apiKey,
	}
}

func (c *OpenAIImageClient) Name() string { return "openai-images" }

// Available reports whether a key is configured; the hosted API needs no
// local accelerator.
func (c *OpenAIImageClient) Available(ctx context.Context) bool {
	return c.apiKey != ""
}

// Generate ignores the sampling parameters, which the Images API does not
// expose, apart from the output size.
func (c *OpenAIImageClient) Generate(ctx context.Context, prompt string, params models.ImageParams) ([]byte, error) {
	slog.Info("[OpenAIImageClient] Generating image", slog.String("model", c.Model))

	start := time.Now()
	res, err := c.Client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         openai.F(prompt),
		Model:          openai.F(openai.ImageModel(c.Model)),
		N:              openai.Int(1),
		ResponseFormat: openai.F(openai.ImageGenerateParamsResponseFormatB64JSON),
		Size:           openai.F(openai.ImageGenerateParamsSize1024x1024),
	})
	observe("openai_images", start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: image generation: %v", models.ErrBackendUnavailable, err)
	}
	if len(res.Data) == 0 || res.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("image generation: %w", models.ErrEmptyResult)
	}

	data, err := base64.StdEncoding.DecodeString(res.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode generated image: %w", err)
	}
	return data, nil
}
