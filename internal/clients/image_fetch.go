package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxImageBytes bounds article image downloads.
const maxImageBytes = 20 << 20

type ImageFetcher struct {
	Client *http.Client
}

func NewImageFetcher(timeout time.Duration) *ImageFetcher {
	return &ImageFetcher{Client: &http.Client{Timeout: timeout}}
}

// Fetch downloads an image and returns its bytes and declared content type.
func (f *ImageFetcher) Fetch(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", err
	}
	res, err := doRequest(f.Client, "image_download", req)
	if err != nil {
		return nil, "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, "", rejected("download image", res)
	}
	data, err := io.ReadAll(io.LimitReader(res.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("download image: %w", err)
	}
	return data, res.Header.Get("Content-Type"), nil
}
