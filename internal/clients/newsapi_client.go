package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/spacesedan/postsmith/internal/models"
)

const NEWS_API_BASE_URL = "https://newsapi.org/v2"

type NewsAPIClient struct {
	Client  *http.Client
	APIKey  string
	BaseURL string
	// Backoff is the first retry delay; tests shrink it.
	Backoff time.Duration
}

func NewNewsAPIClient(apiKey string, timeout time.Duration) *NewsAPIClient {
	return &NewsAPIClient{
		Client:  &http.Client{Timeout: timeout},
		APIKey:  apiKey,
		BaseURL: NEWS_API_BASE_URL,
		Backoff: INITIAL_BACKOFF,
	}
}

// Search queries /everything for the newest English articles matching query.
func (n *NewsAPIClient) Search(ctx context.Context, query string) ([]models.NewsArticle, error) {
	if n.APIKey == "" {
		slog.Error("[NewsAPIClient] API key is missing")
		return nil, fmt.Errorf("[NewsAPIClient] %w: NEWS_API_KEY", models.ErrConfigurationMissing)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	endpoint := n.BaseURL + "/everything?" + params.Encode()

	var lastErr error
	backoff := n.Backoff

	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		slog.Info("[NewsAPIClient] Fetching articles",
			slog.String("query", query),
			slog.Int("attempt", attempt))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-Api-Key", n.APIKey)

		res, err := doRequest(n.Client, "newsapi", req)
		if err != nil {
			slog.Error("[NewsAPIClient] Request failed", slog.String("error", err.Error()))
			lastErr = err
		} else {
			articles, retry, err := n.handleResponse(res, backoff, attempt)
			if !retry {
				return articles, err
			}
			lastErr = err
		}

		if attempt == MAX_RETRIES {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff)
	}

	slog.Error("[NewsAPIClient] Failed after max retries", slog.String("query", query))
	return nil, fmt.Errorf("[NewsAPIClient] failed after max retries: %w", lastErr)
}

// handleResponse consumes res. retry is true for rate limits and server
// errors.
func (n *NewsAPIClient) handleResponse(res *http.Response, backoff time.Duration, attempt int) ([]models.NewsArticle, bool, error) {
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK:
		body, err := io.ReadAll(res.Body)
		if err != nil {
			slog.Error("[NewsAPIClient] Failed to read response body", slog.String("error", err.Error()))
			return nil, false, err
		}
		var response models.NewsAPIEverythingResponse
		if err := json.Unmarshal(body, &response); err != nil {
			slog.Error("[NewsAPIClient] Failed to parse JSON response", slog.String("error", err.Error()))
			return nil, false, err
		}
		if response.Status != "" && response.Status != "ok" {
			return nil, false, errors.New("[NewsAPIClient] " + response.Code + ": " + response.Message)
		}

		articles := make([]models.NewsArticle, 0, len(response.Articles))
		for _, a := range response.Articles {
			article := models.FromNewsAPI(a)
			article.Description = PlainText(article.Description)
			articles = append(articles, article)
		}
		slog.Info("[NewsAPIClient] Successfully fetched articles", slog.Int("count", len(articles)))
		return articles, false, nil
	case res.StatusCode == http.StatusTooManyRequests:
		slog.Warn("[NewsAPIClient] Rate limit exceeded, retrying...",
			slog.Duration("backoff", backoff), slog.Int("attempt", attempt))
		return nil, true, rejected("newsapi search", res)
	case res.StatusCode >= http.StatusInternalServerError:
		slog.Warn("[NewsAPIClient] Server Error", slog.Int("statusCode", res.StatusCode),
			slog.Duration("backoff", backoff), slog.Int("attempt", attempt))
		return nil, true, rejected("newsapi search", res)
	case res.StatusCode == http.StatusUnauthorized:
		slog.Error("[NewsAPIClient] Invalid API Key, check credentials")
	case res.StatusCode == http.StatusBadRequest:
		slog.Warn("[NewsAPIClient] Bad request: check query parameters")
	default:
		slog.Warn("[NewsAPIClient] Unexpected Response", slog.Int("statusCode", res.StatusCode))
	}
	return nil, false, rejected("newsapi search", res)
}
