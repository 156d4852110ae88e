package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/spacesedan/postsmith/internal/models"
)

// RSSClient searches a news feed whose URL embeds the query, such as
// Google News search feeds.
type RSSClient struct {
	URLTemplate string
	feedParser  *gofeed.Parser
}

func NewRSSClient(urlTemplate string, timeout time.Duration) *RSSClient {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = USER_AGENT
	return &RSSClient{
		URLTemplate: urlTemplate,
		feedParser:  parser,
	}
}

func (r *RSSClient) Search(ctx context.Context, query string) ([]models.NewsArticle, error) {
	feedURL := strings.Replace(r.URLTemplate, "%s", url.QueryEscape(query), 1)
	slog.Info("[RSSClient] Fetching feed", slog.String("query", query))

	feed, err := r.feedParser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &models.BackendRejectedError{Op: "rss search", StatusCode: httpErr.StatusCode, Body: httpErr.Status}
		}
		return nil, fmt.Errorf("%w: rss search %q: %v", models.ErrBackendUnavailable, query, err)
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		article := models.NewsArticle{
			Title:       strings.TrimSpace(item.Title),
			URL:         item.Link,
			Description: PlainText(item.Description),
			Source:      feed.Title,
		}
		if item.PublishedParsed != nil {
			article.PublishedAt = *item.PublishedParsed
		}
		if item.Image != nil {
			article.ImageURL = item.Image.URL
		}
		articles = append(articles, article)
	}

	slog.Info("[RSSClient] Successfully fetched articles", slog.Int("count", len(articles)))
	return articles, nil
}
