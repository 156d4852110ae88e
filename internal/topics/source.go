// Package topics picks what the next post is about.
package topics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spacesedan/postsmith/internal/models"
	"github.com/spacesedan/postsmith/internal/sentiment"
)

// Picker returns a uniform int in [0, n). *rand.Rand satisfies it.
type Picker interface {
	IntN(n int) int
}

type Source interface {
	NextTopic(ctx context.Context) (models.Topic, error)
}

// CatalogSource picks uniformly from a fixed list.
type CatalogSource struct {
	topics []string
	rng    Picker
}

func NewCatalogSource(topics []string, rng Picker) (*CatalogSource, error) {
	if len(topics) == 0 {
		return nil, errors.New("[TopicSource] catalog is empty")
	}
	return &CatalogSource{topics: topics, rng: rng}, nil
}

func (c *CatalogSource) pick() string {
	return c.topics[c.rng.IntN(len(c.topics))]
}

func (c *CatalogSource) NextTopic(ctx context.Context) (models.Topic, error) {
	topic := c.pick()
	slog.Info("[TopicSource] Selected random topic", slog.String("topic", topic))
	return models.Topic{Name: topic}, nil
}

// ArticleGetter is satisfied by the news cache.
type ArticleGetter interface {
	GetArticles(ctx context.Context, topic string, maxCount int) ([]models.NewsArticle, error)
}

// ProcessedChecker reports whether an article was already written about.
type ProcessedChecker interface {
	IsProcessed(ctx context.Context, key string) bool
}

type NewsOptions struct {
	MaxCount int
	// MinSentiment drops articles scoring below it; values <= -1 disable
	// the filter.
	MinSentiment float64
	// Processed, when set, drops articles whose URL it reports.
	Processed ProcessedChecker
}

// NewsSource picks a query from the catalog, fetches matching news and
// picks one article uniformly.
type NewsSource struct {
	queries *CatalogSource
	news    ArticleGetter
	rng     Picker
	opts    NewsOptions
}

func NewNewsSource(queries []string, news ArticleGetter, rng Picker, opts NewsOptions) (*NewsSource, error) {
	catalog, err := NewCatalogSource(queries, rng)
	if err != nil {
		return nil, err
	}
	if opts.MaxCount <= 0 {
		opts.MaxCount = 15
	}
	return &NewsSource{queries: catalog, news: news, rng: rng, opts: opts}, nil
}

func (n *NewsSource) NextTopic(ctx context.Context) (models.Topic, error) {
	query := n.queries.pick()
	slog.Info("[TopicSource] Selected news query", slog.String("query", query))

	articles, err := n.news.GetArticles(ctx, query, n.opts.MaxCount)
	if err != nil {
		return models.Topic{}, fmt.Errorf("[TopicSource] fetch news for %q: %w", query, err)
	}

	articles = n.filter(ctx, articles)
	if len(articles) == 0 {
		slog.Error("[TopicSource] No articles found", slog.String("query", query))
		return models.Topic{}, fmt.Errorf("[TopicSource] %q: %w", query, models.ErrNoArticlesAvailable)
	}

	index := n.rng.IntN(len(articles))
	article := articles[index]
	slog.Info("[TopicSource] Randomly selected article",
		slog.Int("index", index),
		slog.String("title", article.Title),
		slog.String("url", article.URL))

	return models.Topic{Name: query, Article: &article}, nil
}

func (n *NewsSource) filter(ctx context.Context, articles []models.NewsArticle) []models.NewsArticle {
	kept := make([]models.NewsArticle, 0, len(articles))
	for _, a := range articles {
		if a.Title == "" {
			continue
		}
		if n.opts.Processed != nil && a.URL != "" && n.opts.Processed.IsProcessed(ctx, a.URL) {
			slog.Debug("[TopicSource] Skipping already published article", slog.String("url", a.URL))
			continue
		}
		a.Sentiment = sentiment.ScoreArticle(a)
		if n.opts.MinSentiment > -1 && a.Sentiment < n.opts.MinSentiment {
			slog.Debug("[TopicSource] Skipping article below sentiment floor",
				slog.String("url", a.URL),
				slog.Float64("sentiment", a.Sentiment))
			continue
		}
		kept = append(kept, a)
	}
	return kept
}
