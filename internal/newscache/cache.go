// Package newscache keeps the last news search result for a freshness
// window so a rate-limited news API is not queried on every run.
package newscache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/spacesedan/postsmith/internal/metrics"
	"github.com/spacesedan/postsmith/internal/models"
)

const DefaultWindow = 25 * time.Minute

// Searcher is a news backend.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.NewsArticle, error)
}

// Entry is the single cached slot.
type Entry struct {
	FetchedAt time.Time            `json:"fetched_at"`
	Query     string               `json:"query"`
	Articles  []models.NewsArticle `json:"articles"`
}

// Store holds the slot. Load returns ok=false when nothing is stored.
type Store interface {
	Load(ctx context.Context) (Entry, bool, error)
	Save(ctx context.Context, entry Entry, ttl time.Duration) error
}

type Options struct {
	Window time.Duration
	// KeyByQuery treats an entry fetched for another query as a miss.
	KeyByQuery bool
	Now        func() time.Time
}

type Cache struct {
	backend Searcher
	store   Store
	opts    Options
	mu      sync.Mutex
}

func New(backend Searcher, store Store, opts Options) *Cache {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if store == nil {
		store = &MemoryStore{}
	}
	return &Cache{backend: backend, store: store, opts: opts}
}

// GetArticles returns at most maxCount articles for topic, serving from
// the slot while it is fresh and replacing it wholesale otherwise.
func (c *Cache) GetArticles(ctx context.Context, topic string, maxCount int) ([]models.NewsArticle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.Now()

	entry, ok, err := c.store.Load(ctx)
	if err != nil {
		slog.Warn("[NewsCache] Failed to load cached entry, refetching", slog.String("error", err.Error()))
		ok = false
	}
	if ok && c.fresh(entry, topic, now) {
		metrics.NewsCacheLookups.WithLabelValues("hit").Inc()
		slog.Info("[NewsCache] Using cached news articles",
			slog.String("query", entry.Query),
			slog.Duration("age", now.Sub(entry.FetchedAt)))
		return head(entry.Articles, maxCount), nil
	}
	metrics.NewsCacheLookups.WithLabelValues("miss").Inc()

	slog.Info("[NewsCache] Fetching latest news", slog.String("query", topic))
	articles, err := c.backend.Search(ctx, topic)
	if err != nil {
		slog.Error("[NewsCache] Failed to fetch news", slog.String("query", topic), slog.String("error", err.Error()))
		return nil, err
	}

	entry = Entry{FetchedAt: now, Query: topic, Articles: articles}
	if err := c.store.Save(ctx, entry, c.opts.Window); err != nil {
		slog.Warn("[NewsCache] Failed to store entry", slog.String("error", err.Error()))
	}

	out := head(articles, maxCount)
	for _, a := range out {
		slog.Debug("[NewsCache] Article", slog.String("title", a.Title), slog.String("url", a.URL))
	}
	return out, nil
}

func (c *Cache) fresh(entry Entry, topic string, now time.Time) bool {
	if entry.FetchedAt.IsZero() || now.Sub(entry.FetchedAt) >= c.opts.Window {
		return false
	}
	if c.opts.KeyByQuery && entry.Query != topic {
		return false
	}
	return true
}

// head truncates, never pads, and copies so callers cannot alias the slot.
func head(articles []models.NewsArticle, n int) []models.NewsArticle {
	if n < 0 || n > len(articles) {
		n = len(articles)
	}
	out := make([]models.NewsArticle, n)
	copy(out, articles[:n])
	return out
}
